package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/abelbrown/memescope/internal/stubapi"
)

var stubFlags struct {
	addr  string
	db    string
	delay time.Duration
	fail  []string
	debug bool
}

var stubCmd = &cobra.Command{
	Use:   "stub",
	Short: "Serve a local development backend",
	Long: `Serves the dashboard's backend API under /api with deterministic
synthetic market data. Favorites, search history and holdings are kept
in SQLite (in memory unless --db is given).

The default address matches the dashboard's default backend URL:

  memescope stub &
  memescope`,
	RunE: runStub,
}

func init() {
	f := stubCmd.Flags()
	f.StringVar(&stubFlags.addr, "addr", ":5174", "listen address")
	f.StringVar(&stubFlags.db, "db", ":memory:", "SQLite database path")
	f.DurationVar(&stubFlags.delay, "delay", 400*time.Millisecond, "latency added to every analysis")
	f.StringSliceVar(&stubFlags.fail, "fail", nil, "coins whose analysis answers 500")
	f.BoolVar(&stubFlags.debug, "debug", false, "gin debug mode")
}

func runStub(cmd *cobra.Command, _ []string) error {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "stub"})
	if !stubFlags.debug {
		gin.SetMode(gin.ReleaseMode)
	}

	store, err := stubapi.Open(stubFlags.db)
	if err != nil {
		return fmt.Errorf("open stub database: %w", err)
	}
	defer store.Close()

	server := stubapi.NewServer(store, stubapi.Options{
		Delay:     stubFlags.delay,
		FailCoins: stubFlags.fail,
		Logger:    logger,
	})
	srv := &http.Server{
		Addr:              stubFlags.addr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", stubFlags.addr, "db", stubFlags.db)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
