package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/abelbrown/memescope/internal/api"
	"github.com/abelbrown/memescope/internal/collections"
	"github.com/abelbrown/memescope/internal/config"
	"github.com/abelbrown/memescope/internal/logging"
	"github.com/abelbrown/memescope/internal/metrics"
	"github.com/abelbrown/memescope/internal/notify"
	"github.com/abelbrown/memescope/internal/otel"
	"github.com/abelbrown/memescope/internal/poll"
	"github.com/abelbrown/memescope/internal/search"
	"github.com/abelbrown/memescope/internal/state"
	"github.com/abelbrown/memescope/internal/ui"
)

var dashboardFlags struct {
	config      string
	api         string
	metricsAddr string
	events      string
}

func addDashboardFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&dashboardFlags.config, "config", "", "config file (default ~/.memescope/config.yaml)")
	f.StringVar(&dashboardFlags.api, "api", "", "backend base URL (overrides config and MEMESCOPE_API)")
	f.StringVar(&dashboardFlags.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9464")
	f.StringVar(&dashboardFlags.events, "events", "", "write JSONL diagnostics to this file")
}

// loadConfig resolves file, environment and flag settings, in that order.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(dashboardFlags.config)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	if dashboardFlags.api != "" {
		cfg.API.BaseURL = dashboardFlags.api
	}
	if dashboardFlags.events != "" {
		cfg.Log.Events = dashboardFlags.events
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// openEvents starts the diagnostics logger. With no path configured events
// only feed the in-memory ring behind the debug overlay.
func openEvents(path string) (*otel.Logger, func(), error) {
	if path == "" {
		return otel.NewNullLogger(), func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, fmt.Errorf("create events directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open events log: %w", err)
	}
	return otel.NewLogger(f), func() { f.Close() }, nil
}

func serveMetrics(addr string, m *metrics.Pipeline) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("metrics server stopped", "addr", addr, "err", err)
		}
	}()
	return srv
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := logging.Init(cfg.Log.Level); err != nil {
		return err
	}
	defer logging.Close()

	events, closeEvents, err := openEvents(cfg.Log.Events)
	if err != nil {
		return err
	}
	ring := otel.NewRingBuffer(otel.DefaultRingSize)
	events.SetRingBuffer(ring)
	defer func() {
		events.Info(otel.KindShutdown, "main", "exiting")
		events.Close()
		closeEvents()
	}()
	events.Info(otel.KindStartup, "main", "memescope "+version)

	m := metrics.New()
	if dashboardFlags.metricsAddr != "" {
		srv := serveMetrics(dashboardFlags.metricsAddr, m)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
		logging.Info("serving metrics", "addr", dashboardFlags.metricsAddr)
	}

	client := api.New(cfg.ClientOptions())
	logging.Info("using backend", "url", client.BaseURL())

	store := state.New()
	feed := notify.NewFeed(cfg.UI.NotificationCap)

	syncer := collections.New(collections.Options{
		Client:  client,
		Store:   store,
		Feed:    feed,
		Events:  events,
		Metrics: m,
	})
	defer syncer.Close()

	controller := search.NewController(search.Options{
		Analyzer:  client,
		Store:     store,
		Feed:      feed,
		OnSuccess: syncer.RefreshHistory,
		Events:    events,
		Metrics:   m,
	})

	scheduler := poll.New(syncer.FetchPerformance, poll.Options{
		Interval: cfg.Poll.Interval,
		Events:   events,
		Metrics:  m,
	})
	defer scheduler.Stop()

	app := ui.NewApp(ui.Deps{
		Store:                store,
		Feed:                 feed,
		Debouncer:            search.NewDebouncer(cfg.Search.Debounce),
		Controller:           controller,
		Syncer:               syncer,
		Poller:               scheduler,
		Ring:                 ring,
		Events:               events,
		Theme:                cfg.UI.Theme,
		VisibleNotifications: cfg.UI.VisibleNotifications,
		RecentSearches:       cfg.UI.RecentSearches,
	})

	program := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	scheduler.Attach(program)

	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		events.Error(otel.KindError, "main", err)
		return fmt.Errorf("run dashboard: %w", err)
	}
	return nil
}
