package stubapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/abelbrown/memescope/internal/model"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type coinRequest struct {
	Coin string `json:"coin" binding:"required"`
}

// Options configures the stub server.
type Options struct {
	// Delay is added to every /analyze call. The request context aborts it.
	Delay time.Duration
	// FailCoins answer /analyze with 500.
	FailCoins []string
	Now       func() time.Time
	Logger    *log.Logger
}

// Server serves the backend contract under /api.
type Server struct {
	store  *Store
	market *Market
	opts   Options
	fail   map[string]bool
	log    *log.Logger
}

// NewServer creates a Server over store.
func NewServer(store *Store, opts Options) *Server {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default().WithPrefix("stub")
	}
	fail := make(map[string]bool, len(opts.FailCoins))
	for _, c := range opts.FailCoins {
		fail[model.NormalizeCoin(c)] = true
	}
	return &Server{
		store:  store,
		market: NewMarket(opts.Now),
		opts:   opts,
		fail:   fail,
		log:    logger,
	}
}

// Router builds the gin engine.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLog())

	api := r.Group("/api")
	api.POST("/analyze", s.handleAnalyze)
	api.GET("/history", s.handleHistory)
	api.GET("/favorites", s.handleFavorites)
	api.POST("/favorites", s.handleAddFavorite)
	api.DELETE("/favorites/:coin", s.handleRemoveFavorite)
	api.GET("/portfolio", s.handlePortfolio)
	api.POST("/portfolio", s.handleAddHolding)
	api.DELETE("/portfolio/:id", s.handleRemoveHolding)
	api.GET("/portfolio/performance", s.handlePerformance)
	return r
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"took", time.Since(start))
	}
}

func (s *Server) fault(c *gin.Context, status int, code string, err error) {
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", "path", c.Request.URL.Path, "err", err)
	}
	c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
}

func (s *Server) bindCoin(c *gin.Context) (string, bool) {
	var req coinRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Coin) == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "coin is required", Code: "INVALID_REQUEST"})
		return "", false
	}
	return strings.TrimSpace(req.Coin), true
}

func (s *Server) handleAnalyze(c *gin.Context) {
	coin, ok := s.bindCoin(c)
	if !ok {
		return
	}

	if s.opts.Delay > 0 {
		select {
		case <-c.Request.Context().Done():
			s.log.Debug("analysis aborted by client", "coin", coin)
			return
		case <-time.After(s.opts.Delay):
		}
	}

	if s.fail[model.NormalizeCoin(coin)] {
		s.fault(c, http.StatusInternalServerError, "ANALYSIS_FAILED", errors.New("analysis engine unavailable"))
		return
	}

	if err := s.store.RecordSearch(coin, s.opts.Now()); err != nil {
		s.fault(c, http.StatusInternalServerError, "STORE_FAILED", err)
		return
	}
	c.JSON(http.StatusOK, s.market.Analyze(coin))
}

func (s *Server) handleHistory(c *gin.Context) {
	entries, err := s.store.History()
	if err != nil {
		s.fault(c, http.StatusInternalServerError, "STORE_FAILED", err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (s *Server) handleFavorites(c *gin.Context) {
	favs, err := s.store.Favorites()
	if err != nil {
		s.fault(c, http.StatusInternalServerError, "STORE_FAILED", err)
		return
	}
	c.JSON(http.StatusOK, favs)
}

func (s *Server) handleAddFavorite(c *gin.Context) {
	coin, ok := s.bindCoin(c)
	if !ok {
		return
	}
	if err := s.store.AddFavorite(coin, s.opts.Now()); err != nil {
		s.fault(c, http.StatusInternalServerError, "STORE_FAILED", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"coin": model.NormalizeCoin(coin)})
}

func (s *Server) handleRemoveFavorite(c *gin.Context) {
	err := s.store.RemoveFavorite(c.Param("coin"))
	switch {
	case errors.Is(err, ErrNotFound):
		s.fault(c, http.StatusNotFound, "NOT_FOUND", err)
	case err != nil:
		s.fault(c, http.StatusInternalServerError, "STORE_FAILED", err)
	default:
		c.Status(http.StatusNoContent)
	}
}

func (s *Server) handlePortfolio(c *gin.Context) {
	holdings, err := s.store.Holdings()
	if err != nil {
		s.fault(c, http.StatusInternalServerError, "STORE_FAILED", err)
		return
	}
	c.JSON(http.StatusOK, s.market.Price(holdings))
}

func (s *Server) handleAddHolding(c *gin.Context) {
	var form model.HoldingForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid holding", Code: "INVALID_REQUEST"})
		return
	}
	if strings.TrimSpace(form.Coin) == "" || form.Amount <= 0 || form.PurchasePrice <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "coin, amount and purchase_price are required", Code: "INVALID_REQUEST"})
		return
	}
	form.Coin = strings.TrimSpace(form.Coin)

	h, err := s.store.AddHolding(form, s.opts.Now())
	if err != nil {
		s.fault(c, http.StatusInternalServerError, "STORE_FAILED", err)
		return
	}
	h.CurrentPrice = s.market.Quote(h.Coin)
	c.JSON(http.StatusCreated, h)
}

func (s *Server) handleRemoveHolding(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id", Code: "INVALID_REQUEST"})
		return
	}
	err = s.store.RemoveHolding(id)
	switch {
	case errors.Is(err, ErrNotFound):
		s.fault(c, http.StatusNotFound, "NOT_FOUND", err)
	case err != nil:
		s.fault(c, http.StatusInternalServerError, "STORE_FAILED", err)
	default:
		c.Status(http.StatusNoContent)
	}
}

func (s *Server) handlePerformance(c *gin.Context) {
	holdings, err := s.store.Holdings()
	if err != nil {
		s.fault(c, http.StatusInternalServerError, "STORE_FAILED", err)
		return
	}
	c.JSON(http.StatusOK, s.market.Performance(s.market.Price(holdings)))
}
