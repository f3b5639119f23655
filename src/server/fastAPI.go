package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"astock-collector/src/data_source/eastmoney"
	"astock-collector/src/interfaces"
	"astock-collector/src/logger"
	"astock-collector/src/models"
	"astock-collector/src/utils"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// FacadeServer
// -----------------------------------------------------------------------------

// FacadeServer re-exposes the cached storage tables and on-demand fetches to
// the frontend. It is a thin caller of the ingestion pipeline: parameter
// validation -> 400, upstream fetch failure -> 500, empty results -> success
// with an empty collection.
type FacadeServer struct {
	Config   *models.MConfig
	Logger   *logger.Logger
	DB       interfaces.IDatabase
	Source   interfaces.IQuoteSource
	Calendar *utils.TradingCalendar
	engine   *gin.Engine

	// WebSocket clients
	clients    map[*Client]struct{}
	broadcast  chan *models.MQuoteUpdate
	register   chan *Client
	unregister chan *Client

	lastUpdate int64
	stateMutex sync.RWMutex

	// Injectable clock so the session gate is testable.
	now func() time.Time
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewFacadeServer(cfg *models.MConfig, log *logger.Logger, db interfaces.IDatabase, source interfaces.IQuoteSource, cal *utils.TradingCalendar) *FacadeServer {
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &FacadeServer{
		Config:     cfg,
		Logger:     log,
		DB:         db,
		Source:     source,
		Calendar:   cal,
		engine:     gin.Default(),
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan *models.MQuoteUpdate, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		now:        time.Now,
	}

	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *FacadeServer) setupRoutes() {
	s.engine.GET("/api/quotes", s.getQuotes)
	s.engine.GET("/api/history", s.getHistory)
	s.engine.GET("/api/master", s.getMaster)
	s.engine.GET("/api/health", s.getHealth)

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

func (s *FacadeServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting facade server on %s", addr)

	go s.handleWebsockets()

	return s.engine.Run(addr)
}

// -----------------------------------------------------------------------------

// Handler exposes the route tree for tests and embedding.
func (s *FacadeServer) Handler() http.Handler {
	return s.engine
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

// getQuotes fetches a realtime snapshot for each requested code. Writes to
// the master table happen only inside the trading session; off-session the
// quotes are still returned, just not persisted.
func (s *FacadeServer) getQuotes(c *gin.Context) {
	codes := splitCodes(c.Query("codes"))
	if len(codes) == 0 {
		c.JSON(400, gin.H{"success": false, "error": "codes required"})
		return
	}

	quotes := make([]models.MRealtimeQuote, 0, len(codes))
	for _, code := range codes {
		quote, err := s.Source.FetchRealtimeQuote(code)
		if err != nil {
			s.Logger.Error("Quote fetch failed for %s: %v", code, err)
			c.JSON(500, gin.H{"success": false, "error": err.Error()})
			return
		}
		quotes = append(quotes, quote)
	}

	if s.inSession(s.now()) {
		for _, quote := range quotes {
			if err := s.DB.RefreshRealtimeFields(quote.Code, quote); err != nil {
				s.Logger.Error("Realtime refresh failed for %s: %v", quote.Code, err)
				c.JSON(500, gin.H{"success": false, "error": err.Error()})
				return
			}
		}
		s.Broadcast(quotes)
	}

	c.JSON(200, gin.H{"success": true, "data": quotes})
}

// -----------------------------------------------------------------------------

// getHistory pulls the full front-adjusted daily history, persists it, and
// returns the most recent `days` candles (default 20, matching the frontend).
func (s *FacadeServer) getHistory(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.JSON(400, gin.H{"success": false, "error": "code required"})
		return
	}

	days, err := strconv.Atoi(c.DefaultQuery("days", "20"))
	if err != nil || days <= 0 {
		days = 20
	}

	records, err := s.Source.FetchDailyHistory(code, eastmoney.BegEarliest, eastmoney.EndLatest)
	if err != nil {
		s.Logger.Error("History fetch failed for %s: %v", code, err)
		c.JSON(500, gin.H{"success": false, "error": err.Error()})
		return
	}

	if err := s.DB.UpsertKline(code, records); err != nil {
		s.Logger.Error("Kline upsert failed for %s: %v", code, err)
		c.JSON(500, gin.H{"success": false, "error": err.Error()})
		return
	}

	history, err := s.DB.KlineHistory(code, days)
	if err != nil {
		c.JSON(500, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(200, gin.H{"success": true, "data": history})
}

// -----------------------------------------------------------------------------

func (s *FacadeServer) getMaster(c *gin.Context) {
	records, err := s.DB.MasterSnapshot()
	if err != nil {
		c.JSON(500, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(200, gin.H{"success": true, "data": records})
}

// -----------------------------------------------------------------------------

func (s *FacadeServer) getHealth(c *gin.Context) {
	s.stateMutex.RLock()
	connections := len(s.clients)
	lastUpdate := s.lastUpdate
	s.stateMutex.RUnlock()

	c.JSON(200, gin.H{
		"status":        "ok",
		"connections":   connections,
		"latest_update": lastUpdate,
		"in_session":    s.inSession(s.now()),
	})
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func (s *FacadeServer) inSession(now time.Time) bool {
	return utils.IsTradingTime(now, s.Config.Market.UTCOffsetHours) && s.Calendar.IsTradingDay(now)
}

// -----------------------------------------------------------------------------

func splitCodes(raw string) []string {
	codes := []string{}
	for _, part := range strings.Split(raw, ",") {
		if code := strings.TrimSpace(part); code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}
