package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"astock-collector/src/config"
	"astock-collector/src/data_source/eastmoney"
	"astock-collector/src/interfaces"
	"astock-collector/src/logger"
	"astock-collector/src/network"
	"astock-collector/src/server"
	"astock-collector/src/storage"
	"astock-collector/src/utils"
)

// -----------------------------------------------------------------------------

func main() {

	configPath := flag.String("config", "config/default.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.NewLogger(cfg.LogLevel, cfg.Name)

	// Storage backend
	var db interfaces.IDatabase
	switch cfg.Storage.DBType {
	case "postgres":
		db, err = storage.NewPostgresDB(cfg.MConfig, appLogger)
	default:
		db, err = storage.NewSQLiteDB(cfg.MConfig, appLogger)
	}
	if err != nil {
		appLogger.Critical("Failed to init db: %v", err)
	}
	if err := db.Initialize(); err != nil {
		appLogger.Critical("Failed to migrate db: %v", err)
	}
	defer db.Close()

	var netMgr interfaces.INetworkManager = network.NewNetworkManager(cfg.MConfig, appLogger)
	var source interfaces.IQuoteSource = eastmoney.NewEastmoneySource(cfg.MConfig, netMgr)
	calendar := utils.NewTradingCalendar(cfg.Market.UTCOffsetHours)

	runPipeline(cfg, appLogger, db, source, calendar)

	// Facade server for the frontend
	srv := server.NewFacadeServer(cfg.MConfig, appLogger, db, source, calendar)
	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Error("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down...")
}

// -----------------------------------------------------------------------------

// runPipeline executes one ingestion pass: full master pull, session-gated
// realtime refresh of a code subset, and a sample daily-history pull. The
// master and history pulls run regardless of session state; only the
// realtime refresh is gated.
func runPipeline(cfg *config.Config, appLogger *logger.Logger, db interfaces.IDatabase, source interfaces.IQuoteSource, calendar *utils.TradingCalendar) {

	// 1. Full master pull (authoritative snapshot, full-column replace)
	master, err := source.FetchMasterList()
	if err != nil {
		appLogger.Warning("Master list pull failed: %v", err)
	} else {
		if err := db.UpsertMaster(master); err != nil {
			appLogger.Error("Master upsert failed: %v", err)
		} else {
			appLogger.Info("Master table updated: %d records", len(master))
		}
	}

	// 2. Pick codes to refresh
	codes := cfg.Market.RefreshCodes
	if len(codes) == 0 {
		codes, err = db.ListCodes(5)
		if err != nil {
			appLogger.Error("Failed to list codes: %v", err)
		}
	}

	// 3. Session-gated realtime refresh
	now := time.Now()
	inSession := utils.IsTradingTime(now, cfg.Market.UTCOffsetHours) && calendar.IsTradingDay(now)
	if inSession && len(codes) == 0 {
		// Empty master table on first run: refresh the sample code anyway.
		codes = []string{cfg.Market.SampleCode}
	}
	if inSession {
		refreshed := 0
		for _, code := range codes {
			quote, err := source.FetchRealtimeQuote(code)
			if err != nil {
				appLogger.Warning("Realtime fetch failed for %s: %v", code, err)
				continue
			}
			if err := db.RefreshRealtimeFields(quote.Code, quote); err != nil {
				appLogger.Error("Realtime refresh failed for %s: %v", quote.Code, err)
				continue
			}
			refreshed++
		}
		appLogger.Info("Trading session: refreshed %d/%d realtime quotes", refreshed, len(codes))
	} else if !inSession {
		appLogger.Info("Outside trading session, skipping realtime refresh")
	}

	// 4. Sample daily-history pull
	sample := cfg.Market.SampleCode
	if len(codes) > 0 {
		sample = codes[0]
	}
	history, err := source.FetchDailyHistory(sample, eastmoney.BegEarliest, eastmoney.EndLatest)
	if err != nil {
		appLogger.Warning("History pull failed for %s: %v", sample, err)
		return
	}
	if err := db.UpsertKline(sample, history); err != nil {
		appLogger.Error("Kline upsert failed for %s: %v", sample, err)
		return
	}
	appLogger.Info("Daily history stored for %s: %d candles", sample, len(history))
}
