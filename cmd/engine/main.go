package main

import (
	"context"

	"chartengine/config"
	"chartengine/internal/chart/engine"
	"chartengine/internal/chart/httpapi"
	"chartengine/internal/chart/publish"
	"chartengine/internal/chart/scheduler"
	"chartengine/internal/chart/store"
	"chartengine/internal/chart/stream"
	"chartengine/logger"
	"chartengine/pkg/feed"
	"chartengine/pkg/storage/postgres"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	// viper config
	cfg := config.Load()

	// zap logger
	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("engine failed", zap.Error(err))
	}

	select {}
}

// run wires the candle engine pipeline: trade history store, update
// publisher, bootstrap, timeframe schedulers, the tick feed, and the query API.
func run(cfg *config.Config, log *zap.Logger) error {
	ctx := context.Background()

	// Durable trade log
	tradeStore, err := postgres.InitializeAndMigrateTradeRecord(cfg.Postgres, cfg.Log.Environment, true)
	if err != nil {
		return err
	}

	// Chart update fan-out
	publisher, err := publish.New(cfg.AMQP, log)
	if err != nil {
		return err
	}

	symbolStore := store.New(store.Options{
		SeriesRetention:   cfg.Chart.SeriesRetention,
		RawTradeRetention: cfg.Chart.RawTradeRetention,
		DefaultPrice:      decimal.NewFromFloat(cfg.Chart.DefaultPrice),
	})

	eng := engine.New(symbolStore, publisher, tradeStore, log)

	// Schedulers no-op until bootstrap marks the engine ready, so they can
	// start before the history replay finishes.
	scheduler.New(eng, log).Start(ctx)

	eng.Bootstrap(ctx, cfg.Feed.Symbols)

	// Query surface
	router := httpapi.NewRouter(eng, log)
	go func() {
		if err := router.Run(cfg.HTTP.Addr); err != nil {
			log.Error("http server stopped", zap.Error(err))
		}
	}()

	// Subscribe to trade streams for every known symbol
	topics := make([]string, 0, symbolStore.Count())
	for _, symbol := range symbolStore.Symbols() {
		topics = append(topics, feed.TradeTopic(symbol))
	}

	feedClient := feed.NewClient(cfg.Feed.URL, log)
	feedClient.SetMessageHandler(stream.MakeMessageHandler(log, eng, tradeStore))
	if err := feedClient.Connect(topics); err != nil {
		return err
	}
	go feedClient.Listen()

	log.Info("candle engine started",
		zap.Int("symbols", symbolStore.Count()),
		zap.String("http", cfg.HTTP.Addr))
	return nil
}
