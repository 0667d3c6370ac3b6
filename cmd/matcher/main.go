package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mkuzmina/exchange-batch/internal/adapter/cache"
	"github.com/mkuzmina/exchange-batch/internal/adapter/file"
	"github.com/mkuzmina/exchange-batch/internal/adapter/pg"
	"github.com/mkuzmina/exchange-batch/internal/config"
	"github.com/mkuzmina/exchange-batch/internal/core"
	"github.com/mkuzmina/exchange-batch/internal/logging"
	"github.com/mkuzmina/exchange-batch/internal/port"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		logrus.Fatalf("failed to build logger: %v", err)
	}

	store := file.NewStore(cfg.Paths.Input, cfg.Paths.Orderbook, cfg.Paths.Trades)

	var archive port.Archive
	if cfg.Postgres.DSN != "" {
		pgArchive, err := pg.NewPgArchive(ctx, cfg.Postgres.DSN)
		if err != nil {
			logger.Fatalf("failed to connect to Postgres: %v", err)
		}
		defer pgArchive.Close()
		archive = pgArchive
	}

	var bookCache port.Cache
	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(
			cfg.Redis.Addr,
			cfg.Redis.Password,
			cfg.Redis.DB,
			time.Duration(cfg.Cache.TTLSeconds)*time.Second,
		)
		defer redisCache.Close()
		bookCache = redisCache
	}

	svc := core.NewService(logger, archive, bookCache)
	logger.WithField("run_id", svc.RunID()).Infof("reading commands from %s", cfg.Paths.Input)

	cmds, err := store.LoadCommands(ctx)
	if err != nil {
		logger.Fatalf("failed to load commands: %v", err)
	}

	if err := svc.ProcessAll(ctx, cmds); err != nil {
		logger.Fatalf("run aborted: %v", err)
	}

	if err := store.WriteOrderBooks(ctx, svc.BookDocument()); err != nil {
		logger.Fatalf("failed to write order book document: %v", err)
	}
	if err := store.WriteTrades(ctx, svc.TradesDocument()); err != nil {
		logger.Fatalf("failed to write trades document: %v", err)
	}
	svc.Flush(ctx)

	for _, st := range svc.Stats() {
		fields := logrus.Fields{
			"pair":           st.Pair,
			"resting_orders": st.RestingOrders,
			"price_levels":   st.PriceLevels,
			"bid_volume":     st.BidVolume.Canonical(),
			"ask_volume":     st.AskVolume.Canonical(),
			"trades":         st.TradeCount,
			"traded_volume":  st.TradedVolume.Canonical(),
		}
		if st.HasVWAP {
			fields["vwap"] = st.VWAP.Canonical()
		}
		logger.WithFields(fields).Info("pair summary")
	}
	logger.Infof("processed %d commands", len(cmds))
}
