package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lexicon/internal/cache"
	"lexicon/internal/config"
	"lexicon/internal/db"
	"lexicon/internal/handler"
	transport "lexicon/internal/http"
	"lexicon/internal/logger"
	"lexicon/internal/repository"
	"lexicon/internal/service"
	"lexicon/internal/snowflake"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.ParseLevel(cfg.LogLevel))

	if err := snowflake.Init(cfg.NodeID); err != nil {
		log.Fatalf("init snowflake node: %v", err)
	}

	dbConn, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer dbConn.Close()

	var store cache.Store
	if cfg.RedisURL != "" {
		redisStore, err := cache.NewRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("connect redis: %v", err)
		}
		defer redisStore.Close()
		store = redisStore
		logger.Info("using redis cache store", "module", "main")
	} else {
		store = cache.NewMemory()
		logger.Info("using in-memory cache store", "module", "main")
	}

	translationRepo := repository.NewTranslationRepository(dbConn)
	tagRepo := repository.NewTagRepository(dbConn)

	exportService := service.NewExportService(translationRepo, tagRepo, store, cfg.ExportTTL)
	translationService := service.NewTranslationService(dbConn, translationRepo, tagRepo, exportService)

	translationHandler := handler.NewTranslationHandler(translationService)
	exportHandler := handler.NewExportHandler(exportService)

	router := transport.NewRouter(translationHandler, exportHandler, dbConn, cfg.RateLimit)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down", "module", "main")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := router.Shutdown(ctx); err != nil {
			logger.Error("shutdown failed", "module", "main", "error", err)
		}
	}()

	if err := router.Start(cfg.Addr); err != nil {
		logger.Info("server stopped", "module", "main", "error", err)
	}
}
