package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/helloworldpark/tickle-stock-info/cache"
	"github.com/helloworldpark/tickle-stock-info/config"
	"github.com/helloworldpark/tickle-stock-info/controller"
	"github.com/helloworldpark/tickle-stock-info/logger"
	"github.com/helloworldpark/tickle-stock-info/storage"
	"github.com/helloworldpark/tickle-stock-info/watcher"
	"github.com/helloworldpark/tickle-stock-info/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Panic("%v", err)
	}

	logger.Init(cfg.GCPProject, cfg.LogName)
	defer logger.Close()
	gin.SetMode(cfg.GinMode)

	ctx := context.Background()
	httpClient := &http.Client{Timeout: cfg.RequestTimeout}

	// Roster cache: Redis if configured, in-process otherwise
	var rosterCache cache.Cache = cache.NewMemory()
	if cfg.RedisAddr != "" {
		r := cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, "tickle-stock-info:")
		if err := r.Ping(ctx); err != nil {
			logger.Warn("[Main] Redis unavailable, using memory cache: %s", err.Error())
		} else {
			defer r.Close()
			rosterCache = r
		}
	}

	index := watcher.NewIndex(httpClient, cfg.ListingURL)
	itemChecker := watcher.NewStockItemChecker(index, rosterCache, cfg.RosterTTL)

	yahoo := watcher.NewYahooProvider(httpClient)
	naver := watcher.NewNaverProvider(httpClient, cfg.NaverURL, cfg.NaverMaxPages, cfg.NaverRate)
	providers := []watcher.HistoryProvider{yahoo, naver}
	if cfg.PriceProvider == naver.Name() {
		providers = []watcher.HistoryProvider{naver, yahoo}
	}

	var publisher controller.Publisher
	uploader, err := storage.NewUploader(ctx, cfg.Bucket)
	switch {
	case errors.Is(err, storage.ErrStorageDisabled):
		logger.Info("[Main] No bucket configured, publishing disabled")
	case err != nil:
		logger.Error("[Main] %s", err.Error())
	default:
		defer uploader.Close()
		publisher = uploader
	}

	general := controller.NewGeneral(itemChecker, publisher, providers...)
	general.UseHistoryCache(rosterCache, cfg.HistoryTTL)
	if err := general.Initialize(cfg.RosterRefreshHour); err != nil {
		logger.Panic("%v", err)
	}
	defer general.Close()

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: web.NewRouter(general),
	}
	go func() {
		logger.Info("[Main] Listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Panic("%v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("[Main] Shutdown: %s", err.Error())
	}
	logger.Info("[Main] Stopped")
}
