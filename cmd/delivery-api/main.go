// README: Entry point; loads config and the model artifact, wires services, starts the HTTP server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"deliveryeta/internal/config"
	httptransport "deliveryeta/internal/http"
	"deliveryeta/internal/http/handlers"
	"deliveryeta/internal/infra"
	"deliveryeta/internal/maps"
	"deliveryeta/internal/modules/features"
	"deliveryeta/internal/modules/prediction"
	"deliveryeta/internal/modules/scoring"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := infra.NewLogger(cfg.Log.Level)
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("delivery-api stopped", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheme, err := features.LookupScheme(cfg.Model.BucketScheme)
	if err != nil {
		return err
	}
	pipeline, err := features.NewPipeline(scheme)
	if err != nil {
		return err
	}
	artifact, err := scoring.LoadFile(cfg.Model.Path)
	if err != nil {
		return err
	}
	if err := artifact.CheckScheme(scheme); err != nil {
		return err
	}
	scorer := scoring.NewService(artifact)
	log.Info("model loaded",
		zap.String("name", artifact.Name),
		zap.String("version", artifact.Version),
		zap.String("stage", artifact.Stage),
		zap.String("bucket_scheme", scheme.Version),
	)

	var cache prediction.Cache
	if cfg.Redis.Addr != "" {
		redisClient := infra.NewRedis(cfg.Redis.Addr)
		defer redisClient.Close()
		cache = prediction.NewRedisCache(redisClient, cfg.Redis.CacheTTL)
	} else {
		log.Info("DELIVERY_REDIS_ADDR not set; prediction cache disabled")
	}

	var store prediction.Store
	if cfg.DB.DSN != "" {
		dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			return err
		}
		defer dbPool.Close()
		store = prediction.NewPGStore(dbPool)
	} else {
		log.Info("DELIVERY_DB_DSN not set; prediction audit log disabled")
	}

	var places handlers.RestaurantFinder
	if cfg.Maps.APIKey != "" {
		svc, err := maps.NewPlacesService(cfg.Maps.APIKey)
		if err != nil {
			return err
		}
		places = svc
	}

	predictionSvc := prediction.NewService(pipeline, scorer, cache, store, log.Named("prediction"))

	server := httptransport.NewServer(httptransport.ServerDeps{
		Prediction:     predictionSvc,
		Places:         places,
		Logger:         log.Named("http"),
		RequestTimeout: cfg.HTTP.RequestTimeout,
	}).HTTPServer(cfg.HTTP.Addr)

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.HTTP.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
