// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	internal_crypto "github.com/rapidaai/meetcap/api/recorder-api/internal/crypto"
	internal_finalizer "github.com/rapidaai/meetcap/api/recorder-api/internal/finalizer"
	internal_ingest "github.com/rapidaai/meetcap/api/recorder-api/internal/ingest"
	internal_metadata "github.com/rapidaai/meetcap/api/recorder-api/internal/metadata"
	internal_notifier "github.com/rapidaai/meetcap/api/recorder-api/internal/notifier"
	internal_placement "github.com/rapidaai/meetcap/api/recorder-api/internal/placement"
	internal_session "github.com/rapidaai/meetcap/api/recorder-api/internal/session"
	recorder_migrations "github.com/rapidaai/meetcap/api/recorder-api/migrations"
	recorder_routers "github.com/rapidaai/meetcap/api/recorder-api/router"
	"github.com/rapidaai/meetcap/config"
	"github.com/rapidaai/meetcap/pkg/commons"
	"github.com/rapidaai/meetcap/pkg/connectors"
	"github.com/rapidaai/meetcap/pkg/storages"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatalf("recorder-api stopped: %v", err)
	}
}

func run(ctx context.Context) error {
	vConfig, err := config.InitConfig()
	if err != nil {
		return fmt.Errorf("unable to load config: %w", err)
	}
	cfg, err := config.GetApplicationConfig(vConfig)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := commons.NewApplicationLogger(
		commons.Name(cfg.Name),
		commons.Path(cfg.LogPath),
		commons.Level(cfg.LogLevel),
	)
	if err != nil {
		return fmt.Errorf("unable to init logger: %w", err)
	}
	defer logger.Sync()

	postgres := connectors.NewPostgresConnector(&cfg.PostgresConfig, logger)
	if err := postgres.Connect(ctx); err != nil {
		return err
	}
	defer postgres.Disconnect(context.Background())

	if cfg.MigrateOnStart {
		if err := recorder_migrations.Up(cfg.PostgresConfig.URL(), logger); err != nil {
			return err
		}
	}

	var redis connectors.RedisConnector
	readinessChecks := []connectors.Connector{}
	if cfg.NotifierConfig.Type == config.NotifierRedis {
		redis = connectors.NewRedisConnector(&cfg.RedisConfig, logger)
		if err := redis.Connect(ctx); err != nil {
			return err
		}
		defer redis.Disconnect(context.Background())
		readinessChecks = append(readinessChecks, redis)
	}

	storage, err := storages.NewStorage(ctx, &cfg.AssetStoreConfig, logger)
	if err != nil {
		return err
	}
	codec, err := newCodec(cfg.AudioEncryptionKey, logger)
	if err != nil {
		return err
	}
	logger.Infof("recording store %s ready", storage.Name())
	placement := internal_placement.NewPlacement(codec, storage, logger)

	notifier, err := internal_notifier.NewNotifier(&cfg.NotifierConfig, redis, logger)
	if err != nil {
		return err
	}

	registry := internal_session.NewRegistry(logger)
	finalizer := internal_finalizer.NewFinalizer(
		registry,
		internal_metadata.NewCommitter(internal_metadata.NewStore(postgres, logger), logger),
		placement,
		logger,
		internal_finalizer.WithNotifier(notifier),
	)
	handler := internal_ingest.NewHandler(registry, finalizer, logger)

	if cfg.Environment().IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery(), recorder_routers.Cors(cfg))
	recorder_routers.HealthCheckRoutes(cfg, engine, logger, postgres, readinessChecks...)
	recorder_routers.LiveRecorderRoutes(cfg, engine, logger, handler, placement)

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: engine,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("%s %s listening on %s", cfg.Name, cfg.Version, server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		logger.Infof("shutting down, draining %d live sessions", registry.Len())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := server.Shutdown(shutdownCtx)
		// hijacked websocket connections are not tracked by Shutdown
		finalizer.Drain(shutdownCtx)
		return err
	})
	return g.Wait()
}

// newCodec resolves the audio encryption key up front. A malformed key stops
// the process instead of failing every recording later.
func newCodec(key string, logger commons.Logger) (*internal_crypto.Codec, error) {
	codec := internal_crypto.NewStaticCodec(logger, key)
	enabled, err := codec.Enabled()
	if err != nil {
		return nil, fmt.Errorf("invalid AUDIO_ENCRYPTION_KEY: %w", err)
	}
	logger.Infof("audio encryption enabled=%t", enabled)
	return codec, nil
}
