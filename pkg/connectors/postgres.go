// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package connectors

import (
	"context"
	"fmt"
	"time"

	"github.com/go-gorm/caches/v4"
	"github.com/rapidaai/meetcap/pkg/commons"
	"github.com/rapidaai/meetcap/pkg/configs"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gorm_logger "gorm.io/gorm/logger"
)

type Connector interface {
	Name() string
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	IsConnected(ctx context.Context) bool
}

type PostgresConnector interface {
	Connector
	DB(ctx context.Context) *gorm.DB
}

type postgresConnector struct {
	cfg    *configs.PostgresConfig
	db     *gorm.DB
	logger commons.Logger
}

func NewPostgresConnector(config *configs.PostgresConfig, logger commons.Logger) PostgresConnector {
	return &postgresConnector{cfg: config, logger: logger}
}

// NewPostgresConnectorFromDB wraps an already opened gorm handle.
func NewPostgresConnectorFromDB(db *gorm.DB, logger commons.Logger) PostgresConnector {
	return &postgresConnector{db: db, logger: logger}
}

func (p *postgresConnector) Name() string {
	if p.cfg == nil {
		return "postgres"
	}
	return fmt.Sprintf("postgres://%s:%d/%s", p.cfg.Host, p.cfg.Port, p.cfg.DBName)
}

func (p *postgresConnector) Connect(ctx context.Context) error {
	if p.cfg == nil {
		return fmt.Errorf("postgres config is nil")
	}
	db, err := gorm.Open(postgres.Open(p.cfg.DSN()), &gorm.Config{
		Logger: gorm_logger.Default.LogMode(gorm_logger.Warn),
	})
	if err != nil {
		return fmt.Errorf("failed to open postgres connection: %w", err)
	}
	// concurrent identical reads share one round trip
	if err := db.Use(&caches.Caches{Conf: &caches.Config{Easer: true}}); err != nil {
		return fmt.Errorf("failed to register query caches plugin: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to access postgres pool: %w", err)
	}
	if p.cfg.MaxOpenConnection > 0 {
		sqlDB.SetMaxOpenConns(p.cfg.MaxOpenConnection)
	}
	if p.cfg.MaxIdealConnection > 0 {
		sqlDB.SetMaxIdleConns(p.cfg.MaxIdealConnection)
	}
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	p.db = db
	p.logger.Infof("connected to %s", p.Name())
	return nil
}

func (p *postgresConnector) Disconnect(ctx context.Context) error {
	if p.db == nil {
		return nil
	}
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	p.logger.Infof("disconnecting from %s", p.Name())
	return sqlDB.Close()
}

func (p *postgresConnector) IsConnected(ctx context.Context) bool {
	if p.db == nil {
		return false
	}
	sqlDB, err := p.db.DB()
	if err != nil {
		return false
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(pingCtx) == nil
}

func (p *postgresConnector) DB(ctx context.Context) *gorm.DB {
	return p.db.WithContext(ctx)
}
