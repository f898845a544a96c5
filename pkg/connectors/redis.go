// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package connectors

import (
	"context"
	"fmt"

	"github.com/rapidaai/meetcap/pkg/commons"
	"github.com/rapidaai/meetcap/pkg/configs"
	"github.com/redis/go-redis/v9"
)

type RedisConnector interface {
	Connector
	GetConnection() *redis.Client
}

type redisConnector struct {
	cfg    *configs.RedisConfig
	client *redis.Client
	logger commons.Logger
}

func NewRedisConnector(config *configs.RedisConfig, logger commons.Logger) RedisConnector {
	return &redisConnector{cfg: config, logger: logger}
}

// NewRedisConnectorFromClient wraps an existing client, e.g. a redismock client.
func NewRedisConnectorFromClient(client *redis.Client, logger commons.Logger) RedisConnector {
	return &redisConnector{client: client, logger: logger}
}

func (r *redisConnector) Name() string {
	if r.cfg == nil {
		return "redis"
	}
	return fmt.Sprintf("redis://%s/%d", r.cfg.Addr(), r.cfg.DB)
}

func (r *redisConnector) Connect(ctx context.Context) error {
	if r.cfg == nil {
		return fmt.Errorf("redis config is nil")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     r.cfg.Addr(),
		Password: r.cfg.Password,
		DB:       r.cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping %s: %w", r.Name(), err)
	}
	r.client = client
	r.logger.Infof("connected to %s", r.Name())
	return nil
}

func (r *redisConnector) Disconnect(ctx context.Context) error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}

func (r *redisConnector) IsConnected(ctx context.Context) bool {
	return r.client != nil && r.client.Ping(ctx).Err() == nil
}

func (r *redisConnector) GetConnection() *redis.Client {
	return r.client
}
