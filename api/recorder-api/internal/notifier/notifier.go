// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_notifier

import (
	"context"
	"fmt"

	internal_type "github.com/rapidaai/meetcap/api/recorder-api/internal/type"
	"github.com/rapidaai/meetcap/config"
	"github.com/rapidaai/meetcap/pkg/commons"
	"github.com/rapidaai/meetcap/pkg/connectors"
)

// NewNotifier selects the notifier for cfg. redis is only consulted for the
// redis type and must already be connected.
func NewNotifier(cfg *config.NotifierConfig, redis connectors.RedisConnector, logger commons.Logger) (internal_type.Notifier, error) {
	switch cfg.Type {
	case "", config.NotifierNone:
		return NewNoopNotifier(), nil
	case config.NotifierRedis:
		if redis == nil {
			return nil, fmt.Errorf("redis notifier requires a redis connection")
		}
		return NewRedisNotifier(redis, cfg.Channel, logger), nil
	case config.NotifierWebhook:
		return NewWebhookNotifier(cfg.WebhookUrl, cfg.Timeout, logger), nil
	}
	return nil, fmt.Errorf("unsupported notifier type %q", cfg.Type)
}

type noopNotifier struct{}

// NewNoopNotifier is used when no downstream collaborator is configured.
func NewNoopNotifier() internal_type.Notifier {
	return noopNotifier{}
}

func (noopNotifier) Name() string { return "none" }

func (noopNotifier) Notify(context.Context, internal_type.RecordingSavedEvent) error { return nil }
