// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_notifier

import (
	"context"
	"encoding/json"
	"fmt"

	internal_type "github.com/rapidaai/meetcap/api/recorder-api/internal/type"
	"github.com/rapidaai/meetcap/pkg/commons"
	"github.com/rapidaai/meetcap/pkg/connectors"
)

type redisNotifier struct {
	redis   connectors.RedisConnector
	channel string
	logger  commons.Logger
}

// NewRedisNotifier publishes saved-recording events on a pub/sub channel
// that transcription workers subscribe to.
func NewRedisNotifier(redis connectors.RedisConnector, channel string, logger commons.Logger) internal_type.Notifier {
	return &redisNotifier{redis: redis, channel: channel, logger: logger}
}

func (n *redisNotifier) Name() string { return "redis:" + n.channel }

func (n *redisNotifier) Notify(ctx context.Context, event internal_type.RecordingSavedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal recording event: %w", err)
	}
	receivers, err := n.redis.GetConnection().Publish(ctx, n.channel, payload).Result()
	if err != nil {
		return fmt.Errorf("failed to publish recording %s on %s: %w", event.RecordingID, n.channel, err)
	}
	n.logger.Debugf("published recording %s on %s to %d receivers", event.RecordingID, n.channel, receivers)
	return nil
}
