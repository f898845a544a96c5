// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	internal_type "github.com/rapidaai/meetcap/api/recorder-api/internal/type"
	"github.com/rapidaai/meetcap/pkg/commons"
)

type webhookNotifier struct {
	client *resty.Client
	url    string
	logger commons.Logger
}

func NewWebhookNotifier(url string, timeout time.Duration, logger commons.Logger) internal_type.Notifier {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond).
		SetHeader("Content-Type", "application/json")
	return &webhookNotifier{client: client, url: url, logger: logger}
}

func (n *webhookNotifier) Name() string { return "webhook:" + n.url }

func (n *webhookNotifier) Notify(ctx context.Context, event internal_type.RecordingSavedEvent) error {
	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(event).
		Post(n.url)
	if err != nil {
		return fmt.Errorf("failed to post recording %s: %w", event.RecordingID, err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook rejected recording %s: status %d", event.RecordingID, resp.StatusCode())
	}
	n.logger.Debugf("webhook accepted recording %s with status %d", event.RecordingID, resp.StatusCode())
	return nil
}
