// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_metadata

import (
	"context"
	"errors"
	"fmt"

	internal_type "github.com/rapidaai/meetcap/api/recorder-api/internal/type"
	"github.com/rapidaai/meetcap/pkg/commons"
)

type committer struct {
	store  Store
	logger commons.Logger
}

func NewCommitter(store Store, logger commons.Logger) internal_type.MetadataCommitter {
	return &committer{store: store, logger: logger}
}

// Commit updates the bound recording when it exists and otherwise inserts a
// new one. The returned id is the one the audio must be stored under.
// Every failure wraps ErrMetadataCommitFailed.
func (c *committer) Commit(ctx context.Context, boundID string, fields internal_type.RecordingFields) (string, error) {
	if boundID != "" {
		err := c.store.Update(ctx, boundID, fields)
		if err == nil {
			return boundID, nil
		}
		if !errors.Is(err, ErrRecordingNotFound) {
			return "", fmt.Errorf("%w: %v", ErrMetadataCommitFailed, err)
		}
		c.logger.Warnf("bound recording %s not found, inserting a new one", boundID)
	}

	id, err := c.store.Insert(ctx, fields)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMetadataCommitFailed, err)
	}
	return id, nil
}
