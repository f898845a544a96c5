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
	"time"

	internal_entity "github.com/rapidaai/meetcap/api/recorder-api/internal/entity"
	internal_type "github.com/rapidaai/meetcap/api/recorder-api/internal/type"
	"github.com/rapidaai/meetcap/pkg/commons"
	"github.com/rapidaai/meetcap/pkg/connectors"
	"gorm.io/gorm"
)

var (
	ErrMetadataCommitFailed = errors.New("metadata commit failed")
	ErrRecordingNotFound    = errors.New("recording not found")
)

// Store is the slice of the recordings table the live recorder touches.
type Store interface {
	// Update overwrites the audio columns of an existing row.
	// Returns ErrRecordingNotFound when no row has the id.
	Update(ctx context.Context, id string, fields internal_type.RecordingFields) error

	// Insert creates a row with a fresh id and returns it.
	Insert(ctx context.Context, fields internal_type.RecordingFields) (string, error)

	Get(ctx context.Context, id string) (*internal_entity.Recording, error)
}

type postgresStore struct {
	postgres connectors.PostgresConnector
	logger   commons.Logger
}

// NewStore creates a recording store backed by Postgres.
func NewStore(postgres connectors.PostgresConnector, logger commons.Logger) Store {
	return &postgresStore{
		postgres: postgres,
		logger:   logger,
	}
}

func (s *postgresStore) Update(ctx context.Context, id string, fields internal_type.RecordingFields) error {
	db := s.postgres.DB(ctx)
	result := db.Model(&internal_entity.Recording{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"duration":    fields.Duration,
			"file_size":   fields.FileSize,
			"sample_rate": fields.SampleRate,
			"channels":    fields.Channels,
			"format":      fields.Format,
			"source":      fields.Source,
			"updated_at":  time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update recording %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%s: %w", id, ErrRecordingNotFound)
	}

	s.logger.Debugf("updated recording: id=%s, duration=%d, fileSize=%d", id, fields.Duration, fields.FileSize)
	return nil
}

func (s *postgresStore) Insert(ctx context.Context, fields internal_type.RecordingFields) (string, error) {
	rec := &internal_entity.Recording{
		Duration:   fields.Duration,
		FileSize:   fields.FileSize,
		SampleRate: fields.SampleRate,
		Channels:   fields.Channels,
		Format:     fields.Format,
		Source:     fields.Source,
	}
	db := s.postgres.DB(ctx)
	if err := db.Create(rec).Error; err != nil {
		return "", fmt.Errorf("failed to insert recording: %w", err)
	}

	s.logger.Infof("inserted recording: id=%s, duration=%d, fileSize=%d, source=%s",
		rec.Id, rec.Duration, rec.FileSize, rec.Source)
	return rec.Id, nil
}

func (s *postgresStore) Get(ctx context.Context, id string) (*internal_entity.Recording, error) {
	db := s.postgres.DB(ctx)
	var rec internal_entity.Recording
	err := db.Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%s: %w", id, ErrRecordingNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recording %s: %w", id, err)
	}
	return &rec, nil
}
