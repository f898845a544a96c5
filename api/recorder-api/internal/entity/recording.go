// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Recording is the metadata row for one stored capture. The live recorder
// writes the audio columns; titles, notes and transcripts belong to other
// services sharing the table.
//
// CREATE TABLE recordings (
//     id VARCHAR(36) PRIMARY KEY,
//     duration BIGINT NOT NULL DEFAULT 0,
//     file_size BIGINT NOT NULL DEFAULT 0,
//     sample_rate INTEGER NOT NULL DEFAULT 0,
//     channels SMALLINT NOT NULL DEFAULT 0,
//     format VARCHAR(20) NOT NULL DEFAULT '',
//     source VARCHAR(20) NOT NULL DEFAULT '',
//     created_at TIMESTAMP NOT NULL DEFAULT NOW(),
//     updated_at TIMESTAMP
// );
type Recording struct {
	Id         string    `json:"id" gorm:"column:id;type:varchar(36);primaryKey;<-:create"`
	Duration   uint64    `json:"duration" gorm:"column:duration;type:bigint;not null;default:0"`
	FileSize   uint64    `json:"fileSize" gorm:"column:file_size;type:bigint;not null;default:0"`
	SampleRate uint32    `json:"sampleRate" gorm:"column:sample_rate;type:integer;not null;default:0"`
	Channels   uint16    `json:"channels" gorm:"column:channels;type:smallint;not null;default:0"`
	Format     string    `json:"format" gorm:"column:format;type:varchar(20);not null;default:''"`
	Source     string    `json:"source" gorm:"column:source;type:varchar(20);not null;default:''"`
	CreatedAt  time.Time `json:"createdAt" gorm:"column:created_at;type:timestamp;not null;<-:create"`
	UpdatedAt  time.Time `json:"updatedAt" gorm:"column:updated_at;type:timestamp;default:null"`
}

func (Recording) TableName() string {
	return "recordings"
}

func (r *Recording) BeforeCreate(tx *gorm.DB) (err error) {
	if r.Id == "" {
		r.Id = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	return nil
}
