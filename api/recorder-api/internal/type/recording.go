// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_type

import (
	"context"
	"time"
)

const SourceLive = "live"

// RecordingFields are the metadata columns the live pipeline writes.
type RecordingFields struct {
	Duration   uint64
	FileSize   uint64
	SampleRate uint32
	Channels   uint16
	Format     string
	Source     string
}

// MetadataCommitter records a finished capture and returns the identifier
// the bytes must be stored under.
type MetadataCommitter interface {
	Commit(ctx context.Context, boundID string, fields RecordingFields) (string, error)
}

// RecordingPlacer durably writes encoded container bytes for a recording.
// Ready reports whether a write could succeed under the current
// configuration; it is checked before any metadata is committed.
type RecordingPlacer interface {
	Ready() error
	Write(ctx context.Context, recordingID, ext string, data []byte) (string, error)
}

// RecordingSavedEvent is handed to downstream collaborators (transcription,
// diarization) once a recording is durably stored.
type RecordingSavedEvent struct {
	RecordingID string    `json:"recordingId"`
	ObjectKey   string    `json:"objectKey"`
	Duration    uint64    `json:"duration"`
	FileSize    uint64    `json:"fileSize"`
	SampleRate  uint32    `json:"sampleRate"`
	Channels    uint16    `json:"channels"`
	Format      string    `json:"format"`
	Source      string    `json:"source"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Notifier interface {
	Name() string
	Notify(ctx context.Context, event RecordingSavedEvent) error
}
