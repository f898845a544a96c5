// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_finalizer

import (
	"context"
	"fmt"
	"time"

	internal_audio "github.com/rapidaai/meetcap/api/recorder-api/internal/audio"
	internal_session "github.com/rapidaai/meetcap/api/recorder-api/internal/session"
	internal_type "github.com/rapidaai/meetcap/api/recorder-api/internal/type"
	"github.com/rapidaai/meetcap/pkg/commons"
	"github.com/rapidaai/meetcap/pkg/utils"
)

const (
	errMessageMetadata = "Failed to save recording metadata"
	errMessageStorage  = "Failed to store recording"

	notifyTimeout = 30 * time.Second
)

// DownloadURL is the client-facing path of a stored recording.
func DownloadURL(recordingID string) string {
	return fmt.Sprintf("/v1/recordings/%s/download", recordingID)
}

type Option func(*Finalizer)

func WithClock(clock func() time.Time) Option {
	return func(f *Finalizer) { f.clock = clock }
}

func WithNotifier(n internal_type.Notifier) Option {
	return func(f *Finalizer) { f.notifier = n }
}

func WithAudioConfig(cfg internal_audio.AudioConfig) Option {
	return func(f *Finalizer) { f.audio = cfg }
}

// Finalizer turns a stopped session into a persisted recording: WAV
// encoding, metadata commit, storage write and the client reply.
type Finalizer struct {
	registry  *internal_session.Registry
	committer internal_type.MetadataCommitter
	placer    internal_type.RecordingPlacer
	notifier  internal_type.Notifier
	logger    commons.Logger
	audio     internal_audio.AudioConfig
	clock     func() time.Time
}

func NewFinalizer(
	registry *internal_session.Registry,
	committer internal_type.MetadataCommitter,
	placer internal_type.RecordingPlacer,
	logger commons.Logger,
	opts ...Option,
) *Finalizer {
	f := &Finalizer{
		registry:  registry,
		committer: committer,
		placer:    placer,
		logger:    logger,
		audio:     internal_audio.LIVE_RECORDER_AUDIO_CONFIG,
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Finalize runs at most once per session no matter how many triggers fire.
// Later callers return immediately. Persistence is not cancelled when ctx is,
// since the client may already be gone by the time we get here.
func (f *Finalizer) Finalize(ctx context.Context, s *internal_session.Session) {
	if !s.BeginFinalize() {
		return
	}
	start := time.Now()
	ctx = context.WithoutCancel(ctx)
	defer func() {
		if _, err := f.registry.Close(s.ID()); err != nil {
			f.logger.Debugw("session already evicted", "sessionId", s.ID(), "error", err.Error())
		}
		f.logger.Benchmark("Finalizer.Finalize", time.Since(start))
	}()

	chunks := s.ChunkCount()
	if chunks == 0 {
		f.logger.Infow("closing empty session without persisting", "sessionId", s.ID())
		s.Complete(false)
		return
	}

	wav := internal_audio.EncodeWAV(s.Bytes(), f.audio)
	duration := f.clock().Sub(s.StartedAt())
	if duration < 0 {
		duration = 0
	}
	fields := internal_type.RecordingFields{
		Duration:   uint64(duration / time.Second),
		FileSize:   uint64(len(wav)),
		SampleRate: f.audio.SampleRate,
		Channels:   f.audio.Channels,
		Format:     internal_audio.FormatWAV,
		Source:     internal_type.SourceLive,
	}

	// a write that cannot succeed must not leave a metadata row behind
	if err := f.placer.Ready(); err != nil {
		f.fail(s, errMessageStorage, err)
		return
	}
	recordingID, err := f.committer.Commit(ctx, s.BoundID(), fields)
	if err != nil {
		f.fail(s, errMessageMetadata, err)
		return
	}
	objectKey, err := f.placer.Write(ctx, recordingID, internal_audio.FormatWAV, wav)
	if err != nil {
		f.fail(s, errMessageStorage, err)
		return
	}

	saved := internal_type.RecordingSavedMessage{
		Type:        internal_type.MessageRecordingSaved,
		RecordingID: recordingID,
		DownloadURL: DownloadURL(recordingID),
		Duration:    int(fields.Duration),
		ChunksCount: chunks,
		FileSize:    len(wav),
	}
	if err := s.Channel().Send(saved); err != nil {
		f.logger.Warnw("recording stored but client could not be told", "sessionId", s.ID(), "recordingId", recordingID, "error", err.Error())
		s.Complete(true)
		return
	}
	s.Complete(false)
	f.logger.Infow("recording saved",
		"sessionId", s.ID(),
		"recordingId", recordingID,
		"objectKey", objectKey,
		"chunks", chunks,
		"fileSize", len(wav),
		"duration", fields.Duration)

	f.notify(internal_type.RecordingSavedEvent{
		RecordingID: recordingID,
		ObjectKey:   objectKey,
		Duration:    fields.Duration,
		FileSize:    fields.FileSize,
		SampleRate:  fields.SampleRate,
		Channels:    fields.Channels,
		Format:      fields.Format,
		Source:      fields.Source,
		CreatedAt:   f.clock().UTC(),
	})
}

func (f *Finalizer) fail(s *internal_session.Session, message string, err error) {
	f.logger.Errorw("failed to finalize session", "sessionId", s.ID(), "boundId", s.BoundID(), "error", err.Error())
	if sendErr := s.Channel().Send(internal_type.NewErrorMessage(message)); sendErr != nil {
		f.logger.Warnw("failed to send error message", "sessionId", s.ID(), "error", sendErr.Error())
	}
	s.Complete(true)
}

// notify hands the event to downstream consumers without blocking the
// session. Failures are logged only.
func (f *Finalizer) notify(event internal_type.RecordingSavedEvent) {
	if f.notifier == nil {
		return
	}
	utils.Go(context.Background(), func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := f.notifier.Notify(ctx, event); err != nil {
			f.logger.Warnw("failed to notify recording saved", "notifier", f.notifier.Name(), "recordingId", event.RecordingID, "error", err.Error())
		}
	})
}

// Drain finalizes every session still open, used on shutdown.
func (f *Finalizer) Drain(ctx context.Context) int {
	sessions := f.registry.OpenSessions()
	for _, s := range sessions {
		f.Finalize(ctx, s)
	}
	if len(sessions) > 0 {
		f.logger.Infow("drained open sessions", "count", len(sessions))
	}
	return len(sessions)
}
