// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_ingest

import (
	"context"

	internal_session "github.com/rapidaai/meetcap/api/recorder-api/internal/session"
	internal_type "github.com/rapidaai/meetcap/api/recorder-api/internal/type"
	"github.com/rapidaai/meetcap/pkg/commons"
)

// Finalizer runs the one-time close of a session. Implementations must be
// idempotent per session.
type Finalizer interface {
	Finalize(ctx context.Context, s *internal_session.Session)
}

// Handler applies inbound messages to a session. Messages for one session
// are expected to arrive from a single reader goroutine, in order.
type Handler struct {
	registry  *internal_session.Registry
	finalizer Finalizer
	logger    commons.Logger
}

func NewHandler(registry *internal_session.Registry, finalizer Finalizer, logger commons.Logger) *Handler {
	return &Handler{registry: registry, finalizer: finalizer, logger: logger}
}

// Open registers a new session on ch.
func (h *Handler) Open(ch internal_type.Channel, boundID string) *internal_session.Session {
	return h.registry.Open(ch, boundID)
}

// HandleMessage classifies and applies one inbound message. Each accepted
// audio frame is acknowledged before HandleMessage returns.
func (h *Handler) HandleMessage(ctx context.Context, s *internal_session.Session, textual bool, payload []byte) {
	frame := Classify(textual, payload)
	switch frame.Kind {
	case FrameControl:
		h.handleControl(ctx, s, frame)
	case FrameAudio:
		h.handleAudio(s, frame.Data)
	}
}

func (h *Handler) handleControl(ctx context.Context, s *internal_session.Session, frame Frame) {
	if !frame.Recognized {
		h.logger.Debugw("ignoring unrecognized control message", "sessionId", s.ID(), "type", frame.Control.Type)
		return
	}
	switch frame.Control.Type {
	case internal_type.MessageStop:
		h.logger.Infow("stop requested", "sessionId", s.ID(), "chunks", s.ChunkCount())
		h.finalizer.Finalize(ctx, s)
	}
}

func (h *Handler) handleAudio(s *internal_session.Session, data []byte) {
	if len(data) == 0 {
		return
	}
	total, ok := s.Append(data)
	if !ok {
		h.logger.Debugw("discarding frame after finalize", "sessionId", s.ID(), "state", s.State().String(), "size", len(data))
		return
	}
	if err := s.Channel().Send(internal_type.NewChunkReceivedMessage(len(data), total)); err != nil {
		h.logger.Warnw("failed to acknowledge frame", "sessionId", s.ID(), "error", err.Error())
	}
}

// HandleClose is called once the connection is gone, for any reason.
func (h *Handler) HandleClose(ctx context.Context, s *internal_session.Session) {
	h.logger.Infow("connection closed", "sessionId", s.ID(), "state", s.State().String())
	h.finalizer.Finalize(ctx, s)
}
