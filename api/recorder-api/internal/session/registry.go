// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	internal_type "github.com/rapidaai/meetcap/api/recorder-api/internal/type"
	"github.com/rapidaai/meetcap/pkg/commons"
	"github.com/rapidaai/meetcap/pkg/utils"
)

var ErrSessionNotFound = errors.New("session not found")

// Registry maps session ids to in-flight sessions. Connections are served on
// their own goroutines, so every map access goes through mu.
type Registry struct {
	logger commons.Logger

	mu       sync.RWMutex
	sessions map[string]*Session

	// clock and newID are injectable for testing.
	clock func() time.Time
	newID func() string
}

func NewRegistry(logger commons.Logger) *Registry {
	return &Registry{
		logger:   logger,
		sessions: make(map[string]*Session),
		clock:    time.Now,
		newID:    uuid.NewString,
	}
}

// Open mints a session for ch and announces its effective id with a ready
// message. A blank or malformed boundID is treated as absent.
func (r *Registry) Open(ch internal_type.Channel, boundID string) *Session {
	if utils.IsEmpty(boundID) {
		boundID = ""
	} else {
		if _, err := uuid.Parse(boundID); err != nil {
			r.logger.Warnw("ignoring malformed bound recording id", "recordingId", boundID, "error", err.Error())
			boundID = ""
		}
	}

	s := newSession(r.newID(), boundID, r.clock(), ch)
	r.mu.Lock()
	r.sessions[s.id] = s
	r.mu.Unlock()

	r.logger.Infow("live session opened", "sessionId", s.id, "recordingId", s.EffectiveID())
	if err := ch.Send(internal_type.NewReadyMessage(s.EffectiveID())); err != nil {
		r.logger.Warnw("failed to send ready message", "sessionId", s.id, "error", err.Error())
	}
	return s
}

func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrSessionNotFound)
	}
	return s, nil
}

// Close evicts the session and returns it.
func (r *Registry) Close(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrSessionNotFound)
	}
	delete(r.sessions, id)
	return s, nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// OpenSessions returns the sessions still accepting frames.
func (r *Registry) OpenSessions() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		if s.State() == StateOpen {
			out = append(out, s)
		}
	}
	return out
}
