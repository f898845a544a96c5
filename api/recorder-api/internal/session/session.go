// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_session

import (
	"sync"
	"sync/atomic"
	"time"

	internal_type "github.com/rapidaai/meetcap/api/recorder-api/internal/type"
)

type State int32

const (
	StateOpen State = iota
	StateFinalizing
	StateClosed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateFinalizing:
		return "finalizing"
	case StateClosed:
		return "closed"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Session is one live capture attempt. The chunk buffer is append-only and
// only grows while the session is Open; the Open -> Finalizing transition is
// a compare-and-swap so that exactly one stop trigger wins.
type Session struct {
	id        string
	boundID   string
	startedAt time.Time
	channel   internal_type.Channel

	state atomic.Int32

	mu     sync.Mutex
	chunks [][]byte
	size   int
}

func newSession(id, boundID string, startedAt time.Time, ch internal_type.Channel) *Session {
	return &Session{
		id:        id,
		boundID:   boundID,
		startedAt: startedAt,
		channel:   ch,
	}
}

func (s *Session) ID() string { return s.id }

// BoundID is the pre-existing recording id supplied at connect, or "".
func (s *Session) BoundID() string { return s.boundID }

// EffectiveID is the identifier announced to the client in the ready message.
func (s *Session) EffectiveID() string {
	if s.boundID != "" {
		return s.boundID
	}
	return s.id
}

func (s *Session) StartedAt() time.Time { return s.startedAt }

func (s *Session) Channel() internal_type.Channel { return s.channel }

func (s *Session) State() State { return State(s.state.Load()) }

// Append stores a copy of frame and returns the cumulative frame count.
// ok is false, and nothing is stored, once the session has left Open.
func (s *Session) Append(frame []byte) (total int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if State(s.state.Load()) != StateOpen {
		return len(s.chunks), false
	}
	// Copy to avoid caller mutations.
	buf := make([]byte, len(frame))
	copy(buf, frame)
	s.chunks = append(s.chunks, buf)
	s.size += len(buf)
	return len(s.chunks), true
}

// BeginFinalize moves Open -> Finalizing. Only the first caller gets true.
func (s *Session) BeginFinalize() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.CompareAndSwap(int32(StateOpen), int32(StateFinalizing))
}

// Complete records the terminal state of a finalizing session.
func (s *Session) Complete(failed bool) {
	next := StateClosed
	if failed {
		next = StateFailed
	}
	s.state.CompareAndSwap(int32(StateFinalizing), int32(next))
}

// ChunkCount returns the number of accepted frames.
func (s *Session) ChunkCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.chunks)
}

// Bytes concatenates the buffer in append order.
func (s *Session) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]byte, 0, s.size)
	for _, c := range s.chunks {
		out = append(out, c...)
	}
	return out
}
