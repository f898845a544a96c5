// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_session

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	internal_type "github.com/rapidaai/meetcap/api/recorder-api/internal/type"
	"github.com/rapidaai/meetcap/pkg/commons"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureChannel struct {
	mu   sync.Mutex
	msgs []internal_type.Message
	err  error
}

func (c *captureChannel) Send(msg internal_type.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, msg)
	return c.err
}

func (c *captureChannel) messages() []internal_type.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]internal_type.Message(nil), c.msgs...)
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	logger, err := commons.NewApplicationLogger(commons.Name("test-registry"), commons.Level("debug"))
	require.NoError(t, err)
	r := NewRegistry(logger)
	var n atomic.Int64
	r.newID = func() string { return "sess-" + string(rune('a'+n.Add(1)-1)) }
	r.clock = func() time.Time { return time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC) }
	return r
}

func TestOpen_UnboundAnnouncesSessionToken(t *testing.T) {
	r := newTestRegistry(t)
	ch := &captureChannel{}

	s := r.Open(ch, "")

	assert.Equal(t, "sess-a", s.ID())
	assert.Equal(t, "", s.BoundID())
	assert.Equal(t, StateOpen, s.State())
	assert.Equal(t, time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC), s.StartedAt())

	msgs := ch.messages()
	require.Len(t, msgs, 1)
	ready, ok := msgs[0].(internal_type.ReadyMessage)
	require.True(t, ok)
	assert.Equal(t, internal_type.MessageReady, ready.Type)
	assert.Equal(t, "sess-a", ready.RecordingID)
	assert.NotEmpty(t, ready.Message)
}

func TestOpen_BoundIdIsAnnounced(t *testing.T) {
	r := newTestRegistry(t)
	ch := &captureChannel{}
	bound := "0b6f4a52-5f4e-4c11-9d0a-1b9a3f0d2c77"

	s := r.Open(ch, bound)

	assert.Equal(t, bound, s.BoundID())
	assert.Equal(t, bound, s.EffectiveID())
	assert.Equal(t, bound, ch.messages()[0].(internal_type.ReadyMessage).RecordingID)
}

func TestOpen_MalformedBoundIdTreatedAsAbsent(t *testing.T) {
	r := newTestRegistry(t)
	ch := &captureChannel{}

	s := r.Open(ch, "../../etc/passwd")

	assert.Equal(t, "", s.BoundID())
	assert.Equal(t, s.ID(), s.EffectiveID())
	assert.Equal(t, s.ID(), ch.messages()[0].(internal_type.ReadyMessage).RecordingID)
}

func TestOpen_BlankBoundIdTreatedAsAbsent(t *testing.T) {
	r := newTestRegistry(t)

	for _, blank := range []string{"", "   ", "\t\n"} {
		ch := &captureChannel{}
		s := r.Open(ch, blank)

		assert.Equal(t, "", s.BoundID())
		assert.Equal(t, s.ID(), ch.messages()[0].(internal_type.ReadyMessage).RecordingID)
	}
}

func TestOpen_SucceedsWhenReadyCannotBeSent(t *testing.T) {
	r := newTestRegistry(t)
	s := r.Open(&captureChannel{err: errors.New("broken pipe")}, "")

	got, err := r.Get(s.ID())
	require.NoError(t, err)
	assert.Same(t, s, got)
}

func TestGetAndClose(t *testing.T) {
	r := newTestRegistry(t)
	s := r.Open(&captureChannel{}, "")
	assert.Equal(t, 1, r.Len())

	got, err := r.Get(s.ID())
	require.NoError(t, err)
	assert.Same(t, s, got)

	closed, err := r.Close(s.ID())
	require.NoError(t, err)
	assert.Same(t, s, closed)
	assert.Equal(t, 0, r.Len())

	_, err = r.Get(s.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = r.Close(s.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestOpenSessions_ExcludesFinalizing(t *testing.T) {
	r := newTestRegistry(t)
	a := r.Open(&captureChannel{}, "")
	b := r.Open(&captureChannel{}, "")
	require.True(t, b.BeginFinalize())

	open := r.OpenSessions()
	require.Len(t, open, 1)
	assert.Same(t, a, open[0])
}

func TestAppend_PreservesOrderAndCopies(t *testing.T) {
	r := newTestRegistry(t)
	s := r.Open(&captureChannel{}, "")

	frame := []byte{1, 2, 3}
	total, ok := s.Append(frame)
	assert.True(t, ok)
	assert.Equal(t, 1, total)
	frame[0] = 9

	total, ok = s.Append([]byte{4, 5})
	assert.True(t, ok)
	assert.Equal(t, 2, total)

	assert.Equal(t, []byte{1, 2, 3, 4, 5}, s.Bytes())
	assert.Equal(t, 2, s.ChunkCount())
}

func TestAppend_RejectedAfterFinalize(t *testing.T) {
	r := newTestRegistry(t)
	s := r.Open(&captureChannel{}, "")
	s.Append([]byte{1})
	require.True(t, s.BeginFinalize())

	total, ok := s.Append([]byte{2})
	assert.False(t, ok)
	assert.Equal(t, 1, total)
	assert.Equal(t, []byte{1}, s.Bytes())
}

func TestBeginFinalize_ExactlyOnceUnderContention(t *testing.T) {
	r := newTestRegistry(t)
	s := r.Open(&captureChannel{}, "")

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.BeginFinalize() {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, StateFinalizing, s.State())
}

func TestComplete_TerminalStates(t *testing.T) {
	r := newTestRegistry(t)

	ok := r.Open(&captureChannel{}, "")
	ok.Complete(false)
	assert.Equal(t, StateOpen, ok.State(), "Complete must not skip Finalizing")
	require.True(t, ok.BeginFinalize())
	ok.Complete(false)
	assert.Equal(t, StateClosed, ok.State())

	failed := r.Open(&captureChannel{}, "")
	require.True(t, failed.BeginFinalize())
	failed.Complete(true)
	assert.Equal(t, StateFailed, failed.State())
	assert.False(t, failed.BeginFinalize())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "finalizing", StateFinalizing.String())
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "failed", StateFailed.String())
	assert.Equal(t, "unknown", State(42).String())
}
