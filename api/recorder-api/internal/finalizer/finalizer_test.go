package internal_finalizer

import (
	"context"
	"encoding/binary"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	internal_audio "github.com/rapidaai/meetcap/api/recorder-api/internal/audio"
	internal_crypto "github.com/rapidaai/meetcap/api/recorder-api/internal/crypto"
	internal_placement "github.com/rapidaai/meetcap/api/recorder-api/internal/placement"
	internal_session "github.com/rapidaai/meetcap/api/recorder-api/internal/session"
	internal_type "github.com/rapidaai/meetcap/api/recorder-api/internal/type"
	"github.com/rapidaai/meetcap/pkg/commons"
	"github.com/rapidaai/meetcap/pkg/storages"
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

type commitCall struct {
	boundID string
	fields  internal_type.RecordingFields
}

type fakeCommitter struct {
	mu    sync.Mutex
	id    string
	err   error
	calls []commitCall
}

func (c *fakeCommitter) Commit(_ context.Context, boundID string, fields internal_type.RecordingFields) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, commitCall{boundID: boundID, fields: fields})
	if c.err != nil {
		return "", c.err
	}
	if boundID != "" {
		return boundID, nil
	}
	return c.id, nil
}

type placeCall struct {
	id   string
	ext  string
	data []byte
}

type fakePlacer struct {
	mu       sync.Mutex
	err      error
	readyErr error
	calls    []placeCall
}

func (p *fakePlacer) Ready() error { return p.readyErr }

func (p *fakePlacer) Write(_ context.Context, id, ext string, data []byte) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, placeCall{id: id, ext: ext, data: data})
	if p.err != nil {
		return "", p.err
	}
	return id + "." + ext, nil
}

type fakeNotifier struct {
	events chan internal_type.RecordingSavedEvent
	err    error
}

func (n *fakeNotifier) Name() string { return "fake" }

func (n *fakeNotifier) Notify(_ context.Context, event internal_type.RecordingSavedEvent) error {
	n.events <- event
	return n.err
}

type fixture struct {
	registry  *internal_session.Registry
	committer *fakeCommitter
	placer    *fakePlacer
	notifier  *fakeNotifier
	finalizer *Finalizer
	elapsed   time.Duration
}

func newTestLogger(t *testing.T) commons.Logger {
	t.Helper()
	logger, err := commons.NewApplicationLogger(commons.Name("test-finalizer"), commons.Level("debug"))
	require.NoError(t, err)
	return logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := newTestLogger(t)
	fx := &fixture{
		registry:  internal_session.NewRegistry(logger),
		committer: &fakeCommitter{id: "5e0b8c9e-8f3c-4a57-9a0e-2f5d7c1b6a10"},
		placer:    &fakePlacer{},
		notifier:  &fakeNotifier{events: make(chan internal_type.RecordingSavedEvent, 4)},
		elapsed:   3500 * time.Millisecond,
	}
	fx.finalizer = NewFinalizer(fx.registry, fx.committer, fx.placer, logger,
		WithNotifier(fx.notifier),
		WithClock(func() time.Time { return time.Now().Add(fx.elapsed) }),
	)
	return fx
}

func frame(n int, val byte) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = val
	}
	return b
}

func TestFinalize_PersistsAndReplies(t *testing.T) {
	fx := newFixture(t)
	ch := &captureChannel{}
	s := fx.registry.Open(ch, "")
	for _, n := range []int{320, 320, 320} {
		_, ok := s.Append(frame(n, 0x01))
		require.True(t, ok)
	}

	fx.finalizer.Finalize(context.Background(), s)

	assert.Equal(t, internal_session.StateClosed, s.State())
	assert.Equal(t, 0, fx.registry.Len())

	require.Len(t, fx.committer.calls, 1)
	call := fx.committer.calls[0]
	assert.Equal(t, "", call.boundID)
	assert.Equal(t, uint64(3), call.fields.Duration)
	assert.Equal(t, uint64(1004), call.fields.FileSize)
	assert.Equal(t, uint32(16000), call.fields.SampleRate)
	assert.Equal(t, uint16(1), call.fields.Channels)
	assert.Equal(t, "wav", call.fields.Format)
	assert.Equal(t, "live", call.fields.Source)

	require.Len(t, fx.placer.calls, 1)
	placed := fx.placer.calls[0]
	assert.Equal(t, fx.committer.id, placed.id)
	assert.Equal(t, "wav", placed.ext)
	require.Len(t, placed.data, 1004)
	assert.Equal(t, uint32(960), binary.LittleEndian.Uint32(placed.data[40:44]))
	assert.Equal(t, frame(960, 0x01), placed.data[internal_audio.WAVHeaderSize:])

	msgs := ch.messages()
	require.Len(t, msgs, 2)
	saved, ok := msgs[1].(internal_type.RecordingSavedMessage)
	require.True(t, ok)
	assert.Equal(t, internal_type.MessageRecordingSaved, saved.Type)
	assert.Equal(t, fx.committer.id, saved.RecordingID)
	assert.Equal(t, "/v1/recordings/"+fx.committer.id+"/download", saved.DownloadURL)
	assert.Equal(t, 3, saved.ChunksCount)
	assert.Equal(t, 1004, saved.FileSize)
	assert.Equal(t, 3, saved.Duration)

	select {
	case event := <-fx.notifier.events:
		assert.Equal(t, fx.committer.id, event.RecordingID)
		assert.Equal(t, fx.committer.id+".wav", event.ObjectKey)
		assert.Equal(t, uint64(1004), event.FileSize)
	case <-time.After(2 * time.Second):
		t.Fatal("notifier was not called")
	}
}

func TestFinalize_BoundIdIsCommitted(t *testing.T) {
	fx := newFixture(t)
	bound := "0b6f4a52-5f4e-4c11-9d0a-1b9a3f0d2c77"
	s := fx.registry.Open(&captureChannel{}, bound)
	s.Append(frame(64, 0x02))

	fx.finalizer.Finalize(context.Background(), s)

	require.Len(t, fx.committer.calls, 1)
	assert.Equal(t, bound, fx.committer.calls[0].boundID)
	require.Len(t, fx.placer.calls, 1)
	assert.Equal(t, bound, fx.placer.calls[0].id)
}

func TestFinalize_EmptySessionClosesSilently(t *testing.T) {
	fx := newFixture(t)
	ch := &captureChannel{}
	s := fx.registry.Open(ch, "")

	fx.finalizer.Finalize(context.Background(), s)

	assert.Equal(t, internal_session.StateClosed, s.State())
	assert.Empty(t, fx.committer.calls)
	assert.Empty(t, fx.placer.calls)
	assert.Len(t, ch.messages(), 1, "only the ready message")
	assert.Equal(t, 0, fx.registry.Len())
}

func TestFinalize_RunsOnce(t *testing.T) {
	fx := newFixture(t)
	ch := &captureChannel{}
	s := fx.registry.Open(ch, "")
	s.Append(frame(320, 0x01))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fx.finalizer.Finalize(context.Background(), s)
		}()
	}
	wg.Wait()

	assert.Len(t, fx.committer.calls, 1)
	assert.Len(t, fx.placer.calls, 1)
	saved := 0
	for _, m := range ch.messages() {
		if m.MessageType() == internal_type.MessageRecordingSaved {
			saved++
		}
	}
	assert.Equal(t, 1, saved)
}

func TestFinalize_CommitFailureSkipsWrite(t *testing.T) {
	fx := newFixture(t)
	fx.committer.err = errors.New("connection refused")
	ch := &captureChannel{}
	s := fx.registry.Open(ch, "")
	s.Append(frame(320, 0x01))

	fx.finalizer.Finalize(context.Background(), s)

	assert.Equal(t, internal_session.StateFailed, s.State())
	assert.Empty(t, fx.placer.calls)
	msgs := ch.messages()
	require.Len(t, msgs, 2)
	errMsg, ok := msgs[1].(internal_type.ErrorMessage)
	require.True(t, ok)
	assert.Equal(t, internal_type.MessageError, errMsg.Type)
	assert.Equal(t, "Failed to save recording metadata", errMsg.Message)
	assert.Equal(t, 0, fx.registry.Len())
}

func TestFinalize_WriteFailureReportsError(t *testing.T) {
	fx := newFixture(t)
	fx.placer.err = errors.New("disk full")
	ch := &captureChannel{}
	s := fx.registry.Open(ch, "")
	s.Append(frame(320, 0x01))

	fx.finalizer.Finalize(context.Background(), s)

	assert.Equal(t, internal_session.StateFailed, s.State())
	msgs := ch.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, internal_type.MessageError, msgs[1].MessageType())
	select {
	case <-fx.notifier.events:
		t.Fatal("notifier must not run for a failed recording")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestFinalize_SendFailureMarksFailed(t *testing.T) {
	fx := newFixture(t)
	ch := &captureChannel{}
	s := fx.registry.Open(ch, "")
	s.Append(frame(320, 0x01))
	ch.err = errors.New("broken pipe")

	fx.finalizer.Finalize(context.Background(), s)

	assert.Equal(t, internal_session.StateFailed, s.State())
	assert.Len(t, fx.placer.calls, 1)
}

func TestFinalize_FramesAfterStopAreDiscarded(t *testing.T) {
	fx := newFixture(t)
	s := fx.registry.Open(&captureChannel{}, "")
	s.Append(frame(320, 0x01))
	fx.finalizer.Finalize(context.Background(), s)

	_, ok := s.Append(frame(320, 0x09))
	assert.False(t, ok)
	assert.Equal(t, 1, s.ChunkCount())
}

func TestFinalize_CancelledContextStillPersists(t *testing.T) {
	fx := newFixture(t)
	s := fx.registry.Open(&captureChannel{}, "")
	s.Append(frame(320, 0x01))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fx.finalizer.Finalize(ctx, s)

	assert.Equal(t, internal_session.StateClosed, s.State())
	assert.Len(t, fx.placer.calls, 1)
}

func TestDrain_FinalizesOpenSessions(t *testing.T) {
	fx := newFixture(t)
	a := fx.registry.Open(&captureChannel{}, "")
	a.Append(frame(32, 0x01))
	b := fx.registry.Open(&captureChannel{}, "")

	n := fx.finalizer.Drain(context.Background())

	assert.Equal(t, 2, n)
	assert.Equal(t, internal_session.StateClosed, a.State())
	assert.Equal(t, internal_session.StateClosed, b.State())
	assert.Equal(t, 0, fx.registry.Len())
	assert.Len(t, fx.placer.calls, 1)
	assert.Equal(t, 0, fx.finalizer.Drain(context.Background()))
}

func TestDownloadURL(t *testing.T) {
	assert.Equal(t, "/v1/recordings/abc/download", DownloadURL("abc"))
}

func TestFinalize_UnusablePlacerSkipsCommit(t *testing.T) {
	fx := newFixture(t)
	fx.placer.readyErr = errors.New("codec unavailable")
	ch := &captureChannel{}
	s := fx.registry.Open(ch, "")
	s.Append(frame(320, 0x01))

	fx.finalizer.Finalize(context.Background(), s)

	assert.Equal(t, internal_session.StateFailed, s.State())
	assert.Empty(t, fx.committer.calls)
	assert.Empty(t, fx.placer.calls)
	msgs := ch.messages()
	require.Len(t, msgs, 2)
	errMsg, ok := msgs[1].(internal_type.ErrorMessage)
	require.True(t, ok)
	assert.Equal(t, "Failed to store recording", errMsg.Message)
}

func TestFinalize_MalformedKeyLeavesNoMetadata(t *testing.T) {
	logger := newTestLogger(t)
	dir := t.TempDir()
	storage, err := storages.NewLocalStorage(dir, logger)
	require.NoError(t, err)
	placement := internal_placement.NewPlacement(internal_crypto.NewStaticCodec(logger, "short"), storage, logger)
	registry := internal_session.NewRegistry(logger)
	committer := &fakeCommitter{id: "5e0b8c9e-8f3c-4a57-9a0e-2f5d7c1b6a10"}
	finalizer := NewFinalizer(registry, committer, placement, logger)

	for i := 0; i < 3; i++ {
		ch := &captureChannel{}
		s := registry.Open(ch, "")
		s.Append(frame(320, 0x01))
		finalizer.Finalize(context.Background(), s)

		assert.Equal(t, internal_session.StateFailed, s.State())
		msgs := ch.messages()
		require.Len(t, msgs, 2)
		assert.Equal(t, internal_type.MessageError, msgs[1].MessageType())
	}

	assert.Empty(t, committer.calls)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
