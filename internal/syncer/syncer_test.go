package syncer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/thanhdat24/code-learning/internal/judge"
	"github.com/thanhdat24/code-learning/internal/progress"
)

type fakeWriter struct {
	mu   sync.Mutex
	puts []progress.Record
	err  error

	gate        chan struct{} // when non-nil each Put waits for a receive
	active, max atomic.Int32
}

func (f *fakeWriter) Put(ctx context.Context, r progress.Record) error {
	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		m := f.max.Load()
		if n <= m || f.max.CompareAndSwap(m, n) {
			break
		}
	}
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts = append(f.puts, r.Clone())
	return f.err
}

func (f *fakeWriter) snapshot() []progress.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]progress.Record(nil), f.puts...)
}

func grow(r progress.Record, n int) progress.Record {
	for range n {
		r = progress.Apply(r, progress.NewSubmission("two-sum", "x", judge.Verdict{Status: judge.StatusWrongAnswer}, time.Now()))
	}
	return r
}

const delay = 30 * time.Millisecond

func TestDebounceCoalescesBurst(t *testing.T) {
	w := &fakeWriter{}
	s := New(w, Config{Delay: delay}, nil)
	defer s.Close()

	r := progress.New("alice")
	s.Reset(r)
	for range 5 {
		r = grow(r, 1)
		s.Observe(r)
	}

	require.Eventually(t, func() bool { return s.Writes() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(3 * delay)

	puts := w.snapshot()
	require.Len(t, puts, 1)
	assert.Len(t, puts[0].Submissions, 5)
	assert.NoError(t, s.LastError())
}

func TestUnchangedRecordDoesNotWrite(t *testing.T) {
	w := &fakeWriter{}
	s := New(w, Config{Delay: delay}, nil)
	defer s.Close()

	r := grow(progress.New("bob"), 2)
	s.Reset(r)
	s.Observe(r)
	time.Sleep(4 * delay)
	assert.Empty(t, w.snapshot())
}

func TestCancelDropsPendingWrite(t *testing.T) {
	w := &fakeWriter{}
	s := New(w, Config{Delay: delay}, nil)
	defer s.Close()

	s.Observe(grow(progress.New("carol"), 1))
	s.Cancel()
	time.Sleep(4 * delay)
	assert.Empty(t, w.snapshot())

	require.NoError(t, s.Flush(context.Background()))
	assert.Empty(t, w.snapshot())
}

func TestFlushWritesImmediately(t *testing.T) {
	w := &fakeWriter{}
	s := New(w, Config{Delay: time.Hour}, nil)
	defer s.Close()

	r := grow(progress.New("dave"), 3)
	s.Observe(r)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Flush(ctx))

	puts := w.snapshot()
	require.Len(t, puts, 1)
	assert.Equal(t, r, puts[0])

	// Nothing pending now.
	require.NoError(t, s.Flush(ctx))
	assert.Len(t, w.snapshot(), 1)
}

func TestFailureIsLoggedAndCounted(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	w := &fakeWriter{err: errors.New("HTTP 500")}
	s := New(w, Config{Delay: time.Hour}, zap.New(core))
	defer s.Close()

	s.Observe(grow(progress.New("erin"), 1))
	err := s.Flush(context.Background())
	require.Error(t, err)
	assert.Equal(t, int64(1), s.Failures())
	assert.EqualError(t, s.LastError(), "HTTP 500")
	assert.Equal(t, 1, logs.FilterMessage("sync failure").Len())

	// No automatic retry; the next change re-arms.
	w.mu.Lock()
	w.err = nil
	w.mu.Unlock()
	s.Observe(grow(progress.New("erin"), 2))
	require.NoError(t, s.Flush(context.Background()))
	assert.NoError(t, s.LastError())
	assert.Equal(t, int64(1), s.Failures())
}

func TestAtMostOneWriteInFlight(t *testing.T) {
	w := &fakeWriter{gate: make(chan struct{})}
	s := New(w, Config{Delay: delay}, nil)
	defer s.Close()

	r := grow(progress.New("frank"), 1)
	s.Observe(r)
	require.Eventually(t, s.Syncing, time.Second, time.Millisecond)

	// The timer fires again while the first write is blocked.
	r = grow(r, 1)
	s.Observe(r)
	time.Sleep(3 * delay)
	assert.Equal(t, int32(1), w.max.Load())

	w.gate <- struct{}{}
	w.gate <- struct{}{}
	require.Eventually(t, func() bool { return s.Writes() == 2 }, time.Second, time.Millisecond)

	puts := w.snapshot()
	require.Len(t, puts, 2)
	assert.Len(t, puts[1].Submissions, 2)
	assert.Equal(t, int32(1), w.max.Load())
	assert.False(t, s.Syncing())
}

func TestCloseWaitsForInFlightWrite(t *testing.T) {
	w := &fakeWriter{gate: make(chan struct{})}
	s := New(w, Config{Delay: time.Millisecond}, nil)

	s.Observe(grow(progress.New("gina"), 1))
	require.Eventually(t, s.Syncing, time.Second, time.Millisecond)

	closed := make(chan struct{})
	go func() {
		s.Close()
		close(closed)
	}()

	select {
	case <-closed:
		t.Fatal("Close returned with a write in flight")
	case <-time.After(2 * delay):
	}
	w.gate <- struct{}{}
	<-closed

	assert.Len(t, w.snapshot(), 1)
	assert.ErrorIs(t, s.Flush(context.Background()), ErrClosed)
	s.Observe(grow(progress.New("gina"), 2)) // must not block
}
