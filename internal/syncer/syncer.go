// Package syncer persists progress records to the remote store after a
// quiet period, coalescing bursts of changes into one write.
package syncer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/thanhdat24/code-learning/internal/progress"
)

// ErrClosed is returned by Flush once the synchronizer has stopped.
var ErrClosed = errors.New("syncer: closed")

// Writer persists a record. remote.Store satisfies it.
type Writer interface {
	Put(ctx context.Context, record progress.Record) error
}

// Config controls debounce timing.
type Config struct {
	// Delay is the quiet period before a write. Defaults to one second.
	Delay time.Duration

	// WriteTimeout bounds a single write. Zero means no bound.
	WriteTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Delay <= 0 {
		c.Delay = time.Second
	}
	return c
}

// key is the observed projection of a record. Only a change in either
// field arms the timer.
type key struct {
	submissions int
	points      int
}

func keyOf(r progress.Record) key {
	return key{submissions: len(r.Submissions), points: r.Points}
}

// Synchronizer is a debounced writer driven by a single goroutine. All
// timer, write-completion and cancellation events are handled in that
// goroutine one at a time, and at most one write is in flight.
type Synchronizer struct {
	w      Writer
	cfg    Config
	logger *zap.Logger

	observeCh chan progress.Record
	resetCh   chan progress.Record
	cancelCh  chan struct{}
	flushCh   chan chan error
	closeCh   chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	syncing  atomic.Bool
	writes   atomic.Int64
	failures atomic.Int64

	errMu   sync.Mutex
	lastErr error
}

// New starts a Synchronizer writing through w.
func New(w Writer, cfg Config, logger *zap.Logger) *Synchronizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Synchronizer{
		w:         w,
		cfg:       cfg.withDefaults(),
		logger:    logger.Named("syncer"),
		observeCh: make(chan progress.Record),
		resetCh:   make(chan progress.Record),
		cancelCh:  make(chan struct{}),
		flushCh:   make(chan chan error),
		closeCh:   make(chan struct{}),
		done:      make(chan struct{}),
	}
	go s.loop()
	return s
}

// Observe reports the current record. If its submission count or points
// differ from the last observation the debounce timer is restarted.
func (s *Synchronizer) Observe(r progress.Record) {
	select {
	case s.observeCh <- r.Clone():
	case <-s.done:
	}
}

// Reset sets the observation baseline without scheduling a write and
// drops any pending one. Used when a record is loaded from the store.
func (s *Synchronizer) Reset(r progress.Record) {
	select {
	case s.resetCh <- r.Clone():
	case <-s.done:
	}
}

// Cancel drops a pending write. A write already in flight completes.
func (s *Synchronizer) Cancel() {
	select {
	case s.cancelCh <- struct{}{}:
	case <-s.done:
	}
}

// Flush writes pending state immediately and waits for it to settle. It
// returns the write error, if any, or nil when nothing was pending.
func (s *Synchronizer) Flush(ctx context.Context) error {
	reply := make(chan error, 1)
	select {
	case s.flushCh <- reply:
	case <-s.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the loop after any in-flight write settles. Pending state
// that was never flushed is discarded.
func (s *Synchronizer) Close() {
	s.closeOnce.Do(func() { close(s.closeCh) })
	<-s.done
}

// Syncing reports whether a write is in flight.
func (s *Synchronizer) Syncing() bool { return s.syncing.Load() }

// Writes returns the number of completed writes, successful or not.
func (s *Synchronizer) Writes() int64 { return s.writes.Load() }

// Failures returns the number of failed writes.
func (s *Synchronizer) Failures() int64 { return s.failures.Load() }

// LastError returns the error of the most recent write, or nil if it
// succeeded.
func (s *Synchronizer) LastError() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.lastErr
}

type loopState struct {
	baseline key
	latest   progress.Record
	pending  bool

	timer  *time.Timer
	timerC <-chan time.Time

	inflight bool
	queued   bool
	current  []chan error // waiting on the in-flight write
	next     []chan error // waiting on the queued write
}

func (ls *loopState) arm(d time.Duration) {
	if ls.timer == nil {
		ls.timer = time.NewTimer(d)
	} else {
		ls.timer.Reset(d)
	}
	ls.timerC = ls.timer.C
}

func (ls *loopState) disarm() {
	if ls.timer != nil {
		ls.timer.Stop()
	}
	ls.timerC = nil
}

func (s *Synchronizer) loop() {
	defer close(s.done)

	var ls loopState
	writeDone := make(chan error, 1)
	defer ls.disarm()

	start := func() {
		rec := ls.latest
		ls.pending = false
		ls.inflight = true
		s.syncing.Store(true)
		go func() {
			ctx := context.Background()
			if s.cfg.WriteTimeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, s.cfg.WriteTimeout)
				defer cancel()
			}
			writeDone <- s.w.Put(ctx, rec)
		}()
	}

	for {
		select {
		case r := <-s.observeCh:
			k := keyOf(r)
			if k == ls.baseline {
				continue
			}
			ls.baseline = k
			ls.latest = r
			ls.pending = true
			ls.arm(s.cfg.Delay)

		case r := <-s.resetCh:
			ls.baseline = keyOf(r)
			ls.pending = false
			ls.queued = false
			ls.disarm()
			release(ls.next, nil)
			ls.next = nil

		case <-s.cancelCh:
			ls.pending = false
			ls.queued = false
			ls.disarm()
			release(ls.next, nil)
			ls.next = nil

		case <-ls.timerC:
			ls.timerC = nil
			if !ls.pending {
				continue
			}
			if ls.inflight {
				ls.queued = true
				continue
			}
			start()

		case err := <-writeDone:
			ls.inflight = false
			s.syncing.Store(false)
			s.settle(err)
			release(ls.current, err)
			ls.current = nil
			if ls.queued && ls.pending {
				ls.queued = false
				ls.current, ls.next = ls.next, nil
				start()
			}

		case reply := <-s.flushCh:
			switch {
			case ls.pending && ls.inflight:
				ls.disarm()
				ls.queued = true
				ls.next = append(ls.next, reply)
			case ls.pending:
				ls.disarm()
				ls.current = append(ls.current, reply)
				start()
			case ls.inflight:
				ls.current = append(ls.current, reply)
			default:
				reply <- nil
			}

		case <-s.closeCh:
			if ls.inflight {
				err := <-writeDone
				s.syncing.Store(false)
				s.settle(err)
				release(ls.current, err)
			}
			release(ls.next, ErrClosed)
			return
		}
	}
}

func (s *Synchronizer) settle(err error) {
	s.writes.Add(1)
	s.errMu.Lock()
	s.lastErr = err
	s.errMu.Unlock()
	if err != nil {
		s.failures.Add(1)
		s.logger.Warn("sync failure", zap.Error(err))
		return
	}
	s.logger.Debug("record synced")
}

func release(waiters []chan error, err error) {
	for _, w := range waiters {
		w <- err
	}
}
