// Package app wires the session, judge, synchronizer and view model into
// the engine the CLI drives.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/thanhdat24/code-learning/internal/catalog"
	"github.com/thanhdat24/code-learning/internal/judge"
	"github.com/thanhdat24/code-learning/internal/progress"
	"github.com/thanhdat24/code-learning/internal/remote"
	"github.com/thanhdat24/code-learning/internal/session"
	"github.com/thanhdat24/code-learning/internal/syncer"
	"github.com/thanhdat24/code-learning/internal/viewmodel"
)

// ErrSubmissionInFlight is returned by Submit while another submission
// is being evaluated.
var ErrSubmissionInFlight = errors.New("a submission is already being evaluated")

// Options configures an Engine. Remote, Identity and Judge are required.
type Options struct {
	Catalog  *catalog.Catalog
	Remote   remote.Store
	Identity session.IdentityStore
	Judge    judge.Evaluator
	Sync     syncer.Config
	Logger   *zap.Logger

	// Now stamps submissions. Defaults to time.Now.
	Now func() time.Time
}

// Engine is the client-side progress engine.
type Engine struct {
	catalog   *catalog.Catalog
	session   *session.Manager
	judge     judge.Evaluator
	sync      *syncer.Synchronizer
	projector *viewmodel.Projector
	logger    *zap.Logger
	now       func() time.Time

	submitting  atomic.Bool
	unsubscribe func()
}

// New builds an Engine and starts its synchronizer.
func New(opts Options) (*Engine, error) {
	switch {
	case opts.Remote == nil:
		return nil, errors.New("app: remote store is required")
	case opts.Identity == nil:
		return nil, errors.New("app: identity store is required")
	case opts.Judge == nil:
		return nil, errors.New("app: judge is required")
	}
	if opts.Catalog == nil {
		opts.Catalog = catalog.Default()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	e := &Engine{
		catalog:   opts.Catalog,
		session:   session.NewManager(opts.Remote, opts.Identity, opts.Logger),
		judge:     opts.Judge,
		sync:      syncer.New(opts.Remote, opts.Sync, opts.Logger),
		projector: viewmodel.NewProjector(opts.Catalog),
		logger:    opts.Logger,
		now:       opts.Now,
	}
	e.unsubscribe = e.session.Subscribe(e.onSessionEvent)
	return e, nil
}

func (e *Engine) onSessionEvent(ev session.Event) {
	switch ev.Kind {
	case session.EventLoggedIn:
		e.sync.Reset(ev.Record)
	case session.EventRecordChanged:
		e.sync.Observe(ev.Record)
	case session.EventLoggedOut:
		e.sync.Cancel()
	}
}

func (e *Engine) Boot(ctx context.Context) error {
	return e.session.Boot(ctx)
}

func (e *Engine) Login(ctx context.Context, username string) error {
	return e.session.Login(ctx, username)
}

// Logout drops any write still waiting in the debounce window.
func (e *Engine) Logout(ctx context.Context) error {
	return e.session.Logout(ctx)
}

func (e *Engine) State() session.State {
	return e.session.State()
}

func (e *Engine) Record() (progress.Record, bool) {
	return e.session.Record()
}

// Submit judges code against problemID and folds the verdict into the
// signed-in user's record. A judge failure still produces a submission
// carrying the degraded verdict.
func (e *Engine) Submit(ctx context.Context, problemID, code string) (progress.Submission, error) {
	p, err := e.catalog.Get(problemID)
	if err != nil {
		return progress.Submission{}, err
	}
	if e.session.State() != session.StateAuthenticated {
		return progress.Submission{}, session.ErrNotAuthenticated
	}
	if !e.submitting.CompareAndSwap(false, true) {
		return progress.Submission{}, ErrSubmissionInFlight
	}
	defer e.submitting.Store(false)

	verdict := e.judge.Evaluate(ctx, p, code)
	sub := progress.NewSubmission(p.ID, code, verdict, e.now())
	if _, err := e.session.Apply(sub); err != nil {
		return sub, fmt.Errorf("record submission: %w", err)
	}
	e.logger.Info("submission judged",
		zap.String("problem", p.ID),
		zap.String("status", string(verdict.Status)),
		zap.Int("score", verdict.Score))
	return sub, nil
}

// Submitting reports whether a submission is being evaluated.
func (e *Engine) Submitting() bool {
	return e.submitting.Load()
}

// View projects the catalog against the signed-in user's solved set. An
// anonymous session sees everything unsolved.
func (e *Engine) View(f viewmodel.Filter) viewmodel.View {
	rec, _ := e.session.Record()
	return e.projector.Project(rec.SolvedProblemIDs, f)
}

// History returns the user's submissions for problemID, newest first.
func (e *Engine) History(problemID string) []progress.Submission {
	rec, ok := e.session.Record()
	if !ok {
		return nil
	}
	return rec.SubmissionsFor(problemID)
}

func (e *Engine) Problem(id string) (*catalog.Problem, error) {
	return e.catalog.Get(id)
}

func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// Syncing reports whether a record write is in flight.
func (e *Engine) Syncing() bool {
	return e.sync.Syncing()
}

// SyncError returns the error of the last record write, if it failed.
func (e *Engine) SyncError() error {
	return e.sync.LastError()
}

// Flush writes pending progress now.
func (e *Engine) Flush(ctx context.Context) error {
	return e.sync.Flush(ctx)
}

// Close flushes pending progress and stops the synchronizer. The flush
// error is returned; the engine is closed either way.
func (e *Engine) Close(ctx context.Context) error {
	e.unsubscribe()
	err := e.sync.Flush(ctx)
	e.sync.Close()
	return err
}
