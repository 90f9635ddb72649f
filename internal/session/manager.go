// Package session owns the authenticated progress record and its lifecycle.
package session

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/thanhdat24/code-learning/internal/progress"
	"github.com/thanhdat24/code-learning/internal/remote"
	"go.uber.org/zap"
)

// Manager serializes every transition and record mutation under one mutex.
// Subscribers are notified after the mutex is released, in registration
// order and in mutation order. Subscribers must not call back into the
// Manager synchronously; the event carries the record they need.
type Manager struct {
	remote   remote.Store
	identity IdentityStore
	logger   *zap.Logger

	mu     sync.Mutex
	pubMu  sync.Mutex // held from mutation to the end of delivery
	state  State
	record progress.Record
	booted bool

	subMu  sync.Mutex
	subs   map[int]func(Event)
	nextID int
}

// NewManager creates a Manager in StateBooting.
func NewManager(rs remote.Store, identity IdentityStore, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		remote:   rs,
		identity: identity,
		logger:   logger.Named("session"),
		subs:     make(map[int]func(Event)),
	}
}

// Subscribe registers fn for future events and returns a function that
// removes it.
func (m *Manager) Subscribe(fn func(Event)) (unsubscribe func()) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	return func() {
		m.subMu.Lock()
		defer m.subMu.Unlock()
		delete(m.subs, id)
	}
}

func (m *Manager) publish(ev Event) {
	m.subMu.Lock()
	ids := slices.Sorted(maps.Keys(m.subs))
	fns := make([]func(Event), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, m.subs[id])
	}
	m.subMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Record returns a copy of the owned record when authenticated.
func (m *Manager) Record() (progress.Record, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateAuthenticated {
		return progress.Record{}, false
	}
	return m.record.Clone(), true
}

// Boot restores the remembered session, if any. It may be called once.
// Remote failures during restore are not errors: the remembered identity is
// cleared and the manager becomes anonymous.
func (m *Manager) Boot(ctx context.Context) error {
	m.mu.Lock()
	if m.booted {
		m.mu.Unlock()
		return ErrAlreadyBooted
	}
	m.booted = true

	username, err := m.identity.Load(ctx)
	if err != nil {
		m.logger.Warn("failed to read remembered identity", zap.Error(err))
		username = ""
	}
	username = strings.TrimSpace(username)
	if username == "" {
		m.state = StateAnonymous
		m.mu.Unlock()
		return nil
	}

	rec, err := m.remote.Get(ctx, username)
	if err != nil || rec == nil {
		if err != nil {
			m.logger.Warn("session restore failed", zap.String("username", username), zap.Error(err))
		}
		if cerr := m.identity.Clear(ctx); cerr != nil {
			m.logger.Warn("failed to clear remembered identity", zap.Error(cerr))
		}
		m.state = StateAnonymous
		m.mu.Unlock()
		return nil
	}

	rec.Normalize()
	m.record = *rec
	m.state = StateAuthenticated
	snapshot := m.record.Clone()
	m.pubMu.Lock()
	m.mu.Unlock()
	defer m.pubMu.Unlock()

	m.logger.Info("session restored", zap.String("username", username))
	m.publish(Event{Kind: EventLoggedIn, Record: snapshot})
	return nil
}

// Login authenticates username, creating its record remotely on first use.
// Logging in while authenticated replaces the current session.
func (m *Manager) Login(ctx context.Context, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return ErrInvalidUsername
	}

	m.mu.Lock()
	rec, err := m.remote.Get(ctx, username)
	if err != nil {
		m.mu.Unlock()
		return &AuthError{Username: username, Err: err}
	}
	if rec == nil {
		fresh := progress.New(username)
		if err := m.remote.Put(ctx, fresh); err != nil {
			m.mu.Unlock()
			return &AuthError{Username: username, Err: err}
		}
		rec = &fresh
	}
	rec.Normalize()

	if err := m.identity.Save(ctx, username); err != nil {
		m.logger.Warn("failed to remember identity", zap.String("username", username), zap.Error(err))
	}

	m.record = *rec
	m.state = StateAuthenticated
	m.booted = true
	snapshot := m.record.Clone()
	m.pubMu.Lock()
	m.mu.Unlock()
	defer m.pubMu.Unlock()

	m.logger.Info("logged in", zap.String("username", username))
	m.publish(Event{Kind: EventLoggedIn, Record: snapshot})
	return nil
}

// Logout discards the in-memory record and the remembered identity. The
// remote record is kept. Logging out while anonymous is a no-op.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	if m.state != StateAuthenticated {
		m.mu.Unlock()
		return nil
	}
	username := m.record.Username
	m.record = progress.Record{}
	m.state = StateAnonymous
	m.pubMu.Lock()
	m.mu.Unlock()
	defer m.pubMu.Unlock()

	if err := m.identity.Clear(ctx); err != nil {
		m.logger.Warn("failed to clear remembered identity", zap.Error(err))
	}

	m.logger.Info("logged out", zap.String("username", username))
	m.publish(Event{Kind: EventLoggedOut})
	return nil
}

// Apply merges s into the owned record and notifies subscribers.
func (m *Manager) Apply(s progress.Submission) (progress.Record, error) {
	m.mu.Lock()
	if m.state != StateAuthenticated {
		m.mu.Unlock()
		return progress.Record{}, ErrNotAuthenticated
	}
	m.record = progress.Apply(m.record, s)
	snapshot := m.record.Clone()
	m.pubMu.Lock()
	m.mu.Unlock()
	defer m.pubMu.Unlock()

	m.publish(Event{Kind: EventRecordChanged, Record: snapshot})
	return snapshot.Clone(), nil
}
