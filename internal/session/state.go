package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/thanhdat24/code-learning/internal/progress"
	"github.com/thanhdat24/code-learning/internal/store"
)

// State is the lifecycle phase of a Manager.
type State int

const (
	StateBooting       State = iota // Initial; Boot not yet completed
	StateAnonymous                  // No user logged in
	StateAuthenticated              // A record is loaded and owned
)

func (s State) String() string {
	switch s {
	case StateBooting:
		return "booting"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// EventKind identifies a session notification.
type EventKind int

const (
	EventLoggedIn      EventKind = iota + 1 // A record was established by Boot or Login
	EventRecordChanged                      // The owned record was mutated
	EventLoggedOut                          // The record was discarded
)

func (k EventKind) String() string {
	switch k {
	case EventLoggedIn:
		return "logged-in"
	case EventRecordChanged:
		return "record-changed"
	case EventLoggedOut:
		return "logged-out"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event is delivered to subscribers after a state change. Record is a copy
// and is the zero value for EventLoggedOut.
type Event struct {
	Kind   EventKind
	Record progress.Record
}

var (
	// ErrAlreadyBooted is returned by a second call to Boot.
	ErrAlreadyBooted = errors.New("session already booted")

	// ErrInvalidUsername is returned for blank usernames.
	ErrInvalidUsername = errors.New("username must not be empty")

	// ErrNotAuthenticated is returned by Apply outside the authenticated state.
	ErrNotAuthenticated = errors.New("not logged in")

	// ErrAuthFailure matches every *AuthError.
	ErrAuthFailure = errors.New("authentication failed")
)

// AuthError is a login failure caused by the remote store.
type AuthError struct {
	Username string
	Err      error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("login %q: %v", e.Username, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrAuthFailure) match any AuthError.
func (e *AuthError) Is(target error) bool { return target == ErrAuthFailure }

// IdentityStore remembers the logged-in username across process restarts.
type IdentityStore interface {
	// Load returns the remembered username, or "" when none.
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, username string) error
	Clear(ctx context.Context) error
}

// IdentityKey is the key under which KVIdentity stores the username.
const IdentityKey = "session.username"

// KVIdentity adapts a store.KVRepo to IdentityStore.
type KVIdentity struct {
	KV store.KVRepo
}

func (k KVIdentity) Load(ctx context.Context) (string, error) {
	v, ok, err := k.KV.Get(ctx, IdentityKey)
	if err != nil || !ok {
		return "", err
	}
	return v, nil
}

func (k KVIdentity) Save(ctx context.Context, username string) error {
	return k.KV.Set(ctx, IdentityKey, username)
}

func (k KVIdentity) Clear(ctx context.Context) error {
	return k.KV.Delete(ctx, IdentityKey)
}
