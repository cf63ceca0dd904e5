// ABOUTME: Session store holding the current credential and derived role
// ABOUTME: Explicit initialize/login/logout lifecycle with synchronous subscriber notification

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/2389/postdesk/internal/state"
	"github.com/2389/postdesk/internal/token"
)

// Persisted slot names. Clearing both is the complete logout contract.
const (
	SlotCredential = "token"
	SlotRole       = "role"
)

// Role is the session role derived from the current credential.
type Role string

const (
	RoleAnonymous Role = "anonymous"
	RoleUser      Role = "user"
	RoleAdmin     Role = "admin"
)

// ErrNotInitialized is returned when the store is used before Initialize.
var ErrNotInitialized = errors.New("session store not initialized")

// Session is an immutable snapshot of the current session state. Role is
// always derived from Credential; an absent credential means RoleAnonymous.
type Session struct {
	Credential string
	Role       Role
}

// Authenticated reports whether the session holds a credential.
func (s Session) Authenticated() bool {
	return s.Credential != ""
}

// Listener receives the new session snapshot after every mutation.
type Listener func(Session)

// Store owns the session state. It is the single writer: only the
// login/signup/logout flows mutate it, and every reader observes a fully
// updated snapshot. No operation here contacts the network.
type Store struct {
	mu          sync.Mutex
	current     Session
	listeners   map[int]Listener
	nextID      int
	persist     state.Store
	logger      *slog.Logger
	initialized bool
}

// NewStore creates a session store backed by the given state store.
func NewStore(persist state.Store) *Store {
	return &Store{
		current:   Session{Role: RoleAnonymous},
		listeners: make(map[int]Listener),
		persist:   persist,
		logger:    slog.Default().With("component", "session"),
	}
}

// Initialize loads any previously persisted credential and role. It must run
// before the first read and is a no-op on subsequent calls.
func (s *Store) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}

	credential, err := s.persist.GetSlot(ctx, SlotCredential)
	if errors.Is(err, state.ErrNotFound) {
		s.current = Session{Role: RoleAnonymous}
		s.initialized = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading persisted credential: %w", err)
	}

	role, err := s.persist.GetSlot(ctx, SlotRole)
	if errors.Is(err, state.ErrNotFound) || role == "" {
		// Credential without a role slot: re-derive from the credential.
		role = token.RoleFrom(credential)
	} else if err != nil {
		return fmt.Errorf("loading persisted role: %w", err)
	}

	s.current = Session{Credential: credential, Role: Role(role)}
	s.initialized = true
	s.logger.Debug("session restored", "role", role)
	return nil
}

// Login decodes the credential, derives the role (default "user" when the
// claim is missing or empty), persists both slots, and notifies subscribers
// synchronously before returning. On persistence failure the prior session is
// retained.
func (s *Store) Login(ctx context.Context, credential string) error {
	s.mu.Lock()

	if !s.initialized {
		s.mu.Unlock()
		return ErrNotInitialized
	}

	role := token.RoleFrom(credential)

	if err := s.persist.SetSlot(ctx, SlotCredential, credential); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("persisting credential: %w", err)
	}
	if err := s.persist.SetSlot(ctx, SlotRole, role); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("persisting role: %w", err)
	}

	s.current = Session{Credential: credential, Role: Role(role)}
	snapshot := s.current
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	s.logger.Info("session established", "role", role)
	for _, l := range listeners {
		l(snapshot)
	}
	return nil
}

// Logout clears the credential and role, removes both persisted slots, and
// notifies subscribers. It is idempotent: logging out twice has the same
// observable effect as once.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()

	if !s.initialized {
		s.mu.Unlock()
		return ErrNotInitialized
	}

	if err := s.persist.DeleteSlot(ctx, SlotCredential); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("clearing credential: %w", err)
	}
	if err := s.persist.DeleteSlot(ctx, SlotRole); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("clearing role: %w", err)
	}

	s.current = Session{Role: RoleAnonymous}
	snapshot := s.current
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	s.logger.Info("session cleared")
	for _, l := range listeners {
		l(snapshot)
	}
	return nil
}

// Current returns the session snapshot.
func (s *Store) Current() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Subscribe registers a listener for session mutations and returns an
// unsubscribe function. Listeners are invoked synchronously within Login and
// Logout, after the new state is visible.
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = l

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// snapshotListeners copies the listener set so notification happens outside
// the lock. Callers must hold s.mu.
func (s *Store) snapshotListeners() []Listener {
	out := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		out = append(out, l)
	}
	return out
}
