package session

import (
	"sync"

	"github.com/pulseinbox/inbox-cli/internal/api"
	"github.com/pulseinbox/inbox-cli/internal/config"
	"github.com/pulseinbox/inbox-cli/internal/logger"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Snapshot is a point-in-time view of the session. Loading is true until
// the first resolution completes; Authenticated implies User != nil.
type Snapshot struct {
	Loading       bool
	Authenticated bool
	User          *api.User
}

// Store is the single source of truth for the credential and the profile
// it authenticates. The two are always set and cleared together. Writers
// are the resolver, the login/signup success paths and the OTP workflow;
// everything else observes snapshots.
type Store struct {
	mu      sync.Mutex
	file    *tokenFile
	token   string
	user    *api.User
	loading bool
	version uint64
	subs    []func(Snapshot)
}

// NewStore creates a Store seeded with whatever credential survived the
// last run. The profile is unknown until the resolver confirms the token,
// so the store starts in the loading phase.
func NewStore(cfg *config.AuthConfig) *Store {
	file := newTokenFile(cfg.TokenFile)
	return &Store{
		file:    file,
		token:   file.Load(),
		loading: true,
	}
}

// Credential returns the current bearer token, or "" when unauthenticated.
func (s *Store) Credential() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Snapshot returns the current session state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Loading:       s.loading,
		Authenticated: !s.loading && s.token != "" && s.user != nil,
		User:          s.user,
	}
}

// Subscribe registers fn to run after every session change. Subscribers
// must not call back into the store.
func (s *Store) Subscribe(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// SetSession durably stores token and replaces the profile.
func (s *Store) SetSession(token string, user *api.User) {
	s.mu.Lock()
	if err := s.file.Save(token); err != nil {
		logger.Warn("failed to persist session token", zap.Error(err))
	}
	s.token = token
	s.user = user
	s.loading = false
	s.version++
	snap := s.snapshotLocked()
	subs := s.subs
	s.mu.Unlock()
	s.notify(subs, snap)
}

// AdoptCredential persists a token received out of band (the external
// identity callback) without a profile. The session stays in the loading
// phase until the resolver confirms the token.
func (s *Store) AdoptCredential(token string) {
	s.mu.Lock()
	if err := s.file.Save(token); err != nil {
		logger.Warn("failed to persist session token", zap.Error(err))
	}
	s.token = token
	s.user = nil
	s.loading = true
	s.version++
	snap := s.snapshotLocked()
	subs := s.subs
	s.mu.Unlock()
	s.notify(subs, snap)
}

// ClearSession erases the durable credential and the profile. Idempotent.
func (s *Store) ClearSession() {
	s.mu.Lock()
	if err := s.file.Clear(); err != nil {
		logger.Warn("failed to clear session token", zap.Error(err))
	}
	s.token = ""
	s.user = nil
	s.loading = false
	s.version++
	snap := s.snapshotLocked()
	subs := s.subs
	s.mu.Unlock()
	s.notify(subs, snap)
}

func (s *Store) notify(subs []func(Snapshot), snap Snapshot) {
	for _, fn := range subs {
		fn(snap)
	}
}

// resolveBegin hands the resolver the credential to verify together with
// the store version it was read at.
func (s *Store) resolveBegin() (token string, version uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.version
}

// resolveApply commits a resolution outcome, unless the store changed
// underneath the in-flight attempt (logout, fresh login); stale outcomes
// are discarded so a late success cannot resurrect a dead session.
func (s *Store) resolveApply(version uint64, user *api.User) bool {
	s.mu.Lock()
	if s.version != version {
		s.mu.Unlock()
		return false
	}
	if user == nil {
		if err := s.file.Clear(); err != nil {
			logger.Warn("failed to clear session token", zap.Error(err))
		}
		s.token = ""
	}
	s.user = user
	s.loading = false
	s.version++
	snap := s.snapshotLocked()
	subs := s.subs
	s.mu.Unlock()
	s.notify(subs, snap)
	return true
}

// Module provides the session store and resolver
var Module = fx.Module("session",
	fx.Provide(
		fx.Annotate(
			NewStore,
			fx.As(new(api.TokenSource)),
			fx.As(fx.Self()),
		),
		NewResolver,
	),
)
