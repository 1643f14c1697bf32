package session

import (
	"context"

	"github.com/pulseinbox/inbox-cli/internal/api"
	"github.com/pulseinbox/inbox-cli/internal/logger"
	"go.uber.org/zap"
)

// Resolver turns the persisted credential into a verified profile. The
// policy is fail-closed: any doubt about the credential clears the session.
type Resolver struct {
	store  *Store
	client *api.Client
}

// NewResolver creates a Resolver writing through to store.
func NewResolver(store *Store, client *api.Client) *Resolver {
	return &Resolver{store: store, client: client}
}

// Resolve exchanges the stored credential for a fresh profile. With no
// credential it completes immediately into the unauthenticated state and
// performs no network call. At most one network call per invocation; the
// outcome is dropped when the store changed while the call was in flight.
func (r *Resolver) Resolve(ctx context.Context) Snapshot {
	token, version := r.store.resolveBegin()
	if token == "" {
		r.store.resolveApply(version, nil)
		return r.store.Snapshot()
	}

	user, err := r.client.ResolveSession(ctx)
	if err != nil {
		if !api.IsUnauthorized(err) {
			logger.Warn("session resolution failed", zap.Error(err))
		}
		if !r.store.resolveApply(version, nil) {
			logger.Debug("discarding stale session resolution")
		}
		return r.store.Snapshot()
	}

	if !r.store.resolveApply(version, user) {
		logger.Debug("discarding stale session resolution")
	}
	return r.store.Snapshot()
}
