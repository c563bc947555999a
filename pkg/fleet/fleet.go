package fleet

import (
	"context"

	"github.com/darksworm/argofleet/pkg/auth"
	"github.com/darksworm/argofleet/pkg/config"
	apperrors "github.com/darksworm/argofleet/pkg/errors"
	"github.com/darksworm/argofleet/pkg/model"
)

// Fleet is the explicit client context for every orchestration call: the
// resolved instance list and the shared credential pair, constructed once
// and threaded through, never read from ambient globals.
type Fleet struct {
	registry *config.Registry
	creds    model.Credentials
	prefs    *config.Prefs
}

// New creates a fleet client over a resolved registry. Prefs may be nil, in
// which case defaults apply.
func New(registry *config.Registry, prefs *config.Prefs) *Fleet {
	if prefs == nil {
		prefs = config.DefaultPrefs()
	}
	return &Fleet{
		registry: registry,
		creds:    registry.Credentials(),
		prefs:    prefs,
	}
}

// Registry exposes the read-only instance registry
func (f *Fleet) Registry() *config.Registry {
	return f.registry
}

// login acquires a fresh session token for one instance URL. Tokens are
// request-scoped; nothing here caches them across calls.
func (f *Fleet) login(ctx context.Context, baseURL string) (string, error) {
	return auth.NewSessionService(baseURL).Login(ctx, f.creds)
}

// validateQuery enforces the query invariant: exactly one of name or
// selector must be present. Fails fast, before any I/O.
func validateQuery(q model.AppQuery) error {
	if q.ByName() && q.BySelector() {
		return apperrors.ConfigError("AMBIGUOUS_QUERY",
			"query must set exactly one of name or selector, not both")
	}
	if !q.ByName() && !q.BySelector() {
		return apperrors.ConfigError("EMPTY_QUERY",
			"query requires an app name or a label selector")
	}
	return nil
}
