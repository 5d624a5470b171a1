package v1

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vmunix/kinocat/internal/auth"
	"github.com/vmunix/kinocat/internal/catalog"
	"github.com/vmunix/kinocat/internal/events"
	"github.com/vmunix/kinocat/internal/scrape"
)

//go:generate mockgen -source=deps.go -destination=mocks/mock_deps.go -package=mocks

// ErrMissingDependency is returned when a required dependency is nil.
var ErrMissingDependency = errors.New("missing required dependency")

// Populator runs a scrape of the film site into the catalog.
type Populator interface {
	Run(ctx context.Context, strategy scrape.Strategy) (*scrape.Result, error)
}

// HitCounter counts visits to the home page.
type HitCounter interface {
	Incr(ctx context.Context, key string) (int64, error)
}

// ServerDeps contains all dependencies for the API server.
// Required dependencies must be non-nil; optional dependencies may be nil.
type ServerDeps struct {
	// Required dependencies
	Catalog *catalog.Store
	Users   *auth.UserStore
	Auth    *auth.Authenticator

	// Optional dependencies (nil if not configured)
	Populator Populator
	Counter   HitCounter
	EventLog  *events.EventLog
	Logger    *slog.Logger
}

// Validate checks that all required dependencies are provided.
func (d ServerDeps) Validate() error {
	if d.Catalog == nil {
		return fmt.Errorf("%w: catalog store", ErrMissingDependency)
	}
	if d.Users == nil {
		return fmt.Errorf("%w: user store", ErrMissingDependency)
	}
	if d.Auth == nil {
		return fmt.Errorf("%w: authenticator", ErrMissingDependency)
	}
	return nil
}
