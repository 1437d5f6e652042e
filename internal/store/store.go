// Package store manages the lifecycle of client sessions: creation, lookup,
// and TTL-based expiry.
package store

import (
	"context"

	"github.com/rcesaret/new-caledonia-commune-locator/internal/session"
)

// Store is the session registry used by the API layer.
type Store interface {
	Create(ctx context.Context) (*session.Session, error)
	Get(ctx context.Context, id string) (*session.Session, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	Health(ctx context.Context) error
}
