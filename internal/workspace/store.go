package workspace

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned for unknown or expired workspaces.
	ErrNotFound = errors.New("workspace not found")

	// ErrStoreClosed is returned by every Store method after Close.
	ErrStoreClosed = errors.New("workspace store is closed")
)

// Store persists workspace states with a time to live. A ttl of zero keeps
// the state until it is deleted.
type Store interface {
	Save(ctx context.Context, state *State, ttl time.Duration) error

	// Load returns ErrNotFound when id is unknown or expired.
	Load(ctx context.Context, id string) (*State, error)

	Delete(ctx context.Context, id string) error

	// Cleanup drops expired states and reports how many were removed.
	Cleanup(ctx context.Context) (int, error)

	Size(ctx context.Context) (int, error)

	Close() error
}
