package ports

import (
	"context"

	"forgerepo/internal/types"
)

// DependencyIndexPort builds and queries the per-repository dependency
// index: a key-value store mapping "author/name" to the ordered list
// of published release records. Point lookups must not require
// scanning the whole store.
type DependencyIndexPort interface {
	// Build writes a fresh index at dbPath, replacing any prior file.
	// Records accumulate per key in the order units are presented.
	Build(ctx context.Context, units []types.ContentUnit, repoPath string, dbPath string) error

	// Lookup returns the release records stored under moduleKey, or
	// (nil, nil) when the key is absent.
	Lookup(dbPath string, moduleKey string) ([]types.ReleaseRecord, error)
}
