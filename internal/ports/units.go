package ports

import (
	"context"

	"forgerepo/internal/types"
)

// UnitProviderPort enumerates the content units of a repository.
type UnitProviderPort interface {
	Units(ctx context.Context) ([]types.ContentUnit, error)
}
