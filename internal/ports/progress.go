package ports

import "forgerepo/internal/types"

// ProgressPort receives publish progress snapshots. The publisher
// pushes the full report on every stage transition and once more in a
// final deferred update, even on failure.
type ProgressPort interface {
	Update(snapshot types.PublishReport)
}
