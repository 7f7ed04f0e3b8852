package adapters

import (
	"github.com/rs/zerolog/log"

	"forgerepo/internal/ports"
	"forgerepo/internal/types"
)

// LogProgressAdapter reports publish progress snapshots to the
// structured log. Hosts that want richer progress handling supply
// their own ProgressPort.
type LogProgressAdapter struct{}

func NewLogProgressAdapter() LogProgressAdapter {
	return LogProgressAdapter{}
}

func (a LogProgressAdapter) Update(snapshot types.PublishReport) {
	log.Debug().
		Str("repo", snapshot.RepoID).
		Str("modules_state", string(snapshot.Modules.State)).
		Int("modules_linked", snapshot.ModulesLinked).
		Int("modules_errored", snapshot.ModulesErrored).
		Str("metadata_state", string(snapshot.Metadata.State)).
		Str("publish_http", string(snapshot.PublishHTTP)).
		Str("publish_https", string(snapshot.PublishHTTPS)).
		Msg("publish progress")
}

var _ ports.ProgressPort = LogProgressAdapter{}
