package core

import (
	"fmt"

	semver "github.com/Masterminds/semver/v3"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"forgerepo/internal/ports"
	"forgerepo/internal/types"
)

// ReleaseQuery answers forge-style dependency lookups against a
// published dependency index. Results reflect the last successful
// publish only; the index is never read mid-publish.
type ReleaseQuery struct {
	Index  ports.DependencyIndexPort
	DBPath string
}

func NewReleaseQuery(index ports.DependencyIndexPort, dbPath string) ReleaseQuery {
	return ReleaseQuery{Index: index, DBPath: dbPath}
}

// View returns the requested module (one version: the exact match when
// version is given, otherwise the highest) plus, when recurse is set,
// every known version of each transitive dependency, keyed by
// "author/name". Dependencies that are not in the index are skipped,
// matching the behavior of the serving API this view feeds.
func (q ReleaseQuery) View(moduleKey string, version string, recurse bool) (map[string][]types.ReleaseRecord, error) {
	records, err := q.Index.Lookup(q.DBPath, moduleKey)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("module not found in dependency index: %s", moduleKey))
	}
	chosen, ok := pickRelease(records, version)
	if !ok {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("version %s not found for module %s", version, moduleKey))
	}

	view := map[string][]types.ReleaseRecord{moduleKey: {chosen}}
	if !recurse {
		return view, nil
	}

	queue := dependencyKeys(chosen)
	for len(queue) > 0 {
		key := queue[0]
		queue = queue[1:]
		if _, done := view[key]; done {
			continue
		}
		depRecords, err := q.Index.Lookup(q.DBPath, key)
		if err != nil {
			return nil, err
		}
		if len(depRecords) == 0 {
			log.Debug().Str("module", key).Msg("dependency not present in index")
			continue
		}
		view[key] = depRecords
		for _, record := range depRecords {
			queue = append(queue, dependencyKeys(record)...)
		}
	}
	return view, nil
}

// pickRelease selects the record matching version exactly, or the
// highest version when none is requested. Records with versions that
// do not parse as semver fall back to string comparison.
func pickRelease(records []types.ReleaseRecord, version string) (types.ReleaseRecord, bool) {
	if version != "" {
		for _, record := range records {
			if record.Version == version {
				return record, true
			}
		}
		return types.ReleaseRecord{}, false
	}
	best := records[0]
	for _, record := range records[1:] {
		if releaseLess(best, record) {
			best = record
		}
	}
	return best, true
}

func releaseLess(a types.ReleaseRecord, b types.ReleaseRecord) bool {
	va, errA := semver.NewVersion(a.Version)
	vb, errB := semver.NewVersion(b.Version)
	if errA != nil || errB != nil {
		return a.Version < b.Version
	}
	return va.LessThan(vb)
}

func dependencyKeys(record types.ReleaseRecord) []string {
	keys := make([]string, 0, len(record.Dependencies))
	for _, dep := range record.Dependencies {
		keys = append(keys, dep.Name)
	}
	return keys
}
