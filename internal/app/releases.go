package app

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"forgerepo/internal/adapters"
	"forgerepo/internal/core"
)

// Releases answers a forge-style dependency lookup against the
// dependency index of a published repository tree.
func (s Service) Releases(ctx context.Context, req ReleasesRequest) (ReleasesResult, error) {
	if err := ctx.Err(); err != nil {
		return ReleasesResult{}, err
	}
	moduleKey := strings.TrimSpace(req.Module)
	if moduleKey == "" || !strings.Contains(moduleKey, "/") {
		return ReleasesResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("module must be given as author/name")
	}
	dbPath := strings.TrimSpace(req.IndexPath)
	if dbPath == "" {
		if strings.TrimSpace(req.RepoDir) == "" {
			return ReleasesResult{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("either index path or repo dir is required")
		}
		dbPath = filepath.Join(req.RepoDir, core.RepoDependencyDBFilename)
	}

	index := adapters.NewDependencyIndexSQLiteAdapter(s.Checksum)
	query := core.NewReleaseQuery(index, dbPath)
	view, err := query.View(moduleKey, strings.TrimSpace(req.Version), req.Recurse)
	if err != nil {
		return ReleasesResult{}, err
	}
	return ReleasesResult{View: view}, nil
}
