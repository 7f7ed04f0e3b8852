package core

import (
	"context"
	"path/filepath"
	"strings"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"

	"forgerepo/internal/types"
)

// ValidateRepoConfig checks a repository definition before any
// pipeline I/O happens. Install destinations must be absolute;
// protocols marked as served must have a base directory.
func ValidateRepoConfig(ctx context.Context, cfg types.RepoConfig) error {
	assert.NotEmpty(ctx, cfg.RepoID, "repo_id must be set")
	if strings.TrimSpace(cfg.RepoID) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("repo id is required")
	}
	if strings.ContainsRune(cfg.RepoID, filepath.Separator) {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("repo id contains path separator")
	}
	if cfg.InstallPath != "" && !filepath.IsAbs(cfg.InstallPath) {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("install path is not absolute")
	}
	if cfg.ServeHTTP && strings.TrimSpace(cfg.HTTPDir) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("http dir is required when serve_http is enabled")
	}
	if cfg.ServeHTTPS && strings.TrimSpace(cfg.HTTPSDir) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("https dir is required when serve_https is enabled")
	}
	return nil
}
