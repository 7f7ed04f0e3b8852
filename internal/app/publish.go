package app

import (
	"context"
	"encoding/json"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"forgerepo/internal/adapters"
	"forgerepo/internal/core"
	"forgerepo/internal/policies"
	"forgerepo/internal/types"
)

// Publish performs a single publish run for one repository: assemble
// the build tree, generate metadata and the dependency index, then
// make the tree live per protocol. Pipeline failures are captured in
// the returned report; an error is returned only for invalid
// configuration, before any filesystem work starts.
func (s Service) Publish(ctx context.Context, req PublishRequest) (PublishResult, error) {
	cfg, err := s.resolveRepoConfig(ctx, req.RepoConfigPath, types.RepoConfig{
		RepoID:       strings.TrimSpace(req.RepoID),
		ServeHTTP:    req.ServeHTTP,
		ServeHTTPS:   req.ServeHTTPS,
		HTTPDir:      req.HTTPDir,
		HTTPSDir:     req.HTTPSDir,
		AbsolutePath: req.AbsolutePath,
	})
	if err != nil {
		return PublishResult{}, err
	}
	workDir := strings.TrimSpace(req.WorkDir)
	if workDir == "" {
		workDir = filepath.Join(os.TempDir(), "forgerepo")
	}
	indexChecksum := strings.TrimSpace(req.IndexChecksum)
	if indexChecksum == "" {
		// The index format historically carried md5 sums; consumers of
		// the published store expect that unless told otherwise.
		indexChecksum = "md5"
	}
	run := &publishRun{
		service:       s,
		cfg:           cfg,
		workDir:       workDir,
		modulesDir:    req.ModulesDir,
		indexChecksum: indexChecksum,
		units:         req.Units,
	}
	return PublishResult{Report: run.perform(ctx)}, nil
}

// Unpublish removes the repository's live served copy from every
// configured protocol directory. Missing targets are not an error.
func (s Service) Unpublish(ctx context.Context, req UnpublishRequest) (UnpublishResult, error) {
	cfg, err := s.resolveRepoConfig(ctx, req.RepoConfigPath, types.RepoConfig{
		RepoID:   strings.TrimSpace(req.RepoID),
		HTTPDir:  req.HTTPDir,
		HTTPSDir: req.HTTPSDir,
	})
	if err != nil {
		return UnpublishResult{}, err
	}
	for _, protoDir := range []string{cfg.HTTPDir, cfg.HTTPSDir} {
		if strings.TrimSpace(protoDir) == "" {
			continue
		}
		if err := unpublishRepo(protoDir, cfg.RepoID); err != nil {
			return UnpublishResult{}, err
		}
	}
	log.Info().Str("repo", cfg.RepoID).Msg("repository unpublished")
	return UnpublishResult{RepoID: cfg.RepoID}, nil
}

func unpublishRepo(protoDir string, repoID string) error {
	dest := filepath.Join(protoDir, repoID)
	if err := os.RemoveAll(dest); err != nil {
		return err
	}
	// A crashed publish can leave a staged copy behind.
	return os.RemoveAll(dest + ".new")
}

// publishRun holds the state of one publish invocation. It is never
// reused across runs.
type publishRun struct {
	service       Service
	cfg           types.RepoConfig
	workDir       string
	modulesDir    string
	indexChecksum string
	units         []types.ContentUnit

	report types.PublishReport
}

func (r *publishRun) perform(ctx context.Context) types.PublishReport {
	log.Info().Str("repo", r.cfg.RepoID).Msg("beginning publish")
	r.report = types.PublishReport{
		RepoID:       r.cfg.RepoID,
		Modules:      types.StageReport{State: types.StateNotStarted},
		Metadata:     types.StageReport{State: types.StateNotStarted},
		PublishHTTP:  types.StateNotStarted,
		PublishHTTPS: types.StateNotStarted,
	}
	defer func() {
		r.finalize()
		r.service.Progress.Update(r.report)
	}()

	units, ok := r.modulesStep(ctx)
	if !ok {
		return r.report
	}
	// Cancellation is polled between stages only; an in-flight stage
	// always runs to completion.
	if ctx.Err() != nil {
		r.report.Metadata.State = types.StateFailed
		r.report.Metadata.ErrorMessage = "publish canceled"
		return r.report
	}
	r.metadataStep(ctx, units)
	return r.report
}

func (r *publishRun) finalize() {
	r.report.Success = r.report.Modules.State == types.StateSuccess &&
		r.report.Metadata.State == types.StateSuccess
	if r.report.Success {
		r.report.Summary = "publish succeeded"
	} else {
		r.report.Summary = "publish failed"
	}
}

func (r *publishRun) buildDir() string {
	return filepath.Join(r.workDir, "build", r.cfg.RepoID)
}

func (r *publishRun) modulesStep(ctx context.Context) ([]types.ContentUnit, bool) {
	r.report.Modules.State = types.StateRunning
	start := r.service.Clock()

	units, err := r.assembleModules(ctx)
	r.report.Modules.Duration = r.service.Clock().Sub(start)
	if err != nil {
		log.Error().Err(err).Str("repo", r.cfg.RepoID).Msg("exception during modules step")
		r.report.Modules.State = types.StateFailed
		r.report.Modules.ErrorMessage = "error assembling modules"
		r.service.Progress.Update(r.report)
		return nil, false
	}
	r.report.Modules.State = types.StateSuccess
	r.service.Progress.Update(r.report)
	return units, true
}

// assembleModules stages the build directory and links every module
// archive into the served layout. Individual link failures are
// recorded and do not abort the rest; see policies.ContinueOnLinkFailure.
func (r *publishRun) assembleModules(ctx context.Context) ([]types.ContentUnit, error) {
	buildDir := r.buildDir()
	if err := os.RemoveAll(buildDir); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		return nil, err
	}

	units, err := r.service.resolveUnits(ctx, r.units, r.modulesDir)
	if err != nil {
		return nil, err
	}
	r.report.ModulesTotal = len(units)
	r.service.Progress.Update(r.report)

	for _, unit := range units {
		rel := core.HostedRelativePath(unit.Module.Author, filepath.Base(unit.StoragePath))
		linkPath := filepath.Join(buildDir, filepath.FromSlash(rel))
		if err := linkModule(unit.StoragePath, linkPath); err != nil {
			r.report.ModulesErrored++
			r.report.Details.Error(unit.Module.ID(), err.Error())
			if !policies.ContinueOnLinkFailure {
				return nil, err
			}
		} else {
			r.report.ModulesLinked++
			r.report.Details.Success(unit.Module.ID())
		}
		r.service.Progress.Update(r.report)
	}
	return units, nil
}

func linkModule(storagePath string, linkPath string) error {
	if err := os.MkdirAll(filepath.Dir(linkPath), 0o755); err != nil {
		return err
	}
	return os.Symlink(storagePath, linkPath)
}

func (r *publishRun) metadataStep(ctx context.Context, units []types.ContentUnit) {
	r.report.Metadata.State = types.StateRunning
	r.service.Progress.Update(r.report)
	start := r.service.Clock()

	err := func() error {
		if err := r.generateMetadata(units); err != nil {
			return err
		}
		if err := r.generateDependencyIndex(ctx, units); err != nil {
			return err
		}
		if err := r.copyToPublished(); err != nil {
			return err
		}
		return os.RemoveAll(r.buildDir())
	}()

	r.report.Metadata.Duration = r.service.Clock().Sub(start)
	if err != nil {
		log.Error().Err(err).Str("repo", r.cfg.RepoID).Msg("exception during metadata step")
		r.report.Metadata.State = types.StateFailed
		r.report.Metadata.ErrorMessage = "error generating repository metadata"
		r.service.Progress.Update(r.report)
		return
	}
	r.report.Metadata.State = types.StateSuccess
	r.service.Progress.Update(r.report)
}

func (r *publishRun) generateMetadata(units []types.ContentUnit) error {
	metadata := types.RepositoryMetadata{}
	for _, unit := range units {
		metadata.Modules = append(metadata.Modules, unit.Module)
	}
	data, err := json.MarshalIndent(metadata.Modules, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(r.buildDir(), core.RepoMetadataFilename), data, 0o644)
}

func (r *publishRun) generateDependencyIndex(ctx context.Context, units []types.ContentUnit) error {
	index := adapters.NewDependencyIndexSQLiteAdapter(adapters.NewChecksumFileAdapter(r.indexChecksum))
	repoPath := path.Join(r.cfg.AbsolutePath, r.cfg.RepoID)
	dbPath := filepath.Join(r.buildDir(), core.RepoDependencyDBFilename)
	return index.Build(ctx, units, repoPath, dbPath)
}

// copyToPublished makes the built tree live for each protocol. The
// staged copy is fully assembled next to the destination before the
// previous copy is removed and the staged one renamed in, so a failure
// during the copy leaves the last successful publish serving.
func (r *publishRun) copyToPublished() error {
	targets := []struct {
		dir   string
		serve bool
		state *types.StageState
	}{
		{r.cfg.HTTPDir, r.cfg.ServeHTTP, &r.report.PublishHTTP},
		{r.cfg.HTTPSDir, r.cfg.ServeHTTPS, &r.report.PublishHTTPS},
	}
	for _, target := range targets {
		if strings.TrimSpace(target.dir) == "" {
			*target.state = types.StateSkipped
			r.service.Progress.Update(r.report)
			continue
		}
		dest := filepath.Join(target.dir, r.cfg.RepoID)
		if !target.serve {
			// No longer served over this protocol: drop any old copy.
			if err := os.RemoveAll(dest); err != nil {
				return err
			}
			*target.state = types.StateSkipped
			r.service.Progress.Update(r.report)
			continue
		}
		staged := dest + ".new"
		if err := os.RemoveAll(staged); err != nil {
			return err
		}
		if err := os.MkdirAll(target.dir, 0o755); err != nil {
			return err
		}
		if err := copyTree(r.buildDir(), staged); err != nil {
			return err
		}
		if err := os.RemoveAll(dest); err != nil {
			return err
		}
		if err := os.Rename(staged, dest); err != nil {
			return err
		}
		*target.state = types.StateSuccess
		r.service.Progress.Update(r.report)
	}
	return nil
}

// copyTree copies a directory tree, recreating symlinks rather than
// following them.
func copyTree(src string, dst string) error {
	return filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		switch {
		case d.IsDir():
			return os.MkdirAll(target, 0o755)
		case d.Type()&fs.ModeSymlink != 0:
			linkTarget, err := os.Readlink(p)
			if err != nil {
				return err
			}
			return os.Symlink(linkTarget, target)
		default:
			return copyFile(p, target)
		}
	})
}

func copyFile(src string, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
