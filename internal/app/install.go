package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"forgerepo/internal/core"
	"forgerepo/internal/policies"
	"forgerepo/internal/types"
)

// Install extracts every module of the repository into the configured
// destination directory, each under a directory named after the
// module. The run validates everything it can before touching the
// filesystem, stages all extractions in a sibling temp directory, and
// only then replaces the live destination. Failures are captured in
// the returned report; an error is returned only for invalid
// configuration. Unlike publish, install needs no repository id: the
// destination alone identifies the run.
func (s Service) Install(ctx context.Context, req InstallRequest) (InstallResult, error) {
	cfg := types.RepoConfig{InstallPath: req.InstallPath}
	if strings.TrimSpace(req.RepoConfigPath) != "" {
		loaded, err := s.RepoConfig.Load(req.RepoConfigPath)
		if err != nil {
			return InstallResult{}, err
		}
		cfg = loaded
	}
	if cfg.InstallPath != "" && !filepath.IsAbs(cfg.InstallPath) {
		return InstallResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("install path is not absolute")
	}
	run := &installRun{service: s, destination: cfg.InstallPath}
	if run.destination == "" {
		return InstallResult{Report: types.InstallReport{
			Success: false,
			Summary: "install path not provided",
		}}, nil
	}

	units, err := s.resolveUnits(ctx, req.Units, req.ModulesDir)
	if err != nil {
		return InstallResult{Report: types.InstallReport{
			Success: false,
			Summary: fmt.Sprintf("failed to enumerate modules: %s", err),
		}}, nil
	}
	return InstallResult{Report: run.perform(ctx, units)}, nil
}

// Uninstall clears the install destination's subdirectories. It is
// idempotent and a no-op when no destination is configured.
func (s Service) Uninstall(ctx context.Context, req UninstallRequest) (UninstallResult, error) {
	cfg := types.RepoConfig{InstallPath: req.InstallPath}
	if strings.TrimSpace(req.RepoConfigPath) != "" {
		loaded, err := s.RepoConfig.Load(req.RepoConfigPath)
		if err != nil {
			return UninstallResult{}, err
		}
		cfg = loaded
	}
	if cfg.InstallPath == "" {
		return UninstallResult{}, nil
	}
	log.Info().Str("destination", cfg.InstallPath).Msg("removing installed modules")
	if err := clearDestination(cfg.InstallPath); err != nil {
		return UninstallResult{}, err
	}
	return UninstallResult{InstallPath: cfg.InstallPath}, nil
}

type installRun struct {
	service     Service
	destination string
	details     types.DetailReport
}

func (r *installRun) perform(ctx context.Context, units []types.ContentUnit) types.InstallReport {
	log.Info().Str("destination", r.destination).Int("units", len(units)).Msg("beginning install")

	r.validate(units)
	if r.details.HasErrors() {
		return r.failure("failed validating modules")
	}
	if ctx.Err() != nil {
		return r.failure("install canceled")
	}

	staging, err := r.stage(units)
	if err != nil {
		return r.failure(err.Error())
	}
	if r.details.HasErrors() {
		// Staging is left behind on purpose; the next run removes it.
		return r.failure("failed installing modules")
	}

	if err := r.commit(staging); err != nil {
		return r.failure(err.Error())
	}
	return types.InstallReport{Success: true, Summary: "success", Details: r.details}
}

func (r *installRun) failure(summary string) types.InstallReport {
	return types.InstallReport{Success: false, Summary: summary, Details: r.details}
}

// validate rejects the whole run before any filesystem change: units
// sharing a name would overwrite each other once flattened to bare
// module names, and archives with unsafe entry paths must never be
// extracted.
func (r *installRun) validate(units []types.ContentUnit) {
	counts := map[string]int{}
	for _, unit := range units {
		counts[unit.Module.Name]++
	}
	for _, unit := range units {
		if counts[unit.Module.Name] > 1 {
			r.details.Error(unit.Module.ID(), "another module in this repository has the same name")
		}
	}
	if r.details.HasErrors() {
		return
	}

	for _, unit := range units {
		entries, err := r.service.Archive.ListEntries(unit.StoragePath)
		if err != nil {
			r.details.Error(unit.Module.ID(), err.Error())
			continue
		}
		if !r.service.Archive.EntriesAreSafe(r.destination, entries) {
			r.details.Error(unit.Module.ID(), "one or more archive entries resolve outside the install destination")
		}
	}
}

// stage extracts every unit into a fresh staging directory created as
// a sibling of the destination, so the final move stays on one
// filesystem. Each extracted tree is renamed to the module's bare
// name.
func (r *installRun) stage(units []types.ContentUnit) (string, error) {
	removeStaleStaging(filepath.Dir(r.destination))

	if err := os.MkdirAll(r.destination, 0o755); err != nil {
		return "", fmt.Errorf("failed to create destination directory: %w", err)
	}
	staging, err := os.MkdirTemp(filepath.Dir(r.destination), policies.StagingDirPrefix)
	if err != nil {
		return "", fmt.Errorf("failed to create staging directory: %w", err)
	}

	for _, unit := range units {
		if err := r.extractUnit(unit, staging); err != nil {
			r.details.Error(unit.Module.ID(), err.Error())
			continue
		}
		r.details.Success(unit.Module.ID())
	}
	return staging, nil
}

func (r *installRun) extractUnit(unit types.ContentUnit, staging string) error {
	entries, err := r.service.Archive.ListEntries(unit.StoragePath)
	if err != nil {
		return err
	}
	topLevel := core.TopLevelEntries(entries)
	if len(topLevel) != 1 {
		return fmt.Errorf("archive did not produce a single top-level directory")
	}
	if err := r.service.Archive.ExtractAll(unit.StoragePath, staging); err != nil {
		return err
	}
	before := filepath.Join(staging, topLevel[0])
	after := filepath.Join(staging, unit.Module.Name)
	if before == after {
		return nil
	}
	return os.Rename(before, after)
}

// commit replaces the live destination wholesale: every existing
// subdirectory is removed, then the staged module directories move in.
func (r *installRun) commit(staging string) error {
	if err := clearDestination(r.destination); err != nil {
		return fmt.Errorf("failed to clear destination directory: %w", err)
	}
	entries, err := os.ReadDir(staging)
	if err != nil {
		return fmt.Errorf("failed to read staging directory: %w", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		from := filepath.Join(staging, entry.Name())
		to := filepath.Join(r.destination, entry.Name())
		if err := os.Rename(from, to); err != nil {
			return fmt.Errorf("failed to move staged module into destination: %w", err)
		}
	}
	return os.RemoveAll(staging)
}

// clearDestination deletes every subdirectory of destination, leaving
// loose files alone. A missing destination is not an error.
func clearDestination(destination string) error {
	entries, err := os.ReadDir(destination)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if err := os.RemoveAll(filepath.Join(destination, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// removeStaleStaging cleans up staging directories a previous failed
// run may have left next to the destination.
func removeStaleStaging(parent string) {
	matches, err := filepath.Glob(filepath.Join(parent, policies.StagingDirPrefix+"*"))
	if err != nil {
		return
	}
	for _, stale := range matches {
		if err := os.RemoveAll(stale); err != nil {
			log.Warn().Str("path", stale).Err(err).Msg("failed to remove stale staging directory")
		}
	}
}
