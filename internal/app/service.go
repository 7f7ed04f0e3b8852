package app

import (
	"context"
	"strings"
	"time"

	"forgerepo/internal/adapters"
	"forgerepo/internal/core"
	"forgerepo/internal/ports"
	"forgerepo/internal/types"
)

type Service struct {
	Archive    ports.ArchivePort
	Metadata   ports.MetadataPort
	Checksum   ports.ChecksumPort
	RepoConfig ports.RepoConfigPort
	Progress   ports.ProgressPort
	Clock      func() time.Time
}

func NewService() Service {
	archive := adapters.NewTarArchiveAdapter()
	return Service{
		Archive:    archive,
		Metadata:   adapters.NewMetadataFileAdapter(archive),
		Checksum:   adapters.NewChecksumFileAdapter(""),
		RepoConfig: adapters.NewRepoConfigFileAdapter(),
		Progress:   adapters.NewLogProgressAdapter(),
		Clock:      time.Now,
	}
}

// resolveRepoConfig loads the repository definition file when one is
// given, otherwise uses the config assembled from request fields, and
// validates the result before any pipeline I/O.
func (s Service) resolveRepoConfig(ctx context.Context, configPath string, fallback types.RepoConfig) (types.RepoConfig, error) {
	cfg := fallback
	if strings.TrimSpace(configPath) != "" {
		loaded, err := s.RepoConfig.Load(configPath)
		if err != nil {
			return types.RepoConfig{}, err
		}
		cfg = loaded
	}
	if cfg.AbsolutePath == "" {
		cfg.AbsolutePath = adapters.DefaultAbsolutePath
	}
	if err := core.ValidateRepoConfig(ctx, cfg); err != nil {
		return types.RepoConfig{}, err
	}
	return cfg, nil
}

// resolveUnits prefers units handed in by the caller and falls back to
// scanning the given modules directory.
func (s Service) resolveUnits(ctx context.Context, units []types.ContentUnit, modulesDir string) ([]types.ContentUnit, error) {
	if len(units) > 0 {
		return units, nil
	}
	provider := adapters.NewDirectoryUnitProviderAdapter(s.Metadata, modulesDir)
	return provider.Units(ctx)
}
