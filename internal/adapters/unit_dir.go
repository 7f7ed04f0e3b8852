package adapters

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"forgerepo/internal/ports"
	"forgerepo/internal/types"
)

// DirectoryUnitProviderAdapter enumerates content units from a flat
// directory of module archives, binding each archive's descriptor into
// a Module. The directory is a read-only input; archives are never
// modified.
type DirectoryUnitProviderAdapter struct {
	Metadata ports.MetadataPort
	Dir      string
}

func NewDirectoryUnitProviderAdapter(metadata ports.MetadataPort, dir string) DirectoryUnitProviderAdapter {
	return DirectoryUnitProviderAdapter{Metadata: metadata, Dir: dir}
}

func (a DirectoryUnitProviderAdapter) Units(ctx context.Context) ([]types.ContentUnit, error) {
	if strings.TrimSpace(a.Dir) == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("modules directory is required")
	}
	entries, err := os.ReadDir(a.Dir)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to read modules directory").
			WithCause(err)
	}

	staging, err := os.MkdirTemp("", "forgerepo-units-")
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create unit staging directory").
			WithCause(err)
	}
	defer os.RemoveAll(staging)

	var units []types.ContentUnit
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".tar.gz") {
			continue
		}
		archivePath := filepath.Join(a.Dir, entry.Name())
		doc, err := a.Metadata.Extract(archivePath, staging, nil)
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeOf(err)).
				WithMsg(fmt.Sprintf("failed to read descriptor from %s", entry.Name())).
				WithCause(err)
		}
		module := types.ModuleFromDescriptor(doc)
		if module.Author == "" || module.Name == "" || module.Version == "" {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("descriptor in %s is missing author, name, or version", entry.Name()))
		}
		units = append(units, types.ContentUnit{
			Module:      module,
			StoragePath: archivePath,
		})
	}
	sort.Slice(units, func(i, j int) bool {
		return units[i].StoragePath < units[j].StoragePath
	})
	log.Debug().Str("dir", a.Dir).Int("units", len(units)).Msg("enumerated module archives")
	return units, nil
}

var _ ports.UnitProviderPort = DirectoryUnitProviderAdapter{}
