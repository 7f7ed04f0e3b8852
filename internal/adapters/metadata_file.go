package adapters

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"forgerepo/internal/core"
	"forgerepo/internal/ports"
	"forgerepo/internal/types"
)

// MetadataFileAdapter pulls a module's descriptor out of its archive.
// The conventional entry path is tried first; if the archive nests the
// descriptor somewhere unexpected, the whole archive is extracted into
// a scratch directory and searched.
type MetadataFileAdapter struct {
	Archive ports.ArchivePort
}

func NewMetadataFileAdapter(archive ports.ArchivePort) MetadataFileAdapter {
	return MetadataFileAdapter{Archive: archive}
}

func (a MetadataFileAdapter) Extract(archivePath string, stagingDir string, identity *types.ModuleID) (map[string]any, error) {
	if identity != nil {
		entry := fmt.Sprintf("%s-%s-%s/%s", identity.Author, identity.Name, identity.Version, core.ModuleDescriptorFilename)
		doc, err := a.extractConventional(archivePath, stagingDir, entry)
		if err == nil {
			return doc, nil
		}
		if errbuilder.CodeOf(err) != errbuilder.CodeNotFound {
			return nil, err
		}
		log.Debug().
			Str("archive", archivePath).
			Str("entry", entry).
			Msg("descriptor not at conventional path, falling back to full search")
	}
	return a.searchDescriptor(archivePath, stagingDir)
}

func (a MetadataFileAdapter) extractConventional(archivePath string, stagingDir string, entry string) (map[string]any, error) {
	if err := a.Archive.ExtractEntry(archivePath, entry, stagingDir); err != nil {
		return nil, err
	}
	return readDescriptor(filepath.Join(stagingDir, entry))
}

// searchDescriptor extracts the whole archive into a fresh scratch
// subdirectory and walks it depth-first for a file literally named
// like the descriptor. The scratch directory is removed regardless of
// outcome.
func (a MetadataFileAdapter) searchDescriptor(archivePath string, stagingDir string) (map[string]any, error) {
	scratch, err := os.MkdirTemp(stagingDir, "descriptor-")
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create descriptor scratch directory").
			WithCause(err)
	}
	defer os.RemoveAll(scratch)

	if err := a.Archive.ExtractAll(archivePath, scratch); err != nil {
		return nil, err
	}

	var found string
	walkErr := filepath.WalkDir(scratch, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == core.ModuleDescriptorFilename {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if walkErr != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to search extracted archive").
			WithCause(walkErr)
	}
	if found == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("module descriptor not found in archive: %s", archivePath))
	}
	return readDescriptor(found)
}

// readDescriptor parses the descriptor and removes the extracted copy.
func readDescriptor(path string) (map[string]any, error) {
	defer os.Remove(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read module descriptor").
			WithCause(err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse module descriptor").
			WithCause(err)
	}
	return doc, nil
}

var _ ports.MetadataPort = MetadataFileAdapter{}
