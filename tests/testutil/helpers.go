// Package testutil provides shared test helpers used across unit and
// integration test packages.
package testutil

import (
	"archive/tar"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"forgerepo/internal/types"
)

// TarEntry is one entry to write into a fixture archive. A name ending
// in "/" becomes a directory entry.
type TarEntry struct {
	Name string
	Body string
}

// WriteTarGz writes a gzipped tar archive containing exactly the given
// entries, in order, and returns its path.
func WriteTarGz(t *testing.T, path string, entries []TarEntry) string {
	t.Helper()
	file, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(file)
	tw := tar.NewWriter(gz)

	for _, entry := range entries {
		if strings.HasSuffix(entry.Name, "/") {
			require.NoError(t, tw.WriteHeader(&tar.Header{
				Name:     entry.Name,
				Typeflag: tar.TypeDir,
				Mode:     0o755,
			}))
			continue
		}
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     entry.Name,
			Typeflag: tar.TypeReg,
			Mode:     0o644,
			Size:     int64(len(entry.Body)),
		}))
		_, err := tw.Write([]byte(entry.Body))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	require.NoError(t, file.Close())
	return path
}

// ModuleFixture describes one module archive to build for a test.
type ModuleFixture struct {
	Author       string
	Name         string
	Version      string
	Dependencies []types.Dependency

	// TopLevel overrides the archive's top-level directory name; the
	// default is "author-name-version".
	TopLevel string
	// DescriptorDepth nests the descriptor that many directories below
	// the top level instead of directly under it.
	DescriptorDepth int
	// OmitDescriptor leaves the descriptor out entirely.
	OmitDescriptor bool
	// ExtraFiles maps paths relative to the top-level directory to
	// their contents.
	ExtraFiles map[string]string
}

// ID returns the fixture's identity triple.
func (f ModuleFixture) ID() types.ModuleID {
	return types.ModuleID{Author: f.Author, Name: f.Name, Version: f.Version}
}

// BuildModuleArchive writes a module archive for the fixture into dir
// and returns the archive path. The archive follows the packaging
// convention: a single top-level directory holding a JSON descriptor.
func BuildModuleArchive(t *testing.T, dir string, fixture ModuleFixture) string {
	t.Helper()
	top := fixture.TopLevel
	if top == "" {
		top = fixture.ID().String()
	}

	descriptor := map[string]any{
		"name":    fmt.Sprintf("%s-%s", fixture.Author, fixture.Name),
		"author":  fixture.Author,
		"version": fixture.Version,
	}
	deps := []map[string]string{}
	for _, dep := range fixture.Dependencies {
		deps = append(deps, map[string]string{
			"name":                dep.Name,
			"version_requirement": dep.VersionRequirement,
		})
	}
	descriptor["dependencies"] = deps
	data, err := json.Marshal(descriptor)
	require.NoError(t, err)

	entries := []TarEntry{{Name: top + "/"}}
	if !fixture.OmitDescriptor {
		descriptorDir := top
		for i := 0; i < fixture.DescriptorDepth; i++ {
			descriptorDir += fmt.Sprintf("/nested%d", i)
			entries = append(entries, TarEntry{Name: descriptorDir + "/"})
		}
		entries = append(entries, TarEntry{Name: descriptorDir + "/metadata.json", Body: string(data)})
	}
	for rel, body := range fixture.ExtraFiles {
		entries = append(entries, TarEntry{Name: top + "/" + rel, Body: body})
	}

	return WriteTarGz(t, filepath.Join(dir, fixture.ID().Filename()), entries)
}

// Unit builds an archive for the fixture and wraps it as a content
// unit, the way the directory provider would.
func Unit(t *testing.T, dir string, fixture ModuleFixture) types.ContentUnit {
	t.Helper()
	archive := BuildModuleArchive(t, dir, fixture)
	return types.ContentUnit{
		Module: types.Module{
			Author:       fixture.Author,
			Name:         fixture.Name,
			Version:      fixture.Version,
			Dependencies: fixture.Dependencies,
		},
		StoragePath: archive,
	}
}
