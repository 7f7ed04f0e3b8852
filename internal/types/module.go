package types

import (
	"fmt"
	"path"
	"strings"
)

// ModuleID is the identity triple of a packaged module. It is fixed
// once parsed from a descriptor or supplied by the caller.
type ModuleID struct {
	Author  string `json:"author"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Key returns the "author/name" form used to key the dependency index.
func (id ModuleID) Key() string {
	return path.Join(id.Author, id.Name)
}

// Filename returns the conventional archive filename for the module.
func (id ModuleID) Filename() string {
	return fmt.Sprintf("%s-%s-%s.tar.gz", id.Author, id.Name, id.Version)
}

func (id ModuleID) String() string {
	return fmt.Sprintf("%s-%s-%s", id.Author, id.Name, id.Version)
}

// Dependency is one declared dependency of a module.
type Dependency struct {
	Name               string `json:"name"`
	VersionRequirement string `json:"version_requirement,omitempty"`
}

// Module is one versioned packaged module plus its declared attributes.
type Module struct {
	Name         string            `json:"name"`
	Author       string            `json:"author"`
	Version      string            `json:"version"`
	Summary      string            `json:"summary,omitempty"`
	Description  string            `json:"description,omitempty"`
	License      string            `json:"license,omitempty"`
	Source       string            `json:"source,omitempty"`
	ProjectPage  string            `json:"project_page,omitempty"`
	Dependencies []Dependency      `json:"dependencies"`
	Checksums    map[string]string `json:"checksums,omitempty"`
	Types        []string          `json:"types,omitempty"`
}

// ID returns the module's identity triple.
func (m Module) ID() ModuleID {
	return ModuleID{Author: m.Author, Name: m.Name, Version: m.Version}
}

// ModuleFromDescriptor binds a parsed descriptor document into a
// Module. The descriptor's "name" field may carry the author as a
// prefix ("author-name" or "author/name"); an explicit "author" field
// wins when present.
func ModuleFromDescriptor(doc map[string]any) Module {
	module := Module{
		Name:        stringField(doc, "name"),
		Author:      stringField(doc, "author"),
		Version:     stringField(doc, "version"),
		Summary:     stringField(doc, "summary"),
		Description: stringField(doc, "description"),
		License:     stringField(doc, "license"),
		Source:      stringField(doc, "source"),
		ProjectPage: stringField(doc, "project_page"),
	}
	if author, name, ok := splitFullName(module.Name); ok {
		module.Name = name
		if module.Author == "" {
			module.Author = author
		}
	}
	if deps, ok := doc["dependencies"].([]any); ok {
		for _, raw := range deps {
			entry, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			module.Dependencies = append(module.Dependencies, Dependency{
				Name:               normalizeDependencyName(stringField(entry, "name")),
				VersionRequirement: stringField(entry, "version_requirement"),
			})
		}
	}
	if sums, ok := doc["checksums"].(map[string]any); ok {
		module.Checksums = make(map[string]string, len(sums))
		for file, sum := range sums {
			if value, ok := sum.(string); ok {
				module.Checksums[file] = value
			}
		}
	}
	if kinds, ok := doc["types"].([]any); ok {
		for _, raw := range kinds {
			if value, ok := raw.(string); ok {
				module.Types = append(module.Types, value)
			}
		}
	}
	return module
}

// normalizeDependencyName rewrites "author-name" dependency references
// to the "author/name" form used as index keys.
func normalizeDependencyName(name string) string {
	if strings.Contains(name, "/") {
		return name
	}
	if author, short, ok := splitFullName(name); ok {
		return author + "/" + short
	}
	return name
}

func splitFullName(name string) (author string, short string, ok bool) {
	for _, sep := range []string{"/", "-"} {
		if idx := strings.Index(name, sep); idx > 0 && idx < len(name)-1 {
			return name[:idx], name[idx+1:], true
		}
	}
	return "", "", false
}

func stringField(doc map[string]any, key string) string {
	if value, ok := doc[key].(string); ok {
		return strings.TrimSpace(value)
	}
	return ""
}

// ContentUnit is one module as handed over by the unit provider: its
// bound metadata plus the immutable path where its archive is stored.
type ContentUnit struct {
	Module      Module
	StoragePath string
}

// RepositoryMetadata is the published content snapshot of one
// repository. It is built fresh on every publish run and serialized
// once.
type RepositoryMetadata struct {
	Modules []Module
}

// ReleaseRecord is one version entry in the dependency index, keyed by
// "author/name".
type ReleaseRecord struct {
	File         string       `json:"file"`
	Version      string       `json:"version"`
	Dependencies []Dependency `json:"dependencies"`
	FileChecksum string       `json:"file_checksum"`
}
