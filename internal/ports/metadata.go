package ports

import "forgerepo/internal/types"

// MetadataPort locates and parses a module's descriptor file.
type MetadataPort interface {
	// Extract returns the parsed descriptor document. When identity is
	// known the conventional in-archive path is tried first; on a miss
	// (or nil identity) the whole archive is extracted into a scratch
	// subdirectory of stagingDir and searched. The scratch directory is
	// always removed before returning.
	Extract(archivePath string, stagingDir string, identity *types.ModuleID) (map[string]any, error)
}
