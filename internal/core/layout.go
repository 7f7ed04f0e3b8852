// Package core holds the pure logic shared by the publish and install
// pipelines: served-layout paths, archive path safety, repository
// config validation, and the release dependency query.
package core

import "path"

const (
	// RepoMetadataFilename is the metadata document published at the
	// root of every repository tree.
	RepoMetadataFilename = "modules.json"

	// RepoDependencyDBFilename is the dependency index store published
	// next to the metadata document.
	RepoDependencyDBFilename = ".dependency_db"

	// ModuleDescriptorFilename is the descriptor file found inside a
	// module archive's top-level directory.
	ModuleDescriptorFilename = "metadata.json"
)

// HostedRelativePath returns the slash-separated path under which a
// module file is served: system/releases/<author[0]>/<author>/<file>.
func HostedRelativePath(author string, filename string) string {
	if author == "" {
		return path.Join("system", "releases", filename)
	}
	return path.Join("system", "releases", author[:1], author, filename)
}
