package app

import "forgerepo/internal/types"

type PublishRequest struct {
	RepoConfigPath string
	RepoID         string
	WorkDir        string
	ModulesDir     string
	HTTPDir        string
	HTTPSDir       string
	ServeHTTP      bool
	ServeHTTPS     bool
	AbsolutePath   string
	IndexChecksum  string
	Units          []types.ContentUnit
}

type PublishResult struct {
	Report types.PublishReport
}

type UnpublishRequest struct {
	RepoConfigPath string
	RepoID         string
	HTTPDir        string
	HTTPSDir       string
}

type UnpublishResult struct {
	RepoID string
}

type InstallRequest struct {
	RepoConfigPath string
	InstallPath    string
	ModulesDir     string
	Units          []types.ContentUnit
}

type InstallResult struct {
	Report types.InstallReport
}

type UninstallRequest struct {
	RepoConfigPath string
	InstallPath    string
}

type UninstallResult struct {
	InstallPath string
}

type ReleasesRequest struct {
	IndexPath string
	RepoDir   string
	Module    string
	Version   string
	Recurse   bool
}

type ReleasesResult struct {
	View map[string][]types.ReleaseRecord
}

type InspectRequest struct {
	ArchivePath       string
	ChecksumAlgorithm string
}

type InspectResult struct {
	Module     types.Module
	Descriptor map[string]any
	Checksum   string
}
