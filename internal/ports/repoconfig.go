package ports

import "forgerepo/internal/types"

// RepoConfigPort loads repository definition files.
type RepoConfigPort interface {
	Load(path string) (types.RepoConfig, error)
}
