package adapters

import (
	"os"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"forgerepo/internal/ports"
	"forgerepo/internal/types"
)

// DefaultAbsolutePath is the URL path prefix under which repositories
// are exposed by the serving layer; it seeds the file paths written
// into the dependency index.
const DefaultAbsolutePath = "/forge/repos"

type RepoConfigFileAdapter struct{}

func NewRepoConfigFileAdapter() RepoConfigFileAdapter {
	return RepoConfigFileAdapter{}
}

func (a RepoConfigFileAdapter) Load(path string) (types.RepoConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.RepoConfig{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("repository config file not found").
			WithCause(err)
	}
	var cfg types.RepoConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return types.RepoConfig{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse repository config yaml").
			WithCause(err)
	}
	if cfg.AbsolutePath == "" {
		cfg.AbsolutePath = DefaultAbsolutePath
	}
	return cfg, nil
}

var _ ports.RepoConfigPort = RepoConfigFileAdapter{}
