package types

// RepoConfig is the repository definition consumed by the publish and
// install pipelines. It is loaded from a YAML file or assembled from
// flags; validation happens in core before any pipeline I/O.
type RepoConfig struct {
	RepoID       string `yaml:"repo_id"`
	ServeHTTP    bool   `yaml:"serve_http"`
	ServeHTTPS   bool   `yaml:"serve_https"`
	HTTPDir      string `yaml:"http_dir"`
	HTTPSDir     string `yaml:"https_dir"`
	InstallPath  string `yaml:"install_path"`
	AbsolutePath string `yaml:"absolute_path"`
}
