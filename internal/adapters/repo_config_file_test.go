package adapters

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepoConfigLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "repo.yaml")
	content := `repo_id: demo
serve_http: true
http_dir: /var/www/http
install_path: /opt/modules
absolute_path: /custom/prefix
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := NewRepoConfigFileAdapter().Load(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.RepoID)
	assert.True(t, cfg.ServeHTTP)
	assert.Equal(t, "/var/www/http", cfg.HTTPDir)
	assert.Equal(t, "/opt/modules", cfg.InstallPath)
	assert.Equal(t, "/custom/prefix", cfg.AbsolutePath)
}

func TestRepoConfigLoadDefaultsAbsolutePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "repo.yaml")
	require.NoError(t, os.WriteFile(path, []byte("repo_id: demo\n"), 0o644))

	cfg, err := NewRepoConfigFileAdapter().Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultAbsolutePath, cfg.AbsolutePath)
}

func TestRepoConfigLoadMissingFile(t *testing.T) {
	_, err := NewRepoConfigFileAdapter().Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
}

func TestRepoConfigLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "repo.yaml")
	require.NoError(t, os.WriteFile(path, []byte("repo_id: [unclosed\n"), 0o644))

	_, err := NewRepoConfigFileAdapter().Load(path)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}
