package core

import (
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forgerepo/internal/types"
)

func TestValidateRepoConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     types.RepoConfig
		wantErr bool
	}{
		{
			name: "minimal valid config",
			cfg:  types.RepoConfig{RepoID: "demo"},
		},
		{
			name: "serving config",
			cfg: types.RepoConfig{
				RepoID:    "demo",
				ServeHTTP: true,
				HTTPDir:   "/var/www/http",
			},
		},
		{
			name:    "repo id with path separator",
			cfg:     types.RepoConfig{RepoID: "bad/id"},
			wantErr: true,
		},
		{
			name: "relative install path",
			cfg: types.RepoConfig{
				RepoID:      "demo",
				InstallPath: "relative/modules",
			},
			wantErr: true,
		},
		{
			name: "serve_http without http dir",
			cfg: types.RepoConfig{
				RepoID:    "demo",
				ServeHTTP: true,
			},
			wantErr: true,
		},
		{
			name: "serve_https without https dir",
			cfg: types.RepoConfig{
				RepoID:     "demo",
				ServeHTTPS: true,
			},
			wantErr: true,
		},
		{
			name: "absolute install path",
			cfg: types.RepoConfig{
				RepoID:      "demo",
				InstallPath: "/opt/modules",
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateRepoConfig(t.Context(), tc.cfg)
			if tc.wantErr {
				require.Error(t, err)
				assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateRepoConfigEmptyRepoID(t *testing.T) {
	// The assert handler writes its diagnostic block to stderr on this
	// branch; the call still returns a structured error.
	err := ValidateRepoConfig(t.Context(), types.RepoConfig{})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}
