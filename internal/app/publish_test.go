package app

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forgerepo/internal/adapters"
	"forgerepo/internal/core"
	"forgerepo/internal/types"
	"forgerepo/tests/testutil"
)

func publishRequest(t *testing.T, modulesDir string) PublishRequest {
	t.Helper()
	return PublishRequest{
		RepoID:     "demo",
		WorkDir:    t.TempDir(),
		ModulesDir: modulesDir,
		HTTPDir:    t.TempDir(),
		ServeHTTP:  true,
	}
}

func TestPublishHappyPath(t *testing.T) {
	modulesDir := t.TempDir()
	testutil.BuildModuleArchive(t, modulesDir, testutil.ModuleFixture{
		Author: "jdob", Name: "valid", Version: "1.0.0",
		Dependencies: []types.Dependency{{Name: "jdob/core", VersionRequirement: ">= 1.0.0"}},
	})
	testutil.BuildModuleArchive(t, modulesDir, testutil.ModuleFixture{
		Author: "jdob", Name: "core", Version: "1.0.0",
	})

	req := publishRequest(t, modulesDir)
	result, err := NewService().Publish(t.Context(), req)
	require.NoError(t, err)

	report := result.Report
	assert.True(t, report.Success)
	assert.Equal(t, "demo", report.RepoID)
	assert.Equal(t, types.StateSuccess, report.Modules.State)
	assert.Equal(t, types.StateSuccess, report.Metadata.State)
	assert.Equal(t, types.StateSuccess, report.PublishHTTP)
	assert.Equal(t, types.StateSkipped, report.PublishHTTPS)
	assert.Equal(t, 2, report.ModulesTotal)
	assert.Equal(t, 2, report.ModulesLinked)
	assert.Equal(t, 0, report.ModulesErrored)

	dest := filepath.Join(req.HTTPDir, "demo")

	// Metadata document lists both modules.
	data, err := os.ReadFile(filepath.Join(dest, core.RepoMetadataFilename))
	require.NoError(t, err)
	var modules []types.Module
	require.NoError(t, json.Unmarshal(data, &modules))
	require.Len(t, modules, 2)

	// Archives are laid out under the hosted tree, as symlinks back to
	// the source archives.
	hosted := filepath.Join(dest, "system", "releases", "j", "jdob", "jdob-valid-1.0.0.tar.gz")
	info, err := os.Lstat(hosted)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink)

	// The dependency index answers point lookups, and each dependency
	// key is independent of its dependent's.
	index := adapters.NewDependencyIndexSQLiteAdapter(adapters.NewChecksumFileAdapter("md5"))
	dbPath := filepath.Join(dest, core.RepoDependencyDBFilename)
	records, err := index.Lookup(dbPath, "jdob/valid")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "/forge/repos/demo/system/releases/j/jdob/jdob-valid-1.0.0.tar.gz", records[0].File)
	records, err = index.Lookup(dbPath, "jdob/core")
	require.NoError(t, err)
	require.Len(t, records, 1)

	// No staged copy and no build tree remain.
	_, err = os.Stat(dest + ".new")
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(req.WorkDir, "build", "demo"))
	assert.True(t, os.IsNotExist(err))
}

func TestPublishReplacesPreviousContent(t *testing.T) {
	modulesDir := t.TempDir()
	testutil.BuildModuleArchive(t, modulesDir, testutil.ModuleFixture{
		Author: "jdob", Name: "old", Version: "1.0.0",
	})

	req := publishRequest(t, modulesDir)
	_, err := NewService().Publish(t.Context(), req)
	require.NoError(t, err)

	// Second run over a different content set reuses the same serving
	// directory; nothing from the first run survives.
	modulesDir2 := t.TempDir()
	testutil.BuildModuleArchive(t, modulesDir2, testutil.ModuleFixture{
		Author: "jdob", Name: "new", Version: "2.0.0",
	})
	req2 := req
	req2.ModulesDir = modulesDir2
	req2.WorkDir = t.TempDir()
	result, err := NewService().Publish(t.Context(), req2)
	require.NoError(t, err)
	require.True(t, result.Report.Success)

	dest := filepath.Join(req.HTTPDir, "demo")
	_, err = os.Stat(filepath.Join(dest, "system", "releases", "j", "jdob", "jdob-old-1.0.0.tar.gz"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dest, "system", "releases", "j", "jdob", "jdob-new-2.0.0.tar.gz"))
	require.NoError(t, err)

	index := adapters.NewDependencyIndexSQLiteAdapter(adapters.NewChecksumFileAdapter("md5"))
	records, err := index.Lookup(filepath.Join(dest, core.RepoDependencyDBFilename), "jdob/old")
	require.NoError(t, err)
	assert.Nil(t, records)
}

func TestPublishContinuesPastLinkFailure(t *testing.T) {
	modulesDir := t.TempDir()
	good := testutil.Unit(t, modulesDir, testutil.ModuleFixture{
		Author: "jdob", Name: "valid", Version: "1.0.0",
	})
	// Two units with the same identity collide on the link path; the
	// second link fails but the run carries on.
	duplicate := good

	req := publishRequest(t, modulesDir)
	req.Units = []types.ContentUnit{good, duplicate}
	result, err := NewService().Publish(t.Context(), req)
	require.NoError(t, err)

	report := result.Report
	assert.True(t, report.Success)
	assert.Equal(t, 2, report.ModulesTotal)
	assert.Equal(t, 1, report.ModulesLinked)
	assert.Equal(t, 1, report.ModulesErrored)
	require.Len(t, report.Details.Errors, 1)
	assert.Equal(t, "jdob-valid-1.0.0", report.Details.Errors[0].Unit.String())
}

func TestPublishWithoutServingSkipsCopy(t *testing.T) {
	modulesDir := t.TempDir()
	testutil.BuildModuleArchive(t, modulesDir, testutil.ModuleFixture{
		Author: "jdob", Name: "valid", Version: "1.0.0",
	})

	req := publishRequest(t, modulesDir)
	req.ServeHTTP = false
	result, err := NewService().Publish(t.Context(), req)
	require.NoError(t, err)

	assert.True(t, result.Report.Success)
	assert.Equal(t, types.StateSkipped, result.Report.PublishHTTP)
	_, err = os.Stat(filepath.Join(req.HTTPDir, "demo"))
	assert.True(t, os.IsNotExist(err))
}

func TestCopyToPublishedKeepsOldCopyOnFailure(t *testing.T) {
	httpDir := t.TempDir()
	dest := filepath.Join(httpDir, "demo")
	require.NoError(t, os.MkdirAll(dest, 0o755))
	marker := filepath.Join(dest, core.RepoMetadataFilename)
	require.NoError(t, os.WriteFile(marker, []byte("previous publish"), 0o644))

	// The build tree is missing, so assembling the staged copy fails;
	// the previously served copy must remain untouched.
	run := &publishRun{
		service: NewService(),
		cfg: types.RepoConfig{
			RepoID:    "demo",
			ServeHTTP: true,
			HTTPDir:   httpDir,
		},
		workDir: filepath.Join(t.TempDir(), "work"),
	}
	err := run.copyToPublished()
	require.Error(t, err)

	data, err := os.ReadFile(marker)
	require.NoError(t, err)
	assert.Equal(t, "previous publish", string(data))
}

func TestPublishInvalidConfig(t *testing.T) {
	req := PublishRequest{RepoID: "bad/id"}
	_, err := NewService().Publish(t.Context(), req)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestPublishMissingModulesDirReportsFailure(t *testing.T) {
	req := publishRequest(t, filepath.Join(t.TempDir(), "absent"))
	result, err := NewService().Publish(t.Context(), req)
	require.NoError(t, err)

	report := result.Report
	assert.False(t, report.Success)
	assert.Equal(t, types.StateFailed, report.Modules.State)
	assert.Equal(t, "error assembling modules", report.Modules.ErrorMessage)
}

func TestUnpublishRemovesServedCopies(t *testing.T) {
	modulesDir := t.TempDir()
	testutil.BuildModuleArchive(t, modulesDir, testutil.ModuleFixture{
		Author: "jdob", Name: "valid", Version: "1.0.0",
	})

	req := publishRequest(t, modulesDir)
	_, err := NewService().Publish(t.Context(), req)
	require.NoError(t, err)

	// A crashed earlier run can leave a staged sibling behind too.
	staged := filepath.Join(req.HTTPDir, "demo.new")
	require.NoError(t, os.MkdirAll(staged, 0o755))

	result, err := NewService().Unpublish(t.Context(), UnpublishRequest{
		RepoID:  "demo",
		HTTPDir: req.HTTPDir,
	})
	require.NoError(t, err)
	assert.Equal(t, "demo", result.RepoID)

	_, err = os.Stat(filepath.Join(req.HTTPDir, "demo"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(staged)
	assert.True(t, os.IsNotExist(err))
}

func TestUnpublishIsIdempotent(t *testing.T) {
	httpDir := t.TempDir()
	for i := 0; i < 2; i++ {
		_, err := NewService().Unpublish(t.Context(), UnpublishRequest{
			RepoID:  "demo",
			HTTPDir: httpDir,
		})
		require.NoError(t, err)
	}
}
