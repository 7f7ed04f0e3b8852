package adapters

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forgerepo/tests/testutil"
)

func TestListEntries(t *testing.T) {
	dir := t.TempDir()
	archive := testutil.WriteTarGz(t, filepath.Join(dir, "mod.tar.gz"), []testutil.TarEntry{
		{Name: "valid/"},
		{Name: "valid/metadata.json", Body: `{}`},
		{Name: "valid/manifests/init.pp", Body: "class valid {}"},
	})

	entries, err := NewTarArchiveAdapter().ListEntries(archive)
	require.NoError(t, err)
	assert.Equal(t, []string{"valid/", "valid/metadata.json", "valid/manifests/init.pp"}, entries)
}

func TestListEntriesNotAnArchive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plain.tar.gz")
	require.NoError(t, os.WriteFile(path, []byte("just text"), 0o644))

	_, err := NewTarArchiveAdapter().ListEntries(path)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestListEntriesMissingFile(t *testing.T) {
	_, err := NewTarArchiveAdapter().ListEntries(filepath.Join(t.TempDir(), "nope.tar.gz"))
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestExtractAll(t *testing.T) {
	dir := t.TempDir()
	archive := testutil.WriteTarGz(t, filepath.Join(dir, "mod.tar.gz"), []testutil.TarEntry{
		{Name: "valid/"},
		{Name: "valid/metadata.json", Body: `{"name":"jdob-valid"}`},
		{Name: "valid/manifests/init.pp", Body: "class valid {}"},
	})

	dest := t.TempDir()
	require.NoError(t, NewTarArchiveAdapter().ExtractAll(archive, dest))

	data, err := os.ReadFile(filepath.Join(dest, "valid", "metadata.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"name":"jdob-valid"}`, string(data))

	data, err = os.ReadFile(filepath.Join(dest, "valid", "manifests", "init.pp"))
	require.NoError(t, err)
	assert.Equal(t, "class valid {}", string(data))
}

func TestExtractAllCreatesMissingParents(t *testing.T) {
	// A tar stream with no directory entries still extracts.
	dir := t.TempDir()
	archive := testutil.WriteTarGz(t, filepath.Join(dir, "mod.tar.gz"), []testutil.TarEntry{
		{Name: "valid/deep/nested/file.txt", Body: "x"},
	})

	dest := t.TempDir()
	require.NoError(t, NewTarArchiveAdapter().ExtractAll(archive, dest))
	_, err := os.Stat(filepath.Join(dest, "valid", "deep", "nested", "file.txt"))
	require.NoError(t, err)
}

func TestExtractEntry(t *testing.T) {
	dir := t.TempDir()
	archive := testutil.WriteTarGz(t, filepath.Join(dir, "mod.tar.gz"), []testutil.TarEntry{
		{Name: "valid/"},
		{Name: "valid/metadata.json", Body: `{"name":"jdob-valid"}`},
		{Name: "valid/other.txt", Body: "noise"},
	})

	dest := t.TempDir()
	require.NoError(t, NewTarArchiveAdapter().ExtractEntry(archive, "valid/metadata.json", dest))

	data, err := os.ReadFile(filepath.Join(dest, "valid", "metadata.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"name":"jdob-valid"}`, string(data))

	// Only the requested entry comes out.
	_, err = os.Stat(filepath.Join(dest, "valid", "other.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestExtractEntryDotSlashPrefix(t *testing.T) {
	dir := t.TempDir()
	archive := testutil.WriteTarGz(t, filepath.Join(dir, "mod.tar.gz"), []testutil.TarEntry{
		{Name: "./valid/metadata.json", Body: `{}`},
	})

	dest := t.TempDir()
	require.NoError(t, NewTarArchiveAdapter().ExtractEntry(archive, "valid/metadata.json", dest))
	_, err := os.Stat(filepath.Join(dest, "valid", "metadata.json"))
	require.NoError(t, err)
}

func TestExtractEntryNotFound(t *testing.T) {
	dir := t.TempDir()
	archive := testutil.WriteTarGz(t, filepath.Join(dir, "mod.tar.gz"), []testutil.TarEntry{
		{Name: "valid/metadata.json", Body: `{}`},
	})

	err := NewTarArchiveAdapter().ExtractEntry(archive, "missing/metadata.json", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
}

func TestExtractAllRejectsEscapingEntries(t *testing.T) {
	dir := t.TempDir()
	archive := testutil.WriteTarGz(t, filepath.Join(dir, "evil.tar.gz"), []testutil.TarEntry{
		{Name: "mod/metadata.json", Body: `{}`},
		{Name: "../pwned.txt", Body: "outside"},
	})

	parent := t.TempDir()
	dest := filepath.Join(parent, "scratch")
	require.NoError(t, os.MkdirAll(dest, 0o755))

	err := NewTarArchiveAdapter().ExtractAll(archive, dest)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeFailedPrecondition, errbuilder.CodeOf(err))

	_, err = os.Stat(filepath.Join(parent, "pwned.txt"))
	assert.True(t, os.IsNotExist(err), "nothing may land outside the extraction directory")
}

func TestExtractAllRejectsAbsoluteEntries(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(t.TempDir(), "owned.txt")
	archive := testutil.WriteTarGz(t, filepath.Join(dir, "evil.tar.gz"), []testutil.TarEntry{
		{Name: target, Body: "outside"},
	})

	err := NewTarArchiveAdapter().ExtractAll(archive, t.TempDir())
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeFailedPrecondition, errbuilder.CodeOf(err))
	_, err = os.Stat(target)
	assert.True(t, os.IsNotExist(err))
}

func TestExtractEntryRejectsEscapingEntry(t *testing.T) {
	dir := t.TempDir()
	archive := testutil.WriteTarGz(t, filepath.Join(dir, "evil.tar.gz"), []testutil.TarEntry{
		{Name: "../pwned.txt", Body: "outside"},
	})

	parent := t.TempDir()
	dest := filepath.Join(parent, "scratch")
	require.NoError(t, os.MkdirAll(dest, 0o755))

	err := NewTarArchiveAdapter().ExtractEntry(archive, "../pwned.txt", dest)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeFailedPrecondition, errbuilder.CodeOf(err))
	_, err = os.Stat(filepath.Join(parent, "pwned.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestEntriesAreSafeDelegation(t *testing.T) {
	adapter := NewTarArchiveAdapter()
	assert.True(t, adapter.EntriesAreSafe("/opt/modules", []string{"valid/metadata.json"}))
	assert.False(t, adapter.EntriesAreSafe("/opt/modules", []string{"../evil"}))
}
