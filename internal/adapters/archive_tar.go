package adapters

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"forgerepo/internal/core"
	"forgerepo/internal/ports"
)

// TarArchiveAdapter reads gzipped tar module archives.
type TarArchiveAdapter struct{}

func NewTarArchiveAdapter() TarArchiveAdapter {
	return TarArchiveAdapter{}
}

func (a TarArchiveAdapter) ListEntries(archivePath string) ([]string, error) {
	file, reader, err := openArchive(archivePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var entries []string
	for {
		header, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("failed to read module archive").
				WithCause(err)
		}
		entries = append(entries, header.Name)
	}
	return entries, nil
}

func (a TarArchiveAdapter) EntriesAreSafe(destination string, entries []string) bool {
	return core.EntriesAreSafe(destination, entries)
}

func (a TarArchiveAdapter) ExtractAll(archivePath string, destination string) error {
	file, reader, err := openArchive(archivePath)
	if err != nil {
		return err
	}
	defer file.Close()

	for {
		header, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("failed to read module archive").
				WithCause(err)
		}
		if err := writeEntry(reader, header, destination); err != nil {
			return err
		}
	}
	return nil
}

func (a TarArchiveAdapter) ExtractEntry(archivePath string, entry string, destination string) error {
	file, reader, err := openArchive(archivePath)
	if err != nil {
		return err
	}
	defer file.Close()

	for {
		header, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("failed to read module archive").
				WithCause(err)
		}
		if strings.TrimPrefix(header.Name, "./") != strings.TrimPrefix(entry, "./") {
			continue
		}
		return writeEntry(reader, header, destination)
	}
	return errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg(fmt.Sprintf("entry not found in module archive: %s", entry))
}

// openArchive opens the file and wraps it in a gzip+tar reader. Any
// failure here means the archive is unreadable or not a tarball.
func openArchive(archivePath string) (*os.File, *tar.Reader, error) {
	file, err := os.Open(archivePath)
	if err != nil {
		return nil, nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to open module archive").
			WithCause(err)
	}
	gz, err := gzip.NewReader(file)
	if err != nil {
		file.Close()
		return nil, nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to open module archive").
			WithCause(err)
	}
	return file, tar.NewReader(gz), nil
}

// writeEntry materializes one tar entry under destination, preserving
// its relative path. Entries that resolve outside destination are
// rejected before anything touches disk; entry types other than
// directories and regular files are ignored.
func writeEntry(reader *tar.Reader, header *tar.Header, destination string) error {
	if !core.EntriesAreSafe(destination, []string{header.Name}) {
		return errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(fmt.Sprintf("archive entry resolves outside the extraction directory: %s", header.Name))
	}
	name := filepath.Clean(strings.TrimPrefix(header.Name, "./"))
	if name == "." || name == "" {
		return nil
	}
	target := filepath.Join(destination, name)

	switch header.Typeflag {
	case tar.TypeDir:
		if err := os.MkdirAll(target, header.FileInfo().Mode().Perm()|0o700); err != nil {
			return extractionFailure(err)
		}
	case tar.TypeReg:
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return extractionFailure(err)
		}
		out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, header.FileInfo().Mode().Perm())
		if err != nil {
			return extractionFailure(err)
		}
		if _, err := io.Copy(out, reader); err != nil {
			out.Close()
			return extractionFailure(err)
		}
		if err := out.Close(); err != nil {
			return extractionFailure(err)
		}
	}
	return nil
}

func extractionFailure(err error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg("failed to extract module archive").
		WithCause(err)
}

var _ ports.ArchivePort = TarArchiveAdapter{}
