package ports

// ArchivePort reads and extracts packaged module archives (gzipped
// tarballs). Implementations must treat archives as untrusted input:
// entry names are validated by the caller via EntriesAreSafe before
// any extraction into a live destination.
type ArchivePort interface {
	// ListEntries returns every entry path in the archive, in archive
	// order.
	ListEntries(archivePath string) ([]string, error)

	// EntriesAreSafe reports whether every entry, joined against
	// destination and normalized, still resolves inside destination.
	EntriesAreSafe(destination string, entries []string) bool

	// ExtractAll extracts every entry into destination. On a
	// mid-extraction failure the destination is left partially
	// populated and must be discarded by the caller.
	ExtractAll(archivePath string, destination string) error

	// ExtractEntry extracts exactly one named entry into destination,
	// preserving the entry's relative path.
	ExtractEntry(archivePath string, entry string, destination string) error
}
