package ports

// ChecksumPort streams a file through a cryptographic digest.
type ChecksumPort interface {
	Checksum(path string) (string, error)
}
