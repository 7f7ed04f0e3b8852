package adapters

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"forgerepo/internal/ports"
)

// checksumReadBufferSize is the chunk size used when streaming files
// through the digest.
const checksumReadBufferSize = 64 * 1024

// ChecksumFileAdapter streams files through a configurable digest.
// The general-purpose checksum defaults to sha256; the dependency
// index historically used md5, so the algorithm stays a constructor
// choice rather than a constant.
type ChecksumFileAdapter struct {
	Algorithm string
}

func NewChecksumFileAdapter(algorithm string) ChecksumFileAdapter {
	if strings.TrimSpace(algorithm) == "" {
		algorithm = "sha256"
	}
	return ChecksumFileAdapter{Algorithm: algorithm}
}

func (a ChecksumFileAdapter) Checksum(path string) (string, error) {
	digest, err := a.newDigest()
	if err != nil {
		return "", err
	}
	file, err := os.Open(path)
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read module file").
			WithCause(err)
	}
	defer file.Close()

	buf := make([]byte, checksumReadBufferSize)
	for {
		n, err := file.Read(buf)
		if n > 0 {
			digest.Write(buf[:n])
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to read module file").
				WithCause(err)
		}
	}
	return hex.EncodeToString(digest.Sum(nil)), nil
}

func (a ChecksumFileAdapter) newDigest() (hash.Hash, error) {
	switch strings.ToLower(a.Algorithm) {
	case "sha256":
		return sha256.New(), nil
	case "md5":
		return md5.New(), nil
	default:
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unsupported checksum algorithm: %s", a.Algorithm))
	}
}

var _ ports.ChecksumPort = ChecksumFileAdapter{}
