package app

import (
	"context"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"forgerepo/internal/adapters"
	"forgerepo/internal/types"
)

// Inspect parses a single module archive's descriptor and computes the
// archive checksum, without touching any repository state.
func (s Service) Inspect(ctx context.Context, req InspectRequest) (InspectResult, error) {
	if err := ctx.Err(); err != nil {
		return InspectResult{}, err
	}
	if strings.TrimSpace(req.ArchivePath) == "" {
		return InspectResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("archive path is required")
	}

	staging, err := os.MkdirTemp("", "forgerepo-inspect-")
	if err != nil {
		return InspectResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create inspect staging directory").
			WithCause(err)
	}
	defer os.RemoveAll(staging)

	doc, err := s.Metadata.Extract(req.ArchivePath, staging, nil)
	if err != nil {
		return InspectResult{}, err
	}
	checksum, err := adapters.NewChecksumFileAdapter(req.ChecksumAlgorithm).Checksum(req.ArchivePath)
	if err != nil {
		return InspectResult{}, err
	}
	return InspectResult{
		Module:     types.ModuleFromDescriptor(doc),
		Descriptor: doc,
		Checksum:   checksum,
	}, nil
}
