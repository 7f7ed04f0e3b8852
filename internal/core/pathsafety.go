package core

import (
	"path/filepath"
	"strings"
)

// EntriesAreSafe reports whether every archive entry, joined against
// destination and normalized, still resolves inside destination. An
// absolute entry or one that climbs out via ".." makes the whole set
// unsafe.
func EntriesAreSafe(destination string, entries []string) bool {
	base := filepath.Clean(destination)
	prefix := base
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	for _, entry := range entries {
		if filepath.IsAbs(entry) {
			return false
		}
		resolved := filepath.Clean(filepath.Join(destination, entry))
		// A bare "./" entry resolves to the destination itself.
		if resolved == base {
			continue
		}
		if !strings.HasPrefix(resolved, prefix) {
			return false
		}
	}
	return true
}

// TopLevelEntries returns the distinct first path segments of the
// given archive entries, in first-seen order.
func TopLevelEntries(entries []string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, entry := range entries {
		cleaned := filepath.Clean(strings.TrimPrefix(entry, "./"))
		if cleaned == "." || cleaned == "" {
			continue
		}
		top := cleaned
		if idx := strings.IndexRune(cleaned, filepath.Separator); idx >= 0 {
			top = cleaned[:idx]
		}
		if _, ok := seen[top]; ok {
			continue
		}
		seen[top] = struct{}{}
		out = append(out, top)
	}
	return out
}
