// Package assets locates the recordings and the generated HTML report under
// the served directory. Both scans run once at startup; nothing here is
// consulted again while the server is running.
package assets

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// CountWavFiles walks the tree below root and counts .wav files, matching the
// extension case-insensitively (AudioMoth firmware writes .WAV).
func CountWavFiles(root string) (int, error) {
	count := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are skipped, not fatal; the count is a
			// startup summary, not an inventory.
			return nil
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(d.Name()), ".wav") {
			count++
		}
		return nil
	})
	return count, err
}

// FindReport searches for a report file below root using the prioritized
// pattern list: every pattern at the root first, then each pattern one
// directory level down, then two, up to maxDepth. The first match wins and is
// returned relative to root with forward slashes. ok is false when nothing
// matches within the depth bound.
func FindReport(root string, patterns []string, maxDepth int) (rel string, ok bool) {
	for _, pattern := range patterns {
		if rel, ok = globFirst(root, pattern); ok {
			return rel, true
		}
	}

	for _, pattern := range patterns {
		prefix := ""
		for depth := 1; depth <= maxDepth; depth++ {
			prefix += "*/"
			if rel, ok = globFirst(root, prefix+pattern); ok {
				return rel, true
			}
		}
	}

	return "", false
}

func globFirst(root, pattern string) (string, bool) {
	// Glob returns sorted matches, so the pick is deterministic.
	matches, err := filepath.Glob(filepath.Join(root, filepath.FromSlash(pattern)))
	if err != nil || len(matches) == 0 {
		return "", false
	}
	rel, err := filepath.Rel(root, matches[0])
	if err != nil {
		return "", false
	}
	return filepath.ToSlash(rel), true
}
