package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// TranscriptExt is the extension matched when a directory is given.
const TranscriptExt = ".txt"

// ExpandGlobs expands file paths, glob patterns and directories into a
// deduplicated list of transcript paths in argument order. The matches of one
// pattern or directory are sorted; a directory contributes its *.txt files.
// Patterns that match nothing are returned as-is so the caller reports a
// file-not-found error against the name the user typed.
func ExpandGlobs(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var result []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			result = append(result, p)
		}
	}

	for _, pattern := range patterns {
		if info, err := os.Stat(pattern); err == nil && info.IsDir() {
			matches, err := filepath.Glob(filepath.Join(pattern, "*"+TranscriptExt))
			if err != nil {
				return nil, fmt.Errorf("listing directory %q: %w", pattern, err)
			}
			sort.Strings(matches)
			for _, m := range matches {
				add(m)
			}
			continue
		}

		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			add(pattern)
			continue
		}
		sort.Strings(matches)
		for _, m := range matches {
			add(m)
		}
	}

	return result, nil
}
