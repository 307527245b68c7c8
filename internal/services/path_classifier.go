package services

import (
	"os"

	"deskbridge/internal/types"
)

// ClassifyPaths splits paths into existing regular files and directories,
// preserving input order. Symlinks are classified by their target. Paths that
// do not exist, cannot be read, or are neither kind are dropped.
func ClassifyPaths(paths []string) types.PathClassification {
	result := types.PathClassification{
		Files:   make([]string, 0, len(paths)),
		Folders: make([]string, 0),
	}
	seen := make(map[string]struct{}, len(paths))

	for _, path := range paths {
		if _, dup := seen[path]; dup {
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		seen[path] = struct{}{}

		switch {
		case info.IsDir():
			result.Folders = append(result.Folders, path)
		case info.Mode().IsRegular():
			result.Files = append(result.Files, path)
		}
	}
	return result
}
