package indexer

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
)

// discoverFiles walks root and returns every regular file accepted by supports,
// sorted lexicographically. Hidden directories below root are skipped, as are
// entries that cannot be read. Only an unreadable root fails the walk.
func discoverFiles(ctx context.Context, logger *slog.Logger, root string, supports func(path string) bool) ([]string, error) {
	var paths []string

	err := filepath.WalkDir(root, visitor(ctx, logger, root, supports, &paths))
	if err != nil {
		return nil, err
	}

	sort.Strings(paths)
	return paths, nil
}

// visitor returns the WalkDir callback collecting supported files into paths.
func visitor(ctx context.Context, logger *slog.Logger, root string, supports func(string) bool, paths *[]string) fs.WalkDirFunc {
	return func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == root {
				return fmt.Errorf("failed to access path %s: %w", path, err)
			}
			logger.WarnContext(ctx, "skipping unreadable path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() || !supports(path) {
			return nil
		}

		*paths = append(*paths, path)
		return nil
	}
}
