package frames

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bdougie/videoextend/internal/models"
)

// ErrNotDirectory is returned when the scan root is not a directory
var ErrNotDirectory = errors.New("not a directory")

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// IsImage reports whether the path has a frame image extension
func IsImage(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

// Locator finds frame pairs in a directory tree
type Locator struct {
	logger *slog.Logger
}

// NewLocator creates a new frame pair locator
func NewLocator(logger *slog.Logger) *Locator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Locator{logger: logger}
}

// GroupByFolder walks root recursively and groups frame images by their
// immediate parent directory. Errors on the root itself are returned;
// unreadable subdirectories are skipped.
func (l *Locator) GroupByFolder(root string) (map[string][]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to access root '%s': %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root '%s': %w", root, ErrNotDirectory)
	}

	groups := make(map[string][]string)
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			l.logger.Warn("skipping unreadable path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !IsImage(path) {
			return nil
		}
		if !isRegular(path, d) {
			return nil
		}

		parent := filepath.Dir(path)
		groups[parent] = append(groups[parent], path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan '%s': %w", root, err)
	}

	return groups, nil
}

// FindPairs returns one (first, last) pair per folder holding at least two
// frames, ordered by folder name. Intermediate frames are not used.
func (l *Locator) FindPairs(root string) ([]models.ImagePair, error) {
	groups, err := l.GroupByFolder(root)
	if err != nil {
		return nil, err
	}

	folders := make([]string, 0, len(groups))
	for folder, images := range groups {
		if len(images) < 2 {
			l.logger.Debug("not enough frames for a pair", "folder", folder, "frames", len(images))
			continue
		}
		folders = append(folders, folder)
	}

	sort.Slice(folders, func(i, j int) bool {
		ni, nj := filepath.Base(folders[i]), filepath.Base(folders[j])
		if ni != nj {
			return ni < nj
		}
		return folders[i] < folders[j]
	})

	pairs := make([]models.ImagePair, 0, len(folders))
	for _, folder := range folders {
		images := groups[folder]
		sort.Strings(images)
		pairs = append(pairs, models.ImagePair{
			First: images[0],
			Last:  images[len(images)-1],
		})
	}

	l.logger.Debug("frame pairs located", "root", root, "folders", len(groups), "pairs", len(pairs))
	return pairs, nil
}

// isRegular follows symlinks so linked frames count like regular files
func isRegular(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
