// Package fs finds photos on disk and fingerprints them.
package fs

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// IgnoreFileName is read from the root of every crawled directory.
const IgnoreFileName = ".photobroomignore"

var imageExtensions = []string{
	".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tif", ".tiff", ".webp", ".heic",
}

// IsImage reports whether path names a supported image file.
func IsImage(path string) bool {
	return slices.Contains(imageExtensions, strings.ToLower(filepath.Ext(path)))
}

// Crawler discovers image files.
type Crawler struct {
	patterns []string
}

// NewCrawler creates a Crawler ignoring patterns in addition to the
// patterns of each root's ignore file.
func NewCrawler(patterns []string) *Crawler {
	return &Crawler{patterns: patterns}
}

// FindPhotos returns the absolute paths of the images at or below rawPath,
// sorted. A file path is returned as is when it names an image.
func (c *Crawler) FindPhotos(rawPath string, recursive bool) ([]string, error) {
	root, err := filepath.Abs(rawPath)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat path: %w", err)
	}
	if !info.IsDir() {
		if info.Mode().IsRegular() && IsImage(root) {
			return []string{root}, nil
		}
		return nil, nil
	}

	filePatterns, err := ParseIgnoreFile(filepath.Join(root, IgnoreFileName))
	if err != nil {
		return nil, err
	}
	ignore := NewIgnoreMatcher(append(slices.Clone(c.patterns), filePatterns...))

	var photos []string
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == root {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		if ignore.Match(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && IsImage(p) {
			photos = append(photos, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	slices.Sort(photos)
	return photos, nil
}

// Checksum returns the hex encoded SHA-256 of the file at path.
func Checksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
