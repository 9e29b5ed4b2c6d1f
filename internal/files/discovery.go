package files

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"bondscreen/internal/validation"
)

// ErrNoListings is returned when a directory holds no listing files
var ErrNoListings = errors.New("no bond listings found")

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery provides file discovery operations
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance. Relative directories
// are resolved against basePath.
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// FindListings returns the .xlsx and .csv listings in dir, oldest first
func (d *Discovery) FindListings(dir string) ([]FileInfo, error) {
	fullPath := dir
	if !filepath.IsAbs(dir) {
		fullPath = filepath.Join(d.basePath, dir)
	}

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() || !validation.IsListingName(entry.Name()) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, entry.Name()),
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].ModTime.Before(files[j].ModTime)
	})

	return files, nil
}

// LatestListing returns the most recently modified listing in dir
func (d *Discovery) LatestListing(dir string) (FileInfo, error) {
	files, err := d.FindListings(dir)
	if err != nil {
		return FileInfo{}, err
	}

	latest, ok := GetLatestFile(files)
	if !ok {
		return FileInfo{}, fmt.Errorf("%w in %s", ErrNoListings, dir)
	}
	return latest, nil
}

// GetLatestFile returns the most recently modified file from a list. Ties
// go to the name that sorts last.
func GetLatestFile(files []FileInfo) (FileInfo, bool) {
	if len(files) == 0 {
		return FileInfo{}, false
	}

	latest := files[0]
	for _, file := range files[1:] {
		if file.ModTime.After(latest.ModTime) ||
			(file.ModTime.Equal(latest.ModTime) && file.Name > latest.Name) {
			latest = file
		}
	}

	return latest, true
}
