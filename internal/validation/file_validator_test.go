package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bondscreen/internal/shared/testutil"
)

func writeFile(t *testing.T, dir, name string, size int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0644))
	return path
}

func TestFileValidator_ValidateListingFile(t *testing.T) {
	tests := []struct {
		name          string
		setupFunc     func(t *testing.T) string
		wantErr       bool
		errorContains string
	}{
		{
			name: "xlsx listing",
			setupFunc: func(t *testing.T) string {
				return writeFile(t, t.TempDir(), "listing.xlsx", 4)
			},
		},
		{
			name: "upper case csv listing",
			setupFunc: func(t *testing.T) string {
				return writeFile(t, t.TempDir(), "LISTING.CSV", 4)
			},
		},
		{
			name: "spreadsheet lock file",
			setupFunc: func(t *testing.T) string {
				return writeFile(t, t.TempDir(), "~$listing.xlsx", 4)
			},
			wantErr:       true,
			errorContains: "not a bond listing file",
		},
		{
			name: "legacy xls",
			setupFunc: func(t *testing.T) string {
				return writeFile(t, t.TempDir(), "listing.xls", 4)
			},
			wantErr:       true,
			errorContains: "expected .xlsx or .csv",
		},
		{
			name: "missing file",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "absent.csv")
			},
			wantErr:       true,
			errorContains: "does not exist",
		},
		{
			name: "directory with listing name",
			setupFunc: func(t *testing.T) string {
				dir := filepath.Join(t.TempDir(), "listing.csv")
				require.NoError(t, os.Mkdir(dir, 0755))
				return dir
			},
			wantErr:       true,
			errorContains: "is a directory",
		},
		{
			name: "over size limit",
			setupFunc: func(t *testing.T) string {
				return writeFile(t, t.TempDir(), "listing.csv", 64)
			},
			wantErr:       true,
			errorContains: "limit is 32",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validator := NewFileValidator(testutil.DiscardLogger(), 32)
			path := tt.setupFunc(t)

			err := validator.ValidateListingFile(path)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFileValidator_ValidateListingFile_NotListing(t *testing.T) {
	validator := NewFileValidator(nil, 0)
	err := validator.ValidateListingFile(writeFile(t, t.TempDir(), "notes.txt", 1))
	assert.ErrorIs(t, err, ErrNotListing)
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	tests := []struct {
		name      string
		setupFunc func(t *testing.T) string
	}{
		{
			name: "existing directory",
			setupFunc: func(t *testing.T) string {
				return t.TempDir()
			},
		},
		{
			name: "nested directory is created",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "exports", "2025", "04")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validator := NewFileValidator(testutil.DiscardLogger(), 0)
			dir := tt.setupFunc(t)

			require.NoError(t, validator.ValidateOutputDirectory(dir))

			info, err := os.Stat(dir)
			require.NoError(t, err)
			assert.True(t, info.IsDir())

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Empty(t, entries, "temporary write file must be removed")
		})
	}
}

func TestFileValidator_ValidateOutputDirectory_FileInTheWay(t *testing.T) {
	validator := NewFileValidator(testutil.DiscardLogger(), 0)
	blocker := writeFile(t, t.TempDir(), "exports", 1)

	err := validator.ValidateOutputDirectory(filepath.Join(blocker, "nested"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create output directory")
}

func TestIsListingName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"listing.xlsx", true},
		{"listing.XLSX", true},
		{"listing.csv", true},
		{"~$listing.xlsx", false},
		{"listing.xls", false},
		{"listing", false},
		{"listing.xlsx.bak", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsListingName(tt.name))
		})
	}
}
