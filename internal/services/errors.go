package services

import "errors"

// Bond service errors
var (
	// Dataset errors
	ErrDatasetNotFound = errors.New("dataset not found")
	ErrBondNotFound    = errors.New("bond not found")

	// Upload errors
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrEmptyUpload       = errors.New("uploaded file is empty")
)
