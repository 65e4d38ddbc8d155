package catalog

import "errors"

var (
	// ErrPropertyExists is returned by Register for a name already in use.
	ErrPropertyExists = errors.New("catalog: property already exists")

	// ErrPropertyNotFound is returned for names that are not registered.
	ErrPropertyNotFound = errors.New("catalog: property not found")

	// ErrInvalidName is returned for empty names or names containing path
	// separators.
	ErrInvalidName = errors.New("catalog: invalid property name")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("catalog: closed")
)
