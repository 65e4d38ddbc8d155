package backup

import "errors"

var (
	// ErrBackupNotFound is returned for backup ids without a manifest.
	ErrBackupNotFound = errors.New("backup: not found")

	// ErrUnknownCompression is returned for unsupported compression names.
	ErrUnknownCompression = errors.New("backup: unknown compression")

	// ErrSizeMismatch is returned when a restored table does not match the
	// size recorded in the manifest.
	ErrSizeMismatch = errors.New("backup: size mismatch")

	// ErrInvalidManifest is returned for manifests whose entries name
	// properties or objects that do not belong to the backup.
	ErrInvalidManifest = errors.New("backup: invalid manifest")
)
