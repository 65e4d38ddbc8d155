package backup

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/hupe1980/proptable"
	"github.com/hupe1980/proptable/catalog"
)

const (
	// ManifestFileName is the object written last to commit a backup.
	ManifestFileName = "MANIFEST.json"

	// SchemaObjectName is the object holding the catalog schema.
	SchemaObjectName = "schema.json"

	manifestVersion = 1
)

// Manifest describes one backup.
type Manifest struct {
	Version     int             `json:"version"`
	ID          string          `json:"id"`
	Created     time.Time       `json:"created"`
	Compression Compression     `json:"compression"`
	SourceDir   string          `json:"source_dir"`
	Properties  []PropertyEntry `json:"properties"`
}

// PropertyEntry describes one backed-up table.
type PropertyEntry struct {
	Name     string                 `json:"name"`
	Type     proptable.PropertyType `json:"type"`
	Elements int64                  `json:"elements"`
	// RawSize is the size of the table file in bytes.
	RawSize int64 `json:"raw_size"`
	// StoredSize is the size of the uploaded object in bytes.
	StoredSize int64 `json:"stored_size"`
	// Object is empty for properties that had no table file.
	Object string `json:"object,omitempty"`
}

// Property returns the entry for name.
func (m *Manifest) Property(name string) (PropertyEntry, bool) {
	for _, p := range m.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return PropertyEntry{}, false
}

// TotalRawSize returns the sum of all table file sizes.
func (m *Manifest) TotalRawSize() int64 {
	var n int64
	for _, p := range m.Properties {
		n += p.RawSize
	}
	return n
}

func manifestName(id string) string { return path.Join(id, ManifestFileName) }

func schemaName(id string) string { return path.Join(id, SchemaObjectName) }

func objectName(id, property string, c Compression) string {
	return path.Join(id, property+".ptb"+c.Ext())
}

// validate checks that every entry of a manifest loaded for backup id names a
// valid property and, when present, an object stored under the backup.
func (m *Manifest) validate(id string) error {
	prefix := id + "/"
	for _, p := range m.Properties {
		if err := catalog.ValidateName(p.Name); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidManifest, err)
		}
		if p.Object == "" {
			continue
		}
		if !strings.HasPrefix(p.Object, prefix) || path.Clean(p.Object) != p.Object {
			return fmt.Errorf("%w: property %q: object %q outside backup %s", ErrInvalidManifest, p.Name, p.Object, id)
		}
	}
	return nil
}
