package catalog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hupe1980/proptable"
	"github.com/hupe1980/proptable/codec"
	"github.com/hupe1980/proptable/internal/fs"
)

const (
	// SchemaFileName is the name of the schema file inside a catalog directory.
	SchemaFileName = "schema.json"

	// TableExt is the file extension of table files.
	TableExt = ".ptb"

	schemaVersion = 1
)

// Schema maps property names to their types.
type Schema struct {
	Version    int                               `json:"version"`
	Properties map[string]proptable.PropertyType `json:"properties"`
}

// ReadSchema reads the schema file in dir. A missing file yields an empty
// schema.
func ReadSchema(dir string, c codec.Codec) (*Schema, error) {
	return readSchema(fs.Default, dir, c)
}

func readSchema(fsys fs.FileSystem, dir string, c codec.Codec) (*Schema, error) {
	data, err := fs.ReadFile(fsys, filepath.Join(dir, SchemaFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return &Schema{Version: schemaVersion, Properties: map[string]proptable.PropertyType{}}, nil
		}
		return nil, err
	}
	return DecodeSchema(data, c)
}

// DecodeSchema decodes a schema file.
func DecodeSchema(data []byte, c codec.Codec) (*Schema, error) {
	s := &Schema{}
	if err := c.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("catalog: decode schema: %w", err)
	}
	if s.Version != schemaVersion {
		return nil, fmt.Errorf("catalog: unsupported schema version %d", s.Version)
	}
	if s.Properties == nil {
		s.Properties = map[string]proptable.PropertyType{}
	}
	for name, pt := range s.Properties {
		if err := ValidateName(name); err != nil {
			return nil, err
		}
		if _, err := pt.StorageKind(); err != nil {
			return nil, fmt.Errorf("catalog: property %q: %w", name, err)
		}
	}
	return s, nil
}

func writeSchema(fsys fs.FileSystem, dir string, c codec.Codec, s *Schema) error {
	data, err := c.Marshal(s)
	if err != nil {
		return err
	}
	_, err = fs.WriteFileAtomic(fsys, filepath.Join(dir, SchemaFileName), 0o644, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
	return err
}

// ValidateName reports whether name can be used as a property name. Names
// map to file names inside the catalog directory, so they must be a single
// path element.
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name || name == SchemaFileName {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// TablePath returns the file path of property name inside dir.
func TablePath(dir, name string) string {
	return filepath.Join(dir, name+TableExt)
}
