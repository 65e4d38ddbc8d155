package proptable

import (
	"fmt"
	"strings"
)

// PropertyType is the logical type of a document property.
//
// It is independent of the storage kind: a Datetime property is stored as
// int64 seconds but formats differently from a plain Int64 property.
type PropertyType uint8

const (
	Unknown PropertyType = iota
	Int8
	Int16
	Int32
	Int64
	Uint32
	Uint64
	Float
	Double
	Datetime
)

var propertyTypeNames = map[PropertyType]string{
	Unknown:  "unknown",
	Int8:     "int8",
	Int16:    "int16",
	Int32:    "int32",
	Int64:    "int64",
	Uint32:   "uint32",
	Uint64:   "uint64",
	Float:    "float",
	Double:   "double",
	Datetime: "datetime",
}

func (p PropertyType) String() string {
	if name, ok := propertyTypeNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PropertyType(%d)", uint8(p))
}

// StorageKind returns the Kind used to store values of this property type.
func (p PropertyType) StorageKind() (Kind, error) {
	switch p {
	case Int8:
		return KindInt8, nil
	case Int16:
		return KindInt16, nil
	case Int32:
		return KindInt32, nil
	case Int64, Datetime:
		return KindInt64, nil
	case Uint32:
		return KindUint32, nil
	case Uint64:
		return KindUint64, nil
	case Float:
		return KindFloat32, nil
	case Double:
		return KindFloat64, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedPropertyType, p)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p PropertyType) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *PropertyType) UnmarshalText(text []byte) error {
	v, err := ParsePropertyType(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// ParsePropertyType parses the name of a property type (case-insensitive).
func ParsePropertyType(s string) (PropertyType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for p, n := range propertyTypeNames {
		if p != Unknown && n == name {
			return p, nil
		}
	}
	return Unknown, fmt.Errorf("%w: %q", ErrUnsupportedPropertyType, s)
}
