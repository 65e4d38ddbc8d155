package proptable

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConversion is returned when a value cannot be converted to the
	// storage type of a table.
	ErrInvalidConversion = errors.New("invalid conversion")

	// ErrUnsupportedPropertyType is returned for property types without a
	// storage mapping.
	ErrUnsupportedPropertyType = errors.New("unsupported property type")

	// ErrInvalidPosition is returned for negative positions.
	ErrInvalidPosition = errors.New("invalid position")

	// ErrCorruptFile is returned when a table file does not match its header.
	ErrCorruptFile = errors.New("corrupt table file")
)

// ConversionError describes a failed string-to-scalar conversion.
//
// It matches ErrInvalidConversion via errors.Is; the parser error can be
// accessed via errors.Unwrap.
type ConversionError struct {
	Kind  Kind
	Input string
	Err   error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("invalid conversion: %q to %s: %v", e.Input, e.Kind, e.Err)
}

func (e *ConversionError) Is(target error) bool { return target == ErrInvalidConversion }

func (e *ConversionError) Unwrap() error { return e.Err }

// CorruptFileError describes a table file whose size disagrees with its
// element count.
type CorruptFileError struct {
	Path     string
	Count    uint64
	Size     int64
	Expected int64
}

func (e *CorruptFileError) Error() string {
	return fmt.Sprintf("corrupt table file %s: header count %d needs %d bytes, file has %d",
		e.Path, e.Count, e.Expected, e.Size)
}

func (e *CorruptFileError) Is(target error) bool { return target == ErrCorruptFile }
