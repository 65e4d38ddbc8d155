package proptable

import (
	"fmt"
	"math"
	"strconv"
	"time"
	"unsafe"

	"github.com/hupe1980/proptable/internal/conv"
)

// Scalar is the set of storage types a Table can hold.
type Scalar interface {
	int8 | int16 | int32 | int64 | uint8 | uint16 | uint32 | uint64 | float32 | float64
}

// Kind identifies the concrete storage type of a table.
//
// Every storage-specific rule (sentinel default, string formatting, string
// parsing, element width) dispatches on Kind, so the full policy for a type
// lives in one switch arm.
type Kind uint8

const (
	KindInt8 Kind = iota + 1
	KindInt16
	KindInt32
	KindInt64
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
)

// Fixed output precision for floating point formatting.
const (
	// PrecisionFloat32 is used for float32 storage (prices).
	PrecisionFloat32 = 2
	// PrecisionFloat64 is used for float64 storage (coordinates).
	PrecisionFloat64 = 6
)

// datetimeLayout is ISO-8601 basic format without separators.
const datetimeLayout = "20060102T150405"

func (k Kind) String() string {
	switch k {
	case KindInt8:
		return "int8"
	case KindInt16:
		return "int16"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindUint8:
		return "uint8"
	case KindUint16:
		return "uint16"
	case KindUint32:
		return "uint32"
	case KindUint64:
		return "uint64"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Size returns the width of one element in bytes.
func (k Kind) Size() int {
	switch k {
	case KindInt8, KindUint8:
		return 1
	case KindInt16, KindUint16:
		return 2
	case KindInt32, KindUint32, KindFloat32:
		return 4
	case KindInt64, KindUint64, KindFloat64:
		return 8
	default:
		return 0
	}
}

// IsFloat reports whether the kind is a floating point type.
func (k Kind) IsFloat() bool {
	return k == KindFloat32 || k == KindFloat64
}

// KindOf returns the Kind for T.
func KindOf[T Scalar]() Kind {
	var zero T
	switch any(zero).(type) {
	case int8:
		return KindInt8
	case int16:
		return KindInt16
	case int32:
		return KindInt32
	case int64:
		return KindInt64
	case uint8:
		return KindUint8
	case uint16:
		return KindUint16
	case uint32:
		return KindUint32
	case uint64:
		return KindUint64
	case float32:
		return KindFloat32
	case float64:
		return KindFloat64
	}
	panic("unreachable")
}

// maxValue returns the largest representable value of T, the default sentinel.
func maxValue[T Scalar]() T {
	var v T
	switch p := any(&v).(type) {
	case *int8:
		*p = math.MaxInt8
	case *int16:
		*p = math.MaxInt16
	case *int32:
		*p = math.MaxInt32
	case *int64:
		*p = math.MaxInt64
	case *uint8:
		*p = math.MaxUint8
	case *uint16:
		*p = math.MaxUint16
	case *uint32:
		*p = math.MaxUint32
	case *uint64:
		*p = math.MaxUint64
	case *float32:
		*p = math.MaxFloat32
	case *float64:
		*p = math.MaxFloat64
	}
	return v
}

// formatter renders stored values as display strings.
type formatter struct {
	kind     Kind
	datetime bool
	loc      *time.Location
}

func (f formatter) format(v any) string {
	switch f.kind {
	case KindInt8:
		// Widen so the value is rendered as a number.
		return strconv.FormatInt(int64(int32(v.(int8))), 10)
	case KindInt16:
		return strconv.FormatInt(int64(v.(int16)), 10)
	case KindInt32:
		return strconv.FormatInt(int64(v.(int32)), 10)
	case KindInt64:
		x := v.(int64)
		if f.datetime {
			return time.Unix(x, 0).In(f.loc).Format(datetimeLayout)
		}
		return strconv.FormatInt(x, 10)
	case KindUint8:
		return strconv.FormatUint(uint64(v.(uint8)), 10)
	case KindUint16:
		return strconv.FormatUint(uint64(v.(uint16)), 10)
	case KindUint32:
		return strconv.FormatUint(uint64(v.(uint32)), 10)
	case KindUint64:
		return strconv.FormatUint(v.(uint64), 10)
	case KindFloat32:
		return strconv.FormatFloat(float64(v.(float32)), 'f', PrecisionFloat32, 64)
	case KindFloat64:
		return strconv.FormatFloat(v.(float64), 'f', PrecisionFloat64, 64)
	default:
		return ""
	}
}

// parseScalar converts s into a T according to the rules of kind k.
func parseScalar[T Scalar](k Kind, s string) (T, error) {
	var out T
	var err error

	switch p := any(&out).(type) {
	case *int8:
		// Parse wide, then narrow with an explicit range check.
		var wide int64
		if wide, err = strconv.ParseInt(s, 10, 32); err == nil {
			*p, err = conv.Int64ToInt8(wide)
		}
	case *int16:
		var x int64
		if x, err = strconv.ParseInt(s, 10, 16); err == nil {
			*p = int16(x)
		}
	case *int32:
		var x int64
		if x, err = strconv.ParseInt(s, 10, 32); err == nil {
			*p = int32(x)
		}
	case *int64:
		*p, err = strconv.ParseInt(s, 10, 64)
	case *uint8:
		var x uint64
		if x, err = strconv.ParseUint(s, 10, 8); err == nil {
			*p = uint8(x)
		}
	case *uint16:
		var x uint64
		if x, err = strconv.ParseUint(s, 10, 16); err == nil {
			*p = uint16(x)
		}
	case *uint32:
		var x uint64
		if x, err = strconv.ParseUint(s, 10, 32); err == nil {
			*p = uint32(x)
		}
	case *uint64:
		*p, err = strconv.ParseUint(s, 10, 64)
	case *float32:
		var x float64
		if x, err = strconv.ParseFloat(s, 32); err == nil {
			*p = float32(x)
		}
	case *float64:
		*p, err = strconv.ParseFloat(s, 64)
	}

	if err != nil {
		var zero T
		return zero, &ConversionError{Kind: k, Input: s, Err: err}
	}
	return out, nil
}

// asBytes views a scalar slice as its raw in-memory bytes.
func asBytes[T Scalar](values []T) []byte {
	if len(values) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(&values[0])), len(values)*int(unsafe.Sizeof(zero))) //nolint:gosec // raw layout dump
}
