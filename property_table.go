package proptable

import "github.com/RoaringBitmap/roaring/v2"

// PropertyTable is the storage-type independent view of a Table.
//
// Search, sort and group code resolves a property name to a PropertyTable and
// works through this interface; every *Table[T] implements it.
type PropertyTable interface {
	Type() PropertyType
	Kind() Kind

	Size() int
	IsValid(pos int) bool
	ValidCount() int

	GetInt32(pos int) (int32, bool)
	GetInt64(pos int) (int64, bool)
	GetFloat32(pos int) (float32, bool)
	GetFloat64(pos int) (float64, bool)
	GetFloat64Pair(pos int) (low, high float64, ok bool)
	GetInt64Pair(pos int) (low, high int64, ok bool)
	GetString(pos int) (string, bool)

	Min() (float32, bool)
	Max() (float32, bool)
	Compare(lhs, rhs int) int
	SortPositions(positions []uint32, descending bool)
	ValidBitmap() *roaring.Bitmap
	FilterFloat64(lo, hi float64) *roaring.Bitmap

	SetInt32(pos int, v int32)
	SetInt64(pos int, v int64)
	SetFloat32(pos int, v float32)
	SetFloat64(pos int, v float64)
	SetString(pos int, s string) error
	Copy(from, to int)
	Clear(pos int)
	Resize(n int)

	Init(path string) error
	Flush() error
	Path() string
	Dirty() bool
	Bytes() []byte
}

var (
	_ PropertyTable = (*Table[int8])(nil)
	_ PropertyTable = (*Table[int16])(nil)
	_ PropertyTable = (*Table[int32])(nil)
	_ PropertyTable = (*Table[int64])(nil)
	_ PropertyTable = (*Table[uint8])(nil)
	_ PropertyTable = (*Table[uint16])(nil)
	_ PropertyTable = (*Table[uint32])(nil)
	_ PropertyTable = (*Table[uint64])(nil)
	_ PropertyTable = (*Table[float32])(nil)
	_ PropertyTable = (*Table[float64])(nil)
)

// NewForType creates a table with the storage type that matches propertyType:
//
//	Int8 → int8, Int16 → int16, Int32 → int32, Int64 and Datetime → int64,
//	Uint32 → uint32, Uint64 → uint64, Float → float32, Double → float64.
func NewForType(propertyType PropertyType, optFns ...Option) (PropertyTable, error) {
	kind, err := propertyType.StorageKind()
	if err != nil {
		return nil, err
	}
	switch kind {
	case KindInt8:
		return New[int8](propertyType, optFns...), nil
	case KindInt16:
		return New[int16](propertyType, optFns...), nil
	case KindInt32:
		return New[int32](propertyType, optFns...), nil
	case KindInt64:
		return New[int64](propertyType, optFns...), nil
	case KindUint32:
		return New[uint32](propertyType, optFns...), nil
	case KindUint64:
		return New[uint64](propertyType, optFns...), nil
	case KindFloat32:
		return New[float32](propertyType, optFns...), nil
	case KindFloat64:
		return New[float64](propertyType, optFns...), nil
	default:
		return nil, ErrUnsupportedPropertyType
	}
}
