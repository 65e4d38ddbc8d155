package proptable

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropertyType_StorageKind(t *testing.T) {
	tests := []struct {
		pt   PropertyType
		kind Kind
	}{
		{Int8, KindInt8},
		{Int16, KindInt16},
		{Int32, KindInt32},
		{Int64, KindInt64},
		{Datetime, KindInt64},
		{Uint32, KindUint32},
		{Uint64, KindUint64},
		{Float, KindFloat32},
		{Double, KindFloat64},
	}
	for _, tt := range tests {
		t.Run(tt.pt.String(), func(t *testing.T) {
			kind, err := tt.pt.StorageKind()
			require.NoError(t, err)
			assert.Equal(t, tt.kind, kind)

			tbl, err := NewForType(tt.pt)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, tbl.Kind())
			assert.Equal(t, tt.pt, tbl.Type())
		})
	}

	_, err := Unknown.StorageKind()
	assert.ErrorIs(t, err, ErrUnsupportedPropertyType)
	_, err = NewForType(PropertyType(200))
	assert.ErrorIs(t, err, ErrUnsupportedPropertyType)
}

func TestPropertyType_Parse(t *testing.T) {
	pt, err := ParsePropertyType(" DateTime ")
	require.NoError(t, err)
	assert.Equal(t, Datetime, pt)

	_, err = ParsePropertyType("unknown")
	assert.ErrorIs(t, err, ErrUnsupportedPropertyType)
	_, err = ParsePropertyType("string")
	assert.ErrorIs(t, err, ErrUnsupportedPropertyType)

	assert.Equal(t, "PropertyType(200)", PropertyType(200).String())
}

func TestPropertyType_JSON(t *testing.T) {
	in := map[string]PropertyType{"price": Float, "ts": Datetime}

	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"price":"float","ts":"datetime"}`, string(data))

	var out map[string]PropertyType
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)

	assert.Error(t, json.Unmarshal([]byte(`{"x":"blob"}`), &out))
}
