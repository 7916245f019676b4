package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataTypeWidths(t *testing.T) {
	tests := []struct {
		dt   DataType
		size int
	}{
		{DTFloat, 4},
		{DTDouble, 8},
		{DTInt32, 4},
		{DTUint8, 1},
		{DTInt16, 2},
		{DTInt8, 1},
		{DTString, 0},
		{DTInt64, 8},
		{DTUint16, 2},
		{DTBool, 1},
		{DTHalf, 2},
		{DTUint32, 4},
	}

	for _, tt := range tests {
		t.Run(tt.dt.String(), func(t *testing.T) {
			assert.True(t, tt.dt.Valid())
			assert.Equal(t, tt.size, tt.dt.Size())
		})
	}
	assert.False(t, DTInvalid.Valid())
	assert.False(t, DataType(11).Valid())
}

func TestParseDataType(t *testing.T) {
	tests := map[string]DataType{
		"float32": DTFloat,
		"DT_HALF": DTHalf,
		"half":    DTHalf,
		"double":  DTDouble,
		" int8 ":  DTInt8,
		"22":      DTUint32,
	}
	for in, want := range tests {
		got, err := ParseDataType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseDataType("complex64")
	assert.Error(t, err)
	for _, in := range []string{"11", "1garbage", "1 2", "+", "4294967297"} {
		_, err = ParseDataType(in)
		assert.Error(t, err, in)
	}
}

func TestDataTypeJSON(t *testing.T) {
	data, err := json.Marshal([]DataType{DTFloat, DTHalf})
	require.NoError(t, err)
	assert.Equal(t, `["float32","float16"]`, string(data))

	var got []DataType
	require.NoError(t, json.Unmarshal([]byte(`["DT_INT32", 8]`), &got))
	assert.Equal(t, []DataType{DTInt32, DTInt64}, got)

	assert.Error(t, json.Unmarshal([]byte(`[99]`), &got))
	assert.Error(t, json.Unmarshal([]byte(`[true]`), &got))
}

func TestParseDeviceType(t *testing.T) {
	d, err := ParseDeviceType("GPU")
	require.NoError(t, err)
	assert.Equal(t, DeviceOpenCL, d)
	assert.Equal(t, "opencl", d.String())

	_, err = ParseDeviceType("tpu")
	assert.Error(t, err)
	assert.Equal(t, "normal", NetModeNormal.String())
}
