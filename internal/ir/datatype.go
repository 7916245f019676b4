package ir

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// DataType is the element type of a tensor or operator output.
// Numeric values match the serialized model format.
type DataType int32

const (
	DTInvalid DataType = 0
	DTFloat   DataType = 1
	DTDouble  DataType = 2
	DTInt32   DataType = 3
	DTUint8   DataType = 4
	DTInt16   DataType = 5
	DTInt8    DataType = 6
	DTString  DataType = 7
	DTInt64   DataType = 8
	DTUint16  DataType = 9
	DTBool    DataType = 10
	DTHalf    DataType = 19
	DTUint32  DataType = 22
)

type dataTypeInfo struct {
	name  string
	alias string
	size  int // bytes per element; 0 = variable width
}

var dataTypes = map[DataType]dataTypeInfo{
	DTInvalid: {"invalid", "DT_INVALID", 0},
	DTFloat:   {"float32", "DT_FLOAT", 4},
	DTDouble:  {"float64", "DT_DOUBLE", 8},
	DTInt32:   {"int32", "DT_INT32", 4},
	DTUint8:   {"uint8", "DT_UINT8", 1},
	DTInt16:   {"int16", "DT_INT16", 2},
	DTInt8:    {"int8", "DT_INT8", 1},
	DTString:  {"string", "DT_STRING", 0},
	DTInt64:   {"int64", "DT_INT64", 8},
	DTUint16:  {"uint16", "DT_UINT16", 2},
	DTBool:    {"bool", "DT_BOOL", 1},
	DTHalf:    {"float16", "DT_HALF", 2},
	DTUint32:  {"uint32", "DT_UINT32", 4},
}

// Valid reports whether dt is a member of the enumeration other than DTInvalid.
func (dt DataType) Valid() bool {
	_, ok := dataTypes[dt]
	return ok && dt != DTInvalid
}

// Size returns the byte width of one element.
// DTString and DTInvalid have no fixed width and return 0.
func (dt DataType) Size() int {
	return dataTypes[dt].size
}

// FixedWidth reports whether elements of dt have a known byte width.
func (dt DataType) FixedWidth() bool {
	return dt.Size() > 0
}

func (dt DataType) String() string {
	if info, ok := dataTypes[dt]; ok {
		return info.name
	}
	return fmt.Sprintf("DataType(%d)", int32(dt))
}

// ParseDataType accepts the short names ("float32", "float16", ...), the
// DT_* spellings and the decimal enumeration value.
func ParseDataType(s string) (DataType, error) {
	s = strings.TrimSpace(s)
	for dt, info := range dataTypes {
		if strings.EqualFold(s, info.name) || strings.EqualFold(s, info.alias) {
			return dt, nil
		}
	}
	switch strings.ToLower(s) {
	case "float":
		return DTFloat, nil
	case "double":
		return DTDouble, nil
	case "half":
		return DTHalf, nil
	}
	if n, err := strconv.ParseInt(s, 10, 32); err == nil {
		if _, ok := dataTypes[DataType(n)]; ok {
			return DataType(n), nil
		}
	}
	return DTInvalid, fmt.Errorf("unknown data type %q", s)
}

// MarshalJSON encodes the data type by its short name.
func (dt DataType) MarshalJSON() ([]byte, error) {
	if _, ok := dataTypes[dt]; !ok {
		return nil, fmt.Errorf("unknown data type %d", int32(dt))
	}
	return json.Marshal(dt.String())
}

// UnmarshalJSON accepts a name or the numeric enumeration value.
func (dt *DataType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := ParseDataType(s)
		if err != nil {
			return err
		}
		*dt = parsed
		return nil
	}
	var n int32
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("data type must be a name or integer: %s", string(data))
	}
	if _, ok := dataTypes[DataType(n)]; !ok {
		return fmt.Errorf("unknown data type %d", n)
	}
	*dt = DataType(n)
	return nil
}

// NetMode selects which of a model's graphs a NetDef describes.
type NetMode int32

const (
	NetModeInit   NetMode = 0
	NetModeNormal NetMode = 1
)

func (m NetMode) String() string {
	switch m {
	case NetModeInit:
		return "init"
	case NetModeNormal:
		return "normal"
	default:
		return fmt.Sprintf("NetMode(%d)", int32(m))
	}
}

// DeviceType names the runtime a graph was planned for.
type DeviceType int32

const (
	DeviceCPU    DeviceType = 0
	DeviceNEON   DeviceType = 1
	DeviceOpenCL DeviceType = 2
)

func (d DeviceType) String() string {
	switch d {
	case DeviceCPU:
		return "cpu"
	case DeviceNEON:
		return "neon"
	case DeviceOpenCL:
		return "opencl"
	default:
		return fmt.Sprintf("DeviceType(%d)", int32(d))
	}
}

// ParseDeviceType is the inverse of DeviceType.String.
func ParseDeviceType(s string) (DeviceType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cpu":
		return DeviceCPU, nil
	case "neon":
		return DeviceNEON, nil
	case "opencl", "gpu":
		return DeviceOpenCL, nil
	default:
		return DeviceCPU, fmt.Errorf("unknown device type %q", s)
	}
}

// Graph-level attribute names carrying the net mode and target device.
const (
	ArgNetMode = "mode"
	ArgDevice  = "device"
)

// Mode returns the net mode recorded in the graph's "mode" attribute.
func (n *NetDef) Mode() (NetMode, bool) {
	a, ok := n.ArgByName(ArgNetMode)
	if !ok || !a.HasI() {
		return NetModeNormal, false
	}
	return NetMode(a.MustI()), true
}

// Device returns the target device recorded in the graph's "device"
// attribute.
func (n *NetDef) Device() (DeviceType, bool) {
	a, ok := n.ArgByName(ArgDevice)
	if !ok || !a.HasI() {
		return DeviceCPU, false
	}
	return DeviceType(a.MustI()), true
}

// ParseNetMode is the inverse of NetMode.String.
func ParseNetMode(s string) (NetMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "init":
		return NetModeInit, nil
	case "normal", "":
		return NetModeNormal, nil
	default:
		return NetModeNormal, fmt.Errorf("unknown net mode %q", s)
	}
}
