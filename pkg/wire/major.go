package wire

// Major is the 3-bit major type of a marker byte.
type Major uint8

const (
	MajorUint   Major = 0
	MajorNegInt Major = 1
	MajorBytes  Major = 2
	MajorText   Major = 3
	MajorArray  Major = 4
	MajorMap    Major = 5
	MajorTag    Major = 6
	MajorSimple Major = 7
)

// String returns the major type name.
func (m Major) String() string {
	switch m {
	case MajorUint:
		return "unsigned integer"
	case MajorNegInt:
		return "negative integer"
	case MajorBytes:
		return "byte string"
	case MajorText:
		return "text string"
	case MajorArray:
		return "array"
	case MajorMap:
		return "map"
	case MajorTag:
		return "tag"
	case MajorSimple:
		return "simple value"
	default:
		return "unknown"
	}
}

// Additional info values.
const (
	addMaxInline  = 23
	addUint8      = 24
	addUint16     = 25
	addUint32     = 26
	addUint64     = 27
	addIndefinite = 31
)

// Simple values (major type 7).
const (
	simpleFalse     = 20
	simpleTrue      = 21
	simpleNull      = 22
	simpleUndefined = 23
	simpleExtended  = 24
	simpleFloat16   = 25
	simpleFloat32   = 26
	simpleFloat64   = 27
)

// Marker composes a marker byte from a major type and additional info.
func Marker(major Major, additional uint8) byte {
	return byte(major)<<5 | additional&0x1f
}

// MajorOf extracts the major type from a marker byte.
func MajorOf(marker byte) Major {
	return Major(marker >> 5)
}

// AdditionalOf extracts the additional info from a marker byte.
func AdditionalOf(marker byte) uint8 {
	return marker & 0x1f
}

// Type names the kind of value involved in a type mismatch or an invalid
// map key.
type Type uint8

const (
	TypeUnknown Type = iota
	TypeUint
	TypeUint8
	TypeUint16
	TypeUint32
	TypeUint64
	TypeInt
	TypeInt8
	TypeInt16
	TypeInt32
	TypeInt64
	TypeFloat
	TypeFloat32
	TypeFloat64
	TypeBool
	TypeNull
	TypeUndefined
	TypeBytes
	TypeText
	TypeArray
	TypeMap
	TypeTag
	TypeVariant
	TypeOption
)

var typeNames = [...]string{
	TypeUnknown:   "unknown",
	TypeUint:      "uint",
	TypeUint8:     "uint8",
	TypeUint16:    "uint16",
	TypeUint32:    "uint32",
	TypeUint64:    "uint64",
	TypeInt:       "int",
	TypeInt8:      "int8",
	TypeInt16:     "int16",
	TypeInt32:     "int32",
	TypeInt64:     "int64",
	TypeFloat:     "float",
	TypeFloat32:   "float32",
	TypeFloat64:   "float64",
	TypeBool:      "bool",
	TypeNull:      "null",
	TypeUndefined: "undefined",
	TypeBytes:     "bytes",
	TypeText:      "text",
	TypeArray:     "array",
	TypeMap:       "map",
	TypeTag:       "tag",
	TypeVariant:   "variant",
	TypeOption:    "option",
}

// String returns the type name.
func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "unknown"
}

// typeOfMajor returns the broad Type for a major type.
func typeOfMajor(m Major) Type {
	switch m {
	case MajorUint:
		return TypeUint
	case MajorNegInt:
		return TypeInt
	case MajorBytes:
		return TypeBytes
	case MajorText:
		return TypeText
	case MajorArray:
		return TypeArray
	case MajorMap:
		return TypeMap
	case MajorTag:
		return TypeTag
	default:
		return TypeUnknown
	}
}
