package wire

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encode(t *testing.T, v Encodable) []byte {
	t.Helper()
	data, err := Marshal(v)
	require.NoError(t, err)
	return data
}

func TestEncodeCanonicalUnsigned(t *testing.T) {
	tests := []struct {
		n    uint64
		want []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{23, []byte{0x17}},
		{24, []byte{0x18, 0x18}},
		{255, []byte{0x18, 0xff}},
		{256, []byte{0x19, 0x01, 0x00}},
		{65535, []byte{0x19, 0xff, 0xff}},
		{65536, []byte{0x1a, 0x00, 0x01, 0x00, 0x00}},
		{4294967295, []byte{0x1a, 0xff, 0xff, 0xff, 0xff}},
		{4294967296, []byte{0x1b, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00}},
		{math.MaxUint64, []byte{0x1b, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}},
	}

	for _, tt := range tests {
		got := encode(t, Uint64(tt.n))
		assert.Equal(t, tt.want, got, "Uint64(%d)", tt.n)

		// The source width never affects the output.
		if tt.n <= math.MaxUint8 {
			assert.Equal(t, tt.want, encode(t, Uint8(tt.n)), "Uint8(%d)", tt.n)
		}
		if tt.n <= math.MaxUint32 {
			assert.Equal(t, tt.want, encode(t, Uint32(tt.n)), "Uint32(%d)", tt.n)
		}
		if tt.n <= math.MaxInt64 {
			assert.Equal(t, tt.want, encode(t, Int64(tt.n)), "Int64(%d)", tt.n)
		}
	}
}

func TestEncodeCanonicalNegative(t *testing.T) {
	tests := []struct {
		n    int64
		want []byte
	}{
		{-1, []byte{0x20}},
		{-10, []byte{0x29}},
		{-24, []byte{0x37}},
		{-25, []byte{0x38, 0x18}},
		{-100, []byte{0x38, 0x63}},
		{math.MinInt8, []byte{0x38, 0x7f}},
		{-256, []byte{0x38, 0xff}},
		{-257, []byte{0x39, 0x01, 0x00}},
		{-1000, []byte{0x39, 0x03, 0xe7}},
		{math.MinInt16, []byte{0x39, 0x7f, 0xff}},
		{-65537, []byte{0x3a, 0x00, 0x01, 0x00, 0x00}},
		{math.MinInt32, []byte{0x3a, 0x7f, 0xff, 0xff, 0xff}},
		{-4294967297, []byte{0x3b, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00}},
		{math.MinInt64, []byte{0x3b, 0x7f, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, encode(t, Int64(tt.n)), "Int64(%d)", tt.n)
	}
}

func TestEncodePrimitives(t *testing.T) {
	tests := []struct {
		name string
		v    Encodable
		want []byte
	}{
		{"false", Bool(false), []byte{0xf4}},
		{"true", Bool(true), []byte{0xf5}},
		{"unit", Unit{}, []byte{0xf6}},
		{"none", None[Int8](), []byte{0xf6}},
		{"some", Some(Int8(-1)), []byte{0x20}},
		{"float32 1.5", Float32(1.5), []byte{0xfa, 0x3f, 0xc0, 0x00, 0x00}},
		{"float32 zero is not narrowed", Float32(0), []byte{0xfa, 0x00, 0x00, 0x00, 0x00}},
		{"float64 1.1", Float64(1.1), []byte{0xfb, 0x3f, 0xf1, 0x99, 0x99, 0x99, 0x99, 0x99, 0x9a}},
		{"float64 1.0 is not narrowed", Float64(1), []byte{0xfb, 0x3f, 0xf0, 0, 0, 0, 0, 0, 0}},
		{"empty text", String(""), []byte{0x60}},
		{"text", String("IETF"), []byte{0x64, 'I', 'E', 'T', 'F'}},
		{"text with escapes", String("\"\\"), []byte{0x62, 0x22, 0x5c}},
		{"text multibyte", String("水"), []byte{0x63, 0xe6, 0xb0, 0xb4}},
		{"rune", Rune('é'), []byte{0x62, 0xc3, 0xa9}},
		{"empty bytes", Bytes{}, []byte{0x40}},
		{"bytes", Bytes{1, 2, 3, 4}, []byte{0x44, 0x01, 0x02, 0x03, 0x04}},
		{"array", Seq[Uint8]{1, 2, 3, 4, 5}, []byte{0x85, 0x01, 0x02, 0x03, 0x04, 0x05}},
		{"empty array", Seq[Uint8]{}, []byte{0x80}},
		{"nested array", Seq[Seq[Uint8]]{{1}, {2, 3}}, []byte{0x82, 0x81, 0x01, 0x82, 0x02, 0x03}},
		{"tag", Tag{Number: 1, Content: Uint32(1363896240)}, []byte{0xc1, 0x1a, 0x51, 0x4b, 0x67, 0xb0}},
		{"wide tag", Tag{Number: 100000, Content: Bytes("hi")}, []byte{0xda, 0x00, 0x01, 0x86, 0xa0, 0x42, 'h', 'i'}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, encode(t, tt.v))
		})
	}
}

func TestEncodeStringLengths(t *testing.T) {
	tests := []struct {
		n    int
		head []byte
	}{
		{23, []byte{0x77}},
		{24, []byte{0x78, 0x18}},
		{255, []byte{0x78, 0xff}},
		{256, []byte{0x79, 0x01, 0x00}},
		{65536, []byte{0x7a, 0x00, 0x01, 0x00, 0x00}},
	}

	for _, tt := range tests {
		s := strings.Repeat("x", tt.n)
		got := encode(t, String(s))
		assert.Equal(t, tt.head, got[:len(tt.head)], "length %d", tt.n)
		assert.Len(t, got, len(tt.head)+tt.n)
	}
}

func TestEncodeStruct(t *testing.T) {
	got := encode(t, vowels{s: "cwm", n: 1})
	want := []byte{0xa2, 0x61, 's', 0x63, 'c', 'w', 'm', 0x61, 'n', 0x01}
	assert.Equal(t, want, got)
}

func TestEncodeVariants(t *testing.T) {
	tests := []struct {
		name string
		v    color
		want []byte
	}{
		{"unit", color{kind: "Red"}, []byte{0x63, 'R', 'e', 'd'}},
		{"tuple", color{kind: "Blue", s: "hi", n: 5}, []byte{0xa1, 0x64, 'B', 'l', 'u', 'e', 0x82, 0x62, 'h', 'i', 0x05}},
		// Struct cases drop their field names.
		{"struct", color{kind: "Green", s: "hi", n: 5}, []byte{0xa1, 0x65, 'G', 'r', 'e', 'e', 'n', 0x82, 0x62, 'h', 'i', 0x05}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, encode(t, tt.v))
		})
	}
}

func TestEncodeNewtypeVariant(t *testing.T) {
	got := encode(t, EncodeFunc(func(e *Encoder) error {
		return e.EncodeNewtypeVariant("Some", Uint8(42))
	}))
	assert.Equal(t, []byte{0xa1, 0x64, 'S', 'o', 'm', 'e', 0x81, 0x18, 0x2a}, got)
}

func TestEncodeMapKeys(t *testing.T) {
	got := encode(t, scores{"b": 2, "a": -1})
	assert.Equal(t, []byte{0xa2, 0x61, 'a', 0x20, 0x61, 'b', 0x02}, got)

	// A unit variant is written as its name and may serve as a key.
	got = encode(t, EncodeFunc(func(e *Encoder) error {
		return e.EncodeMap(1, func(m *MapEncoder) error {
			return m.Entry(color{kind: "Red"}, Bool(true))
		})
	}))
	assert.Equal(t, []byte{0xa1, 0x63, 'R', 'e', 'd', 0xf5}, got)
}

func TestEncodeInvalidMapKey(t *testing.T) {
	tests := []struct {
		name string
		key  Encodable
		got  Type
	}{
		{"int", Int32(5), TypeInt32},
		{"uint", Uint8(5), TypeUint8},
		{"bool", Bool(true), TypeBool},
		{"float", Float64(1), TypeFloat64},
		{"bytes", Bytes("k"), TypeBytes},
		{"unit", Unit{}, TypeNull},
		{"none", None[String](), TypeOption},
		{"array", Seq[String]{"k"}, TypeArray},
		{"map", scores{}, TypeMap},
		{"tag", Tag{Number: 1, Content: String("k")}, TypeTag},
		{"data variant", color{kind: "Blue"}, TypeVariant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Marshal(EncodeFunc(func(e *Encoder) error {
				return e.EncodeMap(1, func(m *MapEncoder) error {
					return m.Entry(tt.key, Int32(5))
				})
			}))
			require.ErrorIs(t, err, ErrInvalidMapKey)

			var cerr *Error
			require.True(t, errors.As(err, &cerr))
			assert.Equal(t, tt.got, cerr.Got)
			assert.Contains(t, err.Error(), tt.got.String())
		})
	}

	_, err := Marshal(intKeys{5: 5})
	assert.ErrorIs(t, err, ErrInvalidMapKey)
}

func TestEncodeKeyModeDoesNotLeak(t *testing.T) {
	// After a string key, the value may be anything.
	got := encode(t, EncodeFunc(func(e *Encoder) error {
		return e.EncodeMap(1, func(m *MapEncoder) error {
			return m.StringEntry("k", Seq[Int8]{-1})
		})
	}))
	assert.Equal(t, []byte{0xa1, 0x61, 'k', 0x81, 0x20}, got)
}

func TestEncodeByteSeq(t *testing.T) {
	got := encode(t, EncodeFunc(func(e *Encoder) error {
		return e.EncodeByteSeq(3, func(e *Encoder) error {
			for _, b := range []uint8{1, 2, 0xff} {
				if err := e.EncodeUint8(b); err != nil {
					return err
				}
			}
			return nil
		})
	}))
	assert.Equal(t, []byte{0x43, 0x01, 0x02, 0xff}, got)

	_, err := Marshal(EncodeFunc(func(e *Encoder) error {
		return e.EncodeByteSeq(1, func(e *Encoder) error {
			return e.EncodeString("x")
		})
	}))
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestEncodeCountMismatch(t *testing.T) {
	tests := []struct {
		name string
		fn   func(e *Encoder) error
	}{
		{"seq short", func(e *Encoder) error {
			return e.EncodeSeq(3, func(e *Encoder) error { return e.EncodeAll(Int8(1), Int8(2)) })
		}},
		{"seq long", func(e *Encoder) error {
			return e.EncodeSeq(1, func(e *Encoder) error { return e.EncodeAll(Int8(1), Int8(2)) })
		}},
		{"map short", func(e *Encoder) error {
			return e.EncodeMap(2, func(m *MapEncoder) error { return m.StringEntry("a", Int8(1)) })
		}},
		{"struct short", func(e *Encoder) error {
			return e.EncodeStruct(2, func(s *StructEncoder) error { return s.Field("a", Int8(1)) })
		}},
		{"tuple variant short", func(e *Encoder) error {
			return e.EncodeTupleVariant("V", 2, func(e *Encoder) error { return e.EncodeUnit() })
		}},
		{"byte seq short", func(e *Encoder) error {
			return e.EncodeByteSeq(2, func(e *Encoder) error { return e.EncodeUint8(1) })
		}},
		{"map value writes two items", func(e *Encoder) error {
			return e.EncodeMap(1, func(m *MapEncoder) error {
				return m.StringEntry("a", EncodeFunc(func(e *Encoder) error { return e.EncodeAll(Int8(1), Int8(2)) }))
			})
		}},
		{"tag payload writes nothing", func(e *Encoder) error {
			return e.EncodeTag(1, EncodeFunc(func(*Encoder) error { return nil }))
		}},
		{"top level writes nothing", func(*Encoder) error { return nil }},
		{"top level writes two items", func(e *Encoder) error {
			if err := e.EncodeUnit(); err != nil {
				return err
			}
			return e.EncodeUnit()
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Marshal(EncodeFunc(tt.fn))
			require.ErrorIs(t, err, ErrStructural)
			assert.ErrorIs(t, err, ErrLengthMismatch)
		})
	}
}

func TestEncodeDepthLimit(t *testing.T) {
	mode, err := EncOptions{MaxNestedLevels: 4}.EncMode()
	require.NoError(t, err)

	nest := func(levels int) Encodable {
		var v Encodable = Uint8(0)
		for i := 0; i < levels; i++ {
			v = Seq[Encodable]{v}
		}
		return v
	}

	_, err = mode.Marshal(nest(4))
	assert.NoError(t, err)

	_, err = mode.Marshal(nest(5))
	assert.ErrorIs(t, err, ErrDepthExceeded)
}

func TestEncodeInvalidRune(t *testing.T) {
	_, err := Marshal(Rune(0xd800))
	assert.ErrorIs(t, err, ErrInvalidUTF8)

	_, err = Marshal(Rune(-1))
	assert.ErrorIs(t, err, ErrInvalidUTF8)
}

func TestEncodeWriteError(t *testing.T) {
	err := NewEncoder(failWriter{}).Encode(String("hello"))
	require.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, errWrite)

	var cerr *Error
	require.True(t, errors.As(err, &cerr))
	assert.False(t, cerr.HasOffset())
}

func TestEncodeAllStream(t *testing.T) {
	var buf bytes.Buffer
	e := NewEncoder(&buf)

	require.NoError(t, e.EncodeAll(Uint8(1), String("a"), Unit{}))
	require.NoError(t, e.EncodeInt64(-2))
	assert.Equal(t, []byte{0x01, 0x61, 'a', 0xf6, 0x21}, buf.Bytes())
	assert.Equal(t, int64(5), e.BytesWritten())
}

func TestEncodeSlice(t *testing.T) {
	var buf bytes.Buffer
	err := EncodeSlice(NewEncoder(&buf), []string{"a", "b"}, (*Encoder).EncodeString)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x82, 0x61, 'a', 0x61, 'b'}, buf.Bytes())
}

func TestEncodeUnsupportedContent(t *testing.T) {
	_, err := Marshal(Tag{Number: 1, Content: 42})
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = Marshal(Seq[int]{1})
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestEncModeValidation(t *testing.T) {
	_, err := EncOptions{MaxNestedLevels: 3}.EncMode()
	assert.Error(t, err)

	_, err = EncOptions{MaxNestedLevels: 70000}.EncMode()
	assert.Error(t, err)

	_, err = DecOptions{MaxNestedLevels: 2}.DecMode()
	assert.Error(t, err)

	m, err := DecOptions{}.DecMode()
	require.NoError(t, err)
	opts := m.DecOptions()
	assert.Equal(t, DefaultMaxNestedLevels, opts.MaxNestedLevels)
	assert.Equal(t, uint64(DefaultMaxArrayElements), opts.MaxArrayElements)
	assert.Equal(t, uint64(DefaultMaxStringLen), opts.MaxStringLen)
}
