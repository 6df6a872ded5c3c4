package wire

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// roundTrip encodes v, decodes the bytes into a fresh T and returns it.
func roundTrip[T any, P interface {
	*T
	Decodable
}](t *testing.T, v Encodable) T {
	t.Helper()
	data, err := Marshal(v)
	require.NoError(t, err)

	var out T
	require.NoError(t, Unmarshal(data, P(&out)))
	return out
}

func TestRoundTripRecords(t *testing.T) {
	v := vowels{s: "cwm", n: 1}
	assert.Equal(t, v, roundTrip[vowels](t, v))

	for _, c := range []color{
		{kind: "Red"},
		{kind: "Blue", s: "hi", n: -5},
		{kind: "Green", s: "", n: math.MaxInt32},
	} {
		assert.Equal(t, c, roundTrip[color](t, c))
	}

	s := scores{"alice": 3, "bob": -7, "": 0}
	assert.Equal(t, s, roundTrip[scores](t, s))
}

func TestRoundTripNestedMessage(t *testing.T) {
	params := rpcParams{val: "val", flag: true, n: -5}
	raw, err := Marshal(params)
	require.NoError(t, err)

	msg := message{id: 7, method: "call", params: raw}
	got := roundTrip[message](t, msg)
	assert.Equal(t, msg, got)

	var p rpcParams
	require.NoError(t, Unmarshal(got.params, &p))
	assert.Equal(t, params, p)
}

func TestRoundTripPrimitives(t *testing.T) {
	assert.Equal(t, Bool(true), roundTrip[Bool](t, Bool(true)))
	assert.Equal(t, Uint8(math.MaxUint8), roundTrip[Uint8](t, Uint8(math.MaxUint8)))
	assert.Equal(t, Uint16(math.MaxUint16), roundTrip[Uint16](t, Uint16(math.MaxUint16)))
	assert.Equal(t, Uint64(math.MaxUint64), roundTrip[Uint64](t, Uint64(math.MaxUint64)))
	assert.Equal(t, Int16(math.MinInt16), roundTrip[Int16](t, Int16(math.MinInt16)))
	assert.Equal(t, Int64(math.MinInt64), roundTrip[Int64](t, Int64(math.MinInt64)))
	assert.Equal(t, Float32(-0.15625), roundTrip[Float32](t, Float32(-0.15625)))
	assert.Equal(t, Float64(math.Pi), roundTrip[Float64](t, Float64(math.Pi)))
	assert.Equal(t, String("ü水"), roundTrip[String](t, String("ü水")))
	assert.Equal(t, Rune('水'), roundTrip[Rune](t, Rune('水')))
	assert.Equal(t, Bytes{0, 0xff}, roundTrip[Bytes](t, Bytes{0, 0xff}))
	assert.Equal(t, Unit{}, roundTrip[Unit](t, Unit{}))

	nan := roundTrip[Float64](t, Float64(math.NaN()))
	assert.True(t, math.IsNaN(float64(nan)))
	inf := roundTrip[Float32](t, Float32(math.Inf(-1)))
	assert.True(t, math.IsInf(float64(inf), -1))
}

func TestRoundTripGenerics(t *testing.T) {
	some := roundTrip[Option[String]](t, Some(String("x")))
	assert.Equal(t, Some(String("x")), some)

	none := roundTrip[Option[String]](t, None[String]())
	assert.False(t, none.Valid)

	nested := Seq[Seq[Int32]]{{1, -2}, {}, {math.MinInt32}}
	assert.Equal(t, nested, roundTrip[Seq[Seq[Int32]]](t, nested))

	opts := Seq[Option[Uint8]]{Some(Uint8(1)), None[Uint8](), Some(Uint8(0))}
	assert.Equal(t, opts, roundTrip[Seq[Option[Uint8]]](t, opts))
}

func TestRoundTripTag(t *testing.T) {
	data, err := Marshal(Tag{Number: 1, Content: Int64(1363896240)})
	require.NoError(t, err)

	var secs Int64
	got := Tag{Content: &secs}
	require.NoError(t, Unmarshal(data, &got))
	assert.Equal(t, uint64(1), got.Number)
	assert.Equal(t, Int64(1363896240), secs)

	// A tag without decodable content cannot be read.
	err = Unmarshal(data, &Tag{})
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestRoundTripRandomIntegers(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		n := r.Int63() >> uint(r.Intn(63))
		if r.Intn(2) == 0 {
			n = -n - 1
		}
		assert.Equal(t, Int64(n), roundTrip[Int64](t, Int64(n)))

		u := r.Uint64() >> uint(r.Intn(64))
		assert.Equal(t, Uint64(u), roundTrip[Uint64](t, Uint64(u)))
	}
}

func TestClone(t *testing.T) {
	src := vowels{s: "a", n: 2}
	var dst vowels
	require.NoError(t, Clone(src, &dst))
	assert.Equal(t, src, dst)

	// Narrower targets reject values that do not fit.
	var small Uint8
	err := Clone(Uint16(300), &small)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRange)
	assert.Contains(t, err.Error(), "failed to decode")
}

func TestEqual(t *testing.T) {
	// Width does not matter, only the value.
	assert.True(t, Equal(Uint8(5), Int64(5)))
	assert.True(t, Equal(vowels{s: "x"}, vowels{s: "x"}))
	assert.False(t, Equal(vowels{s: "x"}, vowels{s: "y"}))
	assert.False(t, Equal(Float32(1), Float64(1)))
	assert.False(t, Equal(Rune(-1), Rune(-1)))
}
