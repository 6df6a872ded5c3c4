package wire

import (
	"errors"
	"fmt"
	"sort"

	"github.com/mash-protocol/cbor-go/pkg/log"
)

var errShortTuple = errors.New("short tuple")

// nextField pulls one required positional field.
func nextField(s *SeqAccess, v Decodable) error {
	ok, err := s.Next(v)
	if err == nil && !ok {
		err = errShortTuple
	}
	return err
}

// color is a sum type with a unit, a tuple and a struct case.
type color struct {
	kind string
	s    string
	n    int32
}

func (c color) EncodeCBOR(e *Encoder) error {
	switch c.kind {
	case "Red":
		return e.EncodeUnitVariant("Red")
	case "Blue":
		return e.EncodeTupleVariant("Blue", 2, func(e *Encoder) error {
			if err := e.EncodeString(c.s); err != nil {
				return err
			}
			return e.EncodeInt32(c.n)
		})
	case "Green":
		return e.EncodeStructVariant("Green", 2, func(s *StructEncoder) error {
			if err := s.Field("s", String(c.s)); err != nil {
				return err
			}
			return s.Field("n", Int32(c.n))
		})
	default:
		return fmt.Errorf("unknown color %q", c.kind)
	}
}

func (c *color) DecodeCBOR(d *Decoder) error {
	return d.DecodeVariant(func(name string, va *VariantAccess) error {
		c.kind = name
		switch name {
		case "Red":
			return va.Unit()
		case "Blue", "Green":
			return va.Tuple(func(s *SeqAccess) error {
				if err := nextField(s, (*String)(&c.s)); err != nil {
					return err
				}
				return nextField(s, (*Int32)(&c.n))
			})
		default:
			return fmt.Errorf("unknown color %q", name)
		}
	})
}

// vowels is a record encoded as a map of named fields.
type vowels struct {
	s string
	n uint32
}

func (v vowels) EncodeCBOR(e *Encoder) error {
	return e.EncodeStruct(2, func(s *StructEncoder) error {
		if err := s.Field("s", String(v.s)); err != nil {
			return err
		}
		return s.Field("n", Uint32(v.n))
	})
}

func (v *vowels) DecodeCBOR(d *Decoder) error {
	return d.DecodeStruct(func(name string, d *Decoder) error {
		var err error
		switch name {
		case "s":
			v.s, err = d.DecodeString()
		case "n":
			v.n, err = d.DecodeUint32()
		default:
			err = d.Skip()
		}
		return err
	})
}

// scores is a string-keyed map, written in key order.
type scores map[string]int32

func (m scores) EncodeCBOR(e *Encoder) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return e.EncodeMap(len(m), func(me *MapEncoder) error {
		for _, k := range keys {
			if err := me.StringEntry(k, Int32(m[k])); err != nil {
				return err
			}
		}
		return nil
	})
}

func (m *scores) DecodeCBOR(d *Decoder) error {
	return d.DecodeMap(func(ma *MapAccess) error {
		out := make(scores, ma.SizeHint())
		for {
			k, ok, err := ma.NextStringKey()
			if err != nil {
				return err
			}
			if !ok {
				break
			}
			var v Int32
			if err := ma.Value(&v); err != nil {
				return err
			}
			out[k] = int32(v)
		}
		*m = out
		return nil
	})
}

// intKeys is a map with integer keys, which the encoder must refuse.
type intKeys map[int32]int32

func (m intKeys) EncodeCBOR(e *Encoder) error {
	return e.EncodeMap(len(m), func(me *MapEncoder) error {
		for k, v := range m {
			if err := me.Entry(Int32(k), Int32(v)); err != nil {
				return err
			}
		}
		return nil
	})
}

// message carries nested encoded params as a byte string.
type message struct {
	id     int64
	method string
	params Bytes
}

func (m message) EncodeCBOR(e *Encoder) error {
	return e.EncodeStruct(3, func(s *StructEncoder) error {
		if err := s.Field("id", Int64(m.id)); err != nil {
			return err
		}
		if err := s.Field("method", String(m.method)); err != nil {
			return err
		}
		return s.Field("params", m.params)
	})
}

func (m *message) DecodeCBOR(d *Decoder) error {
	return d.DecodeStruct(func(name string, d *Decoder) error {
		switch name {
		case "id":
			return d.Decode((*Int64)(&m.id))
		case "method":
			return d.Decode((*String)(&m.method))
		case "params":
			return d.Decode(&m.params)
		default:
			return d.Skip()
		}
	})
}

// rpcParams is the ("val", true, -5) tuple carried inside a message.
type rpcParams struct {
	val  string
	flag bool
	n    int32
}

func (p rpcParams) EncodeCBOR(e *Encoder) error {
	return e.EncodeSeq(3, func(e *Encoder) error {
		return e.EncodeAll(String(p.val), Bool(p.flag), Int32(p.n))
	})
}

func (p *rpcParams) DecodeCBOR(d *Decoder) error {
	return d.DecodeSeq(func(s *SeqAccess) error {
		for _, v := range []Decodable{(*String)(&p.val), (*Bool)(&p.flag), (*Int32)(&p.n)} {
			if err := nextField(s, v); err != nil {
				return err
			}
		}
		return nil
	})
}

// failWriter fails every write.
type failWriter struct{}

var errWrite = errors.New("disk full")

func (failWriter) Write([]byte) (int, error) { return 0, errWrite }

// recordingLogger collects trace events.
type recordingLogger struct {
	events []log.Event
}

func (r *recordingLogger) Log(event log.Event) {
	r.events = append(r.events, event)
}
