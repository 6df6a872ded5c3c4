// Package wire implements the CBOR value codec used by MASH tooling.
//
// The wire format is a subset of CBOR (RFC 8949): every item starts with a
// marker byte holding the major type in the high 3 bits and the additional
// info in the low 5 bits. Lengths are always definite; indefinite-length
// items are rejected.
//
// # Encoding
//
// Values implement Encodable and drive an Encoder with one call per node:
//
//	func (p Point) EncodeCBOR(e *wire.Encoder) error {
//	    return e.EncodeStruct(2, func(s *wire.StructEncoder) error {
//	        if err := s.Field("x", wire.Int64(p.X)); err != nil {
//	            return err
//	        }
//	        return s.Field("y", wire.Int64(p.Y))
//	    })
//	}
//
// The encoder always picks the narrowest integer width (canonical width).
// Map keys must be text strings.
//
// # Decoding
//
// Values implement Decodable and pull their fields from a Decoder, either
// through typed helpers (DecodeUint32, DecodeString, DecodeSeq, ...) or by
// passing a Visitor to DecodeAny. Composite items are exposed as bounded
// pull cursors (SeqAccess, MapAccess). The decoder accepts any integer
// width, not only the canonical one.
//
// # Variants
//
// Sum types use an application-level convention on top of plain CBOR:
//   - Unit case: a text string holding the case name.
//   - Data case: a map with exactly one pair whose key is the case name and
//     whose value is an array of the case's fields in declaration order.
//
// A generic CBOR reader sees these as ordinary strings and maps.
//
// # Tags
//
// Tagged values are a bare major type 6 number followed directly by the
// payload item.
package wire
