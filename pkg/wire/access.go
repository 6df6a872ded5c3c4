package wire

import "fmt"

// maxSizeHint caps capacity hints derived from untrusted counts.
const maxSizeHint = 4096

// SeqAccess is a bounded pull cursor over the elements of an array.
// Elements are decoded one at a time on demand. Every declared element must
// be pulled before the visitor returns.
type SeqAccess struct {
	d         *Decoder
	declared  uint64
	remaining uint64
}

// Len returns the declared element count.
func (s *SeqAccess) Len() int { return int(s.declared) }

// Remaining returns the number of elements not yet pulled.
func (s *SeqAccess) Remaining() int { return int(s.remaining) }

// SizeHint returns a capacity suitable for preallocating a slice of the
// remaining elements. It is capped, so a hostile count cannot force a large
// allocation.
func (s *SeqAccess) SizeHint() int {
	return int(min(s.remaining, maxSizeHint))
}

// Next decodes the next element into v. It returns false once every
// declared element has been pulled.
func (s *SeqAccess) Next(v Decodable) (bool, error) {
	if s.remaining == 0 {
		return false, nil
	}
	s.remaining--
	if err := v.DecodeCBOR(s.d); err != nil {
		return false, err
	}
	return true, nil
}

// NextAny decodes the next element through a visitor.
func (s *SeqAccess) NextAny(v Visitor) (bool, error) {
	if s.remaining == 0 {
		return false, nil
	}
	s.remaining--
	if err := s.d.DecodeAny(v); err != nil {
		return false, err
	}
	return true, nil
}

func (s *SeqAccess) end() error {
	if s.remaining != 0 {
		err := structural(ErrLengthMismatch)
		err.Msg = fmt.Sprintf("unexpected end of array: %d of %d elements unread", s.remaining, s.declared)
		return err
	}
	return nil
}

// MapAccess is a bounded pull cursor over the pairs of a map. Keys and
// values must be pulled alternately, and every declared pair must be pulled
// before the visitor returns.
type MapAccess struct {
	d         *Decoder
	declared  uint64
	remaining uint64
	inValue   bool
}

// Len returns the declared pair count.
func (m *MapAccess) Len() int { return int(m.declared) }

// Remaining returns the number of pairs whose key has not been pulled.
func (m *MapAccess) Remaining() int { return int(m.remaining) }

// SizeHint returns a capped capacity for preallocating the remaining pairs.
func (m *MapAccess) SizeHint() int {
	return int(min(m.remaining, maxSizeHint))
}

func (m *MapAccess) beginKey() (bool, error) {
	if m.inValue {
		return false, structural(ErrKeyOrder)
	}
	if m.remaining == 0 {
		return false, nil
	}
	m.remaining--
	m.inValue = true
	return true, nil
}

func (m *MapAccess) beginValue() error {
	if !m.inValue {
		return structural(ErrKeyOrder)
	}
	m.inValue = false
	return nil
}

// NextKey decodes the next key into k. It returns false once every pair
// has been pulled.
func (m *MapAccess) NextKey(k Decodable) (bool, error) {
	ok, err := m.beginKey()
	if !ok || err != nil {
		return false, err
	}
	if err := k.DecodeCBOR(m.d); err != nil {
		return false, err
	}
	return true, nil
}

// NextKeyAny decodes the next key through a visitor.
func (m *MapAccess) NextKeyAny(v Visitor) (bool, error) {
	ok, err := m.beginKey()
	if !ok || err != nil {
		return false, err
	}
	if err := m.d.DecodeAny(v); err != nil {
		return false, err
	}
	return true, nil
}

// NextStringKey decodes the next key, which must be a text string.
func (m *MapAccess) NextStringKey() (string, bool, error) {
	ok, err := m.beginKey()
	if !ok || err != nil {
		return "", false, err
	}
	key, err := m.d.DecodeString()
	if err != nil {
		return "", false, err
	}
	return key, true, nil
}

// Value decodes the value belonging to the key just pulled.
func (m *MapAccess) Value(v Decodable) error {
	if err := m.beginValue(); err != nil {
		return err
	}
	return v.DecodeCBOR(m.d)
}

// ValueAny decodes the current value through a visitor.
func (m *MapAccess) ValueAny(v Visitor) error {
	if err := m.beginValue(); err != nil {
		return err
	}
	return m.d.DecodeAny(v)
}

func (m *MapAccess) end() error {
	if m.inValue {
		err := structural(ErrLengthMismatch)
		err.Msg = "unexpected end of map: value not read"
		return err
	}
	if m.remaining != 0 {
		err := structural(ErrLengthMismatch)
		err.Msg = fmt.Sprintf("unexpected end of map: %d of %d pairs unread", m.remaining, m.declared)
		return err
	}
	return nil
}

// VariantAccess gives a variant's case handler access to its payload.
// Payload fields are decoded directly from the Decoder without an extra
// wrapper.
type VariantAccess struct {
	d    *Decoder
	unit bool
}

// IsUnit reports whether the variant was encoded as a bare case name.
func (va *VariantAccess) IsUnit() bool { return va.unit }

// Unit accepts a unit case. A data-carrying encoding must hold null.
func (va *VariantAccess) Unit() error {
	if va.unit {
		return nil
	}
	return va.d.DecodeUnit()
}

// Newtype decodes a single-field case.
func (va *VariantAccess) Newtype(v Decodable) error {
	return va.Tuple(func(s *SeqAccess) error {
		ok, err := s.Next(v)
		if err == nil && !ok {
			err = structural(ErrLengthMismatch)
		}
		return err
	})
}

// Tuple decodes a positional case; fn pulls the fields.
func (va *VariantAccess) Tuple(fn func(*SeqAccess) error) error {
	if va.unit {
		err := structural(ErrVariantShape)
		err.Msg = "unit variant carries no fields"
		return err
	}
	return va.d.DecodeSeq(fn)
}

// Struct decodes a named-field case. Fields are encoded positionally, in
// declaration order.
func (va *VariantAccess) Struct(fn func(*SeqAccess) error) error {
	return va.Tuple(fn)
}
