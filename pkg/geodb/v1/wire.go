package geodbv1

import (
	"fmt"
	"math"
	"unicode/utf8"

	"google.golang.org/protobuf/encoding/protowire"
)

// encoder appends fields to a buffer and remembers the first error.
type encoder struct {
	b   []byte
	err error
}

func (e *encoder) tag(num protowire.Number, typ protowire.Type) {
	e.b = protowire.AppendTag(e.b, num, typ)
}

// str encodes s, omitting it when empty.
func (e *encoder) str(num protowire.Number, s string) {
	if s != "" {
		e.forceStr(num, s)
	}
}

func (e *encoder) forceStr(num protowire.Number, s string) {
	if !utf8.ValidString(s) {
		if e.err == nil {
			e.err = fmt.Errorf("field %d: string is not valid UTF-8", num)
		}
		return
	}
	e.tag(num, protowire.BytesType)
	e.b = protowire.AppendString(e.b, s)
}

func (e *encoder) strs(num protowire.Number, ss []string) {
	for _, s := range ss {
		e.forceStr(num, s)
	}
}

func (e *encoder) optStr(num protowire.Number, s *string) {
	if s != nil {
		e.forceStr(num, *s)
	}
}

// varint encodes v, omitting it when zero.
func (e *encoder) varint(num protowire.Number, v uint64) {
	if v != 0 {
		e.forceVarint(num, v)
	}
}

func (e *encoder) forceVarint(num protowire.Number, v uint64) {
	e.tag(num, protowire.VarintType)
	e.b = protowire.AppendVarint(e.b, v)
}

func (e *encoder) optInt64(num protowire.Number, v *int64) {
	if v != nil {
		e.forceVarint(num, uint64(*v))
	}
}

func (e *encoder) optUint32(num protowire.Number, v *uint32) {
	if v != nil {
		e.forceVarint(num, uint64(*v))
	}
}

func (e *encoder) optBool(num protowire.Number, v *bool) {
	if v != nil {
		e.forceVarint(num, protowire.EncodeBool(*v))
	}
}

func (e *encoder) optDouble(num protowire.Number, v *float64) {
	if v != nil {
		e.tag(num, protowire.Fixed64Type)
		e.b = protowire.AppendFixed64(e.b, math.Float64bits(*v))
	}
}

func (e *encoder) result() ([]byte, error) {
	if e.err != nil {
		return nil, e.err
	}
	if e.b == nil {
		return []byte{}, nil
	}
	return e.b, nil
}

// fieldFunc consumes the value of one field from b and returns the number of
// bytes read, 0 to skip the field, or a negative protowire error code.
type fieldFunc func(num protowire.Number, typ protowire.Type, b []byte) int

func decode(b []byte, field fieldFunc) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		n = field(num, typ, b)
		if n == 0 {
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return fmt.Errorf("field %d: %w", num, protowire.ParseError(n))
		}
		b = b[n:]
	}
	return nil
}

func consumeString(typ protowire.Type, b []byte, set func(string)) int {
	if typ != protowire.BytesType {
		return 0
	}
	v, n := protowire.ConsumeString(b)
	if n >= 0 {
		set(v)
	}
	return n
}

func consumeVarint(typ protowire.Type, b []byte, set func(uint64)) int {
	if typ != protowire.VarintType {
		return 0
	}
	v, n := protowire.ConsumeVarint(b)
	if n >= 0 {
		set(v)
	}
	return n
}

func consumeDouble(typ protowire.Type, b []byte, set func(float64)) int {
	if typ != protowire.Fixed64Type {
		return 0
	}
	v, n := protowire.ConsumeFixed64(b)
	if n >= 0 {
		set(math.Float64frombits(v))
	}
	return n
}

func ptr[T any](v T) *T {
	return &v
}
