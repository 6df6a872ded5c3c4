package value

import (
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Diag renders v in the diagnostic notation of RFC 8949 section 8.
func Diag(v Value) string {
	var b strings.Builder
	writeDiag(&b, v)
	return b.String()
}

// DiagAll renders a sequence of values, one per line.
func DiagAll(vs []Value) string {
	var b strings.Builder
	for _, v := range vs {
		writeDiag(&b, v)
		b.WriteByte('\n')
	}
	return b.String()
}

func writeDiag(b *strings.Builder, v Value) {
	switch v := v.(type) {
	case nil, Null:
		b.WriteString("null")
	case Bool:
		b.WriteString(strconv.FormatBool(bool(v)))
	case Uint:
		b.WriteString(strconv.FormatUint(uint64(v), 10))
	case Int:
		b.WriteString(strconv.FormatInt(int64(v), 10))
	case Float32:
		b.WriteString(formatFloat(float64(v)))
	case Float64:
		b.WriteString(formatFloat(float64(v)))
	case Bytes:
		b.WriteString("h'")
		b.WriteString(hex.EncodeToString(v))
		b.WriteByte('\'')
	case Text:
		writeQuoted(b, string(v))
	case Array:
		b.WriteByte('[')
		for i, item := range v {
			if i > 0 {
				b.WriteString(", ")
			}
			writeDiag(b, item)
		}
		b.WriteByte(']')
	case Map:
		b.WriteByte('{')
		for i, p := range v {
			if i > 0 {
				b.WriteString(", ")
			}
			writeDiag(b, p.Key)
			b.WriteString(": ")
			writeDiag(b, p.Value)
		}
		b.WriteByte('}')
	case Tag:
		b.WriteString(strconv.FormatUint(v.Number, 10))
		b.WriteByte('(')
		writeDiag(b, v.Content)
		b.WriteByte(')')
	default:
		fmt.Fprintf(b, "<%T>", v)
	}
}

// formatFloat writes the shortest decimal form of the exact value, always
// with a fraction so it reads as a float: 1.0, 1363896240.5, 1.0e+300.
// Exponent form is used below 1e-4 and from 1e16 on.
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	mant, exp, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, 64), "e")
	if e, _ := strconv.Atoi(exp); e >= -4 && e < 16 {
		s := strconv.FormatFloat(f, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	}
	if !strings.Contains(mant, ".") {
		mant += ".0"
	}
	return mant + "e" + exp
}

// writeQuoted writes s as a JSON string literal.
func writeQuoted(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(b, `\u%04x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
}

// Summary describes v briefly, e.g. "map(3)" or "text(5)".
func Summary(v Value) string {
	switch v := v.(type) {
	case nil:
		return KindNull.String()
	case Bytes:
		return fmt.Sprintf("bytes(%d)", len(v))
	case Text:
		return fmt.Sprintf("text(%d)", utf8.RuneCountInString(string(v)))
	case Array:
		return fmt.Sprintf("array(%d)", len(v))
	case Map:
		return fmt.Sprintf("map(%d)", len(v))
	case Tag:
		return fmt.Sprintf("tag(%d)", v.Number)
	default:
		return v.Kind().String()
	}
}
