package artifact

import (
	"bytes"
	"strconv"

	"github.com/shopspring/decimal"
)

// Number decodes exchange numerics that arrive either as JSON numbers or as
// decimal strings ("0.01", "3875.1"). Unparseable values decode as invalid
// rather than failing the whole record; the evaluator treats them as absent,
// matching how the runner artifacts are consumed.
type Number struct {
	dec   decimal.Decimal
	valid bool
}

// Valid reports whether the value carried a parseable numeric.
func (n Number) Valid() bool {
	return n.valid
}

// Float64 returns the numeric value, or 0 when invalid.
func (n Number) Float64() float64 {
	if !n.valid {
		return 0
	}
	f, _ := n.dec.Float64()
	return f
}

// String returns the canonical decimal representation, or "" when invalid.
func (n Number) String() string {
	if !n.valid {
		return ""
	}
	return n.dec.String()
}

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*n = Number{}
		return nil
	}
	if b[0] == '"' {
		s, err := strconv.Unquote(string(b))
		if err != nil {
			*n = Number{}
			return nil
		}
		b = []byte(s)
	}
	dec, err := decimal.NewFromString(string(b))
	if err != nil {
		*n = Number{}
		return nil
	}
	*n = Number{dec: dec, valid: true}
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.valid {
		return []byte("null"), nil
	}
	return []byte(n.dec.String()), nil
}

// ParseNumber parses a decimal string leniently; ok is false when the string
// is empty or not a number.
func ParseNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	dec, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	f, _ := dec.Float64()
	return f, true
}

// Oid is an exchange order id. The exchange serializes it as a number but
// some payloads carry it as a string; both decode.
type Oid uint64

func (o *Oid) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*o = 0
		return nil
	}
	if b[0] == '"' {
		s, err := strconv.Unquote(string(b))
		if err != nil {
			return err
		}
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return err
		}
		*o = Oid(v)
		return nil
	}
	v, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		return err
	}
	*o = Oid(v)
	return nil
}

func (o Oid) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatUint(uint64(o), 10)), nil
}
