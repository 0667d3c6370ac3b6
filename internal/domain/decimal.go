package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// divPlaces is the fractional precision used for division. Quotients are
// truncated at it and the remainder decides a single half-even rounding.
const divPlaces = 24

// Decimal is an exact arbitrary-precision decimal. It wraps the
// shopspring implementation so the matching path never touches floats
// and so the canonical rendering used as a price-level key lives in one
// place.
type Decimal struct {
	dec decimal.Decimal
}

// Zero is the shared zero value.
var Zero = Decimal{}

// ParseDecimal parses s into a Decimal.
func ParseDecimal(s string) (Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("%w: parse %q: %v", ErrNumeric, s, err)
	}
	return Decimal{dec: d}, nil
}

// MustDecimal parses s and panics on failure. For constants and tests.
func MustDecimal(s string) Decimal {
	d, err := ParseDecimal(s)
	if err != nil {
		panic(err)
	}
	return d
}

// DecimalFromInt builds a Decimal from an integer.
func DecimalFromInt(n int64) Decimal {
	return Decimal{dec: decimal.NewFromInt(n)}
}

func (d Decimal) Add(o Decimal) Decimal { return Decimal{dec: d.dec.Add(o.dec)} }
func (d Decimal) Sub(o Decimal) Decimal { return Decimal{dec: d.dec.Sub(o.dec)} }
func (d Decimal) Mul(o Decimal) Decimal { return Decimal{dec: d.dec.Mul(o.dec)} }

// Div divides d by o at divPlaces fractional digits, rounding half-even.
func (d Decimal) Div(o Decimal) (Decimal, error) {
	if o.dec.IsZero() {
		return Zero, fmt.Errorf("%w: division by zero", ErrNumeric)
	}
	// QuoRem truncates toward zero, leaving |r| < |o| * 10^-divPlaces.
	q, r := d.dec.QuoRem(o.dec, divPlaces)
	ulp := decimal.New(1, -divPlaces)
	cmp := r.Abs().Mul(decimal.NewFromInt(2)).Cmp(o.dec.Abs().Mul(ulp))
	odd := q.Shift(divPlaces).BigInt().Bit(0) == 1
	if cmp > 0 || (cmp == 0 && odd) {
		if d.dec.Sign()*o.dec.Sign() < 0 {
			q = q.Sub(ulp)
		} else {
			q = q.Add(ulp)
		}
	}
	return Decimal{dec: q}, nil
}

func (d Decimal) Equal(o Decimal) bool              { return d.dec.Equal(o.dec) }
func (d Decimal) LessThan(o Decimal) bool           { return d.dec.LessThan(o.dec) }
func (d Decimal) LessThanOrEqual(o Decimal) bool    { return d.dec.LessThanOrEqual(o.dec) }
func (d Decimal) GreaterThan(o Decimal) bool        { return d.dec.GreaterThan(o.dec) }
func (d Decimal) GreaterThanOrEqual(o Decimal) bool { return d.dec.GreaterThanOrEqual(o.dec) }
func (d Decimal) IsZero() bool                      { return d.dec.IsZero() }
func (d Decimal) Sign() int                         { return d.dec.Sign() }
func (d Decimal) Abs() Decimal                      { return Decimal{dec: d.dec.Abs()} }

// Cmp returns -1, 0 or 1.
func (d Decimal) Cmp(o Decimal) int { return d.dec.Cmp(o.dec) }

// MinDecimal returns the smaller of a and b.
func MinDecimal(a, b Decimal) Decimal {
	if a.dec.LessThan(b.dec) {
		return a
	}
	return b
}

// MaxDecimal returns the larger of a and b.
func MaxDecimal(a, b Decimal) Decimal {
	if a.dec.GreaterThan(b.dec) {
		return a
	}
	return b
}

// Canonical renders d with trailing fractional zeros (and a resulting
// trailing dot) stripped. Equal values always render identically, which
// is what makes the rendering usable as a price-level map key.
func (d Decimal) Canonical() string {
	s := d.dec.String()
	if strings.ContainsRune(s, '.') {
		s = strings.TrimRight(s, "0")
		s = strings.TrimRight(s, ".")
	}
	if s == "-0" || s == "" {
		s = "0"
	}
	return s
}

// String implements fmt.Stringer via the canonical form.
func (d Decimal) String() string { return d.Canonical() }

// MarshalJSON renders the canonical form as a JSON string.
func (d Decimal) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Canonical() + `"`), nil
}

// UnmarshalJSON accepts a quoted or bare decimal.
func (d *Decimal) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseDecimal(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
