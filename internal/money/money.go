// Package money represents monetary amounts as integer minor units
// (cents). All arithmetic stays in int64; decimal strings appear only at
// the presentation boundary.
package money

import (
	"fmt"
	"strconv"
	"strings"
)

// Cents is an amount in minor units (e.g. 2550 = 25.50).
type Cents int64

// Parse accepts "25", "25.5" or "25.50" and returns the amount in cents.
// More than two fractional digits is an error, not a rounding.
func Parse(s string) (Cents, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" {
		whole = "0"
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	var f int64
	switch len(frac) {
	case 0:
	case 1:
		f, err = strconv.ParseInt(frac, 10, 64)
		f *= 10
	case 2:
		f, err = strconv.ParseInt(frac, 10, 64)
	default:
		return 0, fmt.Errorf("too many decimal places in %q", s)
	}
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	c := Cents(w*100 + f)
	if neg {
		c = -c
	}
	return c, nil
}

// String renders the amount with two decimal places ("25.50").
func (c Cents) String() string {
	n := int64(c)
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	return fmt.Sprintf("%s%d.%02d", sign, n/100, n%100)
}

// MulInt multiplies the amount by a count (e.g. sessions attended).
func (c Cents) MulInt(n int) Cents { return c * Cents(n) }

// MarshalJSON renders the amount as a two-place decimal string; cents
// never cross the API boundary as raw integers.
func (c Cents) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

// UnmarshalJSON accepts "20.00" (quoted) or 20.5 (bare number token,
// parsed as text so no float conversion is involved).
func (c *Cents) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*c = 0
		return nil
	}
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*c = v
	return nil
}
