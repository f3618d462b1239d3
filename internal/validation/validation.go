package validation

import (
	"strings"
	"time"

	"tutorledger/internal/money"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func PositiveCents(field string, val money.Cents, v Violations) {
	if val <= 0 {
		v[field] = "must_be_positive"
	}
}

func NonNegativeCents(field string, val money.Cents, v Violations) {
	if val < 0 {
		v[field] = "must_not_be_negative"
	}
}

func MonthInRange(field string, m int, v Violations) {
	if m < 1 || m > 12 {
		v[field] = "out_of_range"
	}
}

func NonZeroDate(field string, t time.Time, v Violations) {
	if t.IsZero() {
		v[field] = "required"
	}
}

// OneOf flags a value outside the allowed set (e.g. payment methods).
func OneOf(field, value string, allowed []string, v Violations) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	v[field] = "invalid_value"
}
