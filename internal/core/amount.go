package core

import (
	"math"
	"strconv"
	"strings"
)

// ParseAmount converts a user-typed amount into a positive float.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators.
// Zero, negative, signed and non-numeric input is rejected with
// ErrInvalidAmount; the ledger never coerces a bad amount into a
// valid one.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, ErrInvalidAmount
	}
	return v, nil
}
