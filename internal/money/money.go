// Package money works in integer minor units (cents). Balances and amounts
// never touch binary floating point.
package money

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrTooManyDecimals = errors.New("amount has too many decimal places")
)

// ParseMinor converts a decimal string such as "200.05" into minor units.
// At most two fractional digits are accepted.
func ParseMinor(input string) (int64, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return 0, ErrInvalidAmount
	}
	negative := false
	switch raw[0] {
	case '-':
		negative = true
		raw = raw[1:]
	case '+':
		raw = raw[1:]
	}
	whole, frac, hasFrac := strings.Cut(raw, ".")
	if whole == "" {
		whole = "0"
	}
	wholeValue, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || wholeValue < 0 {
		return 0, ErrInvalidAmount
	}
	fracValue := int64(0)
	if hasFrac {
		if len(frac) > 2 {
			return 0, ErrTooManyDecimals
		}
		if frac == "" {
			return 0, ErrInvalidAmount
		}
		parsed, err := strconv.ParseInt(frac, 10, 64)
		if err != nil || parsed < 0 {
			return 0, ErrInvalidAmount
		}
		if len(frac) == 1 {
			parsed *= 10
		}
		fracValue = parsed
	}
	// wholeValue*100+fracValue must stay within int64, otherwise the multiply
	// wraps and a huge amount parses as a small one.
	if wholeValue > (math.MaxInt64-fracValue)/100 {
		return 0, ErrInvalidAmount
	}
	minor := wholeValue*100 + fracValue
	if negative {
		minor = -minor
	}
	return minor, nil
}

// FormatMinor renders minor units as a two-decimal string.
func FormatMinor(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return sign + strconv.FormatInt(minor/100, 10) + "." + pad2(minor%100)
}

func pad2(value int64) string {
	if value < 10 {
		return "0" + strconv.FormatInt(value, 10)
	}
	return strconv.FormatInt(value, 10)
}
