// Package amount parses user and CSV amount strings and renders amounts for display.
package amount

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

var ErrInvalid = errors.New("invalid amount")

// Parse reads an amount written either as "1234.56" or in the European style
// "1.234,56". Currency symbols and spaces are ignored. When both separators are
// present the last one is the decimal mark; a separator that repeats is a
// thousands separator.
func Parse(s string) (decimal.Decimal, error) {
	clean := strip(s)
	if clean == "" {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalid, s)
	}

	dot := strings.LastIndex(clean, ".")
	comma := strings.LastIndex(clean, ",")

	switch {
	case dot >= 0 && comma >= 0:
		if comma > dot {
			clean = european(clean)
		} else {
			clean = strings.ReplaceAll(clean, ",", "")
		}
	case comma >= 0:
		if strings.Count(clean, ",") > 1 {
			clean = strings.ReplaceAll(clean, ",", "")
		} else {
			clean = strings.Replace(clean, ",", ".", 1)
		}
	case dot >= 0:
		if strings.Count(clean, ".") > 1 {
			clean = strings.ReplaceAll(clean, ".", "")
		}
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalid, s)
	}

	return d, nil
}

// ParseEuropean reads an amount whose decimal mark is always a comma, so
// "50.000" is fifty thousand.
func ParseEuropean(s string) (decimal.Decimal, error) {
	clean := strip(s)

	d, err := decimal.NewFromString(european(clean))
	if err != nil || clean == "" {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalid, s)
	}

	return d, nil
}

// Format renders d in the given ISO currency, e.g. "$1,234.56" for USD. Unknown
// currencies fall back to the plain number followed by the code.
func Format(d decimal.Decimal, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return strings.TrimSpace(d.StringFixed(2) + " " + currency)
	}

	minor := d.Shift(int32(cur.Fraction)).Round(0)

	return money.New(minor.IntPart(), cur.Code).Display()
}

// Places is the number of minor digits of currency, 2 when it is unknown.
func Places(currency string) int32 {
	if cur := money.GetCurrency(currency); cur != nil {
		return int32(cur.Fraction)
	}

	return 2
}

// Fixed renders d with the currency's minor digits and no symbol, for files.
func Fixed(d decimal.Decimal, currency string) string {
	return d.StringFixed(Places(currency))
}

func european(s string) string {
	s = strings.ReplaceAll(s, ".", "")
	return strings.ReplaceAll(s, ",", ".")
}

func strip(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsDigit(r), r == '.', r == ',', r == '-', r == '+':
			return r
		default:
			return -1
		}
	}, s)
}
