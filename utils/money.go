package utils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// First decimal token in a free-text message; comma and dot both accepted as
// the decimal separator ("250", "12,5", "je veux 50 euros").
var (
	amountPattern       = regexp.MustCompile(`\d+[.,]?\d*`)
	signedAmountPattern = regexp.MustCompile(`-?\d+[.,]?\d*`)
)

// EuroFmt renders integer cents as "12.50€".
func EuroFmt(cents int64) string {
	return fmt.Sprintf("%.2f€", float64(cents)/100)
}

// ParseAmountCents extracts the first positive amount from free text and
// converts it to integer cents.
func ParseAmountCents(text string) (int64, error) {
	return parseCents(text, amountPattern)
}

// ParseSignedAmountCents accepts a leading minus, for operator balance
// adjustments ("+50", "-10").
func ParseSignedAmountCents(text string) (int64, error) {
	return parseCents(text, signedAmountPattern)
}

func parseCents(text string, pattern *regexp.Regexp) (int64, error) {
	token := pattern.FindString(text)
	if token == "" {
		return 0, fmt.Errorf("no amount found in %q", text)
	}

	d, err := decimal.NewFromString(strings.Replace(token, ",", ".", 1))
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", token, err)
	}

	return d.Shift(2).Round(0).IntPart(), nil
}
