package provider

import (
	"strconv"
	"strings"
)

// Target is one request of a cycle. Code is empty for bulk endpoints that
// return many rates at once.
type Target struct {
	Code   string
	Method string
	URL    string
}

// Quote is one normalized rate extracted from a response.
type Quote struct {
	Code string  `json:"code"`
	Rate float64 `json:"rate"`
}

// Provider is a pluggable integration with one rate source. Parse must not
// fail: a malformed or unexpected body simply yields no quotes.
type Provider interface {
	Name() string
	Targets(base string, codes []string) []Target
	Parse(t Target, body []byte) []Quote
}

// StripNumeric keeps only digits, sign and decimal point.
func StripNumeric(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '-' || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ParseScaled strips s down to a number and divides it by multiplier.
func ParseScaled(s string, multiplier float64) (float64, bool) {
	v, err := strconv.ParseFloat(StripNumeric(s), 64)
	if err != nil {
		return 0, false
	}
	if multiplier > 0 && multiplier != 1 {
		v /= multiplier
	}
	return v, true
}

// Expand fills {base}, {code} and {amount} placeholders of a URL template.
func Expand(tmpl, base, code string, amount float64) string {
	return strings.NewReplacer(
		"{base}", base,
		"{code}", code,
		"{amount}", strconv.FormatFloat(amount, 'f', -1, 64),
	).Replace(tmpl)
}
