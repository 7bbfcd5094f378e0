package aggregate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Precision is the number of fractional digits kept for every rate.
const Precision = 8

// Rate is one currency code and its value against the base currency.
type Rate struct {
	Code  string
	Value float64
}

// Rates is a rates map kept in ascending lexicographic code order.
// It serializes as a JSON object whose keys follow that order.
type Rates []Rate

// Get looks a code up by binary search.
func (r Rates) Get(code string) (float64, bool) {
	i := sort.Search(len(r), func(i int) bool { return r[i].Code >= code })
	if i < len(r) && r[i].Code == code {
		return r[i].Value, true
	}
	return 0, false
}

func (r Rates) Codes() []string {
	out := make([]string, len(r))
	for i, v := range r {
		out[i] = v.Code
	}
	return out
}

// Map returns a copy of the rates as a plain map.
func (r Rates) Map() map[string]float64 {
	out := make(map[string]float64, len(r))
	for _, v := range r {
		out[v.Code] = v.Value
	}
	return out
}

func (r Rates) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, v := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(v.Code)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.WriteString(FormatValue(v.Value))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r *Rates) UnmarshalJSON(b []byte) error {
	var m map[string]float64
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	*r = sortedRates(m)
	return nil
}

// FormatValue renders a rate without exponent and without zero padding.
func FormatValue(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// Round clamps v to Precision fractional digits.
func Round(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(Precision).Float64()
	return f
}

// Valid reports whether v can be published as a rate.
func Valid(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

// ValidCode reports whether code looks like a 3-letter currency code.
func ValidCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, c := range code {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}

// Normalize applies the publishing rules to a raw rates mapping: the base
// currency is set to exactly 1, invalid values are dropped, every value is
// rounded to Precision digits and the result is sorted by code.
// Both freshly scraped and historical snapshots go through here.
func Normalize(raw map[string]float64, base string) Rates {
	m := make(map[string]float64, len(raw)+1)
	for code, v := range raw {
		if !Valid(v) {
			continue
		}
		m[code] = Round(v)
	}
	m[base] = 1
	return sortedRates(m)
}

func sortedRates(m map[string]float64) Rates {
	out := make(Rates, 0, len(m))
	for code, v := range m {
		out = append(out, Rate{Code: code, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Aggregator accumulates rates over one cycle. It is owned by a single
// cycle and is not safe for concurrent use.
type Aggregator struct {
	base  string
	rates map[string]float64
}

func New(base string) *Aggregator {
	return &Aggregator{base: strings.ToUpper(base), rates: map[string]float64{}}
}

func (a *Aggregator) Base() string { return a.base }

// Add records a rate. A code added twice keeps the last value.
func (a *Aggregator) Add(code string, v float64) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return fmt.Errorf("empty currency code")
	}
	if !Valid(v) {
		return fmt.Errorf("invalid rate for %s: %v", code, v)
	}
	a.rates[code] = v
	return nil
}

// Len is the number of distinct codes collected so far, base excluded
// unless it was fetched.
func (a *Aggregator) Len() int { return len(a.rates) }

// Finalize returns the normalized rates; it does not modify the aggregator.
// When nothing was collected the result is empty rather than a lone base
// rate, so a fully failed cycle is visible in the published document.
func (a *Aggregator) Finalize() Rates {
	if len(a.rates) == 0 {
		return Rates{}
	}
	return Normalize(a.rates, a.base)
}
