package googlecalc

import (
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"exchangerates/internal/provider"
)

type Config struct {
	Name     string
	Endpoint string
	// Amount is the quantity of base currency asked for per request. Larger
	// amounts squeeze more digits out of the calculator; the parsed value
	// is divided back by Amount.
	Amount float64
}

// Provider walks the calculator endpoint once per currency.
type Provider struct {
	cfg Config
}

func New(cfg Config) *Provider {
	if cfg.Name == "" {
		cfg.Name = "GoogleCalc"
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = "http://www.google.com/ig/calculator"
	}
	if cfg.Amount <= 0 {
		cfg.Amount = 1
	}
	return &Provider{cfg: cfg}
}

func (p *Provider) Name() string { return p.cfg.Name }

func (p *Provider) Targets(base string, codes []string) []provider.Target {
	out := make([]provider.Target, 0, len(codes))
	amount := strconv.FormatFloat(p.cfg.Amount, 'f', -1, 64)
	for _, code := range codes {
		q := url.Values{}
		q.Set("hl", "en")
		q.Set("q", fmt.Sprintf("%s%s=?%s", amount, base, code))
		out = append(out, provider.Target{
			Code:   code,
			Method: http.MethodGet,
			URL:    p.cfg.Endpoint + "?" + q.Encode(),
		})
	}
	return out
}

// fieldRe matches `key: "value"` pairs of the calculator's object literal.
// Keys are unquoted in the payload, which is why it is not decoded as JSON.
var fieldRe = regexp.MustCompile(`"?([A-Za-z_]+)"?\s*:\s*"((?:[^"\\]|\\.)*)"`)

// thousandsSep is the escaped non-breaking space the calculator puts
// between digit groups ("1&#160;303.78 Korean won").
var thousandsSep = strings.NewReplacer(`\x26#160;`, "", "&#160;", "", " ", "")

// Parse reads the rhs field of a calculator response.
func (p *Provider) Parse(t provider.Target, body []byte) []provider.Quote {
	fields := map[string]string{}
	for _, m := range fieldRe.FindAllStringSubmatch(string(body), -1) {
		fields[strings.ToLower(m[1])] = m[2]
	}
	rhs, ok := fields["rhs"]
	if !ok || strings.TrimSpace(fields["error"]) != "" {
		return nil
	}
	rhs = thousandsSep.Replace(rhs)
	// Magnitude words would be lost by stripping.
	if strings.Contains(strings.ToLower(rhs), "illion") {
		return nil
	}
	v, ok := provider.ParseScaled(rhs, p.cfg.Amount)
	if !ok {
		return nil
	}
	return []provider.Quote{{Code: t.Code, Rate: v}}
}
