package plaintext

import (
	"net/http"

	"exchangerates/internal/provider"
)

type Config struct {
	Name string
	// URLTemplate may reference {base}, {code} and {amount}.
	URLTemplate string
	// Multiplier is divided out of every parsed body. Integer-only sources
	// are asked for Multiplier units to keep the fractional digits.
	Multiplier float64
}

// Provider fetches one bare number per currency.
type Provider struct {
	cfg Config
}

func New(cfg Config) *Provider {
	if cfg.Name == "" {
		cfg.Name = "PlainText"
	}
	if cfg.Multiplier <= 0 {
		cfg.Multiplier = 1
	}
	return &Provider{cfg: cfg}
}

func (p *Provider) Name() string { return p.cfg.Name }

func (p *Provider) Targets(base string, codes []string) []provider.Target {
	out := make([]provider.Target, 0, len(codes))
	for _, code := range codes {
		out = append(out, provider.Target{
			Code:   code,
			Method: http.MethodGet,
			URL:    provider.Expand(p.cfg.URLTemplate, base, code, p.cfg.Multiplier),
		})
	}
	return out
}

func (p *Provider) Parse(t provider.Target, body []byte) []provider.Quote {
	v, ok := provider.ParseScaled(string(body), p.cfg.Multiplier)
	if !ok {
		return nil
	}
	return []provider.Quote{{Code: t.Code, Rate: v}}
}
