package pairsjson

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"exchangerates/internal/provider"
)

type Config struct {
	Name     string
	Endpoint string
	// Separator joins base and quote currency in pair keys, "/" by default.
	Separator string
}

// Provider reads every rate from a single bulk quote endpoint. Pairs are
// keyed BASE/CODE; the payload is either an object or an array of rows.
type Provider struct {
	cfg Config
}

func New(cfg Config) *Provider {
	if cfg.Name == "" {
		cfg.Name = "PairsJSON"
	}
	if cfg.Separator == "" {
		cfg.Separator = "/"
	}
	return &Provider{cfg: cfg}
}

func (p *Provider) Name() string { return p.cfg.Name }

// Targets returns one bulk target. Codes are passed along as a hint and
// used again to filter the answer.
func (p *Provider) Targets(base string, codes []string) []provider.Target {
	u := p.cfg.Endpoint
	q := url.Values{}
	q.Set("base", base)
	if len(codes) > 0 {
		q.Set("symbols", strings.Join(codes, ","))
	}
	if strings.Contains(u, "?") {
		u += "&" + q.Encode()
	} else {
		u += "?" + q.Encode()
	}
	return []provider.Target{{Method: http.MethodGet, URL: u}}
}

type row struct {
	Pair string          `json:"pair"`
	ID   string          `json:"id"`
	Rate json.RawMessage `json:"rate"`
}

type object struct {
	Base  string                     `json:"base"`
	Rates map[string]json.RawMessage `json:"rates"`
}

func (p *Provider) Parse(t provider.Target, body []byte) []provider.Quote {
	base, want := targetFilter(t)
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil
	}

	raw := map[string]json.RawMessage{}
	switch body[0] {
	case '[':
		var rows []row
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil
		}
		for _, r := range rows {
			key := r.Pair
			if key == "" {
				key = r.ID
			}
			raw[key] = r.Rate
		}
	case '{':
		var o object
		if err := json.Unmarshal(body, &o); err != nil {
			return nil
		}
		raw = o.Rates
	default:
		return nil
	}

	prefix := strings.ToUpper(base) + p.cfg.Separator
	out := make([]provider.Quote, 0, len(raw))
	for key, val := range raw {
		key = strings.ToUpper(strings.TrimSpace(key))
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		code := strings.TrimPrefix(key, prefix)
		if len(code) != 3 {
			continue
		}
		if len(want) > 0 {
			if _, ok := want[code]; !ok {
				continue
			}
		}
		v, ok := number(val)
		if !ok {
			continue
		}
		out = append(out, provider.Quote{Code: code, Rate: v})
	}
	return out
}

// number accepts a JSON number or a numeric string.
func number(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return 0, false
	}
	switch x := v.(type) {
	case json.Number:
		n = x
	case string:
		n = json.Number(strings.TrimSpace(x))
	default:
		return 0, false
	}
	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// targetFilter recovers base and requested codes from the target URL.
func targetFilter(t provider.Target) (string, map[string]struct{}) {
	u, err := url.Parse(t.URL)
	if err != nil {
		return "", nil
	}
	q := u.Query()
	want := map[string]struct{}{}
	for _, c := range strings.Split(q.Get("symbols"), ",") {
		if c = strings.ToUpper(strings.TrimSpace(c)); c != "" {
			want[c] = struct{}{}
		}
	}
	return q.Get("base"), want
}
