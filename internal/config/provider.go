package config

import (
	"fmt"

	"exchangerates/internal/provider"
	"exchangerates/internal/provider/googlecalc"
	"exchangerates/internal/provider/pairsjson"
	"exchangerates/internal/provider/plaintext"
)

// NewProvider builds the configured provider strategy.
func (c Config) NewProvider() (provider.Provider, error) {
	p := c.Provider
	switch p.Name {
	case "googlecalc":
		return googlecalc.New(googlecalc.Config{Endpoint: p.Endpoint, Amount: p.Multiplier}), nil
	case "plaintext":
		return plaintext.New(plaintext.Config{URLTemplate: p.Endpoint, Multiplier: p.Multiplier}), nil
	case "pairsjson":
		return pairsjson.New(pairsjson.Config{Endpoint: p.Endpoint}), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", p.Name)
	}
}
