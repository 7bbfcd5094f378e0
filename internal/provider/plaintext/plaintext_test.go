package plaintext

import (
	"testing"

	"github.com/stretchr/testify/require"

	"exchangerates/internal/provider"
)

func TestTargets_ExpandTemplate(t *testing.T) {
	t.Parallel()

	p := New(Config{URLTemplate: "http://quotes.test/d?s={base}{code}=X&n={amount}", Multiplier: 10000})
	ts := p.Targets("USD", []string{"JPY"})
	require.Equal(t, []provider.Target{{
		Code:   "JPY",
		Method: "GET",
		URL:    "http://quotes.test/d?s=USDJPY=X&n=10000",
	}}, ts)
}

func TestParse(t *testing.T) {
	t.Parallel()

	p := New(Config{Multiplier: 100000000})
	tgt := provider.Target{Code: "EUR"}

	require.Equal(t, []provider.Quote{{Code: "EUR", Rate: 0.91234568}}, p.Parse(tgt, []byte("91234568\r\n")))
	require.Nil(t, p.Parse(tgt, []byte("N/A")))
	require.Nil(t, p.Parse(tgt, nil))

	unscaled := New(Config{})
	require.Equal(t, []provider.Quote{{Code: "EUR", Rate: 0.5}}, unscaled.Parse(tgt, []byte(`"0.5"`)))
}
