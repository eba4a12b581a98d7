package currency

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/mwalczak/evergreen/internal/domain"
)

func TestRateToBase(t *testing.T) {
	e := NewEngine(domain.CurrencyPLN, zerolog.Nop())

	fx := map[string][]domain.PriceBar{
		"USDPLN": {
			{Date: "2020-01-02", Close: 3.80},
			{Date: "2020-01-03", Close: 3.85},
		},
	}

	tests := []struct {
		name     string
		date     string
		currency domain.Currency
		want     float64
	}{
		{"exact date match", "2020-01-03", domain.CurrencyUSD, 3.85},
		{"missing date", "2020-01-04", domain.CurrencyUSD, 0.0},
		{"missing pair", "2020-01-02", domain.CurrencyEUR, 0.0},
		{"same currency", "2099-01-01", domain.CurrencyPLN, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.RateToBase(fx, tt.date, tt.currency))
		})
	}
}

func TestRateToBaseQuotedBasePairWins(t *testing.T) {
	// A quoted PLNPLN pair takes precedence over the implicit 1.0.
	e := NewEngine(domain.CurrencyPLN, zerolog.Nop())
	fx := map[string][]domain.PriceBar{
		"PLNPLN": {{Date: "2020-01-02", Close: 1.0}},
	}
	assert.Equal(t, 1.0, e.RateToBase(fx, "2020-01-02", domain.CurrencyPLN))
}

func TestPortfolioToBase(t *testing.T) {
	e := NewEngine(domain.CurrencyPLN, zerolog.Nop())

	fx := map[string][]domain.PriceBar{
		"USDPLN": {{Date: "2020-01-02", Close: 4.0}},
	}
	values := map[string]float64{
		"AAPL": 100.0, // USD, converts at 4.0
		"CDR":  50.0,  // no currency entry, assumed base
		"SAP":  30.0,  // EUR, no pair, values at zero
	}
	currencies := map[string]domain.Currency{
		"AAPL": domain.CurrencyUSD,
		"SAP":  domain.CurrencyEUR,
	}

	total := e.PortfolioToBase(values, fx, "2020-01-02", currencies)
	assert.InDelta(t, 450.0, total, 1e-9)
}
