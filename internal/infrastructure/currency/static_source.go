package currency

import (
	"context"
	"fmt"

	"github.com/expenseflow/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// usdRates is the reference table, quoted against USD. Cross rates are
// derived from it
var usdRates = map[valueobject.Currency]decimal.Decimal{
	valueobject.USD: decimal.NewFromInt(1),
	valueobject.EUR: decimal.RequireFromString("0.92"),
	valueobject.GBP: decimal.RequireFromString("0.79"),
	valueobject.INR: decimal.RequireFromString("83.10"),
	valueobject.JPY: decimal.RequireFromString("149.50"),
	valueobject.CAD: decimal.RequireFromString("1.36"),
	valueobject.AUD: decimal.RequireFromString("1.52"),
}

// StaticRateSource serves exchange rates from a fixed in-process table.
// Rates for any base are cross rates through USD
type StaticRateSource struct {
	usdRates map[valueobject.Currency]decimal.Decimal
}

// NewStaticRateSource creates a source with the built-in rate table
func NewStaticRateSource() *StaticRateSource {
	return &StaticRateSource{usdRates: usdRates}
}

// NewStaticRateSourceWithRates creates a source with a custom USD-quoted
// table (for testing)
func NewStaticRateSourceWithRates(rates map[valueobject.Currency]decimal.Decimal) *StaticRateSource {
	return &StaticRateSource{usdRates: rates}
}

// Rates returns the table for the given base currency
func (s *StaticRateSource) Rates(ctx context.Context, base valueobject.Currency) (map[valueobject.Currency]decimal.Decimal, error) {
	baseInUSD, ok := s.usdRates[base]
	if !ok {
		return nil, fmt.Errorf("unsupported base currency %s", base)
	}
	if baseInUSD.IsZero() {
		return nil, fmt.Errorf("invalid zero rate for base currency %s", base)
	}

	out := make(map[valueobject.Currency]decimal.Decimal, len(s.usdRates))
	for cur, inUSD := range s.usdRates {
		// rate(base->cur) = rate(USD->cur) / rate(USD->base)
		out[cur] = inUSD.Div(baseInUSD)
	}
	return out, nil
}

// Ensure StaticRateSource implements RateSource
var _ RateSource = (*StaticRateSource)(nil)
