// Package currency normalizes expense amounts into a company's default
// currency. Rates come from a pluggable RateSource; the shipped source is
// a static table, live exchange-rate APIs are out of scope.
package currency

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/expenseflow/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RateSource provides exchange rates for a base currency. Rates map a
// target currency to the multiplier applied to an amount in the base
// currency
type RateSource interface {
	Rates(ctx context.Context, base valueobject.Currency) (map[valueobject.Currency]decimal.Decimal, error)
}

// cachedRates is one rate table snapshot with its fetch time
type cachedRates struct {
	rates     map[valueobject.Currency]decimal.Decimal
	fetchedAt time.Time
}

// Converter converts monetary amounts between currencies. Rate tables are
// cached per base currency for the configured TTL; when the source fails
// and an expired table exists, the stale table is used as a fallback
type Converter struct {
	source RateSource
	ttl    time.Duration
	logger *zap.Logger

	mu    sync.RWMutex
	cache map[valueobject.Currency]cachedRates
}

// ConverterOption is a functional option for configuring the converter
type ConverterOption func(*Converter)

// WithRateCacheTTL sets how long a fetched rate table stays valid
func WithRateCacheTTL(ttl time.Duration) ConverterOption {
	return func(c *Converter) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithConverterLogger sets the logger for the converter
func WithConverterLogger(logger *zap.Logger) ConverterOption {
	return func(c *Converter) {
		c.logger = logger
	}
}

// NewConverter creates a converter backed by the given rate source
func NewConverter(source RateSource, opts ...ConverterOption) *Converter {
	c := &Converter{
		source: source,
		ttl:    time.Hour,
		logger: zap.NewNop(),
		cache:  make(map[valueobject.Currency]cachedRates),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Convert converts the amount into the target currency, rounded to two
// decimal places. Same-currency conversions only round
func (c *Converter) Convert(ctx context.Context, amount valueobject.Money, to valueobject.Currency) (valueobject.Money, error) {
	if amount.Currency() == to {
		return amount.Round(2), nil
	}

	rates, err := c.ratesFor(ctx, amount.Currency())
	if err != nil {
		return valueobject.Money{}, fmt.Errorf("failed to convert from %s to %s: %w", amount.Currency(), to, err)
	}

	rate, ok := rates[to]
	if !ok {
		return valueobject.Money{}, fmt.Errorf("exchange rate not found for %s", to)
	}

	converted := amount.Amount().Mul(rate).Round(2)
	return valueobject.NewMoney(converted, to)
}

// ClearCache drops all cached rate tables (useful for testing or manual refresh)
func (c *Converter) ClearCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[valueobject.Currency]cachedRates)
}

func (c *Converter) ratesFor(ctx context.Context, base valueobject.Currency) (map[valueobject.Currency]decimal.Decimal, error) {
	c.mu.RLock()
	cached, ok := c.cache[base]
	c.mu.RUnlock()
	if ok && time.Since(cached.fetchedAt) < c.ttl {
		return cached.rates, nil
	}

	rates, err := c.source.Rates(ctx, base)
	if err != nil {
		// Expired table beats no table
		if ok {
			c.logger.Warn("rate source failed, using expired rate table",
				zap.String("base", base.String()),
				zap.Error(err))
			return cached.rates, nil
		}
		return nil, err
	}

	c.mu.Lock()
	c.cache[base] = cachedRates{rates: rates, fetchedAt: time.Now()}
	c.mu.Unlock()

	return rates, nil
}
