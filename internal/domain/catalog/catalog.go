package catalog

import "github.com/shopspring/decimal"

// Currency represents a supported display currency (ISO 4217)
type Currency string

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
	AUD Currency = "AUD"
)

// DefaultCurrency is the currency catalog prices are listed in
const DefaultCurrency = USD

// IsValid checks if the currency is one of the supported codes
func (c Currency) IsValid() bool {
	switch c {
	case USD, EUR, GBP, AUD:
		return true
	}
	return false
}

// String returns the string representation of the Currency
func (c Currency) String() string {
	return string(c)
}

// Catalog holds the package price list (in USD) and the exchange-rate table
// used to convert to a customer's display currency. Rates are fixed at
// process start; stored order prices are never recomputed from later rates.
type Catalog struct {
	pricesUSD map[string]decimal.Decimal
	rates     map[Currency]decimal.Decimal
}

// Default returns the catalog with the standard package and rate tables.
func Default() *Catalog {
	return &Catalog{
		pricesUSD: map[string]decimal.Decimal{
			"RP Boost":          decimal.NewFromInt(10),
			"Account Recovery":  decimal.NewFromInt(25),
			"Data Recovery":     decimal.NewFromInt(40),
			"Priority Recovery": decimal.NewFromInt(60),
		},
		rates: map[Currency]decimal.Decimal{
			USD: decimal.NewFromInt(1),
			EUR: decimal.NewFromFloat(0.93),
			GBP: decimal.NewFromFloat(0.81),
			AUD: decimal.NewFromFloat(1.52),
		},
	}
}

// IsKnownPackage reports whether the package name is in the catalog
func (c *Catalog) IsKnownPackage(pkg string) bool {
	_, ok := c.pricesUSD[pkg]
	return ok
}

// PriceUSD returns the USD list price for a package.
// Unknown packages price at zero; this is documented degraded behavior
// rather than an error.
func (c *Catalog) PriceUSD(pkg string) decimal.Decimal {
	if p, ok := c.pricesUSD[pkg]; ok {
		return p
	}
	return decimal.Zero
}

// Rate returns the exchange rate from USD to the given currency.
// Unknown currencies default to a 1:1 rate.
func (c *Catalog) Rate(currency Currency) decimal.Decimal {
	if r, ok := c.rates[currency]; ok {
		return r
	}
	return decimal.NewFromInt(1)
}

// Price computes the package price in the given currency, rounded to two
// decimal places. The result is fixed into the order at creation time.
func (c *Catalog) Price(pkg string, currency Currency) decimal.Decimal {
	return c.PriceUSD(pkg).Mul(c.Rate(currency)).Round(2)
}
