package pricing

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var eurFormula = Formula{
	ListChain:     []Step{{Key: "КУРС_EUR_RUB", Op: Mul}},
	DeliveryChain: []Step{{Key: KeyBYNToRUB, Op: Mul}, {Key: KeyEURToBYN, Op: Mul}},
	Offset:        10,
}

var plnFormula = Formula{
	ListChain: []Step{
		{Key: "КУРС_USD_ЗЛОТЫ", Op: Div},
		{Key: "КОЭФ_КОНВЕРТАЦИИ", Op: Mul},
		{Key: "КУРС_USD_RUB", Op: Mul},
	},
	DeliveryChain: []Step{{Key: KeyBYNToRUB, Op: Mul}, {Key: KeyEURToBYN, Op: Mul}},
	Offset:        1,
}

// Rates chosen so that 49.99 + 5.0 delivery costs exactly 60 and fees sum to 0.4.
func exampleRates() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"КУРС_EUR_RUB":     d("1"),
		"КУРС_USD_ЗЛОТЫ":   d("1"),
		"КОЭФ_КОНВЕРТАЦИИ": d("1"),
		"КУРС_USD_RUB":     d("1"),
		KeyBYNToRUB:        d("1"),
		KeyEURToBYN:        d("2.002"),
		KeyMarkup:          d("0.2"),
		KeyTax:             d("0.1"),
		KeyAcquiring:       d("0.1"),
	}
}

func TestEngine_Example(t *testing.T) {
	tests := []struct {
		name    string
		formula Formula
		want    int64
	}{
		{name: "offset 10", formula: eurFormula, want: 190},
		{name: "offset 1", formula: plnFormula, want: 199},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewEngine(tt.formula, exampleRates())
			require.NoError(t, err)

			assert.True(t, e.Cost(d("49.99"), d("5.0")).Equal(d("60")))
			assert.True(t, e.Resale(d("49.99"), d("5.0")).Equal(d("100")))
			assert.Equal(t, tt.want, e.Price(d("49.99"), d("5.0")))
		})
	}
}

func TestEngine_RealisticRates(t *testing.T) {
	rates := map[string]decimal.Decimal{
		"КУРС_USD_ЗЛОТЫ":   d("3.95"),
		"КОЭФ_КОНВЕРТАЦИИ": d("1.03"),
		"КУРС_USD_RUB":     d("92.5"),
		KeyBYNToRUB:        d("28.4"),
		KeyEURToBYN:        d("3.5"),
		KeyMarkup:          d("0.3"),
		KeyTax:             d("0.06"),
		KeyAcquiring:       d("0.03"),
	}
	e, err := NewEngine(plnFormula, rates)
	require.NoError(t, err)

	// 4823.81 + 1192.8 = 6016.61 ; / 0.61 = 9863.29
	assert.Equal(t, int64(9899), e.Price(d("199.99"), d("12")))
}

func TestEngine_RoundingLaw(t *testing.T) {
	for _, f := range []Formula{eurFormula, plnFormula} {
		e, err := NewEngine(f, exampleRates())
		require.NoError(t, err)

		for cents := int64(1); cents < 200000; cents += 737 {
			p := e.Price(decimal.New(cents, -2), d("7.5"))
			assert.Equal(t, 100-f.Offset, p%100, "price %d", p)
		}
	}
}

func TestEngine_Monotonic(t *testing.T) {
	e, err := NewEngine(eurFormula, exampleRates())
	require.NoError(t, err)

	prev := e.Price(decimal.Zero, d("5"))
	for cents := int64(1); cents < 100000; cents += 113 {
		p := e.Price(decimal.New(cents, -2), d("5"))
		assert.GreaterOrEqual(t, p, prev)
		prev = p
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		in     string
		offset int64
		want   int64
	}{
		{"100", 10, 190},
		{"99.99", 10, 90},
		{"0", 1, 99},
		{"1234.5", 1, 1299},
		{"1299.999", 10, 1290},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Round(d(tt.in), tt.offset), tt.in)
	}
}

func TestNewEngine_MissingKeys(t *testing.T) {
	rates := exampleRates()
	delete(rates, KeyTax)
	delete(rates, "КУРС_EUR_RUB")

	_, err := NewEngine(eurFormula, rates)
	require.Error(t, err)

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.ElementsMatch(t, []string{KeyTax, "КУРС_EUR_RUB"}, cfgErr.Missing)
}

func TestNewEngine_BadDivisor(t *testing.T) {
	rates := exampleRates()
	rates[KeyMarkup] = d("0.8")

	_, err := NewEngine(eurFormula, rates)
	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Contains(t, cfgErr.Error(), "divisor")
}

func TestNewEngine_ZeroDivisionRate(t *testing.T) {
	rates := exampleRates()
	rates["КУРС_USD_ЗЛОТЫ"] = decimal.Zero

	_, err := NewEngine(plnFormula, rates)
	var cfgErr *ConfigError
	assert.True(t, errors.As(err, &cfgErr))
}
