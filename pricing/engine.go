package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Price table keys shared by every storefront.
const (
	KeyMarkup    = "НАЦЕНКА"
	KeyTax       = "ПРОЦЕНТЫ_НАЛОГ"
	KeyAcquiring = "ПРОЦЕНТЫ_ЭКВАЙРИНГ"

	KeyBYNToRUB = "КУРС_БЕЛ.РУБ_РУБ"
	KeyEURToBYN = "КУРС_EUR_БЕЛ.РУБ"
)

var hundred = decimal.NewFromInt(100)

// Op is how a rate is applied to the running amount.
type Op int

const (
	Mul Op = iota
	Div
)

// Step applies the rate stored under Key.
type Step struct {
	Key string
	Op  Op
}

// Formula is a storefront's currency chain and rounding offset.
type Formula struct {
	ListChain     []Step
	DeliveryChain []Step
	Offset        int64
}

// Keys lists every rate key the formula reads.
func (f Formula) Keys() []string {
	keys := []string{KeyMarkup, KeyTax, KeyAcquiring}
	for _, s := range f.ListChain {
		keys = append(keys, s.Key)
	}
	for _, s := range f.DeliveryChain {
		keys = append(keys, s.Key)
	}
	return keys
}

// ConfigError means the price table cannot serve the formula; it is fatal for the run.
type ConfigError struct {
	Missing []string
	Reason  string
}

func (e *ConfigError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("pricing: price table is missing keys: %s", strings.Join(e.Missing, ", "))
	}
	return "pricing: " + e.Reason
}

// Engine turns a source list price into a resale price.
type Engine struct {
	formula Formula
	rates   map[string]decimal.Decimal
	divisor decimal.Decimal
}

// NewEngine checks rates against the formula up front so Price never fails mid-run.
func NewEngine(f Formula, rates map[string]decimal.Decimal) (*Engine, error) {
	var missing []string
	for _, k := range f.Keys() {
		if _, ok := rates[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return nil, &ConfigError{Missing: missing}
	}
	for _, s := range append(append([]Step{}, f.ListChain...), f.DeliveryChain...) {
		if s.Op == Div && rates[s.Key].IsZero() {
			return nil, &ConfigError{Reason: fmt.Sprintf("rate %s is zero and used as a divisor", s.Key)}
		}
	}

	divisor := decimal.NewFromInt(1).
		Sub(rates[KeyMarkup]).
		Sub(rates[KeyTax]).
		Sub(rates[KeyAcquiring])
	if !divisor.IsPositive() {
		return nil, &ConfigError{Reason: fmt.Sprintf("markup, tax and acquiring fractions leave divisor %s", divisor)}
	}

	return &Engine{formula: f, rates: rates, divisor: divisor}, nil
}

// Offset is the storefront's rounding offset.
func (e *Engine) Offset() int64 { return e.formula.Offset }

// Cost is the landed cost in roubles before markup and fees.
func (e *Engine) Cost(listPrice, deliveryPrice decimal.Decimal) decimal.Decimal {
	return e.chain(listPrice, e.formula.ListChain).Add(e.chain(deliveryPrice, e.formula.DeliveryChain))
}

// Resale is the unrounded resale price.
func (e *Engine) Resale(listPrice, deliveryPrice decimal.Decimal) decimal.Decimal {
	return e.Cost(listPrice, deliveryPrice).Div(e.divisor)
}

// Price is the rounded resale price: the next multiple of 100 above resale, minus the offset.
func (e *Engine) Price(listPrice, deliveryPrice decimal.Decimal) int64 {
	return Round(e.Resale(listPrice, deliveryPrice), e.formula.Offset)
}

// Round lifts v to the next hundred strictly above floor(v/100)*100 and subtracts offset.
func Round(v decimal.Decimal, offset int64) int64 {
	return v.Div(hundred).Floor().Add(decimal.NewFromInt(1)).Mul(hundred).IntPart() - offset
}

func (e *Engine) chain(v decimal.Decimal, steps []Step) decimal.Decimal {
	for _, s := range steps {
		switch s.Op {
		case Mul:
			v = v.Mul(e.rates[s.Key])
		case Div:
			v = v.Div(e.rates[s.Key])
		}
	}
	return v
}
