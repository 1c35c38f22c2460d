package stellar

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stellar/go/amount"
	"github.com/stellar/go/price"
	"github.com/stellar/go/xdr"
)

// Precision is the number of decimal places the ledger keeps for amounts.
const Precision = 7

// Amount is a decimal amount as sent by clients, which post both JSON strings
// and JSON numbers.
type Amount string

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*a = Amount(n.String())
	return nil
}

func (a Amount) String() string {
	return string(a)
}

func (a Amount) IsZero() bool {
	return strings.TrimSpace(string(a)) == ""
}

// parseAmount validates a ledger amount: at most 7 decimals, within int64
// stroops, positive unless allowZero is set. It returns the canonical form.
func parseAmount(field string, a Amount, allowZero bool) (string, error) {
	s := strings.TrimSpace(a.String())
	if s == "" {
		return "", validationError("%s is required", field)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return "", validationError("%s %q is not a number", field, s)
	}
	if d.Exponent() < -Precision && !d.Equal(d.Truncate(Precision)) {
		return "", validationError("%s %q has more than %d decimal places", field, s, Precision)
	}
	canonical := d.StringFixed(Precision)
	stroops, err := amount.ParseInt64(canonical)
	if err != nil {
		return "", validationError("%s %q is out of range", field, s)
	}
	if stroops < 0 || (stroops == 0 && !allowZero) {
		return "", validationError("%s must be greater than zero", field)
	}
	return canonical, nil
}

// parsePrice converts a decimal price bound into the rational form the
// deposit operation carries.
func parsePrice(field, s string) (xdr.Price, error) {
	p, err := price.Parse(strings.TrimSpace(s))
	if err != nil {
		return xdr.Price{}, validationError("%s %q is not a valid price: %v", field, s, err)
	}
	if p.N <= 0 || p.D <= 0 {
		return xdr.Price{}, validationError("%s must be greater than zero", field)
	}
	return p, nil
}

// MinDestAmount deducts slippage from a quoted destination amount and
// truncates to ledger precision: floor(quoted * (1 - slippage/100), 7).
func MinDestAmount(quoted string, slippagePercent decimal.Decimal) (string, error) {
	q, err := decimal.NewFromString(strings.TrimSpace(quoted))
	if err != nil {
		return "", newError(KindPathSearch, err, "invalid quoted amount %q", quoted)
	}
	if err := checkSlippage(slippagePercent); err != nil {
		return "", err
	}
	factor := decimal.NewFromInt(1).Sub(slippagePercent.Div(decimal.NewFromInt(100)))
	minimum := q.Mul(factor).Truncate(Precision)
	// the network rejects a path payment whose destMin is not positive
	if !minimum.IsPositive() {
		return "", validationError("quoted amount %s leaves no minimum to receive at %s%% slippage", quoted, slippagePercent)
	}
	return minimum.StringFixed(Precision), nil
}

// parseSlippage reads a slippage percentage, falling back to def when empty.
func parseSlippage(s Amount, def decimal.Decimal) (decimal.Decimal, error) {
	if s.IsZero() {
		return def, checkSlippage(def)
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s.String()))
	if err != nil {
		return decimal.Decimal{}, validationError("slippage %q is not a number", s)
	}
	return d, checkSlippage(d)
}

func checkSlippage(d decimal.Decimal) error {
	if d.IsNegative() || d.GreaterThanOrEqual(decimal.NewFromInt(100)) {
		return validationError("slippage must be between 0 and 100, got %s", d)
	}
	return nil
}
