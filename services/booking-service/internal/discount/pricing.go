package discount

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// PriceLabel is display-only; building one never touches the grant.
type PriceLabel struct {
	Original string `json:"original"`
	Current  string `json:"current"`
	// Struck marks Original as shown struck through next to Current.
	Struck bool   `json:"struck"`
	Marker string `json:"marker,omitempty"`
}

func parsePrice(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "$"))
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid price %q: %w", raw, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("invalid price %q: negative", raw)
	}
	return d, nil
}

func formatPrice(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// ApplyPercentage returns the price reduced by pct percent, rounded to cents.
func ApplyPercentage(price string, pct int) (string, error) {
	d, err := parsePrice(price)
	if err != nil {
		return "", err
	}
	factor := decimal.NewFromInt(int64(100 - pct)).Div(decimal.NewFromInt(100))
	return formatPrice(d.Mul(factor).Round(2)), nil
}

func Label(price string, pct int, available bool) (PriceLabel, error) {
	d, err := parsePrice(price)
	if err != nil {
		return PriceLabel{}, err
	}
	original := formatPrice(d)
	if !available {
		return PriceLabel{Original: original, Current: original}, nil
	}
	current, err := ApplyPercentage(price, pct)
	if err != nil {
		return PriceLabel{}, err
	}
	return PriceLabel{
		Original: original,
		Current:  current,
		Struck:   true,
		Marker:   fmt.Sprintf("-%d%%", pct),
	}, nil
}
