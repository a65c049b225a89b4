package velox

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tilly/internal/money"
)

// parseEuropeanPrice parses a European-formatted price string.
// Format examples: "1.234,56", "12,50", "3,00".
func parseEuropeanPrice(s string) (money.Money, error) {
	clean := strings.ReplaceAll(s, ".", "")
	clean = strings.ReplaceAll(clean, ",", ".")

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return money.Money{}, err
	}

	return money.New(d), nil
}

// parseVATRate parses a VAT percentage cell such as "23", "23%" or "23,00".
func parseVATRate(s string) (decimal.Decimal, error) {
	clean := strings.TrimSuffix(strings.TrimSpace(s), "%")
	clean = strings.TrimSpace(clean)
	clean = strings.ReplaceAll(clean, ",", ".")

	return decimal.NewFromString(clean)
}
