package velox

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/MrJamesThe3rd/tilly/internal/catalog"
	enc "github.com/MrJamesThe3rd/tilly/internal/encoding"
	"github.com/MrJamesThe3rd/tilly/internal/money"
)

// Parser reads Velox supplier price list exports and produces catalog params.
// It auto-detects which export format (tarifa, catálogo, lista) is being used
// by matching column headers against known profiles.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) ([]catalog.CreateParams, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	reader := csv.NewReader(utf8r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	profile, colMap, headerIdx := detectProfile(rows)
	if profile == nil {
		return nil, fmt.Errorf("no matching Velox format found: expected columns for tarifa, catálogo, or lista")
	}

	return parseRows(profile, colMap, rows[headerIdx+1:], headerIdx+1)
}

// colIndex maps column names to their index in the row.
type colIndex map[string]int

// detectProfile scans rows for a header that matches a known profile.
// Returns the matched profile, column index map, and header row index.
func detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			name := strings.TrimSpace(cell)
			if name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

// matchesProfile checks if all required columns of a profile are present.
func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

// parseRows extracts products from data rows using the matched profile.
// headerRowNum is the 0-based index of the header in the original file (for error messages).
func parseRows(p *Profile, cols colIndex, rows [][]string, headerRowNum int) ([]catalog.CreateParams, error) {
	skuIdx := cols[p.SKUCol]
	nameIdx := cols[p.NameCol]

	var params []catalog.CreateParams

	for i, row := range rows {
		rowNum := headerRowNum + i + 2 // 1-based, skipping header

		sku := cellValue(row, skuIdx)
		if sku == "" {
			// Footer or separator row.
			continue
		}

		name := cellValue(row, nameIdx)
		if name == "" {
			return nil, fmt.Errorf("row %d: missing product name", rowNum)
		}

		price, ok := parsePrice(p, cols, row)
		if !ok {
			continue
		}

		params = append(params, catalog.CreateParams{
			SKU:       sku,
			Name:      name,
			UnitPrice: price,
		})
	}

	return params, nil
}

// parsePrice extracts the retail price from a row based on the profile's price mode.
func parsePrice(p *Profile, cols colIndex, row []string) (money.Money, bool) {
	switch p.PriceMode {
	case priceGross:
		return parseGrossPrice(row, cols[p.PriceCol])
	case priceNet:
		return parseNetPrice(row, cols[p.NetCol], cols[p.VATCol])
	}

	return money.Money{}, false
}

// parseGrossPrice handles a single tax-inclusive price column.
func parseGrossPrice(row []string, idx int) (money.Money, bool) {
	s := cellValue(row, idx)
	if s == "" {
		return money.Money{}, false
	}

	price, err := parseEuropeanPrice(s)
	if err != nil || !price.IsPositive() {
		return money.Money{}, false
	}

	return price, true
}

// parseNetPrice handles separate net price and VAT percentage columns.
// The retail price is net plus VAT, rounded to the cent.
func parseNetPrice(row []string, netIdx, vatIdx int) (money.Money, bool) {
	net, ok := parseGrossPrice(row, netIdx)
	if !ok {
		return money.Money{}, false
	}

	vatStr := cellValue(row, vatIdx)
	if vatStr == "" {
		return net, true
	}

	rate, err := parseVATRate(vatStr)
	if err != nil {
		return money.Money{}, false
	}

	return net.Add(net.Percent(rate)).RoundCents(), true
}

// cellValue safely gets a trimmed cell value from a row.
func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
