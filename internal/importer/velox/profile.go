package velox

// priceMode determines how the retail price is extracted from a row.
type priceMode int

const (
	// priceGross means one tax-inclusive price column (e.g. "PVP" with value "12,50").
	priceGross priceMode = iota
	// priceNet means a net price column plus a VAT percentage column.
	priceNet
)

// Profile describes the column layout of a Velox price list export format.
// Adding a new format is just adding a new Profile to the profiles slice.
type Profile struct {
	Name      string
	SKUCol    string
	NameCol   string
	PriceMode priceMode
	PriceCol  string // used when PriceMode == priceGross
	NetCol    string // used when PriceMode == priceNet
	VATCol    string // used when PriceMode == priceNet
}

// requiredCols returns the column names that must be present for this profile to match.
func (p Profile) requiredCols() []string {
	cols := []string{p.SKUCol, p.NameCol}

	switch p.PriceMode {
	case priceGross:
		cols = append(cols, p.PriceCol)
	case priceNet:
		cols = append(cols, p.NetCol, p.VATCol)
	}

	return cols
}

// profiles is the ordered list of Velox export formats to try during auto-detection.
// More specific profiles should come first to avoid false matches.
var profiles = []Profile{
	{
		Name:      "tarifa",
		SKUCol:    "Referência",
		NameCol:   "Designação",
		PriceMode: priceNet,
		NetCol:    "Preço s/IVA",
		VATCol:    "IVA %",
	},
	{
		Name:      "catálogo",
		SKUCol:    "Referência",
		NameCol:   "Designação",
		PriceMode: priceGross,
		PriceCol:  "PVP",
	},
	{
		Name:      "lista",
		SKUCol:    "Ref.",
		NameCol:   "Artigo",
		PriceMode: priceGross,
		PriceCol:  "Preço",
	},
}
