package velox_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/MrJamesThe3rd/tilly/internal/importer/velox"
	"github.com/MrJamesThe3rd/tilly/internal/money"
)

func TestParser_Catalogo(t *testing.T) {
	csv := `Velox Distribuição - Catálogo geral - 31-01-2026;"=""0000"""
Cliente;LOJA CENTRAL
NIF;"=""123"""

Dados da tarifa
Moeda;EUR
Validade;01-01-2026 a 31-12-2026

Referência;Família;Designação;PVP;Stock
VLX-001;Bebidas;Água das Pedras 25cl;1,20;450
VLX-002;Mercearia;Café Moído 250g;4,85;120
`

	p := velox.NewParser()
	params, err := p.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, params, 2)

	assert.Equal(t, "VLX-001", params[0].SKU)
	assert.Equal(t, "Água das Pedras 25cl", params[0].Name)
	assert.True(t, params[0].UnitPrice.Equal(money.FromCents(120)))

	assert.Equal(t, "VLX-002", params[1].SKU)
	assert.Equal(t, "Café Moído 250g", params[1].Name)
	assert.True(t, params[1].UnitPrice.Equal(money.FromCents(485)))
}

func TestParser_Tarifa(t *testing.T) {
	csv := `Tarifa de preços - 15-02-2026
Cliente ;LOJA CENTRAL, LDA
NIF ;517948974

Referência ;Designação ;Preço s/IVA ;IVA % ;
VLX-100 ;Azeite Virgem Extra 75cl ;6,50 ;23 ;
VLX-101 ;Pão de Forma ;1,00 ;6 ;
`

	p := velox.NewParser()
	params, err := p.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, params, 2)

	// 6,50 net at 23% VAT is 8,00 after rounding.
	assert.Equal(t, "VLX-100", params[0].SKU)
	assert.True(t, params[0].UnitPrice.Equal(money.FromCents(800)), "got %s", params[0].UnitPrice)

	// 1,00 net at 6% VAT is 1,06.
	assert.Equal(t, "VLX-101", params[1].SKU)
	assert.True(t, params[1].UnitPrice.Equal(money.FromCents(106)), "got %s", params[1].UnitPrice)
}

func TestParser_Lista(t *testing.T) {
	csv := `Ref. ;Artigo ;Preço ;
A-17 ;Detergente Loiça 1L ;2,35 ;
 ; ; Página 1/1 ;
`

	p := velox.NewParser()
	params, err := p.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, params, 1)

	assert.Equal(t, "A-17", params[0].SKU)
	assert.Equal(t, "Detergente Loiça 1L", params[0].Name)
	assert.True(t, params[0].UnitPrice.Equal(money.FromCents(235)))
}

func TestParser_Latin1Encoding(t *testing.T) {
	utf8CSV := "Referência;Designação;PVP\nVLX-001;CAFÉ LOTE ESPECIAL;10,00\n"

	encoder := charmap.Windows1252.NewEncoder()
	latin1Bytes, err := encoder.Bytes([]byte(utf8CSV))
	require.NoError(t, err)

	p := velox.NewParser()
	params, err := p.Parse(bytes.NewReader(latin1Bytes))
	require.NoError(t, err)
	require.Len(t, params, 1)

	assert.Equal(t, "CAFÉ LOTE ESPECIAL", params[0].Name)
}

func TestParser_DifferentColumnOrder(t *testing.T) {
	csv := `Random;MetaData
PVP;Designação;Referência;Ignored
10,00;TEST_ORDER;SKU-1;XXX
`

	p := velox.NewParser()
	params, err := p.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, params, 1)

	assert.Equal(t, "TEST_ORDER", params[0].Name)
	assert.True(t, params[0].UnitPrice.Equal(money.FromCents(1000)))
}

func TestParser_EmptyFile(t *testing.T) {
	p := velox.NewParser()
	_, err := p.Parse(strings.NewReader(""))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no matching Velox format")
}

func TestParser_HeaderOnly(t *testing.T) {
	csv := `Referência;Designação;PVP`

	p := velox.NewParser()
	params, err := p.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Empty(t, params)
}

func TestParser_MissingName(t *testing.T) {
	csv := `Referência;Designação;PVP
VLX-001;;10,00
`

	p := velox.NewParser()
	_, err := p.Parse(strings.NewReader(csv))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "name")
}

func TestParser_SkipsInvalidPrices(t *testing.T) {
	csv := `Referência;Designação;PVP
VLX-001;GRÁTIS;0,00
VLX-002;SEM PREÇO;
VLX-003;NORMAL;5,00
`

	p := velox.NewParser()
	params, err := p.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, params, 1)

	assert.Equal(t, "VLX-003", params[0].SKU)
}

func TestParser_LargePrices(t *testing.T) {
	csv := `Referência;Designação;PVP
VLX-900;MÁQUINA INDUSTRIAL;1.234.567,89
`

	p := velox.NewParser()
	params, err := p.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, params, 1)

	assert.True(t, params[0].UnitPrice.Equal(money.FromCents(123456789)))
}
