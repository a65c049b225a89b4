package encoding_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tilly/internal/encoding"
)

func TestNewUTF8Reader_UTF8Passthrough(t *testing.T) {
	// Valid UTF-8 with Portuguese characters should pass through unchanged.
	input := "Referência;Designação;PVP\nCafé Moído;4,85\nPão;1,00\n"
	r, err := encoding.NewUTF8Reader(bytes.NewReader([]byte(input)))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, input, string(got))
}

func TestNewUTF8Reader_Latin1(t *testing.T) {
	// Windows-1252 encoded "Referência;Designação\n".
	// In Windows-1252: ê = 0xEA, ç = 0xE7, ã = 0xE3
	latin1Bytes := []byte{
		'R', 'e', 'f', 'e', 'r', 0xEA, 'n', 'c', 'i', 'a', ';',
		'D', 'e', 's', 'i', 'g', 'n', 'a', 0xE7, 0xE3, 'o', '\n',
	}

	r, err := encoding.NewUTF8Reader(bytes.NewReader(latin1Bytes))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "Referência;Designação\n", string(got))
}

func TestNewUTF8Reader_UTF8BOM(t *testing.T) {
	// UTF-8 BOM (0xEF 0xBB 0xBF) should be stripped.
	bom := []byte{0xEF, 0xBB, 0xBF}
	content := []byte("Referência;Designação\n")
	input := append(bom, content...)

	r, err := encoding.NewUTF8Reader(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "Referência;Designação\n", string(got))
}
