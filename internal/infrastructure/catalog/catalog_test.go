package catalog

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestDecode_UTF8ConEncabezado(t *testing.T) {
	in := "id;nombre;precio;stock\n" +
		"p-cuaderno;Cuaderno 100 hojas;4.500;120\n" +
		"\n" +
		"p-resma;Resma carta;$ 21.900,50;40\n" +
		"p-lapiz;Lápiz HB;900;500\n"

	products, err := Decode(strings.NewReader(in), "", ';')
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, "p-cuaderno", products[0].ID)
	assert.True(t, decimal.NewFromInt(4500).Equal(products[0].Price))
	assert.True(t, decimal.RequireFromString("21900.50").Equal(products[1].Price))
	assert.Equal(t, "Lápiz HB", products[2].Name)
	assert.Equal(t, 500, products[2].Stock)
}

func TestDecode_Windows1252(t *testing.T) {
	raw, err := charmap.Windows1252.NewEncoder().String("p-borrador,Borrador de nata ñandú,700,30\n")
	require.NoError(t, err)

	products, err := Decode(strings.NewReader(raw), "cp1252", ',')
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Borrador de nata ñandú", products[0].Name)
}

func TestDecode_Errores(t *testing.T) {
	cases := map[string]string{
		"columnas":   "p-1;Solo nombre\n",
		"precio":     "p-1;Cuaderno;gratis;1\n",
		"stock":      "p-1;Cuaderno;100;-2\n",
		"sin nombre": "p-1; ;100;1\n",
		"repetido":   "p-1;A;1;1\np-1;B;1;1\n",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(in), CharsetUTF8, ';')
			require.Error(t, err)
			assert.Contains(t, err.Error(), "línea")
		})
	}

	_, err := Decode(strings.NewReader(""), "ebcdic", ';')
	assert.ErrorIs(t, err, ErrUnknownCharset)
}

func TestWriteSQL(t *testing.T) {
	products, err := Decode(strings.NewReader("p-1;Cuaderno O'Neill;4500;10\np-2;Lápiz;900;5\n"), "", ';')
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteSQL(&buf, "catalogo.csv", products, true))
	out := buf.String()

	assert.Contains(t, out, "('p-1', 'Cuaderno O''Neill', 4500.00, 10, 'active'),")
	assert.Contains(t, out, "('p-2', 'Lápiz', 900.00, 5, 'active')\nON CONFLICT (id) DO UPDATE SET")
	assert.NotContains(t, out, "stock = EXCLUDED.stock", "keepStock conserva el stock existente")

	buf.Reset()
	require.NoError(t, WriteSQL(&buf, "catalogo.csv", products, false))
	assert.Contains(t, buf.String(), "stock = EXCLUDED.stock")
}
