package importer_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/MrJamesThe3rd/fiado/internal/importer"
	"github.com/MrJamesThe3rd/fiado/internal/ledger"
)

func assertProduct(t *testing.T, p *ledger.Product, name, desc, price string, qty int64) {
	t.Helper()

	assert.Equal(t, name, p.Name)
	assert.Equal(t, desc, p.Description)
	assert.True(t, decimal.RequireFromString(price).Equal(p.Price), "price %s, want %s", p.Price, price)
	assert.Equal(t, qty, p.Quantity)
}

func TestParse_SpanishSemicolon(t *testing.T) {
	csv := `Inventario almacén
Fecha;01-03-2024

Producto;Descripción;Precio;Cantidad
Tornillos;caja 100u;1.234,50;10
Arroz; ;990;25

Fideos;;1,5;
`

	res, err := importer.Parse(strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, "es", res.Profile)
	assert.Equal(t, ';', res.Delimiter)
	require.Len(t, res.Products, 3)

	assertProduct(t, res.Products[0], "Tornillos", "caja 100u", "1234.50", 10)
	assertProduct(t, res.Products[1], "Arroz", "", "990", 25)
	assertProduct(t, res.Products[2], "Fideos", "", "1.5", 0)
}

func TestParse_EnglishComma(t *testing.T) {
	csv := "Name,Price,Qty\n" +
		"Nails,0.10,500\n" +
		"\"Hammer, small\",12.99,3\n"

	res, err := importer.Parse(strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, "en", res.Profile)
	assert.Equal(t, ',', res.Delimiter)
	require.Len(t, res.Products, 2)

	assertProduct(t, res.Products[0], "Nails", "", "0.10", 500)
	assertProduct(t, res.Products[1], "Hammer, small", "", "12.99", 3)
}

func TestParse_PortugueseLatin1(t *testing.T) {
	utf8CSV := "Produto;Descrição;Preço;Quantidade\nPão;fatiado;2,30;4\n"

	latin1, err := charmap.Windows1252.NewEncoder().String(utf8CSV)
	require.NoError(t, err)

	res, err := importer.Parse(bytes.NewReader([]byte(latin1)))
	require.NoError(t, err)

	assert.Equal(t, "pt", res.Profile)
	assert.NotEqual(t, "UTF-8", res.Charset)
	require.Len(t, res.Products, 1)
	assertProduct(t, res.Products[0], "Pão", "fatiado", "2.30", 4)
}

func TestParse_HeaderCaseAndTabs(t *testing.T) {
	csv := "  PRODUCTO \tprecio\tstock\nSal\t700\t1.000\n"

	res, err := importer.Parse(strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, '\t', res.Delimiter)
	require.Len(t, res.Products, 1)
	assertProduct(t, res.Products[0], "Sal", "", "700", 1000)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		csv     string
		wantErr error
	}{
		{
			name:    "NoHeader",
			csv:     "Fecha;Monto\n01-01-2024;10\n",
			wantErr: importer.ErrNoProfile,
		},
		{
			name:    "BadPrice",
			csv:     "Nombre;Precio\nSal;gratis\n",
			wantErr: importer.ErrRow,
		},
		{
			name:    "MissingName",
			csv:     "Nombre;Precio\n;100\n",
			wantErr: importer.ErrRow,
		},
		{
			name:    "FractionalQuantity",
			csv:     "Nombre;Precio;Cantidad\nSal;100;1,5\n",
			wantErr: importer.ErrRow,
		},
		{
			name:    "NegativeQuantity",
			csv:     "Nombre;Precio;Cantidad\nSal;100;-2\n",
			wantErr: ledger.ErrInvalidQuantity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := importer.Parse(strings.NewReader(tt.csv))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
