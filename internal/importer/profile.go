package importer

import "strings"

// Profile describes the column names of one product sheet layout. Each field lists
// the accepted header spellings; matching ignores case and surrounding space.
// Adding a layout is just adding a Profile to the profiles slice.
type Profile struct {
	Name        string
	NameCols    []string
	DescCols    []string
	PriceCols   []string
	QuantityCol []string
}

// columns is the resolved position of each field in a header row. Optional fields
// missing from the header are -1.
type columns struct {
	name, desc, price, quantity int
}

// match resolves p against a header row. Name and price are required.
func (p Profile) match(header []string) (columns, bool) {
	idx := make(map[string]int, len(header))

	for i, cell := range header {
		key := normalize(cell)
		if _, dup := idx[key]; key != "" && !dup {
			idx[key] = i
		}
	}

	find := func(names []string) int {
		for _, n := range names {
			if i, ok := idx[normalize(n)]; ok {
				return i
			}
		}

		return -1
	}

	cols := columns{
		name:     find(p.NameCols),
		desc:     find(p.DescCols),
		price:    find(p.PriceCols),
		quantity: find(p.QuantityCol),
	}

	return cols, cols.name >= 0 && cols.price >= 0
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), ":")))
}

// profiles is tried in order during detection.
var profiles = []Profile{
	{
		Name:        "es",
		NameCols:    []string{"Nombre", "Producto", "Artículo", "Articulo"},
		DescCols:    []string{"Descripción", "Descripcion", "Detalle"},
		PriceCols:   []string{"Precio", "Precio unitario", "Valor"},
		QuantityCol: []string{"Cantidad", "Stock", "Existencias"},
	},
	{
		Name:        "pt",
		NameCols:    []string{"Nome", "Produto"},
		DescCols:    []string{"Descrição", "Descricao"},
		PriceCols:   []string{"Preço", "Preco", "Preço unitário"},
		QuantityCol: []string{"Quantidade", "Qtd", "Estoque", "Stock"},
	},
	{
		Name:        "en",
		NameCols:    []string{"Name", "Product", "Item"},
		DescCols:    []string{"Description", "Details"},
		PriceCols:   []string{"Price", "Unit price"},
		QuantityCol: []string{"Quantity", "Qty", "Stock"},
	},
}
