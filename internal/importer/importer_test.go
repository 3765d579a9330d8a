package importer_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/fiado/internal/importer"
	"github.com/MrJamesThe3rd/fiado/internal/ledger"
)

type fakeInventory struct {
	got []*ledger.Product
	err error
}

func (f *fakeInventory) ImportProducts(_ context.Context, products []*ledger.Product) (*ledger.ImportResult, error) {
	if f.err != nil {
		return nil, f.err
	}

	f.got = products

	return &ledger.ImportResult{Created: products[:1], Updated: products[1:]}, nil
}

func TestService_Import(t *testing.T) {
	inv := &fakeInventory{}
	svc := importer.NewService(inv)

	sum, err := svc.Import(context.Background(), strings.NewReader("Nombre;Precio;Cantidad\nSal;700;3\nAzúcar;1200;2\n"))
	require.NoError(t, err)

	assert.Equal(t, &importer.Summary{Profile: "es", Charset: "UTF-8", Rows: 2, Created: 1, Updated: 1}, sum)
	require.Len(t, inv.got, 2)
	assert.Equal(t, "Azúcar", inv.got[1].Name)
}

func TestService_Import_ParseErrorSkipsInventory(t *testing.T) {
	inv := &fakeInventory{}

	_, err := importer.NewService(inv).Import(context.Background(), strings.NewReader("nada\n"))
	assert.ErrorIs(t, err, importer.ErrNoProfile)
	assert.Nil(t, inv.got)
}

func TestService_Import_InventoryError(t *testing.T) {
	inv := &fakeInventory{err: errors.New("locked")}

	_, err := importer.NewService(inv).Import(context.Background(), strings.NewReader("Name,Price\nSalt,1\n"))
	assert.Error(t, err)
}
