// Package importer loads inventory from spreadsheet CSV exports.
package importer

import (
	"context"
	"fmt"
	"io"

	"github.com/MrJamesThe3rd/fiado/internal/ledger"
)

// Inventory is the part of the ledger an import writes to.
type Inventory interface {
	ImportProducts(ctx context.Context, products []*ledger.Product) (*ledger.ImportResult, error)
}

type Service struct {
	inventory Inventory
}

func NewService(inventory Inventory) *Service {
	return &Service{inventory: inventory}
}

// Summary reports what an import did.
type Summary struct {
	Profile string `json:"profile"`
	Charset string `json:"charset"`
	Rows    int    `json:"rows"`
	Created int    `json:"created"`
	Updated int    `json:"updated"`
}

// Import parses a product sheet and merges it into the inventory in one unit of work.
func (s *Service) Import(ctx context.Context, r io.Reader) (*Summary, error) {
	res, err := Parse(r)
	if err != nil {
		return nil, err
	}

	merged, err := s.inventory.ImportProducts(ctx, res.Products)
	if err != nil {
		return nil, fmt.Errorf("import products: %w", err)
	}

	return &Summary{
		Profile: res.Profile,
		Charset: res.Charset,
		Rows:    len(res.Products),
		Created: len(merged.Created),
		Updated: len(merged.Updated),
	}, nil
}
