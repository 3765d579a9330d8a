package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/fiado/internal/amount"
	enc "github.com/MrJamesThe3rd/fiado/internal/encoding"
	"github.com/MrJamesThe3rd/fiado/internal/ledger"
)

var (
	ErrNoProfile = errors.New("no product columns found")
	ErrRow       = errors.New("invalid row")
)

// Result is a parsed product sheet.
type Result struct {
	Profile   string
	Charset   string
	Delimiter rune
	Products  []*ledger.Product
}

// Parse reads a product sheet in any supported charset, delimiter and header layout.
// Rows before the header and blank rows are skipped; a data row that cannot be read
// fails the whole sheet so nothing is half imported.
func Parse(r io.Reader) (*Result, error) {
	utf8r, charset, err := enc.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	data, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	delim := sniffDelimiter(data)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delim
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	profile, cols, headerIdx, ok := detectProfile(rows)
	if !ok {
		return nil, fmt.Errorf("%w: expected a name and a price column", ErrNoProfile)
	}

	products, err := parseRows(cols, rows[headerIdx+1:], headerIdx+1)
	if err != nil {
		return nil, err
	}

	return &Result{Profile: profile.Name, Charset: charset, Delimiter: delim, Products: products}, nil
}

func detectProfile(rows [][]string) (Profile, columns, int, bool) {
	for rowIdx, row := range rows {
		for _, p := range profiles {
			if cols, ok := p.match(row); ok {
				return p, cols, rowIdx, true
			}
		}
	}

	return Profile{}, columns{}, 0, false
}

// parseRows reads products below the header. headerRowNum is the 0-based index of
// the header in the file, for error messages.
func parseRows(cols columns, rows [][]string, headerRowNum int) ([]*ledger.Product, error) {
	var products []*ledger.Product

	for i, row := range rows {
		rowNum := headerRowNum + i + 2

		if blank(row) {
			continue
		}

		name := cellValue(row, cols.name)
		if name == "" {
			return nil, fmt.Errorf("%w: row %d: missing name", ErrRow, rowNum)
		}

		price, err := amount.Parse(cellValue(row, cols.price))
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: price: %w", ErrRow, rowNum, err)
		}

		qty, err := parseQuantity(cellValue(row, cols.quantity))
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: quantity: %w", ErrRow, rowNum, err)
		}

		products = append(products, &ledger.Product{
			Name:        name,
			Description: cellValue(row, cols.desc),
			Price:       price,
			Quantity:    qty,
		})
	}

	return products, nil
}

// parseQuantity accepts whole numbers, with a dot as thousands separator ("1.000")
// and an optional zero comma fraction ("12,0"). Empty means zero.
func parseQuantity(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}

	d, err := amount.ParseEuropean(s)
	if err != nil {
		return 0, err
	}

	if !d.Equal(d.Truncate(0)) {
		return 0, fmt.Errorf("%q is not a whole number", s)
	}

	if d.LessThan(decimal.Zero) {
		return 0, fmt.Errorf("%w: %s", ledger.ErrInvalidQuantity, d)
	}

	return d.IntPart(), nil
}

// sniffDelimiter picks the separator that appears most often in the first lines.
// Semicolon wins ties because comma is also a decimal mark.
func sniffDelimiter(data []byte) rune {
	lines := strings.SplitN(string(data), "\n", 6)

	best, bestCount := ';', 0

	for _, d := range []rune{';', '\t', ','} {
		count := 0
		for _, l := range lines {
			count += strings.Count(l, string(d))
		}

		if count > bestCount {
			best, bestCount = d, count
		}
	}

	return best
}

// cellValue safely gets a trimmed cell value from a row.
func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}

	return true
}
