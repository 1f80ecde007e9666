// Package csvtable loads whole CSV files into domain tables.
package csvtable

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/eykd/tabvet/internal/domain"
)

// Extension is the only file extension the loader accepts.
const Extension = ".csv"

// NullMarkers are the cell values read as missing.
var NullMarkers = map[string]bool{
	"":         true,
	"#N/A":     true,
	"#N/A N/A": true,
	"#NA":      true,
	"-1.#IND":  true,
	"-1.#QNAN": true,
	"-NaN":     true,
	"-nan":     true,
	"1.#IND":   true,
	"1.#QNAN":  true,
	"<NA>":     true,
	"N/A":      true,
	"NA":       true,
	"NULL":     true,
	"NaN":      true,
	"None":     true,
	"n/a":      true,
	"nan":      true,
	"null":     true,
}

// Loader reads CSV files from disk.
type Loader struct{}

// Supports reports whether the loader can read the file at path.
func (Loader) Supports(path string) bool {
	return filepath.Ext(path) == Extension
}

// Load reads the entire file at path.
func (l Loader) Load(ctx context.Context, path string) (*domain.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !l.Supports(path) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Read(f)
}

// Read parses CSV content. A UTF-8 or UTF-16 byte order mark is honored
// and stripped; without one the input must be valid UTF-8. Stray quotes
// inside unquoted fields are kept as text.
func Read(r io.Reader) (*domain.Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if !hasUTF16BOM(data) {
		if err := checkUTF8(data); err != nil {
			return nil, err
		}
	}
	decoded := transform.NewReader(bytes.NewReader(data), xunicode.BOMOverride(xunicode.UTF8.NewDecoder()))

	cr := csv.NewReader(decoded)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, domain.ErrEmptyFile
	}
	if err != nil {
		return nil, err
	}
	for i, h := range header {
		header[i] = norm.NFC.String(h)
	}

	table := &domain.Table{Header: header}
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) > len(header) {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("%w: Expected %d fields in line %d, saw %d",
				domain.ErrRaggedRow, len(header), line, len(record))
		}
		table.Rows = append(table.Rows, toCells(record, len(header)))
	}
	return table, nil
}

func hasUTF16BOM(data []byte) bool {
	return bytes.HasPrefix(data, []byte{0xFF, 0xFE}) || bytes.HasPrefix(data, []byte{0xFE, 0xFF})
}

// checkUTF8 reports the first byte that does not start a valid UTF-8
// sequence.
func checkUTF8(data []byte) error {
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			return fmt.Errorf("%w: can't decode byte 0x%02x in position %d", domain.ErrInvalidEncoding, data[i], i)
		}
		i += size
	}
	return nil
}

// toCells converts a record into exactly width cells, padding short rows
// with nulls.
func toCells(record []string, width int) []domain.Cell {
	cells := make([]domain.Cell, width)
	for i := range cells {
		if i >= len(record) {
			cells[i] = domain.Cell{Null: true}
			continue
		}
		v := record[i]
		cells[i] = domain.Cell{Value: v, Null: IsNull(v)}
	}
	return cells
}

// IsNull reports whether a raw value is one of the null markers.
func IsNull(v string) bool {
	return NullMarkers[v]
}
