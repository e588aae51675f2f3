package interchange

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/pkordes/granblue-checker/internal/catalog"
	"github.com/pkordes/granblue-checker/internal/domain"
)

// TagValueSeparator splits several values in one tag cell, e.g. "sabre|spear".
const TagValueSeparator = "|"

// BulkRow is one item row of a bulk-upload sheet.
type BulkRow struct {
	// Line is the 1-based line number in the sheet, header included.
	Line          int
	Name          string
	Image         string
	ImplementedAt string
	// Tags maps the normalised column header (a filter key) to the
	// values in that cell.
	Tags map[string][]string
}

// ParseBulkSheet reads a bulk-upload sheet. The first row is the header;
// it must contain the name and image columns. Blank rows are skipped.
//
// Only structural problems (unreadable CSV, missing header columns) are
// returned as errors; per-row problems are left for the uploader so one bad
// row does not sink the sheet.
func ParseBulkSheet(r io.Reader) ([]BulkRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: sheet is empty", domain.ErrValidation)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", domain.ErrValidation, err)
	}

	cols := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, bom)
		}
		cols[i] = catalog.NormalizeFilterKey(h)
	}
	for _, required := range []string{ColumnName, ColumnImage} {
		if !slices.Contains(cols, required) {
			return nil, fmt.Errorf("%w: header is missing the %q column", domain.ErrValidation, required)
		}
	}

	var rows []BulkRow
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		if isBlank(rec) {
			continue
		}
		line, _ := cr.FieldPos(0)
		row := BulkRow{Line: line, Tags: make(map[string][]string)}
		for i, cell := range rec {
			if i >= len(cols) {
				break
			}
			cell = strings.TrimSpace(cell)
			switch cols[i] {
			case ColumnName:
				row.Name = cell
			case ColumnImage:
				row.Image = cell
			case ColumnImplementedAt:
				row.ImplementedAt = cell
			case "":
			default:
				if vals := splitValues(cell); len(vals) > 0 {
					row.Tags[cols[i]] = append(row.Tags[cols[i]], vals...)
				}
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func splitValues(cell string) []string {
	var out []string
	for _, part := range strings.Split(cell, TagValueSeparator) {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}
