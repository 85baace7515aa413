package tabular

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrMissingColumns indicates the table lacks columns the caller requires.
var ErrMissingColumns = errors.New("missing required columns")

// ColumnKind is the inferred type of a column.
type ColumnKind int

const (
	KindString ColumnKind = iota
	KindNumber
)

func (k ColumnKind) String() string {
	if k == KindNumber {
		return "number"
	}
	return "string"
}

// naMarkers are the cell values read as missing.
var naMarkers = map[string]struct{}{
	"": {}, "NA": {}, "N/A": {}, "n/a": {}, "NaN": {}, "nan": {}, "-NaN": {}, "-nan": {},
	"NULL": {}, "null": {}, "None": {}, "#N/A": {}, "#NA": {}, "<NA>": {}, "#N/A N/A": {},
	"-1.#IND": {}, "-1.#QNAN": {}, "1.#IND": {}, "1.#QNAN": {},
}

// Cell is a single parsed value. Text keeps the raw value, surrounding spaces
// included; Num is only meaningful in KindNumber columns.
type Cell struct {
	Text string
	Num  float64
	Null bool
}

// Table is an in-memory delimited table with inferred column kinds.
type Table struct {
	Columns []string
	Kinds   []ColumnKind
	Rows    [][]Cell
}

// NewTable builds a Table from a header and raw string records.
func NewTable(header []string, records [][]string) (*Table, error) {
	if len(header) == 0 {
		return nil, errors.New("table has no header row")
	}

	columns := make([]string, len(header))
	seen := make(map[string]struct{}, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if name == "" {
			return nil, fmt.Errorf("header column %d is empty", i+1)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("duplicate header column %q", name)
		}
		seen[name] = struct{}{}
		columns[i] = name
	}

	rows := make([][]Cell, 0, len(records))
	for i, record := range records {
		if len(record) > len(columns) {
			return nil, fmt.Errorf("row %d has %d fields, header has %d", i+2, len(record), len(columns))
		}
		if isBlank(record) {
			continue
		}

		row := make([]Cell, len(columns))
		for j := range columns {
			if j >= len(record) {
				row[j] = Cell{Null: true}
				continue
			}
			row[j] = parseCell(record[j])
		}
		rows = append(rows, row)
	}

	t := &Table{Columns: columns, Rows: rows}
	t.inferKinds()
	return t, nil
}

// Index returns the position of the named column, or -1.
func (t *Table) Index(name string) int {
	for i, col := range t.Columns {
		if col == name {
			return i
		}
	}
	return -1
}

// Require fails with ErrMissingColumns when any name is absent from the header.
func (t *Table) Require(names ...string) error {
	var missing []string
	for _, name := range names {
		if t.Index(name) < 0 {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	return nil
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

func (t *Table) inferKinds() {
	t.Kinds = make([]ColumnKind, len(t.Columns))
	for j := range t.Columns {
		kind := KindNumber
		for _, row := range t.Rows {
			cell := row[j]
			if cell.Null {
				continue
			}
			if _, err := strconv.ParseFloat(strings.TrimSpace(cell.Text), 64); err != nil {
				kind = KindString
				break
			}
		}
		t.Kinds[j] = kind
	}
}

// parseCell reads one raw value. Spaces are ignored when looking for NA
// markers and numbers but kept in Text, so " maize" and "maize" stay distinct.
func parseCell(raw string) Cell {
	trimmed := strings.TrimSpace(raw)
	if _, na := naMarkers[trimmed]; na {
		return Cell{Text: raw, Null: true}
	}
	cell := Cell{Text: raw}
	if num, err := strconv.ParseFloat(trimmed, 64); err == nil {
		if math.IsNaN(num) {
			return Cell{Text: raw, Null: true}
		}
		cell.Num = num
	}
	return cell
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
