package document

// BBox is a rectangle in PDF user space (origin bottom-left).
type BBox struct {
	X0 float64 // Left
	Y0 float64 // Bottom
	X1 float64 // Right
	Y1 float64 // Top
}

// Column is the horizontal extent of one table column.
type Column struct {
	Left  float64
	Right float64
}

func (c Column) Width() float64 {
	return c.Right - c.Left
}

// RawTable is a table fragment as detected on a single page.
type RawTable struct {
	Page    int        // 1-based page number
	BBox    BBox       // Table extent on the page
	Columns []Column   // Column boundaries, left to right
	Rows    [][]string // Cell grid; row 0 is the header when the table has one
}

// Header returns the first row, or nil for an empty table.
func (t RawTable) Header() []string {
	if len(t.Rows) == 0 {
		return nil
	}
	return t.Rows[0]
}

// Row maps a column header to the cell value.
type Row map[string]string

// LogicalTable is a table reassembled from one or more page fragments.
type LogicalTable struct {
	Columns []string
	Rows    []Row
}

// HasColumn reports whether name is one of the table headers.
func (t LogicalTable) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Append adds cells as a row, labelling them positionally with the table's columns.
// Extra cells are dropped; missing cells become empty strings.
func (t *LogicalTable) Append(cells []string) {
	row := make(Row, len(t.Columns))
	for i, col := range t.Columns {
		if i < len(cells) {
			row[col] = cells[i]
		} else if _, ok := row[col]; !ok {
			row[col] = ""
		}
	}
	t.Rows = append(t.Rows, row)
}
