// Package diff compiles a row-level comparison of two tables into a single
// executable SQL script. The compiler works purely from the tables' column
// catalogs and a business-key column set; it never touches a database.
package diff

// Class is the comparison class derived from a column's declared type.
type Class int

const (
	ClassTextual Class = iota
	ClassNumeric
)

// String returns the lowercase class name used in reports and config files.
func (c Class) String() string {
	switch c {
	case ClassNumeric:
		return "numeric"
	default:
		return "textual"
	}
}

// Origin records which side(s) of the comparison contributed a column.
type Origin int

const (
	OriginBoth Origin = iota
	OriginBefore
	OriginAfter
)

func (o Origin) String() string {
	switch o {
	case OriginBefore:
		return "before"
	case OriginAfter:
		return "after"
	default:
		return "both"
	}
}

// Column status codes emitted per non-key column.
const (
	StatusEqual      = 0 // values equal, or both null
	StatusDiffering  = 1 // present on both sides and unequal
	StatusAfterOnly  = 2 // null on before-side, present on after-side
	StatusBeforeOnly = 3 // present on before-side, null on after-side
)

// Row status codes emitted in the _row_status column. Rows whose key is
// present on both sides carry NULL, not a code.
const (
	RowStatusMissingBefore = 4 // key present only on after-side
	RowStatusMissingAfter  = 5 // key present only on before-side
)

// RowStatusColumn is the name of the row presence column in the output.
const RowStatusColumn = "_row_status"

// TableInput describes one side of the comparison. Where is free-form
// predicate text applied to the side's source rows before the join; the
// compiler passes it through without parsing it.
type TableInput struct {
	Table   string
	Columns []CatalogColumn
	Where   string
}

// CatalogColumn is a column descriptor as read from a catalog file.
type CatalogColumn struct {
	Name string
	Type string
}

// ColumnInfo is the compiler's view of one unified column.
type ColumnInfo struct {
	Name   string
	Class  Class
	Origin Origin
	IsKey  bool
}

// Materialization selects the shape of the output relation.
type Materialization int

const (
	// MaterializeView replaces a view holding the comparison query.
	MaterializeView Materialization = iota
	// MaterializeTable drops and recreates a snapshot table.
	MaterializeTable
)
