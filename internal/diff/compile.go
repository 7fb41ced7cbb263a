package diff

import (
	"fmt"
	"strings"
)

// DefaultRelation is the name of the output relation when none is configured.
const DefaultRelation = "diff_result"

// presenceMarker is selected as a constant in each side's CTE so row
// presence can be detected even when every key column is NULL.
const presenceMarker = "_ck_present"

// Options configures the compiler.
type Options struct {
	// Relation is the name of the output relation (default "diff_result").
	Relation string
	// Materialize selects view or snapshot-table output.
	Materialize Materialization
	// IncludeComments controls the script's comment header.
	IncludeComments bool
	// Classifier maps declared types to comparison classes. A nil
	// classifier uses the default rule table.
	Classifier *Classifier
}

// Script is a compiled comparison script plus the metadata that produced it.
type Script struct {
	SQL         string
	Relation    string
	Materialize Materialization
	Before      string
	After       string
	Keys        []string
	// Columns holds every unified column in output order, keys included.
	Columns []ColumnInfo
}

// Compiler builds comparison scripts. Compilation is pure text generation:
// given well-formed inputs it cannot fail partway, so every error it
// returns is a configuration error detected before any SQL is produced.
type Compiler struct {
	opts Options
}

// NewCompiler creates a compiler with the given options.
func NewCompiler(opts Options) *Compiler {
	if opts.Relation == "" {
		opts.Relation = DefaultRelation
	}
	if opts.Classifier == nil {
		opts.Classifier = NewClassifier()
	}
	return &Compiler{opts: opts}
}

// Compile produces the comparison script for the two sides keyed on keys.
//
// The output relation projects, in order: one column per business key
// carrying the key's literal value, one status column per non-key unified
// column (named after the column, in unified order), and _row_status.
func (c *Compiler) Compile(before, after TableInput, keys []string) (*Script, error) {
	if before.Table == "" {
		return nil, fmt.Errorf("before-side table name is empty")
	}
	if after.Table == "" {
		return nil, fmt.Errorf("after-side table name is empty")
	}

	unified, origin := Unify(before.Columns, after.Columns)

	// The output relation owns these names; a source column with either
	// would collide with the presence marker or the row status projection.
	for _, name := range unified {
		if name == strings.ToUpper(presenceMarker) || name == strings.ToUpper(RowStatusColumn) {
			return nil, fmt.Errorf("column %s collides with a generated output column", name)
		}
	}

	keySet, keyList, err := normalizeKeys(keys, origin)
	if err != nil {
		return nil, err
	}

	classes := classifyColumns(c.opts.Classifier, before.Columns, after.Columns)

	columns := make([]ColumnInfo, 0, len(unified))
	for _, name := range unified {
		columns = append(columns, ColumnInfo{
			Name:   name,
			Class:  classes[name],
			Origin: origin[name],
			IsKey:  keySet[name],
		})
	}

	w := NewSQLWriterWithComments(c.opts.IncludeComments)
	c.writeHeader(w, before.Table, after.Table, keyList)
	c.writeMaterialization(w)
	c.writeSourceCTEs(w, before, after)
	c.writeProjection(w, columns, keyList)
	c.writeJoin(w, keyList)
	w.WriteString(";")

	return &Script{
		SQL:         w.String() + "\n",
		Relation:    c.opts.Relation,
		Materialize: c.opts.Materialize,
		Before:      before.Table,
		After:       after.Table,
		Keys:        keyList,
		Columns:     columns,
	}, nil
}

// normalizeKeys uppercases and deduplicates the declared keys and rejects
// an empty set or a key absent from both catalogs.
func normalizeKeys(keys []string, origin map[string]Origin) (map[string]bool, []string, error) {
	keySet := make(map[string]bool, len(keys))
	keyList := make([]string, 0, len(keys))
	for _, k := range keys {
		name := strings.ToUpper(strings.TrimSpace(k))
		if name == "" || keySet[name] {
			continue
		}
		if _, known := origin[name]; !known {
			return nil, nil, fmt.Errorf("key column %s appears in neither catalog", name)
		}
		keySet[name] = true
		keyList = append(keyList, name)
	}
	if len(keyList) == 0 {
		return nil, nil, fmt.Errorf("key set is empty")
	}
	return keySet, keyList, nil
}

// classifyColumns builds the name→class map. Where both sides declare a
// column the after-side declaration wins, matching unified-list semantics
// (the after side is the state being moved to).
func classifyColumns(cl *Classifier, before, after []CatalogColumn) map[string]Class {
	classes := make(map[string]Class, len(before)+len(after))
	for _, col := range before {
		classes[strings.ToUpper(col.Name)] = cl.Classify(col.Type)
	}
	for _, col := range after {
		classes[strings.ToUpper(col.Name)] = cl.Classify(col.Type)
	}
	return classes
}

func (c *Compiler) writeHeader(w *SQLWriter, beforeTable, afterTable string, keys []string) {
	w.WriteComment("")
	w.WriteComment("checkatron row diff")
	w.WriteComment("before: " + beforeTable)
	w.WriteComment("after: " + afterTable)
	w.WriteComment("keys: " + strings.Join(keys, ", "))
	w.WriteComment("")
	if c.opts.IncludeComments {
		w.WriteString("\n")
	}
}

func (c *Compiler) writeMaterialization(w *SQLWriter) {
	relation := quoteIdentifier(c.opts.Relation)
	switch c.opts.Materialize {
	case MaterializeTable:
		w.Writef("DROP TABLE IF EXISTS %s", relation)
		w.WriteStatementSeparator()
		w.Writef("CREATE TABLE %s AS\n", relation)
	default:
		w.Writef("CREATE OR REPLACE VIEW %s AS\n", relation)
	}
}

// writeSourceCTEs emits one CTE per side. Row filters apply here, against
// the side's source rows before the join, and each CTE selects a constant
// presence marker so the projection can tell which side a joined row came
// from without inspecting key values.
func (c *Compiler) writeSourceCTEs(w *SQLWriter, before, after TableInput) {
	w.WriteString("WITH before_side AS (\n")
	c.writeSideSelect(w, before)
	w.WriteString("),\nafter_side AS (\n")
	c.writeSideSelect(w, after)
	w.WriteString(")\n")
}

func (c *Compiler) writeSideSelect(w *SQLWriter, side TableInput) {
	w.Writef("    SELECT 1 AS %s, t.*\n", presenceMarker)
	w.Writef("    FROM %s t\n", side.Table)
	if strings.TrimSpace(side.Where) != "" {
		w.Writef("    WHERE %s\n", strings.TrimSpace(side.Where))
	}
}

func (c *Compiler) writeProjection(w *SQLWriter, columns []ColumnInfo, keys []string) {
	w.WriteString("SELECT\n")

	// Key columns first, carrying their literal values so differing rows
	// can be identified downstream.
	for _, key := range keys {
		k := quoteIdentifier(key)
		w.Writef("    COALESCE(b.%s, a.%s) AS %s,\n", k, k, k)
	}

	// One status column per non-key unified column, in unified order.
	for _, col := range columns {
		if col.IsKey {
			continue
		}
		c.writeStatusColumn(w, col)
	}

	// _row_status last: NULL when the key matched, 4/5 otherwise.
	w.WriteString("    CASE\n")
	w.Writef("        WHEN b.%s IS NULL THEN %d\n", presenceMarker, RowStatusMissingBefore)
	w.Writef("        WHEN a.%s IS NULL THEN %d\n", presenceMarker, RowStatusMissingAfter)
	w.Writef("    END AS %s\n", RowStatusColumn)
}

// writeStatusColumn emits the 0/1/2/3 CASE for one column. A column that
// exists on only one side reads as NULL on the other, which collapses the
// CASE to its reachable branches.
func (c *Compiler) writeStatusColumn(w *SQLWriter, col ColumnInfo) {
	name := quoteIdentifier(col.Name)
	switch col.Origin {
	case OriginBefore:
		// After side never has a value: equal only when before is NULL too.
		w.WriteString("    CASE\n")
		w.Writef("        WHEN b.%s IS NULL THEN %d\n", name, StatusEqual)
		w.Writef("        ELSE %d\n", StatusBeforeOnly)
		w.Writef("    END AS %s,\n", name)
	case OriginAfter:
		w.WriteString("    CASE\n")
		w.Writef("        WHEN a.%s IS NULL THEN %d\n", name, StatusEqual)
		w.Writef("        ELSE %d\n", StatusAfterOnly)
		w.Writef("    END AS %s,\n", name)
	default:
		w.WriteString("    CASE\n")
		w.Writef("        WHEN b.%s IS NOT DISTINCT FROM a.%s THEN %d\n", name, name, StatusEqual)
		w.Writef("        WHEN b.%s IS NULL THEN %d\n", name, StatusAfterOnly)
		w.Writef("        WHEN a.%s IS NULL THEN %d\n", name, StatusBeforeOnly)
		w.Writef("        ELSE %d\n", StatusDiffering)
		w.Writef("    END AS %s,\n", name)
	}
}

// writeJoin emits the full outer join on null-safe key equality. A key
// component that is NULL on either side never matches, so rows with null
// business keys are retained by the outer join and surface as row status
// 4 or 5 instead of being dropped or spuriously paired.
func (c *Compiler) writeJoin(w *SQLWriter, keys []string) {
	w.WriteString("FROM before_side b\n")
	w.WriteString("FULL OUTER JOIN after_side a\n")
	conds := make([]string, 0, len(keys))
	for _, key := range keys {
		k := quoteIdentifier(key)
		conds = append(conds, fmt.Sprintf("b.%s IS NOT DISTINCT FROM a.%s AND b.%s IS NOT NULL", k, k, k))
	}
	w.WriteString("    ON " + strings.Join(conds, "\n    AND "))
}
