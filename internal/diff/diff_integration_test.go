//go:build integration

package diff

import (
	"context"
	"database/sql"
	"testing"

	"github.com/checkatron/checkatron/testutil"
)

// runScenario loads the given DDL/DML, compiles a diff script for the two
// tables, executes it, and returns the connection for assertions.
func runScenario(ctx context.Context, t *testing.T, conn *sql.DB, setup []string, before, after TableInput, keys []string, opts Options) {
	t.Helper()

	reset := []string{
		"DROP VIEW IF EXISTS diff_result",
		"DROP TABLE IF EXISTS diff_result",
		"DROP TABLE IF EXISTS before_table",
		"DROP TABLE IF EXISTS after_table",
	}
	for _, stmt := range append(reset, setup...) {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			t.Fatalf("setup statement failed: %v\n%s", err, stmt)
		}
	}

	script, err := NewCompiler(opts).Compile(before, after, keys)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if _, err := conn.ExecContext(ctx, script.SQL); err != nil {
		t.Fatalf("generated script failed to execute: %v\n%s", err, script.SQL)
	}
}

func TestGeneratedScriptAgainstPostgres(t *testing.T) {
	ctx := context.Background()
	ci := testutil.SetupPostgresContainer(ctx, t)
	defer ci.Terminate(ctx, t)
	conn := ci.Conn

	simpleBefore := TableInput{
		Table: "before_table",
		Columns: []CatalogColumn{
			{Name: "K1", Type: "NUMBER"},
			{Name: "VAL", Type: "VARCHAR"},
		},
	}
	simpleAfter := TableInput{Table: "after_table", Columns: simpleBefore.Columns}

	t.Run("identical_rows", func(t *testing.T) {
		runScenario(ctx, t, conn, []string{
			"CREATE TABLE before_table(k1 INT, val VARCHAR)",
			"CREATE TABLE after_table(k1 INT, val VARCHAR)",
			"INSERT INTO before_table VALUES (1, 'a')",
			"INSERT INTO after_table VALUES (1, 'a')",
		}, simpleBefore, simpleAfter, []string{"K1"}, Options{})

		var k1, val int
		var rowStatus sql.NullInt64
		if err := conn.QueryRowContext(ctx, "SELECT k1, val, _row_status FROM diff_result").Scan(&k1, &val, &rowStatus); err != nil {
			t.Fatal(err)
		}
		if k1 != 1 || val != StatusEqual || rowStatus.Valid {
			t.Errorf("got k1=%d val=%d row=%v, want 1/0/NULL", k1, val, rowStatus)
		}
	})

	t.Run("extra_after_column", func(t *testing.T) {
		after := TableInput{
			Table: "after_table",
			Columns: append(append([]CatalogColumn{}, simpleBefore.Columns...),
				CatalogColumn{Name: "NEW_COL", Type: "NUMBER"}),
		}
		runScenario(ctx, t, conn, []string{
			"CREATE TABLE before_table(k1 INT, val VARCHAR)",
			"CREATE TABLE after_table(k1 INT, val VARCHAR, new_col INT)",
			"INSERT INTO before_table VALUES (1, 'a')",
			"INSERT INTO after_table VALUES (1, 'a', 99)",
		}, simpleBefore, after, []string{"K1"}, Options{})

		var val, newCol int
		var rowStatus sql.NullInt64
		if err := conn.QueryRowContext(ctx, "SELECT val, new_col, _row_status FROM diff_result").Scan(&val, &newCol, &rowStatus); err != nil {
			t.Fatal(err)
		}
		if val != StatusEqual || newCol != StatusAfterOnly || rowStatus.Valid {
			t.Errorf("got val=%d new_col=%d row=%v, want 0/2/NULL", val, newCol, rowStatus)
		}
	})

	t.Run("differing_value", func(t *testing.T) {
		runScenario(ctx, t, conn, []string{
			"CREATE TABLE before_table(k1 INT, val VARCHAR)",
			"CREATE TABLE after_table(k1 INT, val VARCHAR)",
			"INSERT INTO before_table VALUES (1, 'a')",
			"INSERT INTO after_table VALUES (1, 'b')",
		}, simpleBefore, simpleAfter, []string{"K1"}, Options{})

		var val int
		var rowStatus sql.NullInt64
		if err := conn.QueryRowContext(ctx, "SELECT val, _row_status FROM diff_result").Scan(&val, &rowStatus); err != nil {
			t.Fatal(err)
		}
		if val != StatusDiffering || rowStatus.Valid {
			t.Errorf("got val=%d row=%v, want 1/NULL", val, rowStatus)
		}
	})

	t.Run("row_missing_in_before", func(t *testing.T) {
		runScenario(ctx, t, conn, []string{
			"CREATE TABLE before_table(k1 INT, val VARCHAR)",
			"CREATE TABLE after_table(k1 INT, val VARCHAR)",
			"INSERT INTO after_table VALUES (1, 'a')",
		}, simpleBefore, simpleAfter, []string{"K1"}, Options{})

		var val int
		var rowStatus sql.NullInt64
		if err := conn.QueryRowContext(ctx, "SELECT val, _row_status FROM diff_result").Scan(&val, &rowStatus); err != nil {
			t.Fatal(err)
		}
		if val != StatusAfterOnly || !rowStatus.Valid || rowStatus.Int64 != RowStatusMissingBefore {
			t.Errorf("got val=%d row=%v, want 2/4", val, rowStatus)
		}
	})

	t.Run("row_missing_in_after", func(t *testing.T) {
		runScenario(ctx, t, conn, []string{
			"CREATE TABLE before_table(k1 INT, val VARCHAR)",
			"CREATE TABLE after_table(k1 INT, val VARCHAR)",
			"INSERT INTO before_table VALUES (1, 'a')",
		}, simpleBefore, simpleAfter, []string{"K1"}, Options{})

		var val int
		var rowStatus sql.NullInt64
		if err := conn.QueryRowContext(ctx, "SELECT val, _row_status FROM diff_result").Scan(&val, &rowStatus); err != nil {
			t.Fatal(err)
		}
		if val != StatusBeforeOnly || !rowStatus.Valid || rowStatus.Int64 != RowStatusMissingAfter {
			t.Errorf("got val=%d row=%v, want 3/5", val, rowStatus)
		}
	})

	t.Run("composite_key", func(t *testing.T) {
		before := TableInput{
			Table: "before_table",
			Columns: []CatalogColumn{
				{Name: "K1", Type: "NUMBER"},
				{Name: "K2", Type: "VARCHAR"},
				{Name: "VAL", Type: "NUMBER"},
			},
		}
		after := TableInput{Table: "after_table", Columns: before.Columns}
		runScenario(ctx, t, conn, []string{
			"CREATE TABLE before_table(k1 INT, k2 VARCHAR, val INT)",
			"CREATE TABLE after_table(k1 INT, k2 VARCHAR, val INT)",
			"INSERT INTO before_table VALUES (1, 'x', 100)",
			"INSERT INTO after_table VALUES (1, 'x', 100)",
		}, before, after, []string{"K1", "K2"}, Options{})

		var val int
		var rowStatus sql.NullInt64
		if err := conn.QueryRowContext(ctx, "SELECT val, _row_status FROM diff_result").Scan(&val, &rowStatus); err != nil {
			t.Fatal(err)
		}
		if val != StatusEqual || rowStatus.Valid {
			t.Errorf("got val=%d row=%v, want 0/NULL", val, rowStatus)
		}
	})

	t.Run("null_keys_never_match", func(t *testing.T) {
		runScenario(ctx, t, conn, []string{
			"CREATE TABLE before_table(k1 INT, val VARCHAR)",
			"CREATE TABLE after_table(k1 INT, val VARCHAR)",
			"INSERT INTO before_table VALUES (NULL, 'x')",
			"INSERT INTO after_table VALUES (NULL, 'x')",
		}, simpleBefore, simpleAfter, []string{"K1"}, Options{})

		rows, err := conn.QueryContext(ctx, "SELECT _row_status FROM diff_result ORDER BY _row_status")
		if err != nil {
			t.Fatal(err)
		}
		defer rows.Close()

		var statuses []int64
		for rows.Next() {
			var s sql.NullInt64
			if err := rows.Scan(&s); err != nil {
				t.Fatal(err)
			}
			if !s.Valid {
				t.Fatal("null-key row reported as matched")
			}
			statuses = append(statuses, s.Int64)
		}
		if err := rows.Err(); err != nil {
			t.Fatal(err)
		}
		// Both rows survive the join, one per side
		if len(statuses) != 2 || statuses[0] != RowStatusMissingBefore || statuses[1] != RowStatusMissingAfter {
			t.Errorf("got statuses %v, want [4 5]", statuses)
		}
	})

	t.Run("both_null_values_equal", func(t *testing.T) {
		runScenario(ctx, t, conn, []string{
			"CREATE TABLE before_table(k1 INT, val VARCHAR)",
			"CREATE TABLE after_table(k1 INT, val VARCHAR)",
			"INSERT INTO before_table VALUES (1, NULL)",
			"INSERT INTO after_table VALUES (1, NULL)",
		}, simpleBefore, simpleAfter, []string{"K1"}, Options{})

		var val int
		if err := conn.QueryRowContext(ctx, "SELECT val FROM diff_result").Scan(&val); err != nil {
			t.Fatal(err)
		}
		if val != StatusEqual {
			t.Errorf("got val=%d, want 0 for both-null", val)
		}
	})

	t.Run("row_filters_limit_sides", func(t *testing.T) {
		before := simpleBefore
		after := simpleAfter
		before.Where = "k1 < 10"
		after.Where = "k1 < 10"
		runScenario(ctx, t, conn, []string{
			"CREATE TABLE before_table(k1 INT, val VARCHAR)",
			"CREATE TABLE after_table(k1 INT, val VARCHAR)",
			"INSERT INTO before_table VALUES (1, 'a'), (99, 'zzz')",
			"INSERT INTO after_table VALUES (1, 'a'), (99, 'yyy')",
		}, before, after, []string{"K1"}, Options{})

		var count int
		if err := conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM diff_result").Scan(&count); err != nil {
			t.Fatal(err)
		}
		if count != 1 {
			t.Errorf("filtered diff has %d rows, want 1", count)
		}
	})

	t.Run("reserved_word_column", func(t *testing.T) {
		before := TableInput{
			Table: "before_table",
			Columns: []CatalogColumn{
				{Name: "K1", Type: "NUMBER"},
				{Name: "ORDER", Type: "VARCHAR"},
			},
		}
		after := TableInput{Table: "after_table", Columns: before.Columns}
		runScenario(ctx, t, conn, []string{
			`CREATE TABLE before_table(k1 INT, "order" VARCHAR)`,
			`CREATE TABLE after_table(k1 INT, "order" VARCHAR)`,
			"INSERT INTO before_table VALUES (1, 'a')",
			"INSERT INTO after_table VALUES (1, 'b')",
		}, before, after, []string{"K1"}, Options{})

		var status int
		if err := conn.QueryRowContext(ctx, `SELECT "order" FROM diff_result`).Scan(&status); err != nil {
			t.Fatal(err)
		}
		if status != StatusDiffering {
			t.Errorf("got status %d for reserved-word column, want 1", status)
		}
	})

	t.Run("single_line_render_executes", func(t *testing.T) {
		reset := []string{
			"DROP VIEW IF EXISTS diff_result",
			"DROP TABLE IF EXISTS diff_result",
			"DROP TABLE IF EXISTS before_table",
			"DROP TABLE IF EXISTS after_table",
			"CREATE TABLE before_table(k1 INT, val VARCHAR)",
			"CREATE TABLE after_table(k1 INT, val VARCHAR)",
			"INSERT INTO before_table VALUES (1, 'a')",
			"INSERT INTO after_table VALUES (1, 'a')",
		}
		for _, stmt := range reset {
			if _, err := conn.ExecContext(ctx, stmt); err != nil {
				t.Fatal(err)
			}
		}

		script, err := NewCompiler(Options{IncludeComments: true, Materialize: MaterializeTable}).
			Compile(simpleBefore, simpleAfter, []string{"K1"})
		if err != nil {
			t.Fatal(err)
		}
		line, err := Render(script, true)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := conn.ExecContext(ctx, line); err != nil {
			t.Fatalf("single-line script failed to execute: %v\n%s", err, line)
		}

		var val int
		if err := conn.QueryRowContext(ctx, "SELECT val FROM diff_result").Scan(&val); err != nil {
			t.Fatal(err)
		}
		if val != StatusEqual {
			t.Errorf("got val=%d, want 0", val)
		}
	})
}
