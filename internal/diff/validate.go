package diff

import (
	"fmt"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// ValidateSQL checks that a generated script parses cleanly. It is a pure
// syntax check: semantic problems (missing columns, type mismatches in the
// underlying tables) still surface only when the script is executed.
func ValidateSQL(sql string) error {
	if _, err := pg_query.Parse(sql); err != nil {
		return fmt.Errorf("generated script failed to parse: %w", err)
	}
	return nil
}
