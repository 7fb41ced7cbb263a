package diff

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// Render returns the script's final textual form. The default rendering is
// the formatted multi-line script as compiled; singleLine collapses it to
// one line with no embedded breaks and no comment markers so it can live in
// a line-oriented batch file.
func Render(s *Script, singleLine bool) (string, error) {
	if !singleLine {
		return s.SQL, nil
	}
	return SingleLine(s.SQL)
}

// SingleLine collapses a SQL script to one semicolon-separated line. The
// text is run through the engine's own parser and deparsed statement by
// statement, which strips comments and formatting while guaranteeing the
// result is still a valid statement sequence.
func SingleLine(sql string) (string, error) {
	stmts, err := pg_query.SplitWithParser(sql, true)
	if err != nil {
		return "", fmt.Errorf("failed to split script: %w", err)
	}

	parts := make([]string, 0, len(stmts))
	for _, stmt := range stmts {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		tree, err := pg_query.Parse(stmt)
		if err != nil {
			return "", fmt.Errorf("failed to parse statement: %w", err)
		}
		flat, err := pg_query.Deparse(tree)
		if err != nil {
			return "", fmt.Errorf("failed to deparse statement: %w", err)
		}
		parts = append(parts, flat)
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("script contains no statements")
	}
	return strings.Join(parts, "; ") + ";", nil
}

// WriteFile writes content to path atomically: the content lands in a
// temporary file first and is renamed into place, so a crash never leaves
// a half-written artifact behind.
func WriteFile(path, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close output: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// AppendToStack appends one rendered line to the end of a batch file.
// Existing lines are kept verbatim in their original order; a missing file
// starts a new stack. Concurrent writers against the same stack file must
// be serialized by the caller.
func AppendToStack(path, line string) error {
	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read stack file %s: %w", path, err)
	}

	var out strings.Builder
	out.Write(existing)
	if len(existing) > 0 && !strings.HasSuffix(string(existing), "\n") {
		out.WriteString("\n")
	}
	out.WriteString(strings.TrimRight(line, "\n"))
	out.WriteString("\n")

	return WriteFile(path, out.String())
}
