package diff

import (
	"fmt"
	"strings"
)

// SQLWriter is a helper for building SQL statements with proper formatting
type SQLWriter struct {
	output          strings.Builder
	includeComments bool
}

// NewSQLWriter creates a new SQLWriter with comments enabled by default
func NewSQLWriter() *SQLWriter {
	return &SQLWriter{includeComments: true}
}

// NewSQLWriterWithComments creates a new SQLWriter with configurable comment inclusion
func NewSQLWriterWithComments(includeComments bool) *SQLWriter {
	return &SQLWriter{includeComments: includeComments}
}

// WriteString writes a string to the output
func (w *SQLWriter) WriteString(s string) {
	w.output.WriteString(s)
}

// Writef writes a formatted string to the output
func (w *SQLWriter) Writef(format string, args ...any) {
	fmt.Fprintf(&w.output, format, args...)
}

// WriteComment writes a single "-- " comment line when comments are enabled
func (w *SQLWriter) WriteComment(text string) {
	if !w.includeComments {
		return
	}
	if text == "" {
		w.output.WriteString("--\n")
		return
	}
	w.output.WriteString("-- " + text + "\n")
}

// WriteStatementSeparator terminates the current statement and separates it
// from the next one
func (w *SQLWriter) WriteStatementSeparator() {
	w.output.WriteString(";\n\n")
}

// String returns the accumulated SQL output with leading/trailing newlines removed
func (w *SQLWriter) String() string {
	return strings.Trim(w.output.String(), "\n")
}
