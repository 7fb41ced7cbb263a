// Package catalog reads DESCRIBE-style column catalogs exported as CSV.
//
// A catalog file carries one header row and one row per column. Only the
// "name" and "type" columns are consumed (matched case-insensitively);
// everything else the describe command emits is ignored.
package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// Column describes a single column as declared by the source database.
type Column struct {
	Name string // canonical (uppercased) column name
	Type string // declared type text, verbatim
}

// ReadFile reads a catalog CSV from disk.
func ReadFile(path string) ([]Column, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog %s: %w", path, err)
	}
	defer f.Close()

	cols, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	return cols, nil
}

// Read parses a catalog from r, preserving row order.
func Read(r io.Reader) ([]Column, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("catalog is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}

	nameIdx, typeIdx := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "name":
			if nameIdx < 0 {
				nameIdx = i
			}
		case "type":
			if typeIdx < 0 {
				typeIdx = i
			}
		}
	}
	if nameIdx < 0 {
		return nil, fmt.Errorf("header row has no \"name\" column")
	}

	var cols []Column
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog row: %w", err)
		}
		if nameIdx >= len(record) {
			continue
		}
		name := strings.TrimSpace(record[nameIdx])
		if name == "" {
			continue
		}
		col := Column{Name: strings.ToUpper(name)}
		if typeIdx >= 0 && typeIdx < len(record) {
			col.Type = strings.TrimSpace(record[typeIdx])
		}
		cols = append(cols, col)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("catalog has no columns")
	}
	return cols, nil
}

// ReadKeyFile reads a key-column list from disk. Key files use the same
// header layout as catalogs but only the "name" column is consumed.
func ReadKeyFile(path string) ([]string, error) {
	cols, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(cols))
	for _, c := range cols {
		keys = append(keys, c.Name)
	}
	return keys, nil
}
