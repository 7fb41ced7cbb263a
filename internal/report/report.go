// Package report turns a compiled comparison script into the documents the
// CLI emits: a JSON description of the comparison and a colored,
// human-readable column summary.
package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/checkatron/checkatron/internal/color"
	"github.com/checkatron/checkatron/internal/diff"
	"github.com/checkatron/checkatron/internal/version"
)

// Report wraps a compiled script with its metadata.
type Report struct {
	Script    *diff.Script
	CreatedAt time.Time
}

// New creates a report for a compiled script.
func New(script *diff.Script) *Report {
	return &Report{
		Script:    script,
		CreatedAt: time.Now(),
	}
}

// ColumnJSON describes one unified column in the JSON document.
type ColumnJSON struct {
	Name   string `json:"name"`
	Class  string `json:"class"`
	Origin string `json:"origin"`
	Key    bool   `json:"key,omitempty"`
}

// SummaryJSON counts columns by origin.
type SummaryJSON struct {
	Common  int `json:"common"`
	Added   int `json:"added"`
	Removed int `json:"removed"`
	Total   int `json:"total"`
}

// ReportJSON is the structured output format.
type ReportJSON struct {
	Version   string       `json:"version"`
	CreatedAt time.Time    `json:"created_at"`
	Before    string       `json:"before"`
	After     string       `json:"after"`
	Relation  string       `json:"relation"`
	Keys      []string     `json:"keys"`
	Summary   SummaryJSON  `json:"summary"`
	Columns   []ColumnJSON `json:"columns"`
	SQL       string       `json:"sql"`
}

// ToJSON returns the report as indented JSON.
func (r *Report) ToJSON() (string, error) {
	doc := ReportJSON{
		Version:   version.App(),
		CreatedAt: r.CreatedAt,
		Before:    r.Script.Before,
		After:     r.Script.After,
		Relation:  r.Script.Relation,
		Keys:      r.Script.Keys,
		Columns:   make([]ColumnJSON, 0, len(r.Script.Columns)),
	}

	for _, col := range r.Script.Columns {
		doc.Columns = append(doc.Columns, ColumnJSON{
			Name:   col.Name,
			Class:  col.Class.String(),
			Origin: col.Origin.String(),
			Key:    col.IsKey,
		})
		switch col.Origin {
		case diff.OriginAfter:
			doc.Summary.Added++
		case diff.OriginBefore:
			doc.Summary.Removed++
		default:
			doc.Summary.Common++
		}
	}
	doc.Summary.Total = len(r.Script.Columns)
	doc.SQL = r.Script.SQL

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	return string(out) + "\n", nil
}

// Human returns the human-readable summary without color.
func (r *Report) Human() string {
	return r.HumanColored(false)
}

// HumanColored returns the human-readable summary, colored when enabled.
func (r *Report) HumanColored(enableColor bool) string {
	c := color.New(enableColor)
	var b strings.Builder

	fmt.Fprintf(&b, "Comparison of %s (before) and %s (after)\n", r.Script.Before, r.Script.After)
	fmt.Fprintf(&b, "Output relation: %s\n", r.Script.Relation)
	fmt.Fprintf(&b, "Keys: %s\n", strings.Join(r.Script.Keys, ", "))
	b.WriteString("\nColumns:\n")

	for _, col := range r.Script.Columns {
		if col.IsKey {
			fmt.Fprintf(&b, "  %s\n", c.Bold(col.Name+" (key)"))
			continue
		}
		switch col.Origin {
		case diff.OriginAfter:
			fmt.Fprintf(&b, "  %s\n", c.Add("+ "+col.Name+" (after only)"))
		case diff.OriginBefore:
			fmt.Fprintf(&b, "  %s\n", c.Remove("- "+col.Name+" (before only)"))
		default:
			fmt.Fprintf(&b, "  %s (%s)\n", col.Name, col.Class)
		}
	}
	return b.String()
}
