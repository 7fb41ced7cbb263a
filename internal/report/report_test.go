package report

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/checkatron/checkatron/internal/diff"
)

func sampleScript(t *testing.T) *diff.Script {
	t.Helper()
	before := diff.TableInput{
		Table: "before_table",
		Columns: []diff.CatalogColumn{
			{Name: "K1", Type: "NUMBER"},
			{Name: "VAL", Type: "VARCHAR"},
			{Name: "OLD_COL", Type: "VARCHAR"},
		},
	}
	after := diff.TableInput{
		Table: "after_table",
		Columns: []diff.CatalogColumn{
			{Name: "K1", Type: "NUMBER"},
			{Name: "VAL", Type: "VARCHAR"},
			{Name: "NEW_COL", Type: "NUMBER"},
		},
	}
	script, err := diff.NewCompiler(diff.Options{}).Compile(before, after, []string{"K1"})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	return script
}

func TestToJSON(t *testing.T) {
	r := New(sampleScript(t))

	out, err := r.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}

	var doc ReportJSON
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("report JSON does not round-trip: %v", err)
	}

	if doc.Before != "before_table" || doc.After != "after_table" {
		t.Errorf("table names wrong: %s / %s", doc.Before, doc.After)
	}
	if doc.Relation != "diff_result" {
		t.Errorf("relation = %s", doc.Relation)
	}
	if len(doc.Keys) != 1 || doc.Keys[0] != "K1" {
		t.Errorf("keys = %v", doc.Keys)
	}
	if doc.Summary.Common != 2 || doc.Summary.Added != 1 || doc.Summary.Removed != 1 || doc.Summary.Total != 4 {
		t.Errorf("summary = %+v", doc.Summary)
	}
	if !strings.Contains(doc.SQL, "CREATE OR REPLACE VIEW") {
		t.Errorf("SQL missing from report")
	}
}

func TestHumanSummary(t *testing.T) {
	r := New(sampleScript(t))

	out := r.Human()
	for _, want := range []string{
		"before_table (before)",
		"after_table (after)",
		"K1 (key)",
		"+ NEW_COL (after only)",
		"- OLD_COL (before only)",
		"VAL (textual)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\033[") {
		t.Errorf("uncolored summary contains ANSI escapes:\n%s", out)
	}
}
