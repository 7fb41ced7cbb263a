package generate

import (
	"testing"

	"github.com/checkatron/checkatron/internal/diff"
)

func TestParseMaterialization(t *testing.T) {
	if m, err := parseMaterialization("view"); err != nil || m != diff.MaterializeView {
		t.Errorf("view: %v %v", m, err)
	}
	if m, err := parseMaterialization("table"); err != nil || m != diff.MaterializeTable {
		t.Errorf("table: %v %v", m, err)
	}
	if _, err := parseMaterialization("parquet"); err == nil {
		t.Error("expected error for unknown materialization")
	}
}

func TestGenerateCommandFlags(t *testing.T) {
	flags := GenerateCmd.Flags()
	for _, name := range []string{
		"keys", "before-where", "after-where", "before-table", "after-table",
		"out", "relation", "materialize", "single-line", "stack",
		"output-json", "config", "no-comments", "no-validate", "no-color", "quiet",
	} {
		if flags.Lookup(name) == nil {
			t.Errorf("expected --%s flag to be defined", name)
		}
	}
	if GenerateCmd.Use == "" || GenerateCmd.Short == "" {
		t.Error("command metadata missing")
	}
}
