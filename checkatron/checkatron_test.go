package checkatron_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/checkatron/checkatron/checkatron"
)

func writeFixtures(t *testing.T) (dir string, opts checkatron.GenerateOptions) {
	t.Helper()
	dir = t.TempDir()

	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	opts = checkatron.GenerateOptions{
		BeforeCatalog: write("before.csv", "name,type\nk1,NUMBER\nval,VARCHAR\n"),
		AfterCatalog:  write("after.csv", "name,type\nk1,NUMBER\nval,VARCHAR\n"),
		Keys:          write("keys.csv", "name\nk1\n"),
		BeforeTable:   "before_table",
		AfterTable:    "after_table",
	}
	return dir, opts
}

func TestGenerate(t *testing.T) {
	_, opts := writeFixtures(t)

	rep, err := checkatron.Generate(opts)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !strings.Contains(rep.Script.SQL, "CREATE OR REPLACE VIEW diff_result") {
		t.Errorf("unexpected SQL:\n%s", rep.Script.SQL)
	}
}

func TestGenerateToFile(t *testing.T) {
	dir, opts := writeFixtures(t)
	out := filepath.Join(dir, "diff.sql")

	if err := checkatron.GenerateToFile(opts, out); err != nil {
		t.Fatalf("GenerateToFile failed: %v", err)
	}
	content, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(content), "FULL OUTER JOIN") {
		t.Errorf("output file missing join:\n%s", content)
	}
}

func TestGenerateToStack(t *testing.T) {
	dir, opts := writeFixtures(t)
	stack := filepath.Join(dir, "stack.sql")

	if err := checkatron.GenerateToStack(opts, stack); err != nil {
		t.Fatalf("GenerateToStack failed: %v", err)
	}
	opts.Relation = "second_diff"
	if err := checkatron.GenerateToStack(opts, stack); err != nil {
		t.Fatalf("GenerateToStack failed: %v", err)
	}

	content, err := os.ReadFile(stack)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(content), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 stacked lines, got %d:\n%s", len(lines), content)
	}
	if !strings.Contains(lines[1], "second_diff") {
		t.Errorf("second line lost its relation name: %q", lines[1])
	}
}
