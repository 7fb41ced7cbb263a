// Package checkatron provides a programmatic API for generating table diff
// scripts, mirroring what the CLI's generate command does.
package checkatron

import (
	"github.com/checkatron/checkatron/internal/diff"
	"github.com/checkatron/checkatron/internal/generate"
	"github.com/checkatron/checkatron/internal/report"
)

// GenerateOptions configures one script generation.
type GenerateOptions struct {
	BeforeCatalog string // path to the before-side catalog CSV (required)
	AfterCatalog  string // path to the after-side catalog CSV (required)
	Keys          string // path to the business-key CSV (required)
	BeforeTable   string // table name override (default: inferred from file stem)
	AfterTable    string // table name override
	BeforeWhere   string // optional row filter for the before side
	AfterWhere    string // optional row filter for the after side
	Relation      string // output relation name (default "diff_result")
	SnapshotTable bool   // materialize a table instead of a view
	NoComments    bool   // omit the script's comment header
	NoValidate    bool   // skip the syntax check
}

// Generate compiles a diff script and returns its report, which carries the
// SQL text and the unified column metadata.
func Generate(opts GenerateOptions) (*report.Report, error) {
	mat := diff.MaterializeView
	if opts.SnapshotTable {
		mat = diff.MaterializeTable
	}
	return generate.Generate(generate.Options{
		BeforeCatalog: opts.BeforeCatalog,
		AfterCatalog:  opts.AfterCatalog,
		Keys:          opts.Keys,
		BeforeTable:   opts.BeforeTable,
		AfterTable:    opts.AfterTable,
		BeforeWhere:   opts.BeforeWhere,
		AfterWhere:    opts.AfterWhere,
		Relation:      opts.Relation,
		Materialize:   mat,
		Comments:      !opts.NoComments,
		Validate:      !opts.NoValidate,
	})
}

// GenerateToFile compiles a diff script and writes it to path atomically.
func GenerateToFile(opts GenerateOptions, path string) error {
	rep, err := Generate(opts)
	if err != nil {
		return err
	}
	return diff.WriteFile(path, rep.Script.SQL)
}

// GenerateToStack compiles a diff script, collapses it to a single line,
// and appends it to the batch file at path.
func GenerateToStack(opts GenerateOptions, path string) error {
	rep, err := Generate(opts)
	if err != nil {
		return err
	}
	line, err := diff.Render(rep.Script, true)
	if err != nil {
		return err
	}
	return diff.AppendToStack(path, line)
}
