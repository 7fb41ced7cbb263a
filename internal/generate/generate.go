// Package generate reads a pair of catalog CSVs and a key list and compiles
// them into a diff script report. The CLI commands and the programmatic
// facade are both thin layers over it.
package generate

import (
	"path/filepath"
	"strings"

	"github.com/checkatron/checkatron/internal/catalog"
	"github.com/checkatron/checkatron/internal/diff"
	"github.com/checkatron/checkatron/internal/logger"
	"github.com/checkatron/checkatron/internal/report"
)

// Options carries everything Generate needs.
type Options struct {
	BeforeCatalog string
	AfterCatalog  string
	Keys          string
	BeforeTable   string
	AfterTable    string
	BeforeWhere   string
	AfterWhere    string
	Relation      string
	Materialize   diff.Materialization
	Comments      bool
	Validate      bool
	Classifier    *diff.Classifier
}

// Generate reads the catalogs, compiles the script, and optionally
// syntax-checks it. It performs no output; callers decide where the script
// lands.
func Generate(opts Options) (*report.Report, error) {
	beforeCols, err := catalog.ReadFile(opts.BeforeCatalog)
	if err != nil {
		return nil, err
	}
	afterCols, err := catalog.ReadFile(opts.AfterCatalog)
	if err != nil {
		return nil, err
	}
	keys, err := catalog.ReadKeyFile(opts.Keys)
	if err != nil {
		return nil, err
	}

	before := diff.TableInput{
		Table:   TableName(opts.BeforeCatalog, opts.BeforeTable),
		Columns: toCatalogColumns(beforeCols),
		Where:   opts.BeforeWhere,
	}
	after := diff.TableInput{
		Table:   TableName(opts.AfterCatalog, opts.AfterTable),
		Columns: toCatalogColumns(afterCols),
		Where:   opts.AfterWhere,
	}

	compiler := diff.NewCompiler(diff.Options{
		Relation:        opts.Relation,
		Materialize:     opts.Materialize,
		IncludeComments: opts.Comments,
		Classifier:      opts.Classifier,
	})
	script, err := compiler.Compile(before, after, keys)
	if err != nil {
		return nil, err
	}

	if opts.Validate {
		if err := diff.ValidateSQL(script.SQL); err != nil {
			return nil, err
		}
	}

	logger.Get().Debug("compiled diff script",
		"before", before.Table,
		"after", after.Table,
		"columns", len(script.Columns),
		"keys", len(script.Keys))

	return report.New(script), nil
}

// TableName infers the qualified table name from a catalog path unless
// overridden. "prod_schema.csv" style stems have their underscores read as
// qualifier separators; stems that already contain dots are kept as-is.
func TableName(csvPath, override string) string {
	if override != "" {
		return override
	}
	stem := strings.TrimSuffix(filepath.Base(csvPath), filepath.Ext(csvPath))
	if !strings.Contains(stem, ".") {
		stem = strings.ReplaceAll(stem, "_", ".")
	}
	return stem
}

func toCatalogColumns(cols []catalog.Column) []diff.CatalogColumn {
	out := make([]diff.CatalogColumn, len(cols))
	for i, c := range cols {
		out[i] = diff.CatalogColumn{Name: c.Name, Type: c.Type}
	}
	return out
}
