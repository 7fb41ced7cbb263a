// Package generate implements the "checkatron generate" command: compile a
// diff script for one pair of table catalogs.
package generate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/checkatron/checkatron/internal/config"
	"github.com/checkatron/checkatron/internal/diff"
	gen "github.com/checkatron/checkatron/internal/generate"
	"github.com/checkatron/checkatron/internal/logger"
	"github.com/checkatron/checkatron/internal/report"
)

var (
	keysFile    string
	beforeWhere string
	afterWhere  string
	beforeTable string
	afterTable  string
	outFile     string
	relation    string
	materialize string
	singleLine  bool
	stackFile   string
	outputJSON  string
	configFile  string
	noComments  bool
	noValidate  bool
	noColor     bool
	quiet       bool
)

var GenerateCmd = &cobra.Command{
	Use:   "generate <before-catalog.csv> <after-catalog.csv>",
	Short: "Generate a diff script for one table pair",
	Long: `Generate a SQL diff script from two DESCRIBE-style catalog CSVs and a
business-key CSV. The script full-outer-joins the two tables on the keys
and materializes one status code per column plus a row presence status.

Table names default to the catalog file stems (underscores become dots
when the stem has no dots) and can be overridden per side.`,
	Args:         cobra.ExactArgs(2),
	RunE:         runGenerate,
	SilenceUsage: true,
}

func init() {
	GenerateCmd.Flags().StringVar(&keysFile, "keys", "", "CSV listing the business-key columns (required)")
	GenerateCmd.Flags().StringVar(&beforeWhere, "before-where", "", "Free-form row filter for the before side")
	GenerateCmd.Flags().StringVar(&afterWhere, "after-where", "", "Free-form row filter for the after side")
	GenerateCmd.Flags().StringVar(&beforeTable, "before-table", "", "Override the before-side table name")
	GenerateCmd.Flags().StringVar(&afterTable, "after-table", "", "Override the after-side table name")
	GenerateCmd.Flags().StringVar(&outFile, "out", "diff.sql", "Output SQL file")
	GenerateCmd.Flags().StringVar(&relation, "relation", diff.DefaultRelation, "Name of the output relation")
	GenerateCmd.Flags().StringVar(&materialize, "materialize", "view", "Output relation shape: view or table")
	GenerateCmd.Flags().BoolVar(&singleLine, "single-line", false, "Collapse the script to one line")
	GenerateCmd.Flags().StringVar(&stackFile, "stack", "", "Append the script as one line to this batch file instead of writing --out")
	GenerateCmd.Flags().StringVar(&outputJSON, "output-json", "", "Write a JSON report to this path (\"-\" for stdout)")
	GenerateCmd.Flags().StringVar(&configFile, "config", config.FileName, "Path to the optional config file")
	GenerateCmd.Flags().BoolVar(&noComments, "no-comments", false, "Omit the script's comment header")
	GenerateCmd.Flags().BoolVar(&noValidate, "no-validate", false, "Skip the syntax check of the generated script")
	GenerateCmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	GenerateCmd.Flags().BoolVar(&quiet, "quiet", false, "Suppress the column summary")

	GenerateCmd.MarkFlagRequired("keys")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	beforeCSV, afterCSV := args[0], args[1]

	cfg, err := config.LoadFromPath(configFile)
	if err != nil {
		return err
	}

	mat, err := parseMaterialization(materialize)
	if err != nil {
		return err
	}

	rep, err := gen.Generate(gen.Options{
		BeforeCatalog: beforeCSV,
		AfterCatalog:  afterCSV,
		Keys:          keysFile,
		BeforeTable:   beforeTable,
		AfterTable:    afterTable,
		BeforeWhere:   beforeWhere,
		AfterWhere:    afterWhere,
		Relation:      relation,
		Materialize:   mat,
		Comments:      !noComments,
		Validate:      !noValidate,
		Classifier:    cfg.Classifier(),
	})
	if err != nil {
		return err
	}

	if err := writeOutputs(rep); err != nil {
		return err
	}

	if !quiet {
		fmt.Print(rep.HumanColored(!noColor))
	}
	return nil
}

func writeOutputs(rep *report.Report) error {
	log := logger.Get()

	if stackFile != "" {
		line, err := diff.Render(rep.Script, true)
		if err != nil {
			return err
		}
		if err := diff.AppendToStack(stackFile, line); err != nil {
			return err
		}
		log.Info("appended script to stack", "stack", stackFile)
	} else {
		text, err := diff.Render(rep.Script, singleLine)
		if err != nil {
			return err
		}
		if singleLine {
			text += "\n"
		}
		if err := diff.WriteFile(outFile, text); err != nil {
			return err
		}
		log.Info("wrote diff script", "out", outFile)
	}

	if outputJSON != "" {
		doc, err := rep.ToJSON()
		if err != nil {
			return err
		}
		if outputJSON == "-" {
			fmt.Print(doc)
		} else if err := diff.WriteFile(outputJSON, doc); err != nil {
			return err
		}
	}
	return nil
}

func parseMaterialization(s string) (diff.Materialization, error) {
	switch s {
	case "view":
		return diff.MaterializeView, nil
	case "table":
		return diff.MaterializeTable, nil
	default:
		return 0, fmt.Errorf("invalid --materialize %q (want \"view\" or \"table\")", s)
	}
}
