// Package run implements "checkatron run": sequential validation plans
// driven by an on-disk step ledger. Completed steps are skipped on re-run
// and ledger resets archive state instead of deleting it.
package run

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/checkatron/checkatron/internal/config"
	"github.com/checkatron/checkatron/internal/diff"
	"github.com/checkatron/checkatron/internal/generate"
	"github.com/checkatron/checkatron/internal/ledger"
	"github.com/checkatron/checkatron/internal/logger"
)

var (
	planName     string
	resetLedger  bool
	artifactsDir string
	beforeCSV    string
	afterCSV     string
	keysCSV      string
	beforeTable  string
	afterTable   string
	dsn          string
	configFile   string
)

var RunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a validation plan with a step ledger",
	Long: `Run a validation plan. Each step writes a completion marker under the
artifacts directory, so an interrupted run resumes where it stopped.

Plans:
  local     generate a script from the given catalogs and syntax-check it
  database  local plan plus executing the script and a result summary
            against the database named by --dsn`,
	RunE:         runRun,
	SilenceUsage: true,
}

func init() {
	RunCmd.Flags().StringVar(&planName, "plan", "local", "Plan to run: local or database")
	RunCmd.Flags().BoolVar(&resetLedger, "reset", false, "Archive the ledger and exit")
	RunCmd.Flags().StringVar(&artifactsDir, "artifacts", "artifacts", "Directory for generated files and the ledger")
	RunCmd.Flags().StringVar(&beforeCSV, "before", "", "Before-side catalog CSV")
	RunCmd.Flags().StringVar(&afterCSV, "after", "", "After-side catalog CSV")
	RunCmd.Flags().StringVar(&keysCSV, "keys", "", "Business-key CSV")
	RunCmd.Flags().StringVar(&beforeTable, "before-table", "", "Override the before-side table name")
	RunCmd.Flags().StringVar(&afterTable, "after-table", "", "Override the after-side table name")
	RunCmd.Flags().StringVar(&dsn, "dsn", "", "Connection string for the database plan (env: CHECKATRON_DSN)")
	RunCmd.Flags().StringVar(&configFile, "config", config.FileName, "Path to the optional config file")
}

func runRun(cmd *cobra.Command, args []string) error {
	log := logger.Get()
	led := ledger.New(filepath.Join(artifactsDir, "ledger"), log)

	if resetLedger {
		return led.Reset()
	}

	if dsn == "" {
		dsn = os.Getenv("CHECKATRON_DSN")
	}

	var steps []ledger.Step
	switch planName {
	case "local":
		steps = localPlan()
	case "database":
		if dsn == "" {
			return fmt.Errorf("the database plan needs --dsn or CHECKATRON_DSN")
		}
		steps = databasePlan()
	default:
		return fmt.Errorf("unknown plan %q (want \"local\" or \"database\")", planName)
	}

	log.Info("running plan", "plan", planName)
	if err := led.RunPlan(cmd.Context(), steps); err != nil {
		return err
	}
	log.Info("all steps complete", "plan", planName)
	return nil
}

func scriptPath() string {
	return filepath.Join(artifactsDir, "generated_diff.sql")
}

func localPlan() []ledger.Step {
	return []ledger.Step{
		{Name: "generate_script", Run: stepGenerate},
		{Name: "syntax_check", Run: stepSyntaxCheck},
	}
}

func databasePlan() []ledger.Step {
	return append(localPlan(),
		ledger.Step{Name: "execute_script", Run: stepExecute},
		ledger.Step{Name: "summarize_result", Optional: true, Run: stepSummarize},
	)
}

func stepGenerate(ctx context.Context) error {
	if beforeCSV == "" || afterCSV == "" || keysCSV == "" {
		return fmt.Errorf("--before, --after and --keys are required to generate a script")
	}

	cfg, err := config.LoadFromPath(configFile)
	if err != nil {
		return err
	}

	rep, err := generate.Generate(generate.Options{
		BeforeCatalog: beforeCSV,
		AfterCatalog:  afterCSV,
		Keys:          keysCSV,
		BeforeTable:   beforeTable,
		AfterTable:    afterTable,
		Comments:      true,
		Classifier:    cfg.Classifier(),
	})
	if err != nil {
		return err
	}
	return diff.WriteFile(scriptPath(), rep.Script.SQL)
}

func stepSyntaxCheck(ctx context.Context) error {
	script, err := os.ReadFile(scriptPath())
	if err != nil {
		return fmt.Errorf("generated script missing: %w", err)
	}
	return diff.ValidateSQL(string(script))
}

func stepExecute(ctx context.Context) error {
	script, err := os.ReadFile(scriptPath())
	if err != nil {
		return fmt.Errorf("generated script missing: %w", err)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := db.ExecContext(ctx, string(script)); err != nil {
		return fmt.Errorf("failed to execute generated script: %w", err)
	}
	return nil
}

func stepSummarize(ctx context.Context) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	query := fmt.Sprintf(`SELECT
	COUNT(*) AS total_rows,
	COUNT(*) FILTER (WHERE %[1]s IS NULL) AS matched_rows,
	COUNT(*) FILTER (WHERE %[1]s = %[2]d) AS missing_in_before,
	COUNT(*) FILTER (WHERE %[1]s = %[3]d) AS missing_in_after
FROM %[4]s`, diff.RowStatusColumn, diff.RowStatusMissingBefore, diff.RowStatusMissingAfter, diff.DefaultRelation)

	var total, matched, missingBefore, missingAfter int64
	if err := db.QueryRowContext(ctx, query).Scan(&total, &matched, &missingBefore, &missingAfter); err != nil {
		return fmt.Errorf("summary query failed: %w", err)
	}

	logger.Get().Info("diff result summary",
		"total", total,
		"matched_keys", matched,
		"missing_in_before", missingBefore,
		"missing_in_after", missingAfter)
	return nil
}
