// Package batch implements "checkatron batch": compile every job in the
// config file and stack the rendered scripts into one batch file.
package batch

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/checkatron/checkatron/internal/config"
	"github.com/checkatron/checkatron/internal/diff"
	"github.com/checkatron/checkatron/internal/generate"
	"github.com/checkatron/checkatron/internal/logger"
)

var (
	jobsFile  string
	stackFile string
	parallel  int
)

var BatchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Generate diff scripts for a job list and stack them",
	Long: `Compile the diff script for every job in the config file and append each
one, collapsed to a single line, to the stack file. Jobs compile
concurrently but land in the stack in job order, so the batch file is
reproducible. Existing lines in the stack file are never touched.`,
	RunE:         runBatch,
	SilenceUsage: true,
}

func init() {
	BatchCmd.Flags().StringVar(&jobsFile, "jobs", config.FileName, "Config file holding the job list")
	BatchCmd.Flags().StringVar(&stackFile, "stack", "stack.sql", "Batch file the scripts are appended to")
	BatchCmd.Flags().IntVar(&parallel, "parallel", 4, "Maximum number of concurrent compilations")
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromPath(jobsFile)
	if err != nil {
		return err
	}
	if cfg == nil {
		return fmt.Errorf("config file %s not found", jobsFile)
	}
	if len(cfg.Jobs) == 0 {
		return fmt.Errorf("config file %s defines no jobs", jobsFile)
	}

	lines, err := CompileJobs(cfg, parallel)
	if err != nil {
		return err
	}

	// Appends stay on one goroutine: the stack file wants job order and
	// a single writer.
	for i, line := range lines {
		if err := diff.AppendToStack(stackFile, line); err != nil {
			return fmt.Errorf("job %s: %w", cfg.Jobs[i].Name, err)
		}
	}

	logger.Get().Info("stacked diff scripts", "jobs", len(lines), "stack", stackFile)
	return nil
}

// CompileJobs compiles every job concurrently and returns one rendered
// single-line script per job, in job order. Each compilation is a pure
// function of its inputs, so no coordination beyond the result slots is
// needed.
func CompileJobs(cfg *config.Config, parallel int) ([]string, error) {
	if parallel < 1 {
		parallel = 1
	}

	lines := make([]string, len(cfg.Jobs))
	var g errgroup.Group
	g.SetLimit(parallel)

	for i, job := range cfg.Jobs {
		g.Go(func() error {
			line, err := compileJob(cfg, job)
			if err != nil {
				return fmt.Errorf("job %s: %w", jobLabel(i, job), err)
			}
			lines[i] = line
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return lines, nil
}

func compileJob(cfg *config.Config, job config.Job) (string, error) {
	rep, err := generate.Generate(generate.Options{
		BeforeCatalog: job.BeforeCatalog,
		AfterCatalog:  job.AfterCatalog,
		Keys:          job.Keys,
		BeforeTable:   job.BeforeTable,
		AfterTable:    job.AfterTable,
		BeforeWhere:   job.BeforeWhere,
		AfterWhere:    job.AfterWhere,
		Relation:      job.Relation,
		Validate:      true,
		Classifier:    cfg.Classifier(),
	})
	if err != nil {
		return "", err
	}
	return diff.Render(rep.Script, true)
}

func jobLabel(i int, job config.Job) string {
	if job.Name != "" {
		return job.Name
	}
	return fmt.Sprintf("#%d", i+1)
}
