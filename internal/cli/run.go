package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/AD1529/xapi-consolidate/internal/cleaning"
	"github.com/AD1529/xapi-consolidate/internal/config"
	"github.com/AD1529/xapi-consolidate/internal/engine"
	"github.com/AD1529/xapi-consolidate/internal/export"
	"github.com/AD1529/xapi-consolidate/internal/ingest"
	"github.com/AD1529/xapi-consolidate/internal/record"
	"github.com/AD1529/xapi-consolidate/internal/records"
	"github.com/AD1529/xapi-consolidate/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	ConfigPath string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Consolidate a batch of raw activity logs",
		Long: `Run the full consolidation pipeline over one batch of raw logs.

The pipeline orders the batch, classifies every record, reconstructs user
roles per course, removes noise, derives activity durations and writes the
consolidated CSV. With a database configured, the run is also persisted.

Example:
  consolidate run --config run.yaml
  consolidate run --config run.yaml --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ConfigPath, "config", "consolidate.yaml", "path to run configuration")

	return cmd
}

func runPipeline(opts *RunOptions, cmd *cobra.Command) error {
	// Configure logging based on verbose flag
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(log)

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid config", err)
	}

	rules, err := loadConfiguredRules(cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load rules", err)
	}

	batch, err := ingestLogs(cfg.Logs, log)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read logs", err)
	}

	courseNames, err := ingest.LoadCourseNames(cfg.CourseNames)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read course names", err)
	}

	consolidator := &engine.Consolidator{
		CourseNames: courseNames,
		Rules:       rules.Classification,
		Roles: engine.RoleOptions{
			PointInTime: cfg.PointInTime,
			RoleNames:   cfg.RoleNames,
		},
		Logger: log,
	}
	out, err := consolidator.Consolidate(batch)
	if err != nil {
		return WrapExitError(ExitFailure, "consolidation failed", err)
	}

	out = cleaning.Apply(out, dropRules(cfg, rules), log)

	if cfg.CourseDates != "" {
		dates, err := ingest.LoadCourseDates(cfg.CourseDates)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read course dates", err)
		}
		out = records.New(out).Filter(records.FilterOptions{CourseDates: dates}).Records()
		log.Info("course date bounds applied", "records", len(out))
	}

	out = engine.DeriveDurations(out)
	if cfg.Outliers.Scenario != "" {
		out = engine.ApplyOutlierPolicy(out, cfg.Outliers.Scenario, cfg.Outliers.Threshold, cfg.Outliers.Substitute)
		log.Info("outlier policy applied", "scenario", cfg.Outliers.Scenario)
	}

	if err := export.WriteFile(cfg.Output, out); err != nil {
		return WrapExitError(ExitCommandError, "failed to write output", err)
	}
	log.Info("consolidated batch written", "path", cfg.Output, "records", len(out))

	if cfg.Database != "" {
		if err := persistRun(cmd.Context(), cfg, out); err != nil {
			return WrapExitError(ExitCommandError, "failed to persist run", err)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Consolidated %d records into %s\n", len(out), cfg.Output)
	return nil
}

// loadConfiguredRules returns the CUE rule tables when a rules directory is
// configured, and empty tables (meaning built-in defaults) otherwise.
func loadConfiguredRules(cfg *config.Config) (*RuleSet, error) {
	if cfg.RulesDir == "" {
		return &RuleSet{}, nil
	}
	return LoadRules(cfg.RulesDir)
}

// dropRules assembles the cleaning passes for a run: the configured CUE
// table when present, otherwise the built-in tables the config enables.
func dropRules(cfg *config.Config, rules *RuleSet) []cleaning.DropRule {
	if rules.Cleaning != nil {
		return rules.Cleaning
	}

	var out []cleaning.DropRule
	if cfg.Cleaning.Noise {
		out = append(out, cleaning.NoiseRules()...)
	}
	if cfg.Cleaning.Automatic {
		out = append(out, cleaning.AutomaticEventRules()...)
	}
	if cfg.Cleaning.Dataset {
		out = append(out, cleaning.DatasetRules()...)
	}
	if cfg.Cleaning.Unresolved {
		out = append(out, cleaning.UnresolvedCourseRules()...)
	}
	return out
}

func ingestLogs(path string, log *slog.Logger) ([]record.Record, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return ingest.CollectDir(path, log)
	}
	return ingest.ReadLogs(path, log)
}

func persistRun(ctx context.Context, cfg *config.Config, out []record.Record) error {
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := store.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	run := store.NewRun(cfg.Logs, cfg.Outliers.Scenario)
	if err := st.WriteRun(ctx, run, out); err != nil {
		return err
	}
	slog.Info("run persisted", "run_id", run.ID, "db", cfg.Database)
	return nil
}
