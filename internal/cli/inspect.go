package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/AD1529/xapi-consolidate/internal/records"
	"github.com/AD1529/xapi-consolidate/internal/store"
)

// InspectOptions holds flags for the inspect command.
type InspectOptions struct {
	*RootOptions
	Database string
}

// runSummary is the JSON payload for one inspected run.
type runSummary struct {
	ID          string              `json:"id"`
	CreatedAt   string              `json:"created_at"`
	Source      string              `json:"source"`
	Scenario    string              `json:"scenario,omitempty"`
	RecordCount int                 `json:"record_count"`
	Usernames   []string            `json:"usernames,omitempty"`
	CourseAreas []string            `json:"course_areas,omitempty"`
	Components  []string            `json:"components,omitempty"`
	Roles       []string            `json:"roles,omitempty"`
	Years       []int               `json:"years,omitempty"`
	EventNames  map[string][]string `json:"event_names,omitempty"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InspectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "inspect [run-id]",
		Short: "Inspect persisted consolidation runs",
		Long: `List persisted runs, or summarise one run's consolidated records.

Without a run id, all runs are listed newest first. With a run id, the
run's distinct usernames, course areas, components, roles and years are
reported.

Example:
  consolidate inspect --db runs.db
  consolidate inspect --db runs.db 4f8e3a2c-... --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return listRuns(opts, cmd)
			}
			return inspectRun(opts, cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func listRuns(opts *InspectOptions, cmd *cobra.Command) error {
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	runs, err := st.ListRuns(commandContext(cmd))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if opts.Format == "json" {
		summaries := make([]runSummary, 0, len(runs))
		for _, r := range runs {
			summaries = append(summaries, summarize(r))
		}
		return formatter.Success(summaries)
	}

	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs.")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %-20s  %d records\n",
			r.ID, formatCreatedAt(r.CreatedAt), r.Source, r.RecordCount)
	}
	return nil
}

func inspectRun(opts *InspectOptions, cmd *cobra.Command, runID string) error {
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	ctx := commandContext(cmd)
	run, err := st.GetRun(ctx, runID)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("run %s not found", runID), err)
	}
	recs, err := st.ReadRun(ctx, runID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	dataset := records.New(recs)
	summary := summarize(run)
	summary.Usernames = dataset.Usernames()
	summary.CourseAreas = dataset.CourseAreas()
	summary.Components = dataset.Components()
	summary.Roles = dataset.Roles()
	summary.Years = dataset.Years()
	summary.EventNames = dataset.EventNames()

	if opts.Format == "json" {
		formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
		return formatter.Success(summary)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Run %s (%s)\n", run.ID, formatCreatedAt(run.CreatedAt))
	fmt.Fprintf(w, "Source:       %s\n", run.Source)
	if run.Scenario != "" {
		fmt.Fprintf(w, "Scenario:     %s\n", run.Scenario)
	}
	fmt.Fprintf(w, "Records:      %d\n", run.RecordCount)
	fmt.Fprintf(w, "Users:        %d\n", len(summary.Usernames))
	fmt.Fprintf(w, "Course areas: %s\n", strings.Join(summary.CourseAreas, ", "))
	fmt.Fprintf(w, "Components:   %s\n", strings.Join(summary.Components, ", "))
	fmt.Fprintf(w, "Roles:        %s\n", strings.Join(summary.Roles, ", "))
	return nil
}

func summarize(r store.Run) runSummary {
	return runSummary{
		ID:          r.ID,
		CreatedAt:   formatCreatedAt(r.CreatedAt),
		Source:      r.Source,
		Scenario:    r.Scenario,
		RecordCount: r.RecordCount,
	}
}

func formatCreatedAt(unix int64) string {
	return time.Unix(unix, 0).UTC().Format(time.RFC3339)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
