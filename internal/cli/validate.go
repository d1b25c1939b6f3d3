package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AD1529/xapi-consolidate/internal/config"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	ConfigPath string
}

// validateReport is the JSON payload of a validation.
type validateReport struct {
	RulesDir            string `json:"rules_dir,omitempty"`
	FileCount           int    `json:"file_count"`
	ClassificationRules int    `json:"classification_rules"`
	CleaningRules       int    `json:"cleaning_rules"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <rules-dir>",
		Short: "Validate CUE rule files without running the pipeline",
		Long: `Compile and validate the CUE rule files in a directory.

Reports the number of classification and cleaning rules found, or the
first structural error. With --config, the run configuration is validated
as well.

Example:
  consolidate validate ./rules
  consolidate validate ./rules --config run.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateRules(opts, cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "also validate this run configuration")

	return cmd
}

func validateRules(opts *ValidateOptions, cmd *cobra.Command, dir string) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

	rules, err := LoadRules(dir)
	if err != nil {
		code := ErrCodeGeneric
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			code = loadErr.Code
		}
		_ = formatter.Error(code, err.Error(), nil)
		return NewExitError(ExitFailure, "rule validation failed")
	}

	if opts.ConfigPath != "" {
		cfg, err := config.Load(opts.ConfigPath)
		if err == nil {
			err = cfg.Validate()
		}
		if err != nil {
			_ = formatter.Error(ErrCodeGeneric, fmt.Sprintf("config: %v", err), nil)
			return NewExitError(ExitFailure, "config validation failed")
		}
	}

	report := validateReport{
		RulesDir:            dir,
		FileCount:           rules.FileCount,
		ClassificationRules: len(rules.Classification),
		CleaningRules:       len(rules.Cleaning),
	}
	if opts.Format == "json" {
		return formatter.Success(report)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "OK: %d file(s), %d classification rule(s), %d cleaning rule(s)\n",
		report.FileCount, report.ClassificationRules, report.CleaningRules)
	return nil
}
