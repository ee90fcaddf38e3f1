package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Manifest string   `json:"manifest"`
	Digest   string   `json:"digest,omitempty"`
	Cases    int      `json:"cases"`
	Errors   []string `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SuiteOptions{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the manifest and fixtures without running the tool",
		Long: `Load the manifest, check it against the case schema and verify that
every referenced fixture exists and is readable. The tool is never run.

Exit codes:
  0 - Manifest and fixtures are valid
  1 - One or more fixtures are missing or unreadable
  2 - Configuration error (no $srcdir, manifest missing or malformed)`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, opts, cmd)
		},
	}

	opts.register(cmd)

	return cmd
}

func runValidate(rootOpts *RootOptions, opts *SuiteOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   rootOpts.Verbose,
	}

	s, err := loadSuite(*opts)
	if err != nil {
		return formatter.Fail(err)
	}
	m := s.manifest
	formatter.VerboseLog("Loaded %d case(s) from %s", len(m.Cases), m.Path)
	formatter.VerboseLog("Fixtures resolve against %s", m.Dir)

	result := ValidationResult{
		Valid:    true,
		Manifest: m.Path,
		Digest:   m.Digest,
		Cases:    len(m.Cases),
	}

	if problems := fixtureProblems(m.Check()); len(problems) > 0 {
		result.Valid = false
		result.Errors = problems
		return outputValidationErrors(formatter, result)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ %s: %d case(s) valid\n", m.Path, len(m.Cases))
	return nil
}

// outputValidationErrors outputs fixture problems.
func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    ErrCodeFixture,
				Message: result.Errors[0],
			},
		}
		if err := formatter.Respond(response); err != nil {
			return err
		}
	} else {
		w := formatter.GetErrWriter()
		fmt.Fprintf(w, "✗ %s\n", result.Manifest)
		for _, p := range result.Errors {
			fmt.Fprintf(w, "  %s\n", p)
		}
	}

	// Validation failures = exit code 1 (test/validation failure)
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors))).
		WithReason(ErrCodeFixture)
}
