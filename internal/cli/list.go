package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// CaseListing describes one case the run command would execute.
type CaseListing struct {
	Index       int    `json:"index"`
	Description string `json:"desc"`
	Input       string `json:"in"`
	Args        string `json:"cmd,omitempty"`
	Output      string `json:"out"`
	Digest      string `json:"digest"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SuiteOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the cases that would run",
		Long: `Print the manifest cases selected by --filter, in run order, without
running the tool or checking fixtures.

Examples:
  fixturerun list --srcdir .
  fixturerun list --srcdir . --filter '**/edit-*.json' --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, opts, cmd)
		},
	}

	opts.register(cmd)

	return cmd
}

func runList(rootOpts *RootOptions, opts *SuiteOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}

	s, err := loadSuite(*opts)
	if err != nil {
		return formatter.Fail(err)
	}

	listings := make([]CaseListing, 0, len(s.cases))
	for _, c := range s.cases {
		digest, err := c.Digest()
		if err != nil {
			return formatter.Fail(WrapExitError(ExitCommandError, fmt.Sprintf("case %d", c.Index), err))
		}
		listings = append(listings, CaseListing{
			Index:       c.Index,
			Description: c.Description,
			Input:       c.Input,
			Args:        c.Args,
			Output:      c.Output,
			Digest:      digest,
		})
	}

	if formatter.Format == "json" {
		return formatter.Success(listings)
	}

	if len(listings) == 0 {
		fmt.Fprintln(formatter.Writer, "No cases selected.")
		return nil
	}

	tw := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tDESC\tIN\tCMD\tOUT")
	for _, l := range listings {
		args := l.Args
		if args == "" {
			args = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", l.Index, l.Description, l.Input, args, l.Output)
	}
	return tw.Flush()
}
