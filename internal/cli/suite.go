package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/roach88/fixturerun/internal/config"
	"github.com/roach88/fixturerun/internal/manifest"
)

// SuiteOptions locate the manifest and fixtures. Shared by run, validate
// and list.
type SuiteOptions struct {
	FixtureRoot string
	ToolPath    string
	Manifest    string
	Filter      string
}

func (o *SuiteOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.FixtureRoot, "srcdir", "", "fixture root (default $srcdir)")
	cmd.Flags().StringVar(&o.ToolPath, "tool", config.DefaultToolPath, "tool under test")
	cmd.Flags().StringVar(&o.Manifest, "manifest", "", "manifest path (default <srcdir>/test/data/all-tests.json)")
	cmd.Flags().StringVar(&o.Filter, "filter", "", "only cases whose description or input path match this glob")
}

// suite is a loaded manifest plus the cases selected by --filter.
type suite struct {
	config   *config.Config
	manifest *manifest.Manifest
	cases    []manifest.Case
}

// loadSuite resolves configuration, loads the manifest and applies the
// filter. Errors are *ExitError with ExitCommandError.
func loadSuite(opts SuiteOptions) (*suite, error) {
	cfg, err := config.Resolve(config.Options{
		FixtureRoot: opts.FixtureRoot,
		ToolPath:    opts.ToolPath,
		Manifest:    opts.Manifest,
	})
	if err != nil {
		if errors.Is(err, config.ErrNoFixtureRoot) {
			return nil, NewExitError(ExitCommandError, "no $srcdir provided, aborting").WithReason(ErrCodeNoRoot)
		}
		return nil, WrapExitError(ExitCommandError, "invalid fixture root", err).WithReason(ErrCodeNotFound)
	}

	m, err := manifest.Load(cfg.ManifestPath, cfg.FixtureDir)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load manifest", err).WithReason(ErrCodeManifest)
	}

	cases, err := m.Filter(opts.Filter)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid --filter", err).WithReason(ErrCodeInvalidFlag)
	}

	return &suite{config: cfg, manifest: m, cases: cases}, nil
}

// fixtureProblems splits the joined error from manifest.Check.
func fixtureProblems(err error) []string {
	if err == nil {
		return nil
	}
	var problems []string
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			problems = append(problems, e.Error())
		}
		return problems
	}
	return []string{err.Error()}
}
