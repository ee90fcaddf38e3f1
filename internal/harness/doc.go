// Package harness executes fixture cases against the program under test.
//
// # Case Execution
//
// Each case pipes its input fixture into the tool, optionally appending the
// words of an argument fixture to the command line, and then applies these
// checks in order. The first one that fails decides the outcome:
//
//   - the tool could not be started, or exited non-zero: SubprocessError
//   - the tool wrote anything to stderr: UnexpectedStderrError
//   - stdout differs from the expected fixture by any byte: OutputMismatchError
//
// A case that passes every check is OK. Reading a fixture during a case is
// a ConfigurationError attached to that case.
//
// # Run Policy
//
// By default every case runs and the report lists all failures. With
// Options.FailFast the first failure stops the run: no further cases are
// started and cases still in flight are cancelled and reported as skipped.
//
// Cases run on a pool of Options.Jobs workers (one by default, which is
// strictly sequential). Results are handed to the Reporter in manifest
// order regardless of completion order.
//
// # Usage
//
//	r := harness.New(tool.NewExecTool("./jup"), manifest.NewFixtures(dir), harness.Options{}, reporter)
//	rep, err := r.Run(ctx, m.Cases)
//	if err != nil {
//	    return err
//	}
//	if !rep.Pass() {
//	    os.Exit(1)
//	}
package harness
