// Command fixturerun runs fixture-driven conformance tests against a
// command-line tool.
package main

import (
	"os"

	"github.com/roach88/fixturerun/internal/cli"
)

func main() {
	os.Exit(cli.Main())
}
