// Package config resolves where fixtures, the manifest and the tool under
// test live.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// EnvFixtureRoot names the environment variable holding the fixture root.
	EnvFixtureRoot = "srcdir"

	// DefaultToolPath is the tool invoked when --tool is not given.
	DefaultToolPath = "./jup"

	// DataDir is the fixture directory relative to the fixture root.
	DataDir = "test/data"

	// ManifestName is the manifest file inside DataDir.
	ManifestName = "all-tests.json"
)

// ErrNoFixtureRoot is returned when neither --srcdir nor $srcdir is set.
var ErrNoFixtureRoot = errors.New("no $srcdir provided")

// Options are the raw values from flags. Empty strings mean "not given".
type Options struct {
	FixtureRoot string
	ToolPath    string
	Manifest    string
}

// Config is the resolved location of everything a run needs.
type Config struct {
	FixtureRoot  string
	ToolPath     string
	ManifestPath string
	// FixtureDir is where case paths resolve. It is <root>/test/data unless
	// the manifest path was overridden, then it is the manifest's directory.
	FixtureDir string
}

// Resolve merges flag values with the environment.
func Resolve(opts Options) (*Config, error) {
	return resolve(opts, os.LookupEnv)
}

func resolve(opts Options, lookup func(string) (string, bool)) (*Config, error) {
	root := opts.FixtureRoot
	if root == "" {
		if v, ok := lookup(EnvFixtureRoot); ok {
			root = v
		}
	}
	if root == "" {
		return nil, ErrNoFixtureRoot
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("fixture root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("fixture root %s: not a directory", root)
	}

	cfg := &Config{
		FixtureRoot: root,
		ToolPath:    opts.ToolPath,
	}
	if cfg.ToolPath == "" {
		cfg.ToolPath = DefaultToolPath
	}

	if opts.Manifest != "" {
		cfg.ManifestPath = opts.Manifest
		cfg.FixtureDir = filepath.Dir(opts.Manifest)
	} else {
		cfg.FixtureDir = filepath.Join(root, DataDir)
		cfg.ManifestPath = filepath.Join(cfg.FixtureDir, ManifestName)
	}

	return cfg, nil
}
