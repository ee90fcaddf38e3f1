package manifest

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/roach88/fixturerun/internal/canon"
)

//go:embed schema.cue
var schemaSource string

// Case is one manifest entry.
type Case struct {
	// Index is the zero-based position in the manifest.
	Index int `json:"-" yaml:"-"`

	// Description labels the case in reports.
	Description string `json:"desc" yaml:"desc"`

	// Input is piped to the tool's stdin.
	Input string `json:"in" yaml:"in"`

	// Args optionally names a file whose trimmed content is appended to the
	// tool's command line.
	Args string `json:"cmd,omitempty" yaml:"cmd,omitempty"`

	// Output holds the exact bytes expected on stdout.
	Output string `json:"out" yaml:"out"`
}

// Fixtures returns the fixture paths the case references, in read order.
func (c Case) Fixtures() []string {
	paths := []string{c.Input}
	if c.Args != "" {
		paths = append(paths, c.Args)
	}
	return append(paths, c.Output)
}

// Manifest is an ordered list of cases.
type Manifest struct {
	// Path is the file the manifest was loaded from.
	Path string

	// Dir is the directory fixture paths resolve against.
	Dir string

	Cases []Case

	// Digest is the canonical hash of the cases, stable across formatting
	// and key-order changes.
	Digest string
}

// Load reads and validates the manifest at path. Fixture paths resolve
// against dir; an empty dir means the manifest's own directory.
func Load(path, dir string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	yamlFormat := isYAML(path)

	var raw any
	if yamlFormat {
		err = yaml.Unmarshal(data, &raw)
	} else {
		err = json.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	if err := validateSchema(raw); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}

	var cases []Case
	if yamlFormat {
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true) // Reject typos like "output:" for "out:"
		err = decoder.Decode(&cases)
	} else {
		err = json.Unmarshal(data, &cases)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}

	for i := range cases {
		cases[i].Index = i
	}

	digest, err := digestCases(cases)
	if err != nil {
		return nil, err
	}

	if dir == "" {
		dir = filepath.Dir(path)
	}

	return &Manifest{
		Path:   path,
		Dir:    dir,
		Cases:  cases,
		Digest: digest,
	}, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// validateSchema unifies the decoded document with #Manifest.
func validateSchema(raw any) error {
	if raw == nil {
		return errors.New("manifest is empty")
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	doc := ctx.Encode(raw)
	if err := doc.Err(); err != nil {
		return err
	}

	unified := schema.LookupPath(cue.ParsePath("#Manifest")).Unify(doc)
	return unified.Validate(cue.Concrete(true))
}

func (c Case) canonical() map[string]any {
	entry := map[string]any{
		"desc": c.Description,
		"in":   c.Input,
		"out":  c.Output,
	}
	if c.Args != "" {
		entry["cmd"] = c.Args
	}
	return entry
}

// Digest identifies the case by its fields, independent of its position.
func (c Case) Digest() (string, error) {
	return canon.Digest(canon.DomainCase, c.canonical())
}

func digestCases(cases []Case) (string, error) {
	list := make([]any, len(cases))
	for i, c := range cases {
		list[i] = c.canonical()
	}
	return canon.Digest(canon.DomainManifest, list)
}

// FixturePath resolves a fixture path against the manifest's directory.
func (m *Manifest) FixturePath(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(m.Dir, rel)
}

// Check verifies every referenced fixture exists and is readable. All
// problems are reported, joined.
func (m *Manifest) Check() error {
	var errs []error
	seen := make(map[string]bool)
	for _, c := range m.Cases {
		for _, rel := range c.Fixtures() {
			if seen[rel] {
				continue
			}
			seen[rel] = true
			if err := checkReadable(m.FixturePath(rel)); err != nil {
				errs = append(errs, fmt.Errorf("case %d (%s): %w", c.Index, c.Description, err))
			}
		}
	}
	return errors.Join(errs...)
}

func checkReadable(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("fixture not found: %s", path)
		}
		return fmt.Errorf("fixture not readable: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("fixture not readable: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("fixture is a directory: %s", path)
	}
	return nil
}

// Filter returns the cases whose description or input path matches the
// doublestar pattern. An empty pattern matches everything.
func (m *Manifest) Filter(pattern string) ([]Case, error) {
	if pattern == "" {
		return m.Cases, nil
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid filter pattern: %q", pattern)
	}

	var matched []Case
	for _, c := range m.Cases {
		if doublestar.MatchUnvalidated(pattern, c.Description) ||
			doublestar.MatchUnvalidated(pattern, filepath.ToSlash(c.Input)) {
			matched = append(matched, c)
		}
	}
	return matched, nil
}
