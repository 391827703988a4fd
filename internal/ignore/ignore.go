// Package ignore holds the policy of which filesystem entries are never uploaded.
//
// The policy is a fixed table shipped with the binary, it matches entry base names
// only, so `node_modules` is ignored at any depth of the tree.
package ignore

import (
	_ "embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed ignore.yaml
var tableData []byte

type tableYAML struct {
	Names []string `yaml:"names"`
}

var defaultTable = mustLoad(tableData)

// Table is a set of ignored base names. Entries with glob metacharacters are matched
// as `path.Match` patterns (e.g. `*.log`).
type Table struct {
	names    map[string]struct{}
	patterns []string
}

// Load decodes a YAML ignore table.
func Load(data []byte) (Table, error) {
	var ty tableYAML
	if err := yaml.Unmarshal(data, &ty); err != nil {
		return Table{}, fmt.Errorf("could not decode ignore table: %w", err)
	}

	t := Table{names: make(map[string]struct{}, len(ty.Names))}
	for _, n := range ty.Names {
		if n == "" {
			return Table{}, fmt.Errorf("empty name in ignore table")
		}

		if !strings.ContainsAny(n, `*?[\`) {
			t.names[n] = struct{}{}
			continue
		}
		if _, err := path.Match(n, ""); err != nil {
			return Table{}, fmt.Errorf("invalid pattern %q in ignore table: %w", n, err)
		}
		t.patterns = append(t.patterns, n)
	}

	return t, nil
}

func mustLoad(data []byte) Table {
	t, err := Load(data)
	if err != nil {
		panic(err)
	}
	return t
}

// Ignored returns true if the entry should be skipped. Only the base name is checked.
func (t Table) Ignored(name string) bool {
	base := path.Base(name)
	if _, ok := t.names[base]; ok {
		return true
	}
	for _, p := range t.patterns {
		// Patterns are validated on load.
		if ok, _ := path.Match(p, base); ok {
			return true
		}
	}
	return false
}

// Names returns the sorted ignored names and patterns.
func (t Table) Names() []string {
	names := make([]string, 0, len(t.names)+len(t.patterns))
	for n := range t.names {
		names = append(names, n)
	}
	names = append(names, t.patterns...)
	sort.Strings(names)
	return names
}

// Ignored checks name against the default table.
func Ignored(name string) bool {
	return defaultTable.Ignored(name)
}

// Default returns the default ignore table.
func Default() Table {
	return defaultTable
}
