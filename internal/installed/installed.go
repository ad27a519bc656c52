// Package installed snapshots the names of programs installed on this machine.
package installed

import (
	"strings"
	"unicode/utf8"
)

// MinNameLen is the shortest normalized name, in characters, kept in a snapshot.
const MinNameLen = 4

// Source returns a snapshot of normalized installed-program names.
// Implementations never fail: an unsupported platform yields an empty set.
type Source interface {
	Names() map[string]struct{}
}

// Static is a fixed Source, used with --no-installed-check and in tests.
type Static []string

func (s Static) Names() map[string]struct{} {
	return collect(s)
}

// System reads the platform's installed-software registry.
type System struct{}

func (System) Names() map[string]struct{} {
	return collect(systemNames())
}

// Normalize trims and lower-cases a raw display name.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func collect(raw []string) map[string]struct{} {
	names := make(map[string]struct{}, len(raw))
	for _, r := range raw {
		n := Normalize(r)
		if utf8.RuneCountInString(n) < MinNameLen {
			continue
		}
		names[n] = struct{}{}
	}
	return names
}

// Merge unions the snapshots of several sources.
func Merge(sources ...Source) Source {
	return merged(sources)
}

type merged []Source

func (m merged) Names() map[string]struct{} {
	names := make(map[string]struct{})
	for _, s := range m {
		for n := range s.Names() {
			names[n] = struct{}{}
		}
	}
	return names
}
