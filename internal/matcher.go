package internal

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
)

// MinMatchLen is the shortest installed name, in characters, that may
// produce a match. Shorter names stay in the snapshot but are too ambiguous
// to match on.
const MinMatchLen = 5

// installerWords appear in most installer names and say nothing about the program.
var installerWords = map[string]struct{}{
	"setup": {}, "install": {}, "installer": {}, "update": {}, "win32": {},
	"win64": {}, "windows": {}, "release": {}, "portable": {}, "latest": {},
}

// MatchInstalled reports an installed program name that the file stem likely
// belongs to. A name matches when either string contains the other after the
// stem is lower-cased, or when the name contains every significant word of
// the stem ("photoshop" out of "photoshop_setup"). A single shared vendor
// word is not enough. When several names qualify any one of them may win.
func MatchInstalled(fileStem string, installed map[string]struct{}) (string, bool) {
	candidate := strings.ToLower(fileStem)
	if candidate == "" {
		return "", false
	}
	words := stemWords(candidate)
	for name := range installed {
		n := strings.ToLower(name)
		if utf8.RuneCountInString(n) < MinMatchLen {
			continue
		}
		if strings.Contains(candidate, n) || strings.Contains(n, candidate) {
			return name, true
		}
		if len(words) > 0 && containsAll(n, words) {
			return name, true
		}
	}
	return "", false
}

func containsAll(name string, words []string) bool {
	for _, w := range words {
		if !strings.Contains(name, w) {
			return false
		}
	}
	return true
}

// stemWords splits a stem on anything that is not a letter or digit and keeps
// the words that identify a program: at least MinMatchLen characters, not the
// whole stem, not a generic installer word and not a bare version number.
func stemWords(stem string) []string {
	fields := strings.FieldsFunc(stem, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	words := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) < MinMatchLen || f == stem || !hasLetter(f) {
			continue
		}
		if _, generic := installerWords[f]; generic {
			continue
		}
		words = append(words, f)
	}
	return words
}

func hasLetter(s string) bool {
	return strings.IndexFunc(s, unicode.IsLetter) >= 0
}

// LoadInstalledNames reads extra installed-program names, one per line.
// Blank lines and lines starting with '#' are ignored.
func LoadInstalledNames(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var names []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read installed names %s: %w", path, err)
	}
	logrus.Debugf("Loaded %d installed names from %s", len(names), path)
	return names, nil
}
