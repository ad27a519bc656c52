// Package selection parses the range syntax used to pick files for deletion.
//
// Input is one-based and comma separated: "1,3-5", "all" or "none". The
// result is always zero-based, ascending and free of duplicates.
package selection

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/btree"
)

var (
	ErrEmptyInput   = errors.New("selection is empty")
	ErrEmptyItem    = errors.New("selection contains an empty item")
	ErrNotANumber   = errors.New("not a number")
	ErrOutOfRange   = errors.New("out of range")
	ErrInvalidRange = errors.New("range start is greater than its end")
)

// Error carries the item that failed to parse. It matches its sentinel via errors.Is.
type Error struct {
	Err  error
	Item string
	Max  int
}

func (e *Error) Error() string {
	switch e.Err {
	case ErrNotANumber:
		return fmt.Sprintf("%q is not a number", e.Item)
	case ErrOutOfRange:
		if e.Max == 0 {
			return fmt.Sprintf("%s is out of range: there are no files to select", e.Item)
		}
		return fmt.Sprintf("%s is out of range (valid: 1-%d)", e.Item, e.Max)
	case ErrInvalidRange:
		return fmt.Sprintf("range %q: start is greater than end", e.Item)
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Set is a canonical selection: zero-based indices, ascending, no duplicates.
type Set []int

// All selects every index below max.
func All(max int) Set {
	s := make(Set, max)
	for i := range s {
		s[i] = i
	}
	return s
}

// Parse turns user input into a Set over max files. Any malformed item fails
// the whole parse; nothing is partially applied.
func Parse(input string, max int) (Set, error) {
	in := strings.TrimSpace(input)
	switch {
	case strings.EqualFold(in, "all"):
		return All(max), nil
	case strings.EqualFold(in, "none"):
		return Set{}, nil
	case in == "":
		return nil, &Error{Err: ErrEmptyInput, Max: max}
	}

	items := strings.Split(in, ",")
	for _, item := range items {
		if strings.TrimSpace(item) == "" {
			return nil, &Error{Err: ErrEmptyItem, Max: max}
		}
	}

	tree := btree.NewOrderedG[int](16)
	for _, raw := range items {
		item := strings.TrimSpace(raw)
		lo, hi, err := parseItem(item, max)
		if err != nil {
			return nil, err
		}
		for i := lo; i <= hi; i++ {
			tree.ReplaceOrInsert(i - 1)
		}
	}

	out := make(Set, 0, tree.Len())
	tree.Ascend(func(i int) bool {
		out = append(out, i)
		return true
	})
	return out, nil
}

// parseItem returns the inclusive one-based bounds of a single item.
func parseItem(item string, max int) (int, int, error) {
	start, end, isRange := strings.Cut(item, "-")
	if !isRange {
		n, err := parseIndex(item, max)
		return n, n, err
	}
	lo, err := parseIndex(strings.TrimSpace(start), max)
	if err != nil {
		return 0, 0, err
	}
	hi, err := parseIndex(strings.TrimSpace(end), max)
	if err != nil {
		return 0, 0, err
	}
	if lo > hi {
		return 0, 0, &Error{Err: ErrInvalidRange, Item: item, Max: max}
	}
	return lo, hi, nil
}

// parseIndex validates one one-based endpoint against 1..=max.
func parseIndex(s string, max int) (int, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, &Error{Err: ErrOutOfRange, Item: s, Max: max}
		}
		return 0, &Error{Err: ErrNotANumber, Item: s, Max: max}
	}
	if n == 0 || n > uint64(max) {
		return 0, &Error{Err: ErrOutOfRange, Item: s, Max: max}
	}
	return int(n), nil
}

// String renders the set in one-based selection syntax with consecutive runs
// collapsed ("1-3,5"). Parsing the output yields the same set. An empty set
// renders as "none".
func (s Set) String() string {
	if len(s) == 0 {
		return "none"
	}
	var b strings.Builder
	for i := 0; i < len(s); {
		j := i
		for j+1 < len(s) && s[j+1] == s[j]+1 {
			j++
		}
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		if j == i {
			fmt.Fprintf(&b, "%d", s[i]+1)
		} else {
			fmt.Fprintf(&b, "%d-%d", s[i]+1, s[j]+1)
		}
		i = j + 1
	}
	return b.String()
}
