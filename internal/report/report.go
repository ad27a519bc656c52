// Package report renders a saved scan for people (text) and tools (JSON, YAML).
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"binthere/internal/scanner"
	"binthere/internal/state"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
)

const DefaultTop = 5

// Format selects the report encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatText, nil
	}
	return "", fmt.Errorf("unknown report format %q (want text, json or yaml)", s)
}

// Options tunes the text report.
type Options struct {
	Format Format
	// Top is the length of the "largest installers" list.
	Top int
}

// export is the machine-readable shape of a report.
type export struct {
	ScanID         string              `json:"scan_id" yaml:"scan_id"`
	StatePath      string              `json:"state_path" yaml:"state_path"`
	TotalFiles     int                 `json:"total_files" yaml:"total_files"`
	TotalSizeBytes uint64              `json:"total_size_bytes" yaml:"total_size_bytes"`
	Scan           *scanner.ScanResult `json:"scan" yaml:"scan"`
}

// Write renders snap to w in the requested format.
func Write(w io.Writer, snap *state.Snapshot, opts Options) error {
	switch opts.Format {
	case FormatJSON, FormatYAML:
		e := export{
			ScanID:         snap.ScanID,
			StatePath:      snap.Path,
			TotalFiles:     len(snap.Result.Files),
			TotalSizeBytes: snap.Result.TotalSizeBytes(),
			Scan:           snap.Result,
		}
		if opts.Format == FormatJSON {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(e)
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(e); err != nil {
			return err
		}
		return enc.Close()
	default:
		top := opts.Top
		if top <= 0 {
			top = DefaultTop
		}
		writeText(w, snap, top)
		return nil
	}
}

var (
	blue   = color.New(color.FgBlue, color.Bold)
	cyan   = color.New(color.FgCyan)
	green  = color.New(color.FgGreen)
	greenB = color.New(color.FgGreen, color.Bold)
	yellow = color.New(color.FgYellow)
	yelB   = color.New(color.FgYellow, color.Bold)
	bold   = color.New(color.Bold)
	under  = color.New(color.Bold, color.Underline)
)

func writeText(w io.Writer, snap *state.Snapshot, top int) {
	res := snap.Result
	fmt.Fprintf(w, "%s %s\n", blue.Sprint("[REPORT]"), bold.Sprint(res.Root))
	fmt.Fprintf(w, "%s %s\n", cyan.Sprint("Last scan:"), bold.Sprint(FormatTimestamp(res.ScannedAtUnixSecs)))
	if snap.ScanID != "" {
		fmt.Fprintf(w, "%s %s\n", cyan.Sprint("Scan ID:"), snap.ScanID)
	}
	fmt.Fprintf(w, "%s %t\n", cyan.Sprint("Include archives:"), res.IncludeArchives)
	fmt.Fprintf(w, "%s %s\n", cyan.Sprint("Total installers:"), bold.Sprint(len(res.Files)))
	fmt.Fprintf(w, "%s %s\n", cyan.Sprint("Total reclaimable:"), yelB.Sprint(HumanSize(res.TotalSizeBytes())))

	if len(res.Files) == 0 {
		green.Fprintln(w, "No installer candidates found in the latest scan.")
		writeWarnings(w, res.Warnings)
		return
	}

	fmt.Fprintf(w, "\n%s\n", under.Sprint("Largest installers"))
	for rank, i := range Largest(res, top) {
		f := res.Files[i]
		fmt.Fprintf(w, "%d. %s [%s] %s%s\n", rank+1, f.Path, f.Extension, yellow.Sprint(HumanSize(f.SizeBytes)), matchSuffix(f))
	}

	fmt.Fprintf(w, "\n%s\n", under.Sprint("All detected installers"))
	width := len(fmt.Sprint(len(res.Files)))
	for i, f := range res.Files {
		fmt.Fprintf(w, "%*d. %s | %s | %s | %s%s\n", width, i+1, f.Path, f.Extension,
			HumanSize(f.SizeBytes), FormatModified(f.ModifiedUnixSecs), matchSuffix(f))
		if len(f.ArchiveInstallers) > 0 {
			fmt.Fprintf(w, "%*s  contains: %s\n", width, "", strings.Join(f.ArchiveInstallers, ", "))
		}
	}
	writeWarnings(w, res.Warnings)
}

func writeWarnings(w io.Writer, warnings []string) {
	if len(warnings) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", yelB.Sprint("Scan warnings"))
	for _, warn := range warnings {
		fmt.Fprintf(w, "- %s\n", yellow.Sprint(warn))
	}
}

func matchSuffix(f scanner.InstallerFile) string {
	if f.InstalledMatch == nil {
		return ""
	}
	return fmt.Sprintf(" %s %s", green.Sprint("| matches installed:"), greenB.Sprint(*f.InstalledMatch))
}

// Largest returns the indices of the n biggest files, biggest first. Ties
// keep scan order.
func Largest(res *scanner.ScanResult, n int) []int {
	idx := make([]int, len(res.Files))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return res.Files[idx[a]].SizeBytes > res.Files[idx[b]].SizeBytes
	})
	if n < len(idx) {
		idx = idx[:n]
	}
	return idx
}
