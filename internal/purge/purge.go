// Package purge previews and deletes the files of a saved scan.
//
// A run moves through preview, selection, confirmation and execution in that
// order and never goes back. One file failing to delete never stops the rest
// of the batch.
package purge

import (
	"errors"
	"fmt"
	"io"
	"os"

	"binthere/internal/report"
	"binthere/internal/scanner"
	"binthere/internal/selection"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
)

// Outcome is the terminal state of a purge run.
type Outcome int

const (
	OutcomeDryRun Outcome = iota
	OutcomeNoFiles
	OutcomeNothingSelected
	OutcomeDeclined
	OutcomeExecuted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDryRun:
		return "dry-run"
	case OutcomeNoFiles:
		return "no-files"
	case OutcomeNothingSelected:
		return "nothing-selected"
	case OutcomeDeclined:
		return "declined"
	case OutcomeExecuted:
		return "executed"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Report is what a purge run did.
type Report struct {
	Outcome      Outcome
	Targets      selection.Set
	DeletedCount int
	DeletedBytes uint64
	Failures     []string
}

// Prompter asks the interactive questions of a run.
type Prompter interface {
	Line(question string) (string, error)
	Confirm(question string, def bool) (bool, error)
}

// Options selects the mode of one run.
type Options struct {
	// Confirm allows deletion; without it the run stops after the preview.
	Confirm bool
	// Select asks for a selection interactively before confirming.
	Select bool
	// Selection is a non-interactive selection in range syntax. It takes
	// precedence over Select.
	Selection string
}

// Executor runs purges against one scan result.
type Executor struct {
	Out    io.Writer
	Prompt Prompter
	// Progress, when set, receives a progress bar during deletion.
	Progress io.Writer
	// Remove deletes one file. Defaults to os.Remove.
	Remove func(path string) error
}

var (
	blue   = color.New(color.FgBlue, color.Bold)
	cyan   = color.New(color.FgCyan)
	cyanB  = color.New(color.FgCyan, color.Bold)
	green  = color.New(color.FgGreen)
	greenB = color.New(color.FgGreen, color.Bold)
	yellow = color.New(color.FgYellow)
	yelB   = color.New(color.FgYellow, color.Bold)
	red    = color.New(color.FgRed)
)

// Run drives one purge over res. Errors are returned only when the run
// itself cannot continue (bad selection, closed input); per-file failures
// land in Report.Failures.
func (e *Executor) Run(res *scanner.ScanResult, opts Options) (Report, error) {
	targets := selection.All(len(res.Files))
	if opts.Selection != "" {
		set, err := selection.Parse(opts.Selection, len(res.Files))
		if err != nil {
			return Report{}, fmt.Errorf("invalid selection: %w", err)
		}
		targets = set
	}

	e.preview(res, targets)
	rep := Report{Outcome: OutcomeDryRun, Targets: targets}
	if !opts.Confirm {
		return rep, nil
	}

	if len(res.Files) == 0 {
		green.Fprintln(e.Out, "No files to delete from the latest scan.")
		rep.Outcome = OutcomeNoFiles
		return rep, nil
	}

	if opts.Select && opts.Selection == "" {
		set, err := e.ask(len(res.Files))
		if err != nil {
			return rep, err
		}
		targets = set
		rep.Targets = set
	}
	if len(targets) == 0 {
		yellow.Fprintln(e.Out, "Nothing selected. No files were deleted.")
		rep.Outcome = OutcomeNothingSelected
		return rep, nil
	}

	question := fmt.Sprintf("Delete %d files and reclaim up to %s?", len(targets), report.HumanSize(res.SizeOf(targets)))
	ok, err := e.Prompt.Confirm(question, false)
	if err != nil {
		return rep, err
	}
	if !ok {
		yellow.Fprintln(e.Out, "Purge aborted. No files were deleted.")
		rep.Outcome = OutcomeDeclined
		return rep, nil
	}

	e.execute(res, targets, &rep)
	rep.Outcome = OutcomeExecuted
	e.summary(rep)
	return rep, nil
}

func (e *Executor) preview(res *scanner.ScanResult, targets selection.Set) {
	blue.Fprintln(e.Out, "[DRY RUN] Files that would be deleted:")
	if len(targets) == 0 {
		green.Fprintln(e.Out, "(none)")
		return
	}
	width := len(fmt.Sprint(len(res.Files)))
	for _, i := range targets {
		f := res.Files[i]
		fmt.Fprintf(e.Out, "%*d. %s (%s)\n", width, i+1, f.Path, report.HumanSize(f.SizeBytes))
	}
	fmt.Fprintf(e.Out, "%s %s\n", cyan.Sprint("Potential reclaimable:"), yelB.Sprint(report.HumanSize(res.SizeOf(targets))))
}

// ask reads a selection, asking again until it parses.
func (e *Executor) ask(max int) (selection.Set, error) {
	for {
		input, err := e.Prompt.Line(fmt.Sprintf("Select files to delete (e.g. 1,3-5, all, none) [1-%d]: ", max))
		if err != nil {
			return nil, err
		}
		set, err := selection.Parse(input, max)
		if err == nil {
			return set, nil
		}
		red.Fprintf(e.Out, "Invalid selection: %v\n", err)
	}
}

func (e *Executor) execute(res *scanner.ScanResult, targets selection.Set, rep *Report) {
	remove := e.Remove
	if remove == nil {
		remove = os.Remove
	}

	var bar *progressbar.ProgressBar
	if e.Progress != nil {
		bar = progressbar.NewOptions(len(targets),
			progressbar.OptionSetWriter(e.Progress),
			progressbar.OptionSetDescription("Deleting"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	// targets is ascending, so this is scan order
	for _, i := range targets {
		f := res.Files[i]
		if bar != nil {
			_ = bar.Clear()
		}
		if err := deleteOne(f.Path, remove); err != nil {
			rep.Failures = append(rep.Failures, err.Error())
			logrus.WithFields(logrus.Fields{"file": f.Path, "err": err}).Warn("Delete failed")
		} else {
			rep.DeletedCount++
			rep.DeletedBytes += f.SizeBytes
			fmt.Fprintf(e.Out, "%s %s\n", greenB.Sprint("Deleted"), f.Path)
			logrus.WithFields(logrus.Fields{"file": f.Path, "bytes": f.SizeBytes}).Info("Deleted")
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}
}

var errIsDir = errors.New("is a directory")

// deleteOne removes a single file, describing any failure with its path.
func deleteOne(path string, remove func(string) error) error {
	st, err := os.Lstat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("Missing: %s", path)
		}
		return fmt.Errorf("%s (%v)", path, err)
	}
	if st.IsDir() {
		return fmt.Errorf("%s (%v)", path, errIsDir)
	}
	if err := remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("Missing: %s", path)
		}
		return fmt.Errorf("%s (%v)", path, err)
	}
	return nil
}

func (e *Executor) summary(rep Report) {
	fmt.Fprintf(e.Out, "\n%s %d files, %s\n", cyanB.Sprint("Deleted:"), rep.DeletedCount, yelB.Sprint(report.HumanSize(rep.DeletedBytes)))
	if len(rep.Failures) == 0 {
		return
	}
	yelB.Fprintln(e.Out, "Some files could not be deleted:")
	for _, f := range rep.Failures {
		fmt.Fprintf(e.Out, "- %s\n", yellow.Sprint(f))
	}
}
