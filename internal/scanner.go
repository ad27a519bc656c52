package internal

import (
	"context"
	"errors"
	"fmt"
	"os"

	"binthere/internal/scanner"

	"github.com/sirupsen/logrus"
)

var (
	ErrNotFound      = errors.New("path does not exist")
	ErrNotADirectory = errors.New("path is not a directory")
	ErrClock         = errors.New("system time appears to be before the unix epoch")
)

// FileScanner finds installer files under one root.
type FileScanner struct {
	Stats ScanStats
}

func NewFileScanner() *FileScanner { return &FileScanner{} }

// Scan walks opts.Root and builds one record per installer file in discovery
// order. Unreadable directories become warnings; an unreadable file's
// metadata fails the whole scan.
func (fs *FileScanner) Scan(ctx context.Context, opts ScanOptions) (*scanner.ScanResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts.Prepare()

	st, err := os.Stat(opts.Root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, opts.Root)
		}
		return nil, fmt.Errorf("stat %s: %w", opts.Root, err)
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotADirectory, opts.Root)
	}

	fs.Stats = ScanStats{}
	fs.Stats.Start()
	names := opts.Installed.Names()
	logrus.WithFields(logrus.Fields{"root": opts.Root, "installed": len(names)}).Debug("Scan started")

	res := &scanner.ScanResult{
		Root:            opts.Root,
		IncludeArchives: opts.IncludeArchives,
		Files:           []scanner.InstallerFile{},
		Warnings:        []string{},
	}

	walkErr := opts.WalkDir(ctx, opts.Root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			fs.Stats.Warnings++
			logrus.WithError(err).WithField("path", path).Warn("Traversal warning")
			res.Warnings = append(res.Warnings, fmt.Sprintf("Traversal warning: %v", err))
			return nil
		}
		fs.Stats.Entries++
		if !d.Type().IsRegular() {
			return nil
		}
		stem, ext := SplitName(d.Name())
		if ext == "" || !opts.allowedExt(ext) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return &metadataError{path: path, err: err}
		}
		rec := scanner.InstallerFile{
			Path:      path,
			Extension: ext,
			SizeBytes: uint64(info.Size()),
		}
		if mt := info.ModTime().Unix(); mt >= 0 {
			secs := uint64(mt)
			rec.ModifiedUnixSecs = &secs
		}
		if name, ok := MatchInstalled(stem, names); ok {
			rec.InstalledMatch = &name
		}
		if IsArchiveExt(ext) {
			fs.Stats.Archives++
			inner, err := InspectArchive(ctx, path)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				fs.Stats.Warnings++
				logrus.WithError(err).WithField("archive", path).Warn("Archive inspection failed")
				res.Warnings = append(res.Warnings, fmt.Sprintf("Archive warning: %s: %v", path, err))
			}
			rec.ArchiveInstallers = inner
		}
		fs.Stats.Matched++
		res.Files = append(res.Files, rec)
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	now := opts.Now().Unix()
	if now < 0 {
		return nil, ErrClock
	}
	res.ScannedAtUnixSecs = uint64(now)

	logrus.WithFields(logrus.Fields{
		"root":     opts.Root,
		"entries":  fs.Stats.Entries,
		"matched":  fs.Stats.Matched,
		"warnings": fs.Stats.Warnings,
		"archives": fs.Stats.Archives,
		"elapsed":  fs.Stats.Elapsed(),
	}).Info("Scan finished")
	return res, nil
}

type metadataError struct {
	path string
	err  error
}

func (e *metadataError) Error() string {
	return fmt.Sprintf("failed to read metadata for %s: %v", e.path, e.err)
}

func (e *metadataError) Unwrap() error { return e.err }
