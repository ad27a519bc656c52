package internal

import (
	"context"
	"errors"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mholt/archives"
	"github.com/sirupsen/logrus"
)

const maxArchiveFiles = 10000 // zip-bomb protection

var errArchiveLimit = errors.New("archive file limit reached")

// DetectScanRoot returns the default scan root: the user's download folder,
// or the working directory when there is none.
func DetectScanRoot() (string, error) {
	if xdg := os.Getenv("XDG_DOWNLOAD_DIR"); xdg != "" {
		if st, err := os.Stat(xdg); err == nil && st.IsDir() {
			return xdg, nil
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, "Downloads")
		if st, err := os.Stat(p); err == nil && st.IsDir() {
			return p, nil
		}
	}
	return os.Getwd()
}

// Walk visits root's subtree without following symbolic links. A symlinked
// root itself is resolved so the walk has somewhere to start.
func Walk(ctx context.Context, root string, fn iofs.WalkDirFunc) error {
	start := root
	if st, err := os.Lstat(root); err == nil && st.Mode()&os.ModeSymlink != 0 {
		if resolved, err := filepath.EvalSymlinks(root); err == nil {
			start = resolved
		}
	}
	return filepath.WalkDir(start, func(path string, d os.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fn(path, d, err)
	})
}

// SplitName splits a file name into stem and lower-cased extension without
// the dot. A leading dot alone does not start an extension (".exe" has none).
func SplitName(name string) (stem, ext string) {
	e := filepath.Ext(name)
	if e == "" || e == name {
		return name, ""
	}
	return strings.TrimSuffix(name, e), strings.ToLower(e[1:])
}

// IsArchiveExt reports whether ext (lower-cased, no dot) is an archive we inspect.
func IsArchiveExt(ext string) bool {
	for _, a := range archiveExts {
		if a == ext {
			return true
		}
	}
	return false
}

// InspectArchive lists entries inside an archive that are installers themselves.
func InspectArchive(ctx context.Context, path string) ([]string, error) {
	fsys, err := archives.FileSystem(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	if closer, ok := fsys.(io.Closer); ok {
		defer closer.Close()
	}

	installers := toSet(installerExts)
	var inner []string
	count := 0
	err = iofs.WalkDir(fsys, ".", func(name string, d iofs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil || d.IsDir() {
			return nil
		}
		if count >= maxArchiveFiles {
			logrus.Warnf("Archive %s truncated: too many files (>= %d)", path, maxArchiveFiles)
			return errArchiveLimit
		}
		count++
		if _, ext := SplitName(filepath.Base(name)); ext != "" {
			if _, ok := installers[ext]; ok {
				inner = append(inner, name)
			}
		}
		return nil
	})
	if err != nil && !errors.Is(err, errArchiveLimit) {
		return inner, err
	}
	return inner, nil
}
