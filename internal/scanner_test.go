package internal

import (
	"context"
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"binthere/internal/installed"
)

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, make([]byte, size), 0644); err != nil {
		t.Fatal(err)
	}
}

func fixedClock() time.Time { return time.Unix(1_700_000_000, 0) }

func TestFileScanner_Scan_RootErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := NewFileScanner().Scan(context.Background(), ScanOptions{Root: filepath.Join(dir, "missing")})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	file := filepath.Join(dir, "a.exe")
	writeFile(t, file, 1)
	_, err = NewFileScanner().Scan(context.Background(), ScanOptions{Root: file})
	if !errors.Is(err, ErrNotADirectory) {
		t.Fatalf("expected ErrNotADirectory, got %v", err)
	}
}

func TestFileScanner_Scan_FiltersAndOrders(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.exe"), 10)
	writeFile(t, filepath.Join(dir, "b", "c.MSI"), 20)
	writeFile(t, filepath.Join(dir, "d.pkg"), 30)
	writeFile(t, filepath.Join(dir, "e.dmg"), 40)
	writeFile(t, filepath.Join(dir, "notes.txt"), 50)
	writeFile(t, filepath.Join(dir, "tools.zip"), 60)
	writeFile(t, filepath.Join(dir, ".exe"), 70)

	fs := NewFileScanner()
	res, err := fs.Scan(context.Background(), ScanOptions{Root: dir, Now: fixedClock})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	want := []string{"a.exe", filepath.Join("b", "c.MSI"), "d.pkg", "e.dmg"}
	if len(res.Files) != len(want) {
		t.Fatalf("expected %d files, got %d: %+v", len(want), len(res.Files), res.Files)
	}
	for i, w := range want {
		if res.Files[i].Path != filepath.Join(dir, w) {
			t.Errorf("file %d: expected %s, got %s", i, w, res.Files[i].Path)
		}
	}
	if res.Files[1].Extension != "msi" {
		t.Errorf("extension must be lower-cased, got %q", res.Files[1].Extension)
	}
	if res.Files[2].SizeBytes != 30 {
		t.Errorf("size mismatch: %d", res.Files[2].SizeBytes)
	}
	if res.Files[0].ModifiedUnixSecs == nil {
		t.Error("expected modified time")
	}
	if res.ScannedAtUnixSecs != 1_700_000_000 || res.IncludeArchives || res.Root != dir {
		t.Errorf("unexpected header: %+v", res)
	}
	if res.TotalSizeBytes() != 100 {
		t.Errorf("total: %d", res.TotalSizeBytes())
	}
	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", res.Warnings)
	}
	if fs.Stats.Matched != 4 {
		t.Errorf("stats matched: %d", fs.Stats.Matched)
	}
}

func TestFileScanner_Scan_IncludeArchives(t *testing.T) {
	dir := t.TempDir()
	writeZip(t, filepath.Join(dir, "bundle.zip"), map[string]string{"setup.msi": "x"})
	writeFile(t, filepath.Join(dir, "tool.7Z"), 5)

	fs := NewFileScanner()
	res, err := fs.Scan(context.Background(), ScanOptions{Root: dir, IncludeArchives: true})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if fs.Stats.Archives != 2 {
		t.Errorf("stats archives: %d", fs.Stats.Archives)
	}
	if len(res.Files) != 2 {
		t.Fatalf("expected zip and 7z records, got %+v", res.Files)
	}
	if !res.IncludeArchives {
		t.Error("flag must be recorded")
	}
	if res.Files[0].Extension != "zip" || len(res.Files[0].ArchiveInstallers) != 1 {
		t.Errorf("unexpected zip record: %+v", res.Files[0])
	}
	if res.Files[1].Extension != "7z" {
		t.Errorf("unexpected 7z record: %+v", res.Files[1])
	}
}

func TestFileScanner_Scan_InstalledMatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "photoshop_2024.exe"), 1)
	writeFile(t, filepath.Join(dir, "unrelated.exe"), 1)

	res, err := NewFileScanner().Scan(context.Background(), ScanOptions{
		Root:      dir,
		Installed: installed.Static{"Adobe Photoshop", "Zoom"},
	})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if m := res.Files[0].InstalledMatch; m == nil || *m != "adobe photoshop" {
		t.Fatalf("expected adobe photoshop, got %v", m)
	}
	if res.Files[1].InstalledMatch != nil {
		t.Fatalf("unexpected match %q", *res.Files[1].InstalledMatch)
	}
}

func TestFileScanner_Scan_UnreadableDirIsWarning(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("needs a non-root unix user to deny directory access")
	}
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.exe"), 1)
	writeFile(t, filepath.Join(dir, "locked", "hidden.exe"), 1)
	writeFile(t, filepath.Join(dir, "z", "b.msi"), 1)
	locked := filepath.Join(dir, "locked")
	if err := os.Chmod(locked, 0); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0755) })

	res, err := NewFileScanner().Scan(context.Background(), ScanOptions{Root: dir})
	if err != nil {
		t.Fatalf("traversal errors must not be fatal: %v", err)
	}
	if len(res.Files) != 2 {
		t.Fatalf("expected both accessible files, got %+v", res.Files)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("expected one warning, got %v", res.Warnings)
	}
}

// denyDir reports a permission error for the named directory instead of
// descending into it, the way filepath.WalkDir does for an unreadable one.
func denyDir(name string) func(context.Context, string, iofs.WalkDirFunc) error {
	return func(ctx context.Context, root string, fn iofs.WalkDirFunc) error {
		return Walk(ctx, root, func(path string, d iofs.DirEntry, err error) error {
			if err == nil && d.IsDir() && d.Name() == name {
				denied := &iofs.PathError{Op: "open", Path: path, Err: iofs.ErrPermission}
				if err := fn(path, d, denied); err != nil {
					return err
				}
				return iofs.SkipDir
			}
			return fn(path, d, err)
		})
	}
}

func TestFileScanner_Scan_DeniedDirIsWarning(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.exe"), 1)
	writeFile(t, filepath.Join(dir, "locked", "hidden.exe"), 1)
	writeFile(t, filepath.Join(dir, "z", "b.msi"), 1)

	res, err := NewFileScanner().Scan(context.Background(), ScanOptions{Root: dir, WalkDir: denyDir("locked")})
	if err != nil {
		t.Fatalf("traversal errors must not be fatal: %v", err)
	}
	if len(res.Files) != 2 || res.Files[0].Path != filepath.Join(dir, "a.exe") || res.Files[1].Path != filepath.Join(dir, "z", "b.msi") {
		t.Fatalf("expected both accessible files, got %+v", res.Files)
	}
	if len(res.Warnings) != 1 || !strings.HasPrefix(res.Warnings[0], "Traversal warning: ") {
		t.Fatalf("expected one traversal warning, got %v", res.Warnings)
	}
	if !strings.Contains(res.Warnings[0], filepath.Join(dir, "locked")) {
		t.Errorf("warning should name the directory: %s", res.Warnings[0])
	}
}

type brokenInfo struct {
	iofs.DirEntry
	err error
}

func (b brokenInfo) Info() (iofs.FileInfo, error) { return nil, b.err }

func TestFileScanner_Scan_UnreadableMetadataIsFatal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.exe"), 1)
	writeFile(t, filepath.Join(dir, "b.exe"), 1)
	cause := errors.New("stale file handle")

	walk := func(ctx context.Context, root string, fn iofs.WalkDirFunc) error {
		return Walk(ctx, root, func(path string, d iofs.DirEntry, err error) error {
			if err == nil && d.Name() == "b.exe" {
				d = brokenInfo{DirEntry: d, err: cause}
			}
			return fn(path, d, err)
		})
	}
	res, err := NewFileScanner().Scan(context.Background(), ScanOptions{Root: dir, WalkDir: walk})
	if !errors.Is(err, cause) {
		t.Fatalf("expected the metadata error, got %v", err)
	}
	if !strings.Contains(err.Error(), filepath.Join(dir, "b.exe")) {
		t.Errorf("error should name the file: %v", err)
	}
	if res != nil {
		t.Fatalf("no partial result on a fatal error, got %+v", res)
	}
}

func TestFileScanner_Scan_ClockError(t *testing.T) {
	dir := t.TempDir()
	_, err := NewFileScanner().Scan(context.Background(), ScanOptions{
		Root: dir,
		Now:  func() time.Time { return time.Unix(-1, 0) },
	})
	if !errors.Is(err, ErrClock) {
		t.Fatalf("expected ErrClock, got %v", err)
	}
}

func TestFileScanner_Scan_EmptyResultIsNotNil(t *testing.T) {
	res, err := NewFileScanner().Scan(context.Background(), ScanOptions{Root: t.TempDir()})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if res.Files == nil || res.Warnings == nil {
		t.Fatal("empty slices must serialize as []")
	}
}
