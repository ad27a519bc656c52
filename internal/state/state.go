// Package state persists the most recent scan as a single JSON document.
//
// The document is overwritten wholesale by every scan and read wholesale by
// report and purge. Each load returns a fresh Snapshot; nothing in this
// package keeps a "current" scan around.
package state

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"binthere/internal/scanner"

	"github.com/cespare/xxhash/v2"
	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	AppDir    = "BinThere"
	StateFile = "last_scan.json"

	formatVersion = 1
)

var (
	ErrNoScan       = errors.New("no saved scan found")
	ErrCorruptState = errors.New("failed to parse saved scan")
)

// Snapshot is one loaded scan. The Result and its Files are read-only; file
// indices shown to the user refer to Result.Files of this exact value.
type Snapshot struct {
	ScanID string
	Path   string
	Result *scanner.ScanResult
}

type document struct {
	Version  int                 `json:"version"`
	ScanID   string              `json:"scan_id"`
	Checksum string              `json:"checksum"`
	Scan     *scanner.ScanResult `json:"scan"`
}

// Store reads and writes the state document inside one directory.
type Store struct {
	dir string
}

// NewStore uses dir, or the platform data directory when dir is empty.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		base, err := DataDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(base, AppDir)
	}
	return &Store{dir: dir}, nil
}

// Path is the location of the state document.
func (s *Store) Path() string { return filepath.Join(s.dir, StateFile) }

func (s *Store) lockPath() string { return s.Path() + ".lock" }

// Save replaces the state document with res.
func (s *Store) Save(res *scanner.ScanResult) (*Snapshot, error) {
	body, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize scan: %w", err)
	}
	doc := document{
		Version:  formatVersion,
		ScanID:   uuid.NewString(),
		Checksum: checksum(body),
		Scan:     res,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize scan: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory %s: %w", s.dir, err)
	}
	lock := flock.New(s.lockPath())
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("failed to acquire lock on %s: %w", s.lockPath(), err)
	}
	defer lock.Unlock()

	if err := atomicWrite(s.Path(), data); err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"path": s.Path(), "scan_id": doc.ScanID, "files": len(res.Files)}).Debug("Saved scan state")
	return &Snapshot{ScanID: doc.ScanID, Path: s.Path(), Result: res}, nil
}

// Load reads the state document. A missing document is ErrNoScan; anything
// that does not decode into a scan is ErrCorruptState.
func (s *Store) Load() (*Snapshot, error) {
	if _, err := os.Stat(s.dir); err == nil {
		lock := flock.New(s.lockPath())
		if err := lock.RLock(); err != nil {
			return nil, fmt.Errorf("failed to acquire lock on %s: %w", s.lockPath(), err)
		}
		defer lock.Unlock()
	}

	data, err := os.ReadFile(s.Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w. Run `binthere scan` first (expected state file at %s)", ErrNoScan, s.Path())
		}
		return nil, fmt.Errorf("failed to read state file %s: %w", s.Path(), err)
	}

	var doc document
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w JSON at %s: %v", ErrCorruptState, s.Path(), err)
	}
	if doc.Scan == nil || doc.Scan.Root == "" {
		return nil, fmt.Errorf("%w JSON at %s: no scan recorded", ErrCorruptState, s.Path())
	}
	if doc.Version != formatVersion {
		return nil, fmt.Errorf("%w JSON at %s: unsupported version %d", ErrCorruptState, s.Path(), doc.Version)
	}
	if doc.Checksum != "" {
		body, err := json.Marshal(doc.Scan)
		if err != nil {
			return nil, fmt.Errorf("%w JSON at %s: %v", ErrCorruptState, s.Path(), err)
		}
		if checksum(body) != doc.Checksum {
			return nil, fmt.Errorf("%w JSON at %s: checksum mismatch", ErrCorruptState, s.Path())
		}
	}
	if doc.Scan.Files == nil {
		doc.Scan.Files = []scanner.InstallerFile{}
	}
	if doc.Scan.Warnings == nil {
		doc.Scan.Warnings = []string{}
	}
	return &Snapshot{ScanID: doc.ScanID, Path: s.Path(), Result: doc.Scan}, nil
}

func checksum(b []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(b))
}

// DataDir is the per-user local application data directory.
func DataDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		if d := os.Getenv("LOCALAPPDATA"); d != "" {
			return d, nil
		}
		return os.UserConfigDir()
	case "darwin", "ios":
		return os.UserConfigDir()
	}
	if d := os.Getenv("XDG_DATA_HOME"); d != "" && filepath.IsAbs(d) {
		return d, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not resolve local application data directory: %w", err)
	}
	return filepath.Join(home, ".local", "share"), nil
}
