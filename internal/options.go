package internal

import (
	"context"
	"errors"
	iofs "io/fs"
	"time"

	"binthere/internal/installed"
)

var (
	installerExts = []string{"exe", "msi", "dmg", "pkg"}
	archiveExts   = []string{"zip", "7z"}
)

// ScanOptions - public options from CLI.
type ScanOptions struct {
	Root            string
	IncludeArchives bool

	// Installed supplies the installed-program snapshot. Nil means no matching.
	Installed installed.Source
	// Now stamps the completed scan. Defaults to time.Now.
	Now func() time.Time
	// WalkDir traverses the root. Defaults to Walk.
	WalkDir func(ctx context.Context, root string, fn iofs.WalkDirFunc) error

	allowed map[string]struct{}
}

// Validate checks that a scan root is set.
func (o *ScanOptions) Validate() error {
	if o.Root == "" {
		return errors.New("scan root is required")
	}
	return nil
}

// Prepare builds the extension lookup and fills defaults.
func (o *ScanOptions) Prepare() {
	o.allowed = toSet(o.AllowedExtensions())
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.WalkDir == nil {
		o.WalkDir = Walk
	}
	if o.Installed == nil {
		o.Installed = installed.Static(nil)
	}
}

// AllowedExtensions lists the extensions a scan with these options accepts.
func (o *ScanOptions) AllowedExtensions() []string {
	if o.IncludeArchives {
		return append(append([]string{}, installerExts...), archiveExts...)
	}
	return append([]string{}, installerExts...)
}

func toSet(s []string) map[string]struct{} {
	m := make(map[string]struct{}, len(s))
	for _, x := range s {
		m[x] = struct{}{}
	}
	return m
}

// allowedExt expects a lower-cased extension without the dot.
func (o *ScanOptions) allowedExt(ext string) bool {
	_, ok := o.allowed[ext]
	return ok
}
