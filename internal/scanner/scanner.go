// Package scanner holds the scan data model shared by the scan, state, report
// and purge layers.
package scanner

// InstallerFile is one discovered installer candidate. Never mutated after the scan.
type InstallerFile struct {
	Path              string   `json:"path" yaml:"path"`
	Extension         string   `json:"extension" yaml:"extension"`
	SizeBytes         uint64   `json:"size_bytes" yaml:"size_bytes"`
	ModifiedUnixSecs  *uint64  `json:"modified_unix_secs" yaml:"modified_unix_secs"`
	InstalledMatch    *string  `json:"installed_program_match" yaml:"installed_program_match"`
	ArchiveInstallers []string `json:"archive_installers,omitempty" yaml:"archive_installers,omitempty"`
}

// ScanResult is one completed scan. Files keeps discovery order; user-facing
// one-based indices refer to positions in this exact slice.
type ScanResult struct {
	Root              string          `json:"root" yaml:"root"`
	ScannedAtUnixSecs uint64          `json:"scanned_at_unix_secs" yaml:"scanned_at_unix_secs"`
	IncludeArchives   bool            `json:"include_archives" yaml:"include_archives"`
	Files             []InstallerFile `json:"files" yaml:"files"`
	Warnings          []string        `json:"warnings" yaml:"warnings"`
}

// TotalSizeBytes sums the size of every file in the result.
func (r *ScanResult) TotalSizeBytes() uint64 {
	var total uint64
	for _, f := range r.Files {
		total += f.SizeBytes
	}
	return total
}

// SizeOf sums the size of the files at the given zero-based indices.
func (r *ScanResult) SizeOf(indices []int) uint64 {
	var total uint64
	for _, i := range indices {
		total += r.Files[i].SizeBytes
	}
	return total
}
