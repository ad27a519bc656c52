package report

import (
	"fmt"
	"time"
)

var units = []string{"B", "KB", "MB", "GB", "TB"}

// HumanSize formats a byte count with 1024-based units and two decimals.
func HumanSize(bytes uint64) string {
	if bytes == 0 {
		return "0 B"
	}
	size := float64(bytes)
	unit := 0
	for size >= 1024 && unit < len(units)-1 {
		size /= 1024
		unit++
	}
	return fmt.Sprintf("%.2f %s", size, units[unit])
}

// FormatTimestamp renders unix seconds as RFC 3339 in UTC.
func FormatTimestamp(unixSecs uint64) string {
	return time.Unix(int64(unixSecs), 0).UTC().Format(time.RFC3339)
}

// FormatModified renders an optional modification time.
func FormatModified(unixSecs *uint64) string {
	if unixSecs == nil {
		return "unknown-modified-time"
	}
	return FormatTimestamp(*unixSecs)
}
