package internal

import (
	"time"
)

// ScanStats counts what one scan visited.
type ScanStats struct {
	start    time.Time
	Entries  int64
	Matched  int64
	Warnings int64
	Archives int64
}

func (s *ScanStats) Start() {
	s.start = time.Now()
}

func (s *ScanStats) Elapsed() time.Duration {
	return time.Since(s.start)
}
