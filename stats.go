package vital

import (
	"fmt"
	"io"
	"time"
)

// Stats counts bytes received during a session and the time since it started.
type Stats struct {
	totalBytes uint64
	start      time.Time
	now        func() time.Time
}

// NewStats returns a counter starting now.
func NewStats() *Stats {
	return newStatsWithClock(time.Now)
}

func newStatsWithClock(now func() time.Time) *Stats {
	return &Stats{start: now(), now: now}
}

func (s *Stats) AddBytes(n int) { s.totalBytes += uint64(n) }

func (s *Stats) TotalBytes() uint64 { return s.totalBytes }

func (s *Stats) Elapsed() time.Duration { return s.now().Sub(s.start) }

// AverageRate returns bytes per second since start, or 0 if no time has passed.
func (s *Stats) AverageRate() float64 {
	secs := s.Elapsed().Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(s.totalBytes) / secs
}

// Reset zeroes the counter and restarts the clock.
func (s *Stats) Reset() {
	s.totalBytes = 0
	s.start = s.now()
}

func percent(n, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

// WriteReport writes the end-of-session statistics as free-form text.
func WriteReport(w io.Writer, st *Stats, snap Snapshot) error {
	ew := &errWriter{w: w}
	ew.printf("Statistics:\n")
	ew.printf("  Total bytes received: %d\n", st.TotalBytes())
	ew.printf("  Connection time:      %s\n", st.Elapsed().Round(time.Millisecond))
	ew.printf("  Average rate:         %.2f bytes/sec\n", st.AverageRate())
	ew.printf("\nData Analysis:\n")
	ew.printf("  Total bytes:      %d\n", snap.Total)
	ew.printf("  ASCII bytes:      %d (%.1f%%)\n", snap.Printable, percent(snap.Printable, snap.Total))
	ew.printf("  Binary bytes:     %d (%.1f%%)\n", snap.NonPrintable, percent(snap.NonPrintable, snap.Total))
	ew.printf("  Detected type:    %s\n", snap.Verdict)
	ew.printf("\nMost common bytes:\n")
	for _, bc := range snap.TopBytes {
		repr := ""
		if IsPrintable(bc.Value) {
			repr = fmt.Sprintf("%q ", rune(bc.Value))
		}
		ew.printf("    0x%02X %s: %d times (%.1f%%)\n", bc.Value, repr, bc.Count, percent(bc.Count, snap.Total))
	}
	return ew.err
}

// errWriter keeps the first write error and skips later writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
