package vital

import "sort"

// Verdict is the classifier's current belief about the stream content.
type Verdict int

const (
	Mixed Verdict = iota // default until enough bytes have been seen
	Ascii
	Binary
)

func (v Verdict) String() string {
	switch v {
	case Ascii:
		return "Ascii"
	case Binary:
		return "Binary"
	default:
		return "Mixed"
	}
}

const (
	minClassifyBytes = 100
	asciiRatio       = 0.95
	binaryRatio      = 0.30
	topByteCount     = 5
)

// IsPrintable reports whether b is tab, LF, CR or in the range 32..126.
func IsPrintable(b byte) bool {
	return b == '\t' || b == '\n' || b == '\r' || (b >= 32 && b <= 126)
}

// Classifier keeps a running verdict of whether a stream is text, binary or mixed.
// The ratio is cumulative over the classifier's lifetime, not windowed.
// A Classifier is not safe for concurrent use; each session owns its own.
type Classifier struct {
	total     uint64
	printable uint64
	verdict   Verdict
	freq      [256]uint64
}

// NewClassifier returns a classifier with verdict Mixed and no observations.
func NewClassifier() *Classifier {
	return &Classifier{verdict: Mixed}
}

// Observe records one byte and recomputes the verdict once at least
// 100 bytes have been seen.
func (c *Classifier) Observe(b byte) {
	c.total++
	c.freq[b]++
	if IsPrintable(b) {
		c.printable++
	}
	if c.total < minClassifyBytes {
		return
	}
	ratio := float64(c.printable) / float64(c.total)
	switch {
	case ratio > asciiRatio:
		c.verdict = Ascii
	case ratio < binaryRatio:
		c.verdict = Binary
	default:
		c.verdict = Mixed
	}
}

// Classify returns the current verdict.
func (c *Classifier) Classify() Verdict {
	return c.verdict
}

// Total returns the number of bytes observed.
func (c *Classifier) Total() uint64 { return c.total }

// Printable returns the number of printable bytes observed.
func (c *Classifier) Printable() uint64 { return c.printable }

// ByteCount is one entry of the byte-frequency table.
type ByteCount struct {
	Value byte
	Count uint64
}

// Snapshot is a read-only copy of the classifier's statistics.
type Snapshot struct {
	Total        uint64
	Printable    uint64
	NonPrintable uint64
	Verdict      Verdict
	// TopBytes holds up to five most frequent byte values, count descending.
	// Order among equal counts is unspecified.
	TopBytes []ByteCount
}

// Snapshot returns the current statistics.
func (c *Classifier) Snapshot() Snapshot {
	var seen []ByteCount
	for v, n := range c.freq {
		if n > 0 {
			seen = append(seen, ByteCount{Value: byte(v), Count: n})
		}
	}
	sort.Slice(seen, func(i, j int) bool { return seen[i].Count > seen[j].Count })
	if len(seen) > topByteCount {
		seen = seen[:topByteCount]
	}
	return Snapshot{
		Total:        c.total,
		Printable:    c.printable,
		NonPrintable: c.total - c.printable,
		Verdict:      c.verdict,
		TopBytes:     seen,
	}
}
