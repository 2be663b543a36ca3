package vital

// MaxLineLength bounds the pending buffer. A line growing past it is
// flushed without a terminator.
const MaxLineLength = 65536

// Line is a completed line as emitted by the Reassembler.
type Line struct {
	Data      []byte
	Timestamp string
	Verdict   Verdict
}

type lineState int

const (
	stateIdle lineState = iota
	stateSawCR
)

// Reassembler splits a byte stream into lines ending in CR, LF or CRLF.
//
// CR terminates a line immediately (the CR is kept in the line). An LF
// directly after a CR is absorbed, so CRLF yields one line ending in CR.
// A lone LF terminates a line and is kept in it.
type Reassembler struct {
	classifier *Classifier
	pending    []byte
	state      lineState
}

// NewReassembler returns a Reassembler feeding every byte to c.
func NewReassembler(c *Classifier) *Reassembler {
	return &Reassembler{classifier: c}
}

// Feed consumes a chunk and returns the lines completed within it, in order.
// Each line carries ts and the classifier verdict current at its flush.
func (r *Reassembler) Feed(chunk []byte, ts string) []Line {
	var lines []Line
	for _, b := range chunk {
		r.classifier.Observe(b)

		switch b {
		case '\r':
			r.pending = append(r.pending, b)
			r.state = stateSawCR
			lines = r.flush(lines, ts)
		case '\n':
			if r.state != stateSawCR {
				r.pending = append(r.pending, b)
				lines = r.flush(lines, ts)
			}
			r.state = stateIdle
		default:
			r.state = stateIdle
			r.pending = append(r.pending, b)
			if len(r.pending) > MaxLineLength {
				lines = r.flush(lines, ts)
			}
		}
	}
	return lines
}

// Pending returns the number of buffered bytes not yet emitted.
func (r *Reassembler) Pending() int {
	return len(r.pending)
}

func (r *Reassembler) flush(lines []Line, ts string) []Line {
	if len(r.pending) == 0 {
		return lines
	}
	data := make([]byte, len(r.pending))
	copy(data, r.pending)
	r.pending = r.pending[:0]
	return append(lines, Line{Data: data, Timestamp: ts, Verdict: r.classifier.Classify()})
}
