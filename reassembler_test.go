package vital

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func lineData(lines []Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = string(l.Data)
	}
	return out
}

func TestReassembler_Terminators(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		pending int
	}{
		{"crlf collapses", "Line1\r\n", []string{"Line1\r"}, 0},
		{"crlf pairs", "Line1\r\nLine2\r\n", []string{"Line1\r", "Line2\r"}, 0},
		{"cr only", "Line1\rLine2\r", []string{"Line1\r", "Line2\r"}, 0},
		{"lf only", "Line1\nLine2\n", []string{"Line1\n", "Line2\n"}, 0},
		{"trailing partial", "Line1\nLin", []string{"Line1\n"}, 3},
		{"no terminator", "abc", nil, 3},
		{"lf cr is two terminators", "a\n\rb", []string{"a\n", "\r"}, 1},
		{"repeated lf", "\n\n", []string{"\n", "\n"}, 0},
		{"crcr", "a\r\r", []string{"a\r", "\r"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReassembler(NewClassifier())
			lines := r.Feed([]byte(tt.input), "ts")
			if tt.want == nil {
				require.Empty(t, lines)
			} else {
				require.Equal(t, tt.want, lineData(lines))
			}
			require.Equal(t, tt.pending, r.Pending())
		})
	}
}

func TestReassembler_CRLFSplitAcrossChunks(t *testing.T) {
	r := NewReassembler(NewClassifier())

	lines := r.Feed([]byte("Line1\r"), "t1")
	require.Equal(t, []string{"Line1\r"}, lineData(lines))
	require.Equal(t, "t1", lines[0].Timestamp)

	lines = r.Feed([]byte("\nLine2"), "t2")
	require.Empty(t, lines)
	require.Equal(t, 5, r.Pending())

	lines = r.Feed([]byte("\n"), "t3")
	require.Equal(t, []string{"Line2\n"}, lineData(lines))
	require.Equal(t, "t3", lines[0].Timestamp)
}

func TestReassembler_LineSpanningChunks(t *testing.T) {
	r := NewReassembler(NewClassifier())
	require.Empty(t, r.Feed([]byte("HR=7"), "t1"))
	lines := r.Feed([]byte("2\nSpO2=98\n"), "t2")
	require.Equal(t, []string{"HR=72\n", "SpO2=98\n"}, lineData(lines))
}

func TestReassembler_SizeBoundedFlush(t *testing.T) {
	r := NewReassembler(NewClassifier())
	lines := r.Feed(bytes.Repeat([]byte{'x'}, 70000), "ts")

	require.Len(t, lines, 1)
	require.Len(t, lines[0].Data, MaxLineLength+1)

	total := r.Pending()
	for _, l := range lines {
		require.LessOrEqual(t, len(l.Data), MaxLineLength+1)
		total += len(l.Data)
	}
	require.Equal(t, 70000, total)
}

func TestReassembler_ObservesEveryByte(t *testing.T) {
	c := NewClassifier()
	r := NewReassembler(c)
	chunks := [][]byte{[]byte("abc\r\n"), {0x00, 0xFF}, []byte("\n\n")}
	sum := 0
	for _, ch := range chunks {
		r.Feed(ch, "ts")
		sum += len(ch)
	}
	require.Equal(t, uint64(sum), c.Total())
}

func TestReassembler_VerdictAtFlush(t *testing.T) {
	c := NewClassifier()
	r := NewReassembler(c)

	// The first 99 bytes leave the verdict at Mixed; the 100th settles it
	// before the terminator flushes the line.
	chunk := append(bytes.Repeat([]byte{'a'}, 99), '\n')
	lines := r.Feed(chunk, "ts")
	require.Len(t, lines, 1)
	require.Equal(t, Ascii, lines[0].Verdict)

	r2 := NewReassembler(NewClassifier())
	lines = r2.Feed([]byte("short\n"), "ts")
	require.Equal(t, Mixed, lines[0].Verdict)
}

func TestReassembler_EmittedLinesDoNotAlias(t *testing.T) {
	r := NewReassembler(NewClassifier())
	lines := r.Feed([]byte("first\nsecond\n"), "ts")
	require.Equal(t, []string{"first\n", "second\n"}, lineData(lines))
}
