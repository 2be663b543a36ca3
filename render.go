package vital

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Render formats a line for display according to v. It returns false when
// an Ascii line is not valid UTF-8 or is empty after trimming trailing whitespace.
// Binary and Mixed lines always render.
func Render(data []byte, v Verdict, ts string) (string, bool) {
	switch v {
	case Ascii:
		return renderASCII(data, ts)
	case Binary:
		return renderBinary(data, ts), true
	default:
		return renderMixed(data, ts), true
	}
}

// RenderLine is Render applied to a Line's own data, verdict and timestamp.
func RenderLine(l Line) (string, bool) {
	return Render(l.Data, l.Verdict, l.Timestamp)
}

func renderASCII(data []byte, ts string) (string, bool) {
	if !utf8.Valid(data) {
		return "", false
	}
	text := strings.TrimRightFunc(string(data), unicode.IsSpace)
	if text == "" {
		return "", false
	}
	return fmt.Sprintf("[%s] ASCII: %s", ts, text), true
}

func renderBinary(data []byte, ts string) string {
	var b strings.Builder
	writeHex(&b, data)
	return fmt.Sprintf("[%s] BINARY: [%s] (%d bytes)", ts, b.String(), len(data))
}

func renderMixed(data []byte, ts string) string {
	var out strings.Builder
	var run []byte
	flushRun := func() {
		if len(run) == 0 {
			return
		}
		out.WriteByte('[')
		writeHex(&out, run)
		out.WriteByte(']')
		run = run[:0]
	}
	for _, c := range data {
		if c == '\r' || c == '\n' {
			continue
		}
		if IsPrintable(c) {
			flushRun()
			out.WriteByte(c)
		} else {
			run = append(run, c)
		}
	}
	flushRun()
	return fmt.Sprintf("[%s] MIXED: %s", ts, strings.TrimRightFunc(out.String(), unicode.IsSpace))
}

// writeHex writes data as space separated two-digit uppercase hex.
func writeHex(b *strings.Builder, data []byte) {
	for i, c := range data {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(b, "%02X", c)
	}
}
