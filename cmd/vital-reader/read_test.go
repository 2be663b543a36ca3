package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	vital "github.com/luhtfiimanal/go-vital-reader"
)

func TestReadAction_StdinStopsOnCancel(t *testing.T) {
	pr, pw := io.Pipe()
	old := stdin
	stdin = pr
	t.Cleanup(func() { stdin = old; pw.Close() })

	// The writer side stays open: only cancellation can end the session.
	go pw.Write([]byte("HR 72\n"))

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.RunContext(ctx, []string{"vital-reader", "read", "--file", "-"}) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("read did not return after cancel while stdin stayed open")
	}
	require.Contains(t, out.String(), "MIXED: HR 72")
	require.Contains(t, out.String(), "Disconnecting...")
}

func TestReadAction_StdinEOF(t *testing.T) {
	old := stdin
	stdin = strings.NewReader("SpO2 98\r\nPR 60\r\n")
	t.Cleanup(func() { stdin = old })

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out

	require.NoError(t, app.Run([]string{"vital-reader", "read", "--file", "-", "--stats"}))
	require.Contains(t, out.String(), "MIXED: SpO2 98")
	require.Contains(t, out.String(), "MIXED: PR 60")
	require.Contains(t, out.String(), "Total bytes received: 16")
}

func TestCtxSource_SmallBuffers(t *testing.T) {
	s := newCtxSource(context.Background(), strings.NewReader("abcdef"))

	var got []byte
	p := make([]byte, 4)
	for {
		n, err := s.Read(p)
		got = append(got, p[:n]...)
		if err != nil {
			require.ErrorIs(t, err, io.EOF)
			break
		}
	}
	require.Equal(t, "abcdef", string(got))
}

func TestCtxSource_CancelledReturnsErrClosed(t *testing.T) {
	pr, pw := io.Pipe()
	t.Cleanup(func() { pw.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	s := newCtxSource(ctx, pr)
	cancel()

	n, err := s.Read(make([]byte, 8))
	require.Zero(t, n)
	require.ErrorIs(t, err, vital.ErrClosed)
}
