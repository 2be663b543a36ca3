package main

import (
	"context"
	"io"
	"os"
	"sync"

	vital "github.com/luhtfiimanal/go-vital-reader"
)

// stdin is the replay source for --file -.
var stdin io.Reader = os.Stdin

type readResult struct {
	data []byte
	err  error
}

// ctxSource makes a blocking reader (stdin, a pipe) give up when ctx is done.
// Reads happen on a pump goroutine; once ctx is done Read returns
// vital.ErrClosed and the pump exits after its current read.
type ctxSource struct {
	ctx     context.Context
	src     io.Reader
	results chan readResult
	once    sync.Once
	pending []byte
	err     error
}

func newCtxSource(ctx context.Context, src io.Reader) *ctxSource {
	return &ctxSource{ctx: ctx, src: src, results: make(chan readResult)}
}

func (s *ctxSource) Read(p []byte) (int, error) {
	if len(s.pending) > 0 {
		n := copy(p, s.pending)
		s.pending = s.pending[n:]
		return n, nil
	}
	if s.err != nil {
		return 0, s.err
	}
	s.once.Do(func() { go s.pump() })

	select {
	case <-s.ctx.Done():
		return 0, vital.ErrClosed
	case r := <-s.results:
		n := copy(p, r.data)
		s.pending = r.data[n:]
		if len(s.pending) > 0 {
			s.err = r.err
			return n, nil
		}
		return n, r.err
	}
}

func (s *ctxSource) pump() {
	for {
		buf := make([]byte, 4096)
		n, err := s.src.Read(buf)
		select {
		case s.results <- readResult{data: buf[:n], err: err}:
		case <-s.ctx.Done():
			return
		}
		if err != nil {
			return
		}
	}
}
