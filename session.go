package vital

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
)

// TimestampLayout is the default per-chunk timestamp format.
const TimestampLayout = "2006-01-02 15:04:05.000"

const readBufferSize = 1024

// Source is a byte source. A Read returning 0, nil means no data was
// available yet; io.EOF ends the session cleanly (replay files, stdin);
// any other error, including ErrDisconnected, is fatal.
type Source interface {
	Read(p []byte) (int, error)
}

// Session drives one device connection: it reads chunks from a Source,
// reassembles them into lines and hands each rendered line to the sink.
// A Session owns its Classifier and Reassembler and is not safe for
// concurrent use; monitor several devices with one Session each.
type Session struct {
	src        Source
	classifier *Classifier
	reasm      *Reassembler
	stats      *Stats
	sink       func(string)
	clock      func() string
	logger     *zap.Logger
	name       string
}

// Option configures a Session.
type Option func(*Session)

// WithSink sets the function receiving each rendered line.
func WithSink(sink func(string)) Option {
	return func(s *Session) { s.sink = sink }
}

// WithClock sets the function producing the timestamp for each chunk.
func WithClock(clock func() string) Option {
	return func(s *Session) { s.clock = clock }
}

// WithLogger sets the session logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithName labels the session in log records, usually with the device path.
func WithName(name string) Option {
	return func(s *Session) { s.name = name }
}

// NewSession returns a session reading from src.
func NewSession(src Source, opts ...Option) *Session {
	c := NewClassifier()
	s := &Session{
		src:        src,
		classifier: c,
		reasm:      NewReassembler(c),
		stats:      NewStats(),
		sink:       func(string) {},
		clock:      func() string { return time.Now().Format(TimestampLayout) },
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run reads until ctx is done, the source returns io.EOF, or a read fails.
// Cancellation and EOF are not errors.
func (s *Session) Run(ctx context.Context) error {
	s.logger.Info("session started", zap.String("device", s.name))
	defer func() {
		s.logger.Info("session ended",
			zap.String("device", s.name),
			zap.Uint64("bytes", s.stats.TotalBytes()),
			zap.Duration("elapsed", s.stats.Elapsed()),
			zap.Stringer("verdict", s.classifier.Classify()),
		)
	}()

	buf := make([]byte, readBufferSize)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		n, err := s.src.Read(buf)
		if n > 0 {
			s.Process(buf[:n], s.clock())
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			if ctx.Err() != nil && (errors.Is(err, ErrClosed) || errors.Is(err, os.ErrClosed)) {
				return nil
			}
			s.logger.Error("read failed", zap.String("device", s.name), zap.Error(err))
			return fmt.Errorf("read error: %w", err)
		}
	}
}

// Process feeds one chunk received at ts and emits its rendered lines.
func (s *Session) Process(chunk []byte, ts string) {
	s.stats.AddBytes(len(chunk))
	before := s.classifier.Classify()
	for _, line := range s.reasm.Feed(chunk, ts) {
		if last := line.Data[len(line.Data)-1]; last != '\r' && last != '\n' {
			s.logger.Debug("forced flush of unterminated line", zap.Int("length", len(line.Data)))
		}
		if out, ok := RenderLine(line); ok {
			s.sink(out)
		}
	}
	if after := s.classifier.Classify(); after != before {
		s.logger.Info("stream classification changed",
			zap.Stringer("from", before),
			zap.Stringer("to", after),
		)
	}
}

// Stats returns the session byte counter.
func (s *Session) Stats() *Stats {
	return s.stats
}

// Snapshot returns the current classifier statistics.
func (s *Session) Snapshot() Snapshot {
	return s.classifier.Snapshot()
}

// WriteReport writes the end-of-session statistics to w.
func (s *Session) WriteReport(w io.Writer) error {
	return WriteReport(w, s.stats, s.classifier.Snapshot())
}
