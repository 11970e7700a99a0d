// Package notice delivers the transient success and error messages shown to
// the user after board, form and profile actions.
package notice

import (
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

type Notice struct {
	Kind    Kind
	Message string
}

// Sink receives notices. Implementations must be safe for concurrent use.
type Sink interface {
	Success(msg string)
	Error(msg string)
}

// ZapSink logs notices through a zap logger.
type ZapSink struct {
	log *zap.Logger
}

func NewZapSink(log *zap.Logger) *ZapSink {
	return &ZapSink{log: log.Named("notice")}
}

func (s *ZapSink) Success(msg string) { s.log.Info(msg) }
func (s *ZapSink) Error(msg string)   { s.log.Warn(msg) }

// WriterSink prints one line per notice, used by the CLI.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

func (s *WriterSink) Success(msg string) { s.write("ok", msg) }
func (s *WriterSink) Error(msg string)   { s.write("error", msg) }

func (s *WriterSink) write(prefix, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "[%s] %s\n", prefix, msg)
}

// Recorder keeps every notice in order.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *Recorder) Success(msg string) { r.add(KindSuccess, msg) }
func (r *Recorder) Error(msg string)   { r.add(KindError, msg) }

func (r *Recorder) add(k Kind, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, Notice{Kind: k, Message: msg})
}

// Notices returns a copy of what has been recorded so far.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

// Last returns the most recent notice, if any.
func (r *Recorder) Last() (Notice, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return Notice{}, false
	}
	return r.notices[len(r.notices)-1], true
}
