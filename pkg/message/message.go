// Package message provides implementations of the apicall.MessageSink interface.
package message

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// LogSink writes messages to the logger.
//
// Loading state is counted, so nested API calls produce one "loading" and one "loading done" line.
type LogSink struct {
	logger zerolog.Logger
	depth  atomic.Int64
}

func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Loading() {
	if s.depth.Add(1) == 1 {
		s.logger.Debug().Msg("loading")
	}
}

func (s *LogSink) LoadingDone() {
	for {
		depth := s.depth.Load()
		if depth == 0 {
			s.logger.Warn().Msg("loading done without loading")
			return
		}
		if s.depth.CompareAndSwap(depth, depth-1) {
			if depth == 1 {
				s.logger.Debug().Msg("loading done")
			}
			return
		}
	}
}

// IsLoading returns true if there is at least one unfinished Loading call.
func (s *LogSink) IsLoading() bool {
	return s.depth.Load() > 0
}

func (s *LogSink) Info(text string) {
	s.logger.Info().Msg(text)
}

func (s *LogSink) Error(text string) {
	s.logger.Error().Msg(text)
}

// Kind of the recorded Event.
type Kind string

const (
	KindLoading     Kind = "loading"
	KindLoadingDone Kind = "loading_done"
	KindInfo        Kind = "info"
	KindError       Kind = "error"
)

// Event is one call of the sink recorded by the Recorder.
type Event struct {
	Kind Kind
	Text string
}

// Recorder records all calls in order, it is intended for tests.
type Recorder struct {
	lock   sync.Mutex
	events []Event
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Loading() {
	r.record(Event{Kind: KindLoading})
}

func (r *Recorder) LoadingDone() {
	r.record(Event{Kind: KindLoadingDone})
}

func (r *Recorder) Info(text string) {
	r.record(Event{Kind: KindInfo, Text: text})
}

func (r *Recorder) Error(text string) {
	r.record(Event{Kind: KindError, Text: text})
}

// Events returns a copy of all recorded events.
func (r *Recorder) Events() []Event {
	r.lock.Lock()
	defer r.lock.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Count returns the number of recorded events of the kind.
func (r *Recorder) Count(kind Kind) int {
	r.lock.Lock()
	defer r.lock.Unlock()
	count := 0
	for _, e := range r.events {
		if e.Kind == kind {
			count++
		}
	}
	return count
}

// Texts returns texts of the recorded events of the kind.
func (r *Recorder) Texts(kind Kind) []string {
	r.lock.Lock()
	defer r.lock.Unlock()
	var out []string
	for _, e := range r.events {
		if e.Kind == kind {
			out = append(out, e.Text)
		}
	}
	return out
}

func (r *Recorder) record(e Event) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.events = append(r.events, e)
}
