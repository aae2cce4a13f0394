package backend

import (
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrChannelClosed is returned by a Sink that no longer accepts events
var ErrChannelClosed = errors.New("event channel closed")

// Sink receives worker events
type Sink interface {
	Send(event Event) error
}

// ChannelSink delivers events over a buffered channel
type ChannelSink struct {
	events chan Event
	done   chan struct{}
	once   sync.Once
}

var _ Sink = (*ChannelSink)(nil)

// NewChannelSink creates a sink buffering up to size events
func NewChannelSink(size int) *ChannelSink {
	return &ChannelSink{
		events: make(chan Event, max(size, 0)),
		done:   make(chan struct{}),
	}
}

// Events is the receiving side of the sink. It is never closed; receivers
// should also watch Done.
func (s *ChannelSink) Events() <-chan Event {
	return s.events
}

// Done is closed by Close
func (s *ChannelSink) Done() <-chan struct{} {
	return s.done
}

// Send blocks until the event is buffered or the sink is closed
func (s *ChannelSink) Send(event Event) error {
	select {
	case <-s.done:
		return ErrChannelClosed
	default:
	}

	select {
	case s.events <- event:
		return nil
	case <-s.done:
		return ErrChannelClosed
	}
}

// Close makes every pending and future Send fail with ErrChannelClosed
func (s *ChannelSink) Close() {
	s.once.Do(func() { close(s.done) })
}

// ProgramSink forwards events to a bubbletea program as messages
type ProgramSink struct {
	program *tea.Program
	done    chan struct{}
	once    sync.Once
}

var _ Sink = (*ProgramSink)(nil)

// NewProgramSink creates a sink for program
func NewProgramSink(program *tea.Program) *ProgramSink {
	return &ProgramSink{program: program, done: make(chan struct{})}
}

// Send delivers event to the program. Program.Send drops messages once the
// program has exited.
func (s *ProgramSink) Send(event Event) error {
	select {
	case <-s.done:
		return ErrChannelClosed
	default:
	}
	s.program.Send(event)
	return nil
}

// Close marks the program as gone
func (s *ProgramSink) Close() {
	s.once.Do(func() { close(s.done) })
}
