package stream

import (
	"context"
	"io"
)

// Source is a pull-based producer of string fragments.
//
// Contract:
// - Next returns io.EOF when the source is exhausted.
// - Context: Next must honor cancellation/deadlines.
// - A Source is consumed once; it is not restartable.
type Source interface {
	Next(ctx context.Context) (string, error)
}

// Canceler is implemented by sources that can release upstream resources
// early. The processor invokes Cancel when a consumer stops before EOF and
// when an error terminates the stream.
type Canceler interface {
	Cancel(ctx context.Context) error
}

// cancelSource invokes the source's cancel hook if it has one.
func cancelSource(ctx context.Context, src Source) {
	if c, ok := src.(Canceler); ok {
		_ = c.Cancel(ctx)
	}
}

// sliceSource yields a fixed set of fragments.
type sliceSource struct {
	values []string
	pos    int
}

// FromSlice creates a Source over the given fragments.
func FromSlice(values ...string) Source {
	return &sliceSource{values: values}
}

func (s *sliceSource) Next(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.pos >= len(s.values) {
		return "", io.EOF
	}
	v := s.values[s.pos]
	s.pos++
	return v, nil
}

// chanSource adapts a receive channel to a Source. The channel being closed
// reads as EOF.
type chanSource struct {
	ch <-chan string
}

// FromChannel creates a Source draining the given channel.
func FromChannel(ch <-chan string) Source {
	return &chanSource{ch: ch}
}

func (s *chanSource) Next(ctx context.Context) (string, error) {
	select {
	case v, ok := <-s.ch:
		if !ok {
			return "", io.EOF
		}
		return v, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
