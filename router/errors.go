package router

import "errors"

var (
	// ErrUnknownTarget is returned when a request names a target that was
	// never registered. It is surfaced immediately, never retried.
	ErrUnknownTarget = errors.New("router: unknown target")

	// ErrTargetsExhausted is returned when the requested target and every
	// fallback exhausted their retries.
	ErrTargetsExhausted = errors.New("router: all targets exhausted")

	// ErrNoCallFunc is returned by New when no backend call was injected.
	ErrNoCallFunc = errors.New("router: call function is required")

	// ErrNoPrimary is returned when a request omits the target and no
	// primary has been registered.
	ErrNoPrimary = errors.New("router: no primary target registered")

	// ErrClosed is returned for requests submitted after Close.
	ErrClosed = errors.New("router: closed")
)
