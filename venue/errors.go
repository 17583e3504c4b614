package venue

import (
	"errors"
	"fmt"
)

// ErrInsufficientData means the venue returned fewer candles than the
// caller's required lookback. Callers skip the evaluation and continue.
var ErrInsufficientData = errors.New("insufficient candle history")

// Kind classifies a venue call failure and decides whether the retry
// wrapper may try again.
type Kind int

const (
	// Transient covers timeouts, connection resets and TLS handshake
	// failures. Retried with backoff.
	Transient Kind = iota + 1

	// Rejected means the venue processed the request and declined it
	// (order rejected, unknown instrument). Never retried.
	Rejected

	// Fatal covers authentication and configuration failures that no
	// amount of retrying will fix. Stops the decision loop.
	Fatal
)

func (k Kind) String() string {
	switch k {
	case Transient:
		return "transient"
	case Rejected:
		return "rejected"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Error wraps a failed venue operation with its classification.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("venue %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Errorf builds a classified venue error.
func Errorf(kind Kind, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// Wrap classifies an existing error. A nil err returns nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf extracts the classification from err. Unclassified errors are
// treated as Transient so an unknown network-layer failure is retried
// rather than silently dropped.
func KindOf(err error) Kind {
	var ve *Error
	if errors.As(err, &ve) {
		return ve.Kind
	}
	return Transient
}

// IsTransient reports whether err may be retried.
func IsTransient(err error) bool {
	if errors.Is(err, ErrInsufficientData) {
		return false
	}
	return KindOf(err) == Transient
}

// IsFatal reports whether err should stop the decision loop.
func IsFatal(err error) bool { return KindOf(err) == Fatal }
