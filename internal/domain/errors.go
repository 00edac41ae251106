package domain

import (
	"context"
	"errors"
	"fmt"
)

// Error kinds reported in metrics labels and failed stream results.
const (
	KindTransport = "transport_error"
	KindRemote    = "remote_error"
	KindParse     = "parse_error"
	KindNoResult  = "no_result"
	KindMalformed = "malformed"
	KindUnknown   = "unknown"
)

// TransportError reports that the request never produced an HTTP response:
// connection refused, DNS failure, timeout or a cancelled context.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("geocode transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Timeout reports whether the failure was a deadline rather than a refused
// or broken connection.
func (e *TransportError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var t interface{ Timeout() bool }
	return errors.As(e.Err, &t) && t.Timeout()
}

// RemoteError reports a non-2xx status from the geocoding service. Body holds
// at most a short prefix of the response and is never parsed.
type RemoteError struct {
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("geocode API error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("geocode API error: status %d: %s", e.StatusCode, e.Body)
}

// ParseError reports a response body that is not a JSON array.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("decode geocode response: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// NoResultError reports an empty result array for Location.
type NoResultError struct {
	Location string
}

func (e *NoResultError) Error() string {
	return fmt.Sprintf("no geocoding results for %q", e.Location)
}

// MalformedResultError reports a first result whose Field is missing, has the
// wrong JSON type, or holds an out-of-range value.
type MalformedResultError struct {
	Field  string
	Reason string
	Err    error
}

func (e *MalformedResultError) Error() string {
	msg := fmt.Sprintf("malformed geocode result: field %q %s", e.Field, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedResultError) Unwrap() error { return e.Err }

// ErrorKind classifies err into one of the Kind* constants.
func ErrorKind(err error) string {
	var (
		transport *TransportError
		remote    *RemoteError
		parse     *ParseError
		noResult  *NoResultError
		malformed *MalformedResultError
	)
	switch {
	case errors.As(err, &noResult):
		return KindNoResult
	case errors.As(err, &malformed):
		return KindMalformed
	case errors.As(err, &parse):
		return KindParse
	case errors.As(err, &remote):
		return KindRemote
	case errors.As(err, &transport):
		return KindTransport
	default:
		return KindUnknown
	}
}
