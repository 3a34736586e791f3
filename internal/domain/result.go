package domain

import (
	"encoding/json"
	"fmt"
)

type FailureKind string

const (
	FailureUnauthorized FailureKind = "unauthorized"
	FailureForbidden    FailureKind = "forbidden"
	FailureNotFound     FailureKind = "not_found"
	FailureServer       FailureKind = "server_fault"
	FailureTransport    FailureKind = "transport_fault"
	FailureApplication  FailureKind = "application_fault"
)

func (k FailureKind) sentinel() error {
	switch k {
	case FailureUnauthorized:
		return ErrUnauthorized
	case FailureForbidden:
		return ErrForbidden
	case FailureNotFound:
		return ErrNotFound
	case FailureServer:
		return ErrServerFault
	case FailureTransport:
		return ErrTransportFault
	default:
		return ErrApplicationFault
	}
}

// Failure is the failed arm of a Result. Message is meant for display.
type Failure struct {
	Kind    FailureKind
	Message string
}

func (f *Failure) Error() string {
	return f.Message
}

// Unwrap lets callers match a failure with errors.Is(err, ErrForbidden) and friends.
func (f *Failure) Unwrap() error {
	return f.Kind.sentinel()
}

// Result is the classified outcome of one pipeline call: either a success
// carrying the envelope data or a Failure. The zero value is a success with
// no data.
type Result struct {
	data    json.RawMessage
	failure *Failure
}

func Success(data json.RawMessage) Result {
	return Result{data: data}
}

func Fail(kind FailureKind, message string) Result {
	return Result{failure: &Failure{Kind: kind, Message: message}}
}

func (r Result) OK() bool {
	return r.failure == nil
}

func (r Result) Data() json.RawMessage {
	return r.data
}

func (r Result) Failure() *Failure {
	return r.failure
}

// Kind returns the failure kind, or "" for a success.
func (r Result) Kind() FailureKind {
	if r.failure == nil {
		return ""
	}
	return r.failure.Kind
}

func (r Result) Err() error {
	if r.failure == nil {
		return nil
	}
	return r.failure
}

// Decode unmarshals the success data into v. A failed result returns its
// Failure unchanged.
func (r Result) Decode(v any) error {
	if r.failure != nil {
		return r.failure
	}
	if len(r.data) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.data, v); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}

func (r Result) String() string {
	if r.failure == nil {
		return "success"
	}
	return fmt.Sprintf("%s: %s", r.failure.Kind, r.failure.Message)
}
