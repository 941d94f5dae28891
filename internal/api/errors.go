package api

import (
	"errors"
	"fmt"
)

// Kind classifies a failed API call.
type Kind string

const (
	// KindRequestFailed: the server answered but the envelope reports failure.
	KindRequestFailed Kind = "REQUEST_FAILED"
	// KindServer: the server answered with a non-2xx status.
	KindServer Kind = "SERVER"
	// KindNetwork: the request went out but no response came back.
	KindNetwork Kind = "NETWORK"
	// KindTimeout: no response within the client deadline.
	KindTimeout Kind = "TIMEOUT"
	// KindClient: the request could not be built or sent.
	KindClient Kind = "CLIENT"
	// KindDecode: a response arrived but its body is not a valid envelope.
	KindDecode Kind = "DECODE"
	// KindCanceled: the caller gave up before a response arrived.
	KindCanceled Kind = "CANCELED"
)

// Failure categories logged by the transport.
const (
	CategoryServer  = "server"
	CategoryNetwork = "network"
	CategoryClient  = "client"
)

// Category maps a kind onto one of the three logged failure categories.
func (k Kind) Category() string {
	switch k {
	case KindServer, KindRequestFailed, KindDecode:
		return CategoryServer
	case KindNetwork, KindTimeout:
		return CategoryNetwork
	default:
		return CategoryClient
	}
}

// Error is returned by every layer of the API client.
type Error struct {
	Kind Kind
	// Status is the HTTP status code, zero when no response arrived.
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds an API error without a cause.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WrapError classifies an existing error.
func WrapError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// IsKind reports whether err is an API error of the given kind.
func IsKind(err error, kind Kind) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind == kind
	}
	return false
}

// KindOf returns the kind of err, or an empty Kind for foreign errors.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}
