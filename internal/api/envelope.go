package api

import (
	"encoding/json"
	"fmt"
)

// DefaultFailureMessage is used when a failed envelope carries no message.
const DefaultFailureMessage = "API request failed"

// Envelope is the wrapper every backend reply uses, whatever the HTTP status.
// IsSuccess is authoritative: a 2xx status with IsSuccess false is a failure.
type Envelope[T any] struct {
	Message   string `json:"message"`
	IsSuccess bool   `json:"isSuccess"`
	Data      *T     `json:"data"`
}

// Err returns a RequestFailed error when the envelope reports failure.
// Data is not looked at.
func (e Envelope[T]) Err() error {
	if e.IsSuccess {
		return nil
	}
	msg := e.Message
	if msg == "" {
		msg = DefaultFailureMessage
	}
	return NewError(KindRequestFailed, msg)
}

// Unwrap returns the payload of a successful envelope. A failed envelope, or a
// successful one without data, yields a RequestFailed error.
func Unwrap[T any](e Envelope[T]) (T, error) {
	var zero T
	if err := e.Err(); err != nil {
		return zero, err
	}
	if e.Data == nil {
		msg := e.Message
		if msg == "" {
			msg = DefaultFailureMessage
		}
		return zero, NewError(KindRequestFailed, msg)
	}
	return *e.Data, nil
}

// DecodeEnvelope parses a raw response body into an envelope.
func DecodeEnvelope[T any](resp *Response) (Envelope[T], error) {
	var env Envelope[T]
	if resp == nil || len(resp.Body) == 0 {
		return env, &Error{Kind: KindDecode, Message: "empty response body"}
	}
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		return env, &Error{
			Kind:    KindDecode,
			Status:  resp.Status,
			Message: fmt.Sprintf("decode envelope (status %d)", resp.Status),
			Err:     err,
		}
	}
	return env, nil
}

// Decode parses resp and unwraps its payload.
func Decode[T any](resp *Response) (T, error) {
	env, err := DecodeEnvelope[T](resp)
	if err != nil {
		var zero T
		return zero, err
	}
	return Unwrap(env)
}

// Check parses resp and only verifies the success flag, discarding data.
func Check(resp *Response) error {
	env, err := DecodeEnvelope[json.RawMessage](resp)
	if err != nil {
		return err
	}
	return env.Err()
}
