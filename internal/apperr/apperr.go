// Package apperr defines the console error taxonomy shared by the resource
// client, the cache and the controllers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error by where it originated.
type Kind string

const (
	// Transport is a network failure: the request never produced a response.
	Transport Kind = "transport"
	// HTTP is a non-2xx response from the REST API.
	HTTP Kind = "http"
	// Validation is a client-side constraint failure; no request was sent.
	Validation Kind = "validation"
	// Forbidden is a role-gate rejection; no request was sent.
	Forbidden Kind = "forbidden"
	// NotFound is a missing dependent value, such as an empty route id.
	NotFound Kind = "not_found"
	// Decode is a response body that does not match the declared shape.
	Decode Kind = "decode"
)

// GenericMessage is shown when the server gave no usable message.
const GenericMessage = "Something went wrong, please try again."

// Error carries an error kind together with the HTTP status and the
// server-provided message when there is one.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Status != 0 && e.Message != "":
		return fmt.Sprintf("%s %d: %s", e.Kind, e.Status, e.Message)
	case e.Status != 0:
		return fmt.Sprintf("%s %d", e.Kind, e.Status)
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// TransportErr wraps a network failure.
func TransportErr(err error) *Error {
	return &Error{Kind: Transport, Err: err}
}

// HTTPErr builds an error for a non-2xx response.
func HTTPErr(status int, message string) *Error {
	return &Error{Kind: HTTP, Status: status, Message: message}
}

// ValidationErr builds a client-side validation error.
func ValidationErr(message string, fields map[string]string) *Error {
	return &Error{Kind: Validation, Message: message, Fields: fields}
}

// ForbiddenErr builds a role-gate rejection.
func ForbiddenErr(message string) *Error {
	return &Error{Kind: Forbidden, Message: message}
}

// NotFoundErr builds a not-found error for a missing dependent value.
func NotFoundErr(message string) *Error {
	return &Error{Kind: NotFound, Message: message}
}

// DecodeErr wraps a response decoding failure.
func DecodeErr(err error) *Error {
	return &Error{Kind: Decode, Err: err}
}

// As extracts an *Error from err.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	ae, ok := As(err)
	return ok && ae.Kind == kind
}

// HTTPStatus maps an error onto the status the console answers with.
func HTTPStatus(err error) int {
	ae, ok := As(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch ae.Kind {
	case Validation:
		return http.StatusBadRequest
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case HTTP:
		if ae.Status >= 400 && ae.Status < 600 {
			return ae.Status
		}
		return http.StatusBadGateway
	case Transport, Decode:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// PublicMessage returns the server message when present, else a generic one.
func PublicMessage(err error) string {
	if ae, ok := As(err); ok && ae.Message != "" {
		return ae.Message
	}
	return GenericMessage
}
