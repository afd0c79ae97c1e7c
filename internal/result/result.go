// Package result holds the uniform envelope every service operation returns
// and the typed errors that map onto it.
package result

import (
	"errors"
	"net/http"
)

// Kind classifies a failed operation.
type Kind int

const (
	KindUnexpected Kind = iota
	KindMalformed
	KindConflict
	KindNotFound
)

// MsgSomethingWentWrong is reported for malformed identifiers and
// unexpected failures so callers never learn internal details.
const MsgSomethingWentWrong = "Something went wrong"

// Error is a failure that carries its own user-facing message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Status returns the HTTP status for the error kind, or 0 when none is defined.
func (e *Error) Status() int {
	switch e.Kind {
	case KindMalformed, KindConflict:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return 0
	}
}

func Malformed(msg string) *Error {
	return &Error{Kind: KindMalformed, Message: msg}
}

func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// MalformedID is returned when an identifier fails the format check.
func MalformedID() *Error {
	return Malformed(MsgSomethingWentWrong)
}

// Data is the payload of a result: "playlists", "playlist", "message", ...
type Data map[string]any

// Result is the envelope handed back to the HTTP layer.
type Result struct {
	Success bool `json:"success"`
	Data    Data `json:"data"`
	Status  int  `json:"status,omitempty"`
}

func OK(data Data) Result {
	if data == nil {
		data = Data{}
	}
	return Result{Success: true, Data: data}
}

// Fail converts err into a failed result. Errors that are not *Error are
// treated as unexpected and get a generic message.
func Fail(err error) Result {
	var re *Error
	if errors.As(err, &re) {
		return Result{
			Success: false,
			Data:    Data{"message": re.Message},
			Status:  re.Status(),
		}
	}
	return Result{
		Success: false,
		Data:    Data{"message": MsgSomethingWentWrong},
	}
}

// Message returns the failure message, if any.
func (r Result) Message() string {
	msg, _ := r.Data["message"].(string)
	return msg
}

// IsUnexpected reports whether r is a failure without a defined status.
func (r Result) IsUnexpected() bool {
	return !r.Success && r.Status == 0
}
