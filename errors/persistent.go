package errors

import (
	"github.com/oasislabs/baqend-connector/log"
)

const defaultPersistentMessage = "An unexpected persistent error occurred."

// PersistentError is the uniform error every failed exchange is
// reported with. The cause keeps the original failure, which can be
// a transport error, a decoding error or a *CommunicationError
type PersistentError struct {
	Msg   string
	Cause error
}

// NewPersistentError creates a new PersistentError. An empty message
// is replaced by a generic one
func NewPersistentError(msg string, cause error) *PersistentError {
	if len(msg) == 0 {
		msg = defaultPersistentMessage
	}

	return &PersistentError{Msg: msg, Cause: cause}
}

// Of wraps err into a PersistentError unless it already is one, so
// that repeated wrapping never nests
func Of(err error) *PersistentError {
	if err == nil {
		return nil
	}

	if perr, ok := err.(*PersistentError); ok {
		return perr
	}

	if cerr, ok := err.(*CommunicationError); ok {
		return NewPersistentError(cerr.Msg, cerr)
	}

	return NewPersistentError("", err)
}

// Error is the implementation of error for PersistentError
func (e *PersistentError) Error() string {
	if e.Cause == nil {
		return e.Msg
	}

	return e.Msg + " Caused by: " + e.Cause.Error()
}

// Unwrap returns the cause of the error
func (e *PersistentError) Unwrap() error {
	return e.Cause
}

// Log implementation of log.Loggable
func (e *PersistentError) Log(fields log.Fields) {
	if loggable, ok := e.Cause.(log.Loggable); ok {
		loggable.Log(fields)
	} else if e.Cause != nil {
		fields.Add("cause", e.Cause.Error())
	}

	fields.Add("err", e.Msg)
}
