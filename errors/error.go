package errors

import (
	stderr "errors"
	"fmt"

	"github.com/oasislabs/baqend-connector/log"
)

type Err interface {
	Error() string
	log.Loggable
}

var (
	ErrTransportFailure = ErrorCode{
		category: InternalError,
		code:     1001,
		desc:     "The transport failed to dispatch the request.",
	}

	ErrInvalidResponse = ErrorCode{
		category: ProtocolError,
		code:     1002,
		desc:     "The response body could not be decoded to the expected type.",
	}

	ErrPrometheusPushError = ErrorCode{
		category: InternalError,
		code:     1003,
		desc:     "Failed to push metrics to the prometheus push gateway.",
	}

	ErrOAuthChannel = ErrorCode{
		category: InternalError,
		code:     1004,
		desc:     "The OAuth completion channel failed.",
	}

	ErrTokenStorage = ErrorCode{
		category: InternalError,
		code:     1005,
		desc:     "The token storage failed to persist the token.",
	}

	ErrInvalidConnectionURI = ErrorCode{
		category: InputError,
		code:     2001,
		desc:     "The connection uri is not valid.",
	}

	ErrHostNotSet = ErrorCode{
		category: InputError,
		code:     2002,
		desc:     "A host must be provided when there is no default location.",
	}

	ErrUnsupportedFormat = ErrorCode{
		category: InputError,
		code:     2003,
		desc:     "The request entity format is not supported by the transport.",
	}

	ErrInvalidHeaderValue = ErrorCode{
		category: InputError,
		code:     2004,
		desc:     "The header value could not be serialized.",
	}

	ErrMessageAlreadySent = ErrorCode{
		category: StateConflict,
		code:     4001,
		desc:     "The message has already been sent and cannot be sent again.",
	}

	ErrOAuthSuperseded = ErrorCode{
		category: StateConflict,
		code:     4002,
		desc:     "A new OAuth request was sent.",
	}

	ErrNoUsableTransport = ErrorCode{
		category: NotImplemented,
		code:     5001,
		desc:     "No connector is usable for the requested connection.",
	}
)

// Category defines error categories that logically group them. This classification
// may be useful when mapping error categories together to a specific reaction
// of the caller
type Category string

const (
	// InternalError refers to errors related to programming errors or
	// failures in the normal execution of an exchange, such as failing
	// to reach the remote service
	InternalError Category = "InternalError"

	// InputError refers to errors that are returned because the input
	// provided to build or create something is incorrect, malformed or could
	// not be parsed
	InputError Category = "InputError"

	// StateConflict refers to errors that occur because of an attempt
	// to modify the state of an object breaking the defined rules
	StateConflict Category = "StateConflict"

	// ProtocolError refers to responses that were received but that do
	// not comply with what the exchange expected
	ProtocolError Category = "ProtocolError"

	// NotImplemented refers to errors in which the environment does not
	// provide what is needed to carry out an action
	NotImplemented Category = "NotImplemented"
)

// Error is the implementation of an error for this package. It contains
// an instance of an ErrorCode which provides information about the error
// and a cause which might be nil if there's no underlying cause for
// the error
type Error struct {
	Cause     error
	ErrorCode ErrorCode
}

// Error is the implementation of error for Error
func (e Error) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("[%d] %s: %s",
			e.ErrorCode.Code(), e.ErrorCode.Category(), e.ErrorCode.Desc())
	}

	return fmt.Sprintf("[%d] %s: %s caused by %s",
		e.ErrorCode.Code(), e.ErrorCode.Category(), e.ErrorCode.Desc(), e.Cause)
}

// Unwrap returns the cause of the error
func (e Error) Unwrap() error {
	return e.Cause
}

// Log implementation of log.Loggable
func (e Error) Log(fields log.Fields) {
	fields.Add("err", e.ErrorCode.Desc())
	fields.Add("errorCode", e.ErrorCode.Code())

	if e.Cause != nil {
		fields.Add("cause", e.Cause.Error())
	}
}

// New creates a new instance of an error
func New(errorCode ErrorCode, cause error) Error {
	return Error{Cause: cause, ErrorCode: errorCode}
}

// ErrorCode holds the necessary information to uniquely identify an error
type ErrorCode struct {
	// category is the type of the error
	category Category

	// code is a unique identifier for the error that can be used to identify
	// the particular type of error encountered
	code int

	// desc is a human readable description of the error that occurred
	desc string
}

// Category getter for category
func (e ErrorCode) Category() Category {
	return e.category
}

// Code getter for code
func (e ErrorCode) Code() int {
	return e.code
}

// Desc getter for desc
func (e ErrorCode) Desc() string {
	return e.desc
}

// HasCode returns true if err is or wraps an Error with the provided code
func HasCode(err error, code ErrorCode) bool {
	var e Error
	if !stderr.As(err, &e) {
		return false
	}

	return e.ErrorCode.Code() == code.Code()
}
