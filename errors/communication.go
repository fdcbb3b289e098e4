package errors

import (
	"fmt"

	"github.com/oasislabs/baqend-connector/log"
)

const (
	defaultCommunicationName   = "CommunicationError"
	defaultCommunicationReason = "Communication failed"
)

// CommunicationError is returned when a response was received but
// its status is not one of the statuses the message accepts
type CommunicationError struct {
	// Method and Path identify the request that was rejected
	Method string
	Path   string

	// Status is the status code of the received response
	Status int

	// Accepted is the list of statuses the message would have accepted
	Accepted []int

	// Headers are the normalized response headers
	Headers map[string]string

	// Name, Reason and Msg are taken from the error body the server
	// sends when available
	Name   string
	Reason string
	Msg    string

	// Data is the optional structured payload of the error body
	Data interface{}
}

// NewCommunicationError builds the error for a rejected response. The
// entity is the decoded response body and is only inspected for the
// well known error fields
func NewCommunicationError(
	method, path string,
	status int,
	accepted []int,
	headers map[string]string,
	entity interface{},
) *CommunicationError {
	state := "Response"
	if status == 0 {
		state = "Request"
	}

	e := &CommunicationError{
		Method:   method,
		Path:     path,
		Status:   status,
		Accepted: accepted,
		Headers:  headers,
		Name:     defaultCommunicationName,
		Reason:   defaultCommunicationReason,
		Msg:      fmt.Sprintf("Handling the %s for %s %s", state, method, path),
	}

	body, ok := entity.(map[string]interface{})
	if !ok {
		return e
	}

	if s, ok := body["message"].(string); ok && len(s) > 0 {
		e.Msg = s
	}
	if s, ok := body["reason"].(string); ok && len(s) > 0 {
		e.Reason = s
	}
	if s, ok := body["className"].(string); ok && len(s) > 0 {
		e.Name = s
	}
	if data, ok := body["data"]; ok {
		e.Data = data
	}

	return e
}

// Error is the implementation of error for CommunicationError
func (e *CommunicationError) Error() string {
	return fmt.Sprintf("%s: %s (status %d, %s)", e.Name, e.Msg, e.Status, e.Reason)
}

// Log implementation of log.Loggable
func (e *CommunicationError) Log(fields log.Fields) {
	fields.Add("err", e.Msg)
	fields.Add("reason", e.Reason)
	fields.Add("status", e.Status)
	fields.Add("method", e.Method)
	fields.Add("path", e.Path)
}
