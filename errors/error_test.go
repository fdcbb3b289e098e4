package errors

import (
	stderr "errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOfWrapsPlainError(t *testing.T) {
	cause := stderr.New("connection refused")

	err := Of(cause)

	assert.Equal(t, defaultPersistentMessage, err.Msg)
	assert.Equal(t, cause, err.Cause)
	assert.True(t, stderr.Is(err, cause))
}

func TestOfDoesNotNest(t *testing.T) {
	err := Of(stderr.New("connection refused"))

	assert.True(t, err == Of(err))
	assert.True(t, err == Of(Of(err)))
}

func TestOfNil(t *testing.T) {
	assert.Nil(t, Of(nil))
}

func TestOfCommunicationErrorKeepsMessage(t *testing.T) {
	cerr := NewCommunicationError("GET", "/db/Person/1", 404, []int{200}, nil,
		map[string]interface{}{
			"message":   "Object /db/Person/1 not found",
			"reason":    "Object not found",
			"className": "baqend.error.ObjectNotFound",
		})

	err := Of(cerr)

	assert.Equal(t, "Object /db/Person/1 not found", err.Msg)

	var target *CommunicationError
	assert.True(t, stderr.As(err, &target))
	assert.Equal(t, 404, target.Status)
	assert.Equal(t, "Object not found", target.Reason)
	assert.Equal(t, "baqend.error.ObjectNotFound", target.Name)
}

func TestCommunicationErrorDefaults(t *testing.T) {
	cerr := NewCommunicationError("PUT", "/db/Person/1", 0, []int{200}, nil, "not json")

	assert.Equal(t, "Handling the Request for PUT /db/Person/1", cerr.Msg)
	assert.Equal(t, defaultCommunicationReason, cerr.Reason)
	assert.Equal(t, defaultCommunicationName, cerr.Name)
}

func TestErrorHasCode(t *testing.T) {
	err := New(ErrNoUsableTransport, nil)

	assert.True(t, HasCode(err, ErrNoUsableTransport))
	assert.False(t, HasCode(err, ErrInvalidConnectionURI))
	assert.Equal(t, NotImplemented, err.ErrorCode.Category())
}

func TestPersistentErrorDefaultMessage(t *testing.T) {
	err := NewPersistentError("", nil)

	assert.Equal(t, defaultPersistentMessage, err.Error())
}

func TestHasCodeWrapped(t *testing.T) {
	err := Of(New(ErrTransportFailure, stderr.New("dial tcp: refused")))

	assert.True(t, HasCode(err, ErrTransportFailure))
	assert.False(t, HasCode(stderr.New("plain"), ErrTransportFailure))
}
