package connector

import (
	"context"

	"github.com/oasislabs/baqend-connector/message"
)

// ReceiveFunc is called by a transport with the raw response of
// an exchange
type ReceiveFunc func(res *message.Response)

// Transport carries out the exchanges of a connector in a specific
// execution environment
type Transport interface {
	// Send dispatches the prepared request of msg. The transport calls
	// receive exactly once with the raw response, or never if the
	// exchange is superseded. An error is returned only if the request
	// could not be dispatched.
	Send(ctx context.Context, msg *message.Message, receive ReceiveFunc) error

	// ToFormat converts the logical request entity of msg into its wire
	// representation
	ToFormat(msg *message.Message) error

	// FromFormat decodes the raw entity of res into the representation
	// of type t
	FromFormat(msg *message.Message, res *message.Response, t message.EntityType) (interface{}, error)

	// SupportsRevalidation returns true if the environment revalidates
	// cached responses when asked to with cache-control alone
	SupportsRevalidation() bool
}

// TransportFactory creates the transports of a kind
type TransportFactory interface {
	// Name of the transport kind, for logging
	Name() string

	// IsUsable returns true if the transport can serve the connection
	IsUsable(host string, port int, secure bool, basePath string) bool

	// New creates a transport for conn
	New(conn Connection) (Transport, error)
}
