package connectortest

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/oasislabs/baqend-connector/connector"
	"github.com/oasislabs/baqend-connector/message"
)

// Transport is a scriptable transport. It records every message it is
// asked to send and answers with Handler.
type Transport struct {
	mu   sync.Mutex
	sent []message.Request

	// Handler produces the raw response for a message. When it returns
	// nil the receive callback is never called
	Handler func(msg *message.Message) *message.Response

	// SendErr is returned by Send when set
	SendErr error

	// Revalidation is returned by SupportsRevalidation
	Revalidation bool
}

// Sent returns copies of the requests the transport was asked to send
func (t *Transport) Sent() []message.Request {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]message.Request(nil), t.sent...)
}

// Send implementation of connector.Transport for Transport
func (t *Transport) Send(ctx context.Context, msg *message.Message, receive connector.ReceiveFunc) error {
	if t.SendErr != nil {
		return t.SendErr
	}

	req := *msg.Request()
	req.Headers = req.Headers.Clone()
	t.mu.Lock()
	t.sent = append(t.sent, req)
	t.mu.Unlock()

	if t.Handler == nil {
		receive(&message.Response{Status: 200})
		return nil
	}

	if res := t.Handler(msg); res != nil {
		go receive(res)
	}
	return nil
}

// ToFormat implementation of connector.Transport for Transport. JSON
// entities are serialized, everything else is sent as is.
func (t *Transport) ToFormat(msg *message.Message) error {
	if msg.EntityType() != message.JSON || msg.Entity() == nil {
		return nil
	}

	if _, ok := msg.Entity().(string); ok {
		return nil
	}

	p, err := json.Marshal(msg.Entity())
	if err != nil {
		return err
	}

	msg.SetEntity(string(p), message.JSON)
	return nil
}

// FromFormat implementation of connector.Transport for Transport.
// String entities are parsed when json is requested.
func (t *Transport) FromFormat(msg *message.Message, res *message.Response, kind message.EntityType) (interface{}, error) {
	s, ok := res.Entity.(string)
	if !ok || kind != message.JSON {
		return res.Entity, nil
	}

	var v interface{}
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, err
	}
	return v, nil
}

// SupportsRevalidation implementation of connector.Transport for Transport
func (t *Transport) SupportsRevalidation() bool {
	return t.Revalidation
}

// Factory creates a fixed Transport
type Factory struct {
	FactoryName string
	Usable      bool
	Transport   *Transport

	mu      sync.Mutex
	created []connector.Connection
}

// Created returns the connections transports were created for
func (f *Factory) Created() []connector.Connection {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]connector.Connection(nil), f.created...)
}

// Name implementation of connector.TransportFactory for Factory
func (f *Factory) Name() string {
	return f.FactoryName
}

// IsUsable implementation of connector.TransportFactory for Factory
func (f *Factory) IsUsable(host string, port int, secure bool, basePath string) bool {
	return f.Usable
}

// New implementation of connector.TransportFactory for Factory
func (f *Factory) New(conn connector.Connection) (connector.Transport, error) {
	f.mu.Lock()
	f.created = append(f.created, conn)
	f.mu.Unlock()

	if f.Transport == nil {
		f.Transport = &Transport{}
	}
	return f.Transport, nil
}
