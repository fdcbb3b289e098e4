package core

import "context"

// DefaultTopic is the topic completions are broadcast on
const DefaultTopic = "oauth-response"

// Completion is the outcome of an OAuth handshake as reported by the
// page the provider redirects to
type Completion struct {
	Status int    `json:"status"`
	Entity string `json:"entity"`
}

// Channel broadcasts OAuth completions to every subscriber that is
// listening when the completion is published
type Channel interface {
	// Publish delivers the completion to the current subscribers
	Publish(ctx context.Context, completion Completion) error

	// Subscribe starts listening for completions
	Subscribe(ctx context.Context) (Subscription, error)
}

// Subscription receives the completions published after it was
// created. Closing it releases the listener.
type Subscription interface {
	C() <-chan Completion
	Close() error
}
