package mem

import (
	"context"
	"sync"

	"github.com/oasislabs/baqend-connector/log"
	"github.com/oasislabs/baqend-connector/oauth/core"
)

// Services required by a Channel
type Services struct {
	Logger log.Logger
}

// Channel is an in process implementation of core.Channel. It is
// enough when the completion endpoint and the transports run in
// the same process.
type Channel struct {
	mu          sync.Mutex
	subscribers map[*subscription]struct{}
	logger      log.Logger
}

// NewChannel creates a new in memory channel
func NewChannel(services Services) *Channel {
	return &Channel{
		subscribers: make(map[*subscription]struct{}),
		logger:      services.Logger.ForClass("oauth/mem", "Channel"),
	}
}

// Publish implementation of core.Channel for Channel. Subscribers that
// have not consumed a previous completion miss the new one.
func (c *Channel) Publish(ctx context.Context, completion core.Completion) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for s := range c.subscribers {
		select {
		case s.c <- completion:
		default:
			c.logger.Debug(ctx, "subscriber dropped completion", log.MapFields{
				"call_type": "OAuthPublishDropped",
			})
		}
	}

	return nil
}

// Subscribe implementation of core.Channel for Channel
func (c *Channel) Subscribe(ctx context.Context) (core.Subscription, error) {
	s := &subscription{channel: c, c: make(chan core.Completion, 1)}

	c.mu.Lock()
	c.subscribers[s] = struct{}{}
	c.mu.Unlock()

	return s, nil
}

// Subscribers returns the number of active subscriptions
func (c *Channel) Subscribers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subscribers)
}

type subscription struct {
	channel *Channel
	c       chan core.Completion
	once    sync.Once
}

func (s *subscription) C() <-chan core.Completion {
	return s.c
}

func (s *subscription) Close() error {
	s.once.Do(func() {
		s.channel.mu.Lock()
		delete(s.channel.subscribers, s)
		close(s.c)
		s.channel.mu.Unlock()
	})
	return nil
}
