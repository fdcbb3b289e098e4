package redis

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/go-redis/redis"
	"github.com/oasislabs/baqend-connector/errors"
	"github.com/oasislabs/baqend-connector/log"
	"github.com/oasislabs/baqend-connector/oauth/core"
)

// Client is the subset of the redis client used by the Channel. Both
// single instance and cluster clients implement it.
type Client interface {
	Publish(channel string, message interface{}) *redis.IntCmd
	Subscribe(channels ...string) *redis.PubSub
}

// Props are the properties shared by all redis channels
type Props struct {
	Logger log.Logger

	// Topic is the pub/sub channel completions are published on
	Topic string
}

// SingleInstanceProps are the properties of a channel backed by a
// single redis instance
type SingleInstanceProps struct {
	Props
	Addr string
}

// ClusterProps are the properties of a channel backed by a
// redis cluster
type ClusterProps struct {
	Props
	Addrs []string
}

// ChannelDeps are the dependencies of a Channel
type ChannelDeps struct {
	Logger log.Logger
	Client Client
}

// Channel implements core.Channel with redis pub/sub so that
// completions reach transports running in other processes
type Channel struct {
	client Client
	topic  string
	logger log.Logger
}

// NewSingleChannel creates a channel backed by a single redis instance
func NewSingleChannel(props SingleInstanceProps) (*Channel, error) {
	client := redis.NewClient(&redis.Options{Addr: props.Addr})
	if err := client.Ping().Err(); err != nil {
		return nil, errors.New(errors.ErrOAuthChannel, err)
	}

	return NewChannelWithDeps(&ChannelDeps{
		Logger: props.Logger,
		Client: client,
	}, props.Topic), nil
}

// NewClusterChannel creates a channel backed by a redis cluster
func NewClusterChannel(props ClusterProps) (*Channel, error) {
	client := redis.NewClusterClient(&redis.ClusterOptions{Addrs: props.Addrs})
	if err := client.Ping().Err(); err != nil {
		return nil, errors.New(errors.ErrOAuthChannel, err)
	}

	return NewChannelWithDeps(&ChannelDeps{
		Logger: props.Logger,
		Client: client,
	}, props.Topic), nil
}

// NewChannelWithDeps creates a channel using the provided client
func NewChannelWithDeps(deps *ChannelDeps, topic string) *Channel {
	if len(topic) == 0 {
		topic = core.DefaultTopic
	}

	return &Channel{
		client: deps.Client,
		topic:  topic,
		logger: deps.Logger.ForClass("oauth/redis", "Channel"),
	}
}

// Publish implementation of core.Channel for Channel
func (c *Channel) Publish(ctx context.Context, completion core.Completion) error {
	p, err := json.Marshal(completion)
	if err != nil {
		return errors.New(errors.ErrOAuthChannel, err)
	}

	if err := c.client.Publish(c.topic, string(p)).Err(); err != nil {
		return errors.New(errors.ErrOAuthChannel, err)
	}

	return nil
}

// Subscribe implementation of core.Channel for Channel. It returns
// once redis confirmed the subscription.
func (c *Channel) Subscribe(ctx context.Context) (core.Subscription, error) {
	ps := c.client.Subscribe(c.topic)
	if _, err := ps.Receive(); err != nil {
		_ = ps.Close()
		return nil, errors.New(errors.ErrOAuthChannel, err)
	}

	s := &subscription{
		ps:     ps,
		c:      make(chan core.Completion, 1),
		done:   make(chan struct{}),
		logger: c.logger,
	}
	go s.forward(ctx, ps.Channel())
	return s, nil
}

type subscription struct {
	ps     *redis.PubSub
	c      chan core.Completion
	done   chan struct{}
	once   sync.Once
	logger log.Logger
}

func (s *subscription) forward(ctx context.Context, messages <-chan *redis.Message) {
	defer close(s.c)

	for {
		select {
		case <-s.done:
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}

			var completion core.Completion
			if err := json.Unmarshal([]byte(msg.Payload), &completion); err != nil {
				s.logger.Warn(ctx, "discarding malformed completion", log.MapFields{
					"call_type": "OAuthCompletionDecodeFailure",
					"topic":     msg.Channel,
				}, errors.New(errors.ErrOAuthChannel, err))
				continue
			}

			select {
			case s.c <- completion:
			case <-s.done:
				return
			}
		}
	}
}

func (s *subscription) C() <-chan core.Completion {
	return s.c
}

func (s *subscription) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.ps.Close()
	})
	return err
}
