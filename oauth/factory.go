package oauth

import (
	"context"
	"fmt"

	"github.com/oasislabs/baqend-connector/log"
	"github.com/oasislabs/baqend-connector/oauth/core"
	"github.com/oasislabs/baqend-connector/oauth/mem"
	"github.com/oasislabs/baqend-connector/oauth/redis"
)

type Services struct {
	Logger log.Logger
}

// NewChannel creates the completion channel selected by config
func NewChannel(ctx context.Context, services Services, config *Config) (core.Channel, error) {
	if config.ChannelConfig == nil || config.ChannelConfig.ID() != config.Provider {
		return nil, ErrChannelConfigConflict
	}

	switch config.ChannelConfig.ID() {
	case ChannelRedisSingle:
		return NewRedisSingleChannel(ctx, services, config.Topic,
			config.ChannelConfig.(*ChannelRedisSingleConfig))
	case ChannelRedisCluster:
		return NewRedisClusterChannel(ctx, services, config.Topic,
			config.ChannelConfig.(*ChannelRedisClusterConfig))
	case ChannelMem:
		return mem.NewChannel(mem.Services{Logger: services.Logger}), nil
	default:
		return nil, ErrUnknownChannel{Provider: config.ChannelConfig.ID().String()}
	}
}

func NewRedisSingleChannel(
	ctx context.Context,
	services Services,
	topic string,
	config *ChannelRedisSingleConfig,
) (core.Channel, error) {
	c, err := redis.NewSingleChannel(redis.SingleInstanceProps{
		Props: redis.Props{
			Logger: services.Logger,
			Topic:  topic,
		},
		Addr: config.Addr,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start redis oauth channel %s", err.Error())
	}
	return c, nil
}

func NewRedisClusterChannel(
	ctx context.Context,
	services Services,
	topic string,
	config *ChannelRedisClusterConfig,
) (core.Channel, error) {
	c, err := redis.NewClusterChannel(redis.ClusterProps{
		Props: redis.Props{
			Logger: services.Logger,
			Topic:  topic,
		},
		Addrs: config.Addrs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start redis oauth channel %s", err.Error())
	}
	return c, nil
}
