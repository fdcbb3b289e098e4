package oauth

import (
	"errors"
	"strings"

	"github.com/oasislabs/baqend-connector/config"
	"github.com/oasislabs/baqend-connector/log"
	"github.com/oasislabs/baqend-connector/oauth/core"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type ChannelProvider string

const (
	ChannelRedisSingle  ChannelProvider = "redis-single"
	ChannelRedisCluster ChannelProvider = "redis-cluster"
	ChannelMem          ChannelProvider = "mem"
)

func (p ChannelProvider) String() string {
	return string(p)
}

type Config struct {
	Provider      ChannelProvider
	Topic         string
	ChannelConfig ChannelConfig
}

func (c *Config) Log(fields log.Fields) {
	fields.Add("oauth.provider", c.Provider)
	fields.Add("oauth.topic", c.Topic)

	if c.ChannelConfig != nil {
		c.ChannelConfig.Log(fields)
	}
}

func (c *Config) Configure(v *viper.Viper) error {
	c.Provider = ChannelProvider(v.GetString("oauth.provider"))
	if len(c.Provider) == 0 {
		return config.ErrKeyNotSet{Key: "oauth.provider"}
	}

	c.Topic = v.GetString("oauth.topic")
	if len(c.Topic) == 0 {
		c.Topic = core.DefaultTopic
	}

	switch c.Provider {
	case ChannelMem:
		c.ChannelConfig = &ChannelMemConfig{}
	case ChannelRedisSingle:
		c.ChannelConfig = &ChannelRedisSingleConfig{}
	case ChannelRedisCluster:
		c.ChannelConfig = &ChannelRedisClusterConfig{}
	default:
		return config.ErrInvalidValue{
			Key:          "oauth.provider",
			InvalidValue: c.Provider.String(),
			Values: []string{
				ChannelRedisSingle.String(),
				ChannelRedisCluster.String(),
				ChannelMem.String(),
			},
		}
	}

	return c.ChannelConfig.Configure(v)
}

func (c *Config) Bind(v *viper.Viper, cmd *cobra.Command) error {
	cmd.PersistentFlags().String("oauth.provider", "mem",
		"provider for the channel OAuth completions are broadcast on. "+
			"Options are "+string(ChannelMem)+
			", "+string(ChannelRedisSingle)+
			", "+string(ChannelRedisCluster)+".")
	cmd.PersistentFlags().String("oauth.topic", core.DefaultTopic,
		"topic OAuth completions are published on")

	for _, binder := range []config.Binder{
		&ChannelRedisSingleConfig{},
		&ChannelRedisClusterConfig{},
		&ChannelMemConfig{},
	} {
		if err := binder.Bind(v, cmd); err != nil {
			return err
		}
	}

	return nil
}

type ChannelConfig interface {
	log.Loggable
	config.Binder
	ID() ChannelProvider
}

type ChannelRedisSingleConfig struct {
	Addr string
}

func (c *ChannelRedisSingleConfig) Log(fields log.Fields) {
	fields.Add("oauth.redis_single.addr", c.Addr)
}

func (c *ChannelRedisSingleConfig) ID() ChannelProvider {
	return ChannelRedisSingle
}

func (c *ChannelRedisSingleConfig) Configure(v *viper.Viper) error {
	c.Addr = v.GetString("oauth.redis_single.addr")
	if len(c.Addr) == 0 {
		return errors.New("oauth.redis_single.addr must be set")
	}

	return nil
}

func (c *ChannelRedisSingleConfig) Bind(v *viper.Viper, cmd *cobra.Command) error {
	cmd.PersistentFlags().String("oauth.redis_single.addr", "127.0.0.1:6379", "redis instance address")
	return nil
}

type ChannelRedisClusterConfig struct {
	Addrs []string
}

func (c *ChannelRedisClusterConfig) Log(fields log.Fields) {
	fields.Add("oauth.redis_cluster.addrs", strings.Join(c.Addrs, ","))
}

func (c *ChannelRedisClusterConfig) ID() ChannelProvider {
	return ChannelRedisCluster
}

func (c *ChannelRedisClusterConfig) Configure(v *viper.Viper) error {
	c.Addrs = v.GetStringSlice("oauth.redis_cluster.addrs")
	if len(c.Addrs) == 0 {
		return errors.New("oauth.redis_cluster.addrs must be set")
	}

	return nil
}

func (c *ChannelRedisClusterConfig) Bind(v *viper.Viper, cmd *cobra.Command) error {
	cmd.PersistentFlags().StringSlice(
		"oauth.redis_cluster.addrs",
		[]string{"127.0.0.1:6379"},
		"addresses of the bootstrap redis instances in the cluster")
	return nil
}

type ChannelMemConfig struct{}

func (c *ChannelMemConfig) Log(fields log.Fields) {}

func (c *ChannelMemConfig) ID() ChannelProvider {
	return ChannelMem
}

func (c *ChannelMemConfig) Configure(v *viper.Viper) error {
	return nil
}

func (c *ChannelMemConfig) Bind(v *viper.Viper, cmd *cobra.Command) error {
	return nil
}
