package token

import (
	"github.com/oasislabs/baqend-connector/config"
	"github.com/oasislabs/baqend-connector/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type Provider string

const (
	ProviderMem         Provider = "mem"
	ProviderRedisSingle Provider = "redis-single"
)

func (p Provider) String() string {
	return string(p)
}

const (
	cfgTokenProvider        = "token.provider"
	cfgTokenInitial         = "token.initial"
	cfgTokenRedisSingleAddr = "token.redis_single.addr"
	cfgTokenRedisSingleKey  = "token.redis_single.key"
	cfgTokenRedisSingleTTL  = "token.redis_single.expiration"
)

// Config selects and configures the token storage
type Config struct {
	Provider Provider
	Initial  string
	Addr     string
	Props    RedisStorageProps
}

func (c *Config) Log(fields log.Fields) {
	fields.Add(cfgTokenProvider, c.Provider)
	fields.Add("token.initial_set", len(c.Initial) > 0)

	if c.Provider == ProviderRedisSingle {
		fields.Add(cfgTokenRedisSingleAddr, c.Addr)
		fields.Add(cfgTokenRedisSingleKey, c.Props.Key)
		fields.Add(cfgTokenRedisSingleTTL, c.Props.Expiration)
	}
}

func (c *Config) Configure(v *viper.Viper) error {
	c.Provider = Provider(v.GetString(cfgTokenProvider))
	c.Initial = v.GetString(cfgTokenInitial)

	switch c.Provider {
	case ProviderMem:
		return nil
	case ProviderRedisSingle:
		c.Addr = v.GetString(cfgTokenRedisSingleAddr)
		if len(c.Addr) == 0 {
			return config.ErrKeyNotSet{Key: cfgTokenRedisSingleAddr}
		}
		c.Props.Key = v.GetString(cfgTokenRedisSingleKey)
		c.Props.Expiration = v.GetDuration(cfgTokenRedisSingleTTL)
		return nil
	default:
		return config.ErrInvalidValue{
			Key:          cfgTokenProvider,
			InvalidValue: c.Provider.String(),
			Values:       []string{ProviderMem.String(), ProviderRedisSingle.String()},
		}
	}
}

func (c *Config) Bind(v *viper.Viper, cmd *cobra.Command) error {
	cmd.PersistentFlags().String(cfgTokenProvider, ProviderMem.String(),
		"provider for the token storage. Options are "+
			ProviderMem.String()+", "+ProviderRedisSingle.String()+".")
	cmd.PersistentFlags().String(cfgTokenInitial, "",
		"token the storage is initialized with when it holds none.")
	cmd.PersistentFlags().String(cfgTokenRedisSingleAddr, "127.0.0.1:6379",
		"redis instance address for the token storage")
	cmd.PersistentFlags().String(cfgTokenRedisSingleKey, defaultRedisKey,
		"redis key holding the token")
	cmd.PersistentFlags().Duration(cfgTokenRedisSingleTTL, 0,
		"expiration of the stored token, zero keeps it indefinitely")
	return nil
}
