package nethttp

import (
	"time"

	"github.com/oasislabs/baqend-connector/config"
	"github.com/oasislabs/baqend-connector/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	cfgTransportResponseLimit = "transport.response_limit"
	cfgTransportRevalidation  = "transport.revalidation"
	cfgTransportTimeout       = "transport.timeout"
)

// Config is the configuration of the net/http transport
type Config struct {
	ResponseLimit int64
	Revalidation  bool
	Timeout       time.Duration
}

// Props returns the factory properties described by the configuration
func (c *Config) Props() *FactoryProps {
	return &FactoryProps{
		TransportProps: TransportProps{
			ResponseLimit: c.ResponseLimit,
			Revalidation:  c.Revalidation,
		},
		Timeout: c.Timeout,
	}
}

func (c *Config) Log(fields log.Fields) {
	fields.Add(cfgTransportResponseLimit, c.ResponseLimit)
	fields.Add(cfgTransportRevalidation, c.Revalidation)
	fields.Add(cfgTransportTimeout, c.Timeout)
}

func (c *Config) Configure(v *viper.Viper) error {
	c.ResponseLimit = v.GetInt64(cfgTransportResponseLimit)
	if c.ResponseLimit <= 0 {
		return config.ErrInvalidValue{
			Key:          cfgTransportResponseLimit,
			InvalidValue: v.GetString(cfgTransportResponseLimit),
			Values:       []string{"a positive number of bytes"},
		}
	}

	c.Revalidation = v.GetBool(cfgTransportRevalidation)
	c.Timeout = v.GetDuration(cfgTransportTimeout)
	if c.Timeout < 0 {
		return config.ErrInvalidValue{
			Key:          cfgTransportTimeout,
			InvalidValue: c.Timeout.String(),
			Values:       []string{"a non negative duration"},
		}
	}

	return nil
}

func (c *Config) Bind(v *viper.Viper, cmd *cobra.Command) error {
	cmd.PersistentFlags().Int64(cfgTransportResponseLimit, defaultResponseLimit,
		"maximum size in bytes of a response body")
	cmd.PersistentFlags().Bool(cfgTransportRevalidation, false,
		"whether caches revalidate on cache-control alone. When false no-cache "+
			"requests also carry conditional headers that never match")
	cmd.PersistentFlags().Duration(cfgTransportTimeout, 30*time.Second,
		"timeout of a single http exchange")
	return nil
}
