package main

import (
	"strings"

	"github.com/oasislabs/baqend-connector/config"
	"github.com/oasislabs/baqend-connector/connector"
	"github.com/oasislabs/baqend-connector/log"
	"github.com/oasislabs/baqend-connector/metrics"
	"github.com/oasislabs/baqend-connector/oauth"
	"github.com/oasislabs/baqend-connector/token"
	"github.com/oasislabs/baqend-connector/transport/nethttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	cfgRequestMethod  = "request.method"
	cfgRequestPath    = "request.path"
	cfgRequestNoCache = "request.no_cache"
)

// Config is the configuration of the connector command line client
type Config struct {
	RequestConfig   RequestConfig
	ConnectorConfig connector.Config
	TransportConfig nethttp.Config
	TokenConfig     token.Config
	OAuthConfig     oauth.Config
	MetricsConfig   metrics.MetricsConfig
	LoggingConfig   log.Config
}

func (c *Config) Use() string {
	return "connector"
}

func (c *Config) EnvPrefix() string {
	return "BAQEND_CONNECTOR"
}

func (c *Config) Binders() []config.Binder {
	return []config.Binder{
		&c.RequestConfig,
		&c.ConnectorConfig,
		&c.TransportConfig,
		&c.TokenConfig,
		&c.OAuthConfig,
		&c.MetricsConfig,
		&c.LoggingConfig,
	}
}

func (c *Config) Log(fields log.Fields) {
	c.RequestConfig.Log(fields)
	c.ConnectorConfig.Log(fields)
	c.TransportConfig.Log(fields)
	c.TokenConfig.Log(fields)
	c.OAuthConfig.Log(fields)
	c.MetricsConfig.Log(fields)
	c.LoggingConfig.Log(fields)
}

// RequestConfig describes the single exchange the client performs
type RequestConfig struct {
	Method  string
	Path    string
	NoCache bool
}

func (c *RequestConfig) Log(fields log.Fields) {
	fields.Add(cfgRequestMethod, c.Method)
	fields.Add(cfgRequestPath, c.Path)
	fields.Add(cfgRequestNoCache, c.NoCache)
}

func (c *RequestConfig) Configure(v *viper.Viper) error {
	c.Method = strings.ToUpper(v.GetString(cfgRequestMethod))
	if len(c.Method) == 0 {
		return config.ErrKeyNotSet{Key: cfgRequestMethod}
	}

	c.Path = v.GetString(cfgRequestPath)
	if !strings.HasPrefix(c.Path, "/") {
		return config.ErrInvalidValue{
			Key:          cfgRequestPath,
			InvalidValue: c.Path,
			Values:       []string{"a path starting with /"},
		}
	}

	c.NoCache = v.GetBool(cfgRequestNoCache)
	return nil
}

func (c *RequestConfig) Bind(v *viper.Viper, cmd *cobra.Command) error {
	cmd.PersistentFlags().String(cfgRequestMethod, "GET",
		"http method of the request sent to the service")
	cmd.PersistentFlags().String(cfgRequestPath, "/connect",
		"path of the request relative to the base path of the service")
	cmd.PersistentFlags().Bool(cfgRequestNoCache, true,
		"bypass caches for the request")
	return nil
}
