package main

import (
	"errors"

	"github.com/oasislabs/baqend-connector/config"
	"github.com/oasislabs/baqend-connector/log"
	"github.com/oasislabs/baqend-connector/oauth"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config is the configuration of the server that receives the
// completions of OAuth handshakes
type Config struct {
	BindConfig    BindConfig
	OAuthConfig   oauth.Config
	LoggingConfig log.Config
}

func (c *Config) Use() string {
	return "oauth-completion"
}

func (c *Config) EnvPrefix() string {
	return "BAQEND_CONNECTOR"
}

func (c *Config) Binders() []config.Binder {
	return []config.Binder{
		&c.BindConfig,
		&c.OAuthConfig,
		&c.LoggingConfig,
	}
}

func (c *Config) Log(fields log.Fields) {
	c.BindConfig.Log(fields)
	c.OAuthConfig.Log(fields)
	c.LoggingConfig.Log(fields)
}

// BindConfig is the configuration for binding the completion
// endpoint to the computer network interface
type BindConfig struct {
	HttpInterface      string
	HttpPort           int32
	HttpReadTimeoutMs  int32
	HttpWriteTimeoutMs int32
	HttpMaxHeaderBytes int32
	CompletionPath     string
	AllowedOrigins     []string
	BodyLimit          int64
}

func (c *BindConfig) Log(fields log.Fields) {
	fields.Add("bind.http_interface", c.HttpInterface)
	fields.Add("bind.http_port", c.HttpPort)
	fields.Add("bind.http_read_timeout_ms", c.HttpReadTimeoutMs)
	fields.Add("bind.http_write_timeout_ms", c.HttpWriteTimeoutMs)
	fields.Add("bind.http_max_header_bytes", c.HttpMaxHeaderBytes)
	fields.Add("bind.completion_path", c.CompletionPath)
	fields.Add("bind.allowed_origins", c.AllowedOrigins)
	fields.Add("bind.body_limit", c.BodyLimit)
}

func (c *BindConfig) Configure(v *viper.Viper) error {
	c.HttpInterface = v.GetString("bind.http_interface")
	if len(c.HttpInterface) == 0 {
		return errors.New("bind.http_interface must be set")
	}

	c.HttpPort = v.GetInt32("bind.http_port")
	if c.HttpPort > 65535 || c.HttpPort < 0 {
		return errors.New("bind.http_port must be an integer between 0 and 65535")
	}

	c.HttpReadTimeoutMs = v.GetInt32("bind.http_read_timeout_ms")
	if c.HttpReadTimeoutMs < 0 {
		return errors.New("bind.http_read_timeout_ms cannot be negative")
	}

	c.HttpWriteTimeoutMs = v.GetInt32("bind.http_write_timeout_ms")
	if c.HttpWriteTimeoutMs < 0 {
		return errors.New("bind.http_write_timeout_ms cannot be negative")
	}

	c.HttpMaxHeaderBytes = v.GetInt32("bind.http_max_header_bytes")
	if c.HttpMaxHeaderBytes < 0 {
		return errors.New("bind.http_max_header_bytes cannot be negative")
	}

	c.CompletionPath = v.GetString("bind.completion_path")
	if len(c.CompletionPath) == 0 || c.CompletionPath[0] != '/' {
		return errors.New("bind.completion_path must start with /")
	}

	c.AllowedOrigins = v.GetStringSlice("bind.allowed_origins")
	c.BodyLimit = v.GetInt64("bind.body_limit")
	if c.BodyLimit < 0 {
		return errors.New("bind.body_limit cannot be negative")
	}

	return nil
}

func (c *BindConfig) Bind(v *viper.Viper, cmd *cobra.Command) error {
	cmd.PersistentFlags().String("bind.http_interface", "127.0.0.1",
		"interface to bind for http")
	cmd.PersistentFlags().Int32("bind.http_port", 1235,
		"port to listen to for http")
	cmd.PersistentFlags().Int32("bind.http_read_timeout_ms",
		10000, "http read timeout for http interface")
	cmd.PersistentFlags().Int32("bind.http_write_timeout_ms",
		10000, "http write timeout for http interface")
	cmd.PersistentFlags().Int32("bind.http_max_header_bytes",
		10000, "http max header bytes for http")
	cmd.PersistentFlags().String("bind.completion_path", "/oauth/completion",
		"path the completion page posts the result of the handshake to")
	cmd.PersistentFlags().StringSlice("bind.allowed_origins", nil,
		"origins allowed to post completions. Empty allows every origin")
	cmd.PersistentFlags().Int64("bind.body_limit", 1<<16,
		"maximum size in bytes of a completion body")
	return nil
}
