package connector

import (
	"github.com/oasislabs/baqend-connector/config"
	"github.com/oasislabs/baqend-connector/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	cfgConnectorHost      = "connector.host"
	cfgConnectorPort      = "connector.port"
	cfgConnectorSecure    = "connector.secure"
	cfgConnectorBasePath  = "connector.base_path"
	cfgConnectorAppDomain = "connector.app_domain"
)

// Config is the configuration of the endpoint a connector
// is created for
type Config struct {
	Host      string
	Port      int
	Secure    bool
	BasePath  string
	AppDomain string
}

// Endpoint returns the endpoint described by the configuration
func (c *Config) Endpoint() Endpoint {
	secure := c.Secure
	basePath := c.BasePath
	return Endpoint{
		Host:     c.Host,
		Port:     c.Port,
		Secure:   &secure,
		BasePath: &basePath,
	}
}

func (c *Config) Log(fields log.Fields) {
	fields.Add(cfgConnectorHost, c.Host)
	fields.Add(cfgConnectorPort, c.Port)
	fields.Add(cfgConnectorSecure, c.Secure)
	fields.Add(cfgConnectorBasePath, c.BasePath)
	fields.Add(cfgConnectorAppDomain, c.AppDomain)
}

func (c *Config) Configure(v *viper.Viper) error {
	c.Host = v.GetString(cfgConnectorHost)
	if len(c.Host) == 0 {
		return config.ErrKeyNotSet{Key: cfgConnectorHost}
	}

	c.Port = v.GetInt(cfgConnectorPort)
	if c.Port < 0 || c.Port > 65535 {
		return config.ErrInvalidValue{
			Key:          cfgConnectorPort,
			InvalidValue: v.GetString(cfgConnectorPort),
			Values:       []string{"0-65535"},
		}
	}

	c.Secure = v.GetBool(cfgConnectorSecure)
	c.BasePath = v.GetString(cfgConnectorBasePath)
	c.AppDomain = v.GetString(cfgConnectorAppDomain)
	return nil
}

func (c *Config) Bind(v *viper.Viper, cmd *cobra.Command) error {
	cmd.PersistentFlags().String(cfgConnectorHost, "",
		"host, app name or absolute uri of the service")
	cmd.PersistentFlags().Int(cfgConnectorPort, 0,
		"port of the service. 0 selects the default port of the scheme")
	cmd.PersistentFlags().Bool(cfgConnectorSecure, true,
		"whether to connect over https")
	cmd.PersistentFlags().String(cfgConnectorBasePath, DefaultBasePath,
		"base path of the api")
	cmd.PersistentFlags().String(cfgConnectorAppDomain, DefaultAppDomain,
		"domain appended to hosts that are app names")
	return nil
}
