package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/oasislabs/baqend-connector/config"
	"github.com/oasislabs/baqend-connector/connector"
	"github.com/oasislabs/baqend-connector/log"
	"github.com/oasislabs/baqend-connector/message"
	"github.com/oasislabs/baqend-connector/metrics"
	"github.com/oasislabs/baqend-connector/oauth"
	"github.com/oasislabs/baqend-connector/token"
	"github.com/oasislabs/baqend-connector/transport/nethttp"
	"github.com/prometheus/client_golang/prometheus"
)

var RootContext = context.Background()

// request declares every message the client sends as a dynamic path
// relative to the base path of the service
func request(method string) *message.Specification {
	return message.Create(message.Spec{
		Method: method,
		Path:   "/*path",
		Status: []int{200, 201, 202, 204, int(message.StatusNotModified)},
	})
}

func newRegistry(ctx context.Context, logger log.Logger, cfg *Config) (*connector.Registry, metrics.InstrumentationService, error) {
	registry := prometheus.NewRegistry()
	m, err := metrics.NewConnectorMetrics(registry, "baqend_connector")
	if err != nil {
		return nil, nil, err
	}

	instrumentation, err := metrics.New(&cfg.MetricsConfig, registry, logger)
	if err != nil {
		return nil, nil, err
	}

	channel, err := oauth.NewChannel(ctx, oauth.Services{Logger: logger}, &cfg.OAuthConfig)
	if err != nil {
		return nil, nil, err
	}

	r := connector.NewRegistry(&connector.RegistryServices{
		Logger:  logger,
		Metrics: m,
	}, &connector.RegistryProps{
		AppDomain: cfg.ConnectorConfig.AppDomain,
	})
	r.Register(nethttp.NewFactory(&nethttp.FactoryServices{
		Logger:  logger,
		Channel: channel,
	}, cfg.TransportConfig.Props()))

	return r, instrumentation, nil
}

func run(ctx context.Context, logger log.Logger, cfg *Config) error {
	registry, instrumentation, err := newRegistry(ctx, logger, cfg)
	if err != nil {
		return err
	}

	instrumentation.StartInstrumentation()
	defer instrumentation.StopInstrumentation()

	storage, err := token.NewStorage(ctx, logger, &cfg.TokenConfig)
	if err != nil {
		return err
	}

	c, err := registry.Create(cfg.ConnectorConfig.Endpoint())
	if err != nil {
		return err
	}

	msg := request(cfg.RequestConfig.Method).New(strings.TrimPrefix(cfg.RequestConfig.Path, "/"))
	msg.SetTokenStorage(storage)
	if cfg.RequestConfig.NoCache {
		msg.NoCache()
	}

	res, err := c.Send(ctx, msg)
	if err != nil {
		return err
	}

	p, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(p))
	return nil
}

func main() {
	var cfg Config
	parser, err := config.Generate(&cfg)
	if err != nil {
		fmt.Println("failed to generate configurations: ", err.Error())
		os.Exit(1)
	}

	if err := parser.Parse(); err == config.ErrHelpRequested {
		os.Exit(0)
	} else if err != nil {
		fmt.Println("failed to configure client: ", err.Error())
		_ = parser.Usage()
		os.Exit(1)
	}

	logger := log.New(&cfg.LoggingConfig).ForClass("cmd", "connector")
	logger.Debug(RootContext, "client configuration", &cfg)

	if err := run(RootContext, logger, &cfg); err != nil {
		logger.Error(RootContext, "exchange failed", log.MapFields{
			"call_type": "ExchangeFailure",
			"host":      cfg.ConnectorConfig.Host,
			"err":       err.Error(),
		})
		os.Exit(1)
	}
}
