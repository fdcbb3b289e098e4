package nethttp

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/oasislabs/baqend-connector/connector"
	"github.com/oasislabs/baqend-connector/log"
	"github.com/oasislabs/baqend-connector/oauth/core"
)

const factoryName = "nethttp"

// FactoryServices are the services shared by the transports
// a Factory creates
type FactoryServices struct {
	Logger log.Logger

	// Channel receives OAuth completions. OAuth handshakes are not
	// supported when it is nil
	Channel core.Channel

	// Opener opens OAuth authorization pages. When nil the url of the
	// page is logged
	Opener Opener
}

// FactoryProps define the transports a Factory creates
type FactoryProps struct {
	TransportProps

	// Timeout of a single http exchange. Zero means no timeout
	Timeout time.Duration
}

// FactoryDeps are the required instantiated dependencies
// that a Factory requires
type FactoryDeps struct {
	Logger  log.Logger
	Client  HttpClient
	Jar     http.CookieJar
	Channel core.Channel
	Opener  Opener
}

// Factory creates net/http transports. It is usable for any
// connection.
type Factory struct {
	deps  FactoryDeps
	props FactoryProps
}

// NewFactory creates a new factory
func NewFactory(services *FactoryServices, props *FactoryProps) *Factory {
	// cookiejar.New only fails on an invalid public suffix list
	jar, _ := cookiejar.New(nil)

	opener := services.Opener
	if opener == nil {
		opener = logOpener(services.Logger)
	}

	return NewFactoryWithDeps(&FactoryDeps{
		Logger:  services.Logger,
		Client:  &http.Client{Timeout: props.Timeout},
		Jar:     jar,
		Channel: services.Channel,
		Opener:  opener,
	}, props)
}

// NewFactoryWithDeps creates a factory using the external
// dependencies provided
func NewFactoryWithDeps(deps *FactoryDeps, props *FactoryProps) *Factory {
	return &Factory{deps: *deps, props: *props}
}

// Name implementation of connector.TransportFactory for Factory
func (f *Factory) Name() string {
	return factoryName
}

// IsUsable implementation of connector.TransportFactory for Factory
func (f *Factory) IsUsable(host string, port int, secure bool, basePath string) bool {
	return len(host) > 0
}

// New implementation of connector.TransportFactory for Factory
func (f *Factory) New(conn connector.Connection) (connector.Transport, error) {
	return NewTransportWithDeps(conn, &TransportDeps{
		Logger:  f.deps.Logger,
		Client:  f.deps.Client,
		Jar:     f.deps.Jar,
		Channel: f.deps.Channel,
		Opener:  f.deps.Opener,
	}, &f.props.TransportProps), nil
}

func logOpener(logger log.Logger) Opener {
	return OpenerFunc(func(ctx context.Context, uri string) error {
		logger.Info(ctx, "open the url to authorize", log.MapFields{
			"call_type": "OAuthAuthorize",
			"url":       uri,
		})
		return nil
	})
}
