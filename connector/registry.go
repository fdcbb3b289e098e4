package connector

import (
	"context"
	"net/url"
	"sync"

	"github.com/oasislabs/baqend-connector/errors"
	"github.com/oasislabs/baqend-connector/log"
	"github.com/oasislabs/baqend-connector/metrics"
)

// RegistryServices are the services shared by all the connectors
// a registry creates
type RegistryServices struct {
	Logger  log.Logger
	Metrics *metrics.ConnectorMetrics
}

// RegistryProps define how endpoints are resolved
type RegistryProps struct {
	// Location is the ambient location used when an endpoint does not
	// name a host or does not say whether it is secure. It may be nil.
	Location *url.URL

	// AppDomain is appended to hosts that are app names. Defaults
	// to DefaultAppDomain
	AppDomain string
}

// Registry keeps the registered transport factories and at most one
// connector per canonical connection uri
type Registry struct {
	mu         sync.Mutex
	factories  []TransportFactory
	connectors map[string]*Connector

	location  *url.URL
	appDomain string
	logger    log.Logger
	metrics   *metrics.ConnectorMetrics
}

// NewRegistry creates a new empty registry
func NewRegistry(services *RegistryServices, props *RegistryProps) *Registry {
	appDomain := props.AppDomain
	if len(appDomain) == 0 {
		appDomain = DefaultAppDomain
	}

	logger := services.Logger
	if logger == nil {
		logger = log.NewDiscard()
	}

	return &Registry{
		connectors: make(map[string]*Connector),
		location:   props.Location,
		appDomain:  appDomain,
		logger:     logger.ForClass("connector", "Registry"),
		metrics:    services.Metrics,
	}
}

// Register adds a transport factory. Factories registered later are
// probed first.
func (r *Registry) Register(factory TransportFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories = append(r.factories, factory)
}

// Create returns the connector for endpoint, creating it with the
// first usable transport if none exists yet for its canonical uri
func (r *Registry) Create(endpoint Endpoint) (*Connector, error) {
	conn, err := resolveConnection(endpoint, r.location, r.appDomain)
	if err != nil {
		return nil, err
	}

	uri := conn.URI()

	r.mu.Lock()
	defer r.mu.Unlock()

	if connector, ok := r.connectors[uri]; ok {
		return connector, nil
	}

	for i := len(r.factories) - 1; i >= 0; i-- {
		factory := r.factories[i]
		if !factory.IsUsable(conn.Host, conn.Port, conn.Secure, conn.BasePath) {
			continue
		}

		transport, err := factory.New(conn)
		if err != nil {
			return nil, err
		}

		connector := newConnector(conn, transport, r.logger, r.metrics)
		r.connectors[uri] = connector
		r.logger.Debug(context.Background(), "connector created", log.MapFields{
			"call_type": "ConnectorCreated",
			"uri":       uri,
			"transport": factory.Name(),
		})
		return connector, nil
	}

	return nil, errors.New(errors.ErrNoUsableTransport, nil)
}

// CreateURI returns the connector for a host, app name or
// absolute uri using the default port, scheme and base path
func (r *Registry) CreateURI(host string) (*Connector, error) {
	return r.Create(Endpoint{Host: host})
}
