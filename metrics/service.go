package metrics

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/oasislabs/baqend-connector/errors"
	"github.com/oasislabs/baqend-connector/log"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
)

// An InstrumentationService is a background service used to expose the
// metrics collected by a running process.
type InstrumentationService interface {
	// StartInstrumentation starts exposing the metrics.
	StartInstrumentation()

	// StopInstrumentation stops exposing the metrics.
	StopInstrumentation()
}

// New constructs a new instrumentation service that exposes the
// metrics of gatherer according to config.
func New(config *MetricsConfig, gatherer prometheus.Gatherer, logger log.Logger) (InstrumentationService, error) {
	mode := strings.ToLower(config.Mode)

	switch mode {
	case metricsModeNone, "":
		return newStubService(), nil
	case metricsModePull:
		return newPullService(config, gatherer, logger), nil
	case metricsModePush:
		return newPushService(config, gatherer, logger)
	default:
		return nil, fmt.Errorf("metrics: unsupported mode: '%v'", mode)
	}
}

// A stubService does not expose metrics.
type stubService struct{}

func newStubService() *stubService {
	return &stubService{}
}

// StartInstrumentation implements the instrumentation service interface for stubService.
func (s *stubService) StartInstrumentation() {}

// StopInstrumentation implements the instrumentation service interface for stubService.
func (s *stubService) StopInstrumentation() {}

// A pullService exposes metrics that Prometheus can pull.
type pullService struct {
	// The HTTP server which hosts the Prometheus metrics endpoint.
	server *http.Server

	// A logger, for logging.
	logger log.Logger
}

func newPullService(config *MetricsConfig, gatherer prometheus.Gatherer, logger log.Logger) *pullService {
	return &pullService{
		server: &http.Server{
			Addr:           fmt.Sprintf("%s:%s", config.PullAddr, config.PullPort),
			Handler:        promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}),
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   10 * time.Second,
			MaxHeaderBytes: 1 << 20,
		},
		logger: logger.ForClass("metrics", "pullService"),
	}
}

// StartInstrumentation implements the instrumentation service interface for pullService.
func (s *pullService) StartInstrumentation() {
	server := s.server
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error(context.Background(), "metrics: pull server stopped", log.MapFields{
				"call_type": "MetricsPullFailure",
				"addr":      server.Addr,
				"err":       err.Error(),
			})
		}
	}()
}

// StopInstrumentation implements the instrumentation service interface for pullService.
func (s *pullService) StopInstrumentation() {
	if s.server != nil {
		_ = s.server.Shutdown(context.Background())
		s.server = nil
	}
}

// A pushService pushes metrics to a Prometheus push gateway.
type pushService struct {
	// The pusher which pushes updates to Prometheus.
	pusher *push.Pusher

	// The frequency with which to push updates to Prometheus.
	interval time.Duration

	// cancel stops the push worker.
	cancel context.CancelFunc

	// A logger, for logging.
	logger log.Logger
}

func newPushService(config *MetricsConfig, gatherer prometheus.Gatherer, logger log.Logger) (*pushService, error) {
	for key, v := range map[string]string{
		cfgMetricsPushAddr:          config.PushAddr,
		cfgMetricsPushJobName:       config.PushJobName,
		cfgMetricsPushInstanceLabel: config.PushInstanceLabel,
	} {
		if v == "" {
			return nil, fmt.Errorf("metrics: %s required for push mode", key)
		}
	}

	interval := config.PushInterval
	if interval <= 0 {
		interval = defaultPushInterval * time.Second
	}

	pusher := push.New(config.PushAddr, config.PushJobName).
		Grouping("instance", config.PushInstanceLabel).
		Gatherer(gatherer)

	return &pushService{
		pusher:   pusher,
		interval: interval,
		logger:   logger.ForClass("metrics", "pushService"),
	}, nil
}

// StartInstrumentation implements the instrumentation service interface for pushService.
func (s *pushService) StartInstrumentation() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.startWorker(ctx)
}

// StopInstrumentation implements the instrumentation service interface for pushService.
func (s *pushService) StopInstrumentation() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *pushService) startWorker(ctx context.Context) {
	t := time.NewTicker(s.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-t.C:
			if err := s.pusher.Push(); err != nil {
				err := errors.New(errors.ErrPrometheusPushError, err)
				s.logger.Error(ctx, "metrics: unable to push to prometheus", err)
			}
		}
	}
}
