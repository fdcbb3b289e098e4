package connector

import (
	"context"
	stderr "errors"
	"strings"
	"sync/atomic"

	"github.com/oasislabs/baqend-connector/errors"
	"github.com/oasislabs/baqend-connector/log"
	"github.com/oasislabs/baqend-connector/message"
	"github.com/oasislabs/baqend-connector/metrics"
	pkgerrors "github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	connectPath = "/connect"

	mimeJSON = "application/json;charset=utf-8"
	mimeText = "text/plain;charset=utf-8"

	acceptJSON    = "application/json"
	acceptText    = "text/*"
	acceptDefault = "application/json,text/*;q=0.5,*/*;q=0.1"

	gzipSuffix = "--gzip"

	headerAuthorizationToken = "baqend-authorization-token"
)

// Connector runs the exchanges against one service connection. It is
// safe for concurrent use, messages are not.
type Connector struct {
	conn      Connection
	transport Transport
	logger    log.Logger
	metrics   *metrics.ConnectorMetrics

	// gzip is 1 once the service advertised gzip support on connect
	gzip int32
}

func newConnector(conn Connection, transport Transport, logger log.Logger, m *metrics.ConnectorMetrics) *Connector {
	return &Connector{
		conn:      conn,
		transport: transport,
		logger:    logger.ForClass("connector", "Connector"),
		metrics:   m,
	}
}

// Connection returns the connection the connector serves
func (c *Connector) Connection() Connection {
	return c.conn
}

// Origin returns the uri of the connection without the base path
func (c *Connector) Origin() string {
	return c.conn.Origin
}

// BasePath returns the base path of the api
func (c *Connector) BasePath() string {
	return c.conn.BasePath
}

// URI returns the canonical uri of the connection
func (c *Connector) URI() string {
	return c.conn.URI()
}

// Transport returns the transport the connector dispatches with
func (c *Connector) Transport() Transport {
	return c.transport
}

// Gzip returns true if the service advertised gzip support
func (c *Connector) Gzip() bool {
	return atomic.LoadInt32(&c.gzip) == 1
}

func (c *Connector) setGzip(gzip bool) {
	var v int32
	if gzip {
		v = 1
	}
	atomic.StoreInt32(&c.gzip, v)
}

// Send runs the exchange of msg. The returned error is always a
// *errors.PersistentError, in which case the response, if any was
// received, is returned along with it with its entity cleared. A
// message can only be sent once.
func (c *Connector) Send(ctx context.Context, msg *message.Message) (*message.Response, error) {
	if !log.HasTraceID(ctx) {
		ctx = log.PutTraceID(ctx, msg.ID())
	}

	if msg.State() != message.StateCreated {
		err := errors.Of(errors.New(errors.ErrMessageAlreadySent, nil))
		c.logger.Warn(ctx, "message was already sent", log.MapFields{
			"call_type": "ConnectorSendFailure",
			"method":    msg.Method(),
			"path":      msg.Path(),
			"state":     msg.State().String(),
		}, err)
		return nil, err
	}

	c.logger.Debug(ctx, "sending message", log.MapFields{
		"call_type": "ConnectorSendAttempt",
		"method":    msg.Method(),
		"path":      msg.Path(),
	})

	var timer *prometheus.Timer
	if c.metrics != nil {
		timer = c.metrics.ExchangeTimer(msg.Method())
	}

	res, err := c.send(ctx, msg)

	if timer != nil {
		timer.ObserveDuration()
	}
	c.count(msg, res, err)

	if err != nil {
		msg.SetState(message.StateFailed)
		if res != nil {
			res.Entity = nil
		}

		perr := errors.Of(err)
		c.logger.Warn(ctx, "message exchange failed", log.MapFields{
			"call_type": "ConnectorSendFailure",
			"method":    msg.Method(),
			"path":      msg.Path(),
		}, perr)
		return res, perr
	}

	msg.SetState(message.StateSucceeded)
	c.logger.Debug(ctx, "message exchange succeeded", log.MapFields{
		"call_type": "ConnectorSendSuccess",
		"method":    msg.Method(),
		"path":      msg.Path(),
		"status":    res.Status,
	})
	return res, nil
}

func (c *Connector) count(msg *message.Message, res *message.Response, err error) {
	if c.metrics == nil {
		return
	}

	status := 0
	if res != nil {
		status = res.Status
	}

	outcome := metrics.OutcomeSuccess
	var cerr *errors.CommunicationError
	if stderr.As(err, &cerr) {
		outcome = metrics.OutcomeRejected
	} else if err != nil {
		outcome = metrics.OutcomeFailure
	}

	c.metrics.ExchangeCounter(msg.Method(), status, outcome).Inc()
}

func (c *Connector) send(ctx context.Context, msg *message.Message) (*message.Response, error) {
	if err := msg.Err(); err != nil {
		return nil, err
	}

	if err := c.prepareRequest(msg); err != nil {
		return nil, err
	}
	msg.SetState(message.StateRequestPrepared)

	// the transport may call receive from any goroutine, at most the
	// first call is taken into account
	ch := make(chan *message.Response, 1)
	receive := func(res *message.Response) {
		select {
		case ch <- res:
		default:
		}
	}

	msg.SetState(message.StateTransportDispatched)
	if err := c.transport.Send(ctx, msg, receive); err != nil {
		return nil, errors.New(errors.ErrTransportFailure, err)
	}

	var res *message.Response
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, errors.New(errors.ErrTransportFailure, ctx.Err())
	}
	msg.SetState(message.StateResponseReceived)

	if err := c.prepareResponse(msg, res); err != nil {
		return res, err
	}
	msg.SetState(message.StateResponseNormalized)

	if err := msg.DoReceive(res); err != nil {
		return res, err
	}

	return res, nil
}

func (c *Connector) prepareRequest(msg *message.Message) error {
	if len(msg.MimeType()) == 0 {
		switch msg.EntityType() {
		case message.JSON:
			msg.SetMimeType(mimeJSON)
		case message.Text:
			msg.SetMimeType(mimeText)
		}
	}

	if err := c.transport.ToFormat(msg); err != nil {
		return err
	}

	if len(msg.Accept()) == 0 {
		switch msg.ResponseType() {
		case message.JSON:
			msg.SetAccept(acceptJSON)
		case message.Text:
			msg.SetAccept(acceptText)
		default:
			msg.SetAccept(acceptDefault)
		}
	}

	if msg.IsNoCache() && !c.transport.SupportsRevalidation() {
		msg.SetHeader(message.HeaderIfMatch, `""`)
		msg.SetIfNoneMatch("-")
	}

	if c.Gzip() {
		tag := msg.IfNoneMatch()
		if len(tag) > 0 && tag != `""` && tag != "*" {
			msg.SetHeader(message.HeaderIfNoneMatch, tag[:len(tag)-1]+gzipSuffix+`"`)
		}
	}

	storage := msg.TokenStorage()
	if msg.Path() == connectPath {
		path := connectPath
		token := ""
		if storage != nil {
			signed := storage.SignPath(c.conn.BasePath + connectPath)
			path = strings.TrimPrefix(signed, c.conn.BasePath)
			token = storage.Token()
		}

		if len(msg.CacheControl()) > 0 {
			if len(token) > 0 {
				path += "&BCB"
			} else {
				path += "?BCB"
			}
		}
		msg.Request().Path = path
		return nil
	}

	if storage != nil {
		if token := storage.Token(); len(token) > 0 {
			msg.SetHeader(message.HeaderAuthorization, "BAT "+token)
		}
	}

	return nil
}

func (c *Connector) prepareResponse(msg *message.Message, res *message.Response) error {
	// some environments report 204 as 1223
	if res.Status == 1223 {
		res.Status = 204
	}

	// some proxies send content back on 204 responses
	if res.Status == 204 {
		res.Entity = nil
	}

	t := msg.ResponseType()
	if res.Entity != nil && (len(t) == 0 || res.Status >= 400) {
		if strings.Contains(res.Header("content-type"), "application/json") {
			t = message.JSON
		}
	}

	if etag := res.Header("etag"); len(etag) > 0 {
		res.SetHeader("etag", strings.Replace(etag, gzipSuffix, "", 1))
	}

	if storage := msg.TokenStorage(); storage != nil {
		if token := res.Header(headerAuthorizationToken); len(token) > 0 {
			storage.Update(token)
		}
	}

	if res.Entity == nil {
		return nil
	}

	entity, err := c.transport.FromFormat(msg, res, t)
	if err != nil {
		res.Entity = nil
		return errors.New(errors.ErrInvalidResponse,
			pkgerrors.Wrapf(err, "Response was not valid %s", t))
	}
	res.Entity = entity

	if entity != nil && strings.Contains(msg.Path(), connectPath) {
		c.setGzip(advertisesGzip(entity))
	}

	return nil
}

// advertisesGzip returns true if the connect response entity has a
// truthy gzip property
func advertisesGzip(entity interface{}) bool {
	m, ok := entity.(map[string]interface{})
	if !ok {
		return false
	}

	switch v := m["gzip"].(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case string:
		return len(v) > 0
	case nil:
		return false
	default:
		return true
	}
}
