package nethttp

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/oasislabs/baqend-connector/connector"
	"github.com/oasislabs/baqend-connector/errors"
	"github.com/oasislabs/baqend-connector/log"
	"github.com/oasislabs/baqend-connector/message"
	"github.com/oasislabs/baqend-connector/oauth/core"
	"github.com/oasislabs/baqend-connector/rw"
)

const (
	defaultResponseLimit = 1 << 26

	mimeForm = "application/x-www-form-urlencoded"
)

// HttpClient is the basic interface for the
// underlying http client used by the Transport
type HttpClient interface {
	Do(*http.Request) (*http.Response, error)
}

// Opener opens the authorization page of an OAuth provider for the
// user, e.g. by printing it or by launching a browser
type Opener interface {
	Open(ctx context.Context, uri string) error
}

// OpenerFunc is the implementation of Opener for functions
type OpenerFunc func(ctx context.Context, uri string) error

// Open is the implementation of Opener for OpenerFunc
func (f OpenerFunc) Open(ctx context.Context, uri string) error {
	return f(ctx, uri)
}

// TransportProps define the behaviour of a Transport
type TransportProps struct {
	// ResponseLimit is the maximum size of a response body
	ResponseLimit int64

	// Revalidation states whether the caches between the transport
	// and the service revalidate on cache-control alone
	Revalidation bool
}

// TransportDeps are the required instantiated dependencies
// that a Transport requires
type TransportDeps struct {
	Logger  log.Logger
	Client  HttpClient
	Jar     http.CookieJar
	Channel core.Channel
	Opener  Opener
}

// Transport is the implementation of connector.Transport over net/http
type Transport struct {
	conn          connector.Connection
	client        HttpClient
	jar           http.CookieJar
	channel       core.Channel
	opener        Opener
	logger        log.Logger
	responseLimit int64
	revalidation  bool

	mu      sync.Mutex
	pending *oauthHandle
}

// NewTransportWithDeps creates a transport for conn using the
// dependencies provided
func NewTransportWithDeps(conn connector.Connection, deps *TransportDeps, props *TransportProps) *Transport {
	limit := props.ResponseLimit
	if limit <= 0 {
		limit = defaultResponseLimit
	}

	return &Transport{
		conn:          conn,
		client:        deps.Client,
		jar:           deps.Jar,
		channel:       deps.Channel,
		opener:        deps.Opener,
		logger:        deps.Logger.ForClass("transport/nethttp", "Transport"),
		responseLimit: limit,
		revalidation:  props.Revalidation,
	}
}

// SupportsRevalidation implementation of connector.Transport for Transport
func (t *Transport) SupportsRevalidation() bool {
	return t.revalidation
}

// Send implementation of connector.Transport for Transport. Http
// exchanges complete before Send returns, OAuth handshakes complete
// when the completion is broadcast.
func (t *Transport) Send(ctx context.Context, msg *message.Message, receive connector.ReceiveFunc) error {
	if msg.Method() == message.MethodOAuth {
		return t.sendOAuth(ctx, msg, receive)
	}

	req, err := t.newRequest(ctx, msg)
	if err != nil {
		return err
	}

	res, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()

	if msg.WithCredentials() && t.jar != nil {
		t.jar.SetCookies(req.URL, res.Cookies())
	}

	response, err := t.readResponse(msg, res)
	if err != nil {
		return err
	}

	receive(response)
	return nil
}

func (t *Transport) newRequest(ctx context.Context, msg *message.Message) (*http.Request, error) {
	r := msg.Request()

	body, length, err := t.body(msg)
	if err != nil {
		return nil, err
	}

	if body != nil && msg.Progress() != nil {
		body = rw.NewProgressReader(body, length, msg.Progress())
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, t.conn.URI()+r.Path, body)
	if err != nil {
		return nil, err
	}

	for name, values := range r.Headers {
		for _, value := range values {
			req.Header.Add(name, value)
		}
	}

	if _, ok := r.Entity.(url.Values); ok && len(req.Header.Get(message.HeaderContentType)) == 0 {
		req.Header.Set(message.HeaderContentType, mimeForm)
	}

	if length >= 0 {
		req.ContentLength = length
	}

	if msg.WithCredentials() && t.jar != nil {
		for _, cookie := range t.jar.Cookies(req.URL) {
			req.AddCookie(cookie)
		}
	}

	return req, nil
}

// body returns the reader for the wire entity of msg and its length,
// which is -1 when unknown
func (t *Transport) body(msg *message.Message) (io.Reader, int64, error) {
	switch v := msg.Entity().(type) {
	case nil:
		return nil, 0, nil
	case string:
		return strings.NewReader(v), int64(len(v)), nil
	case []byte:
		return bytes.NewReader(v), int64(len(v)), nil
	case message.Bytes:
		return bytes.NewReader(v), int64(len(v)), nil
	case message.Blob:
		return bytes.NewReader(v.Data), int64(len(v.Data)), nil
	case *message.Blob:
		return bytes.NewReader(v.Data), int64(len(v.Data)), nil
	case url.Values:
		s := v.Encode()
		return strings.NewReader(s), int64(len(s)), nil
	case io.Reader:
		return v, msg.ContentLength(), nil
	default:
		return nil, 0, errors.New(errors.ErrUnsupportedFormat, nil)
	}
}

func (t *Transport) readResponse(msg *message.Message, res *http.Response) (*message.Response, error) {
	p, err := rw.ReadAllWithLimit(res.Body, t.responseLimit)
	if err != nil {
		return nil, err
	}

	response := &message.Response{
		Status:  res.StatusCode,
		Headers: make(map[string]string),
	}

	for _, name := range connector.ResponseHeaders {
		if value := res.Header.Get(name); len(value) > 0 {
			response.Headers[name] = value
		}
	}

	if len(p) == 0 {
		return response, nil
	}

	// error bodies are always read as text
	if msg.ResponseType().IsBinary() && res.StatusCode < 400 {
		response.Entity = p
	} else {
		response.Entity = string(p)
	}

	return response, nil
}
