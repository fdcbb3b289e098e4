package connector_test

import (
	"context"
	stderr "errors"
	"testing"
	"time"

	"github.com/oasislabs/baqend-connector/connector"
	"github.com/oasislabs/baqend-connector/connector/connectortest"
	"github.com/oasislabs/baqend-connector/errors"
	"github.com/oasislabs/baqend-connector/log"
	"github.com/oasislabs/baqend-connector/message"
	"github.com/oasislabs/baqend-connector/metrics"
	"github.com/oasislabs/baqend-connector/token"
	"github.com/oasislabs/baqend-connector/token/tokentest"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

var (
	getObject = message.Create(message.Spec{
		Method: "GET",
		Path:   "/db/:bucket/:id",
		Status: []int{200},
	})

	putObject = message.Create(message.Spec{
		Method: "PUT",
		Path:   "/db/:bucket/:id",
		Status: []int{200, 201},
	})

	deleteObject = message.Create(message.Spec{
		Method: "DELETE",
		Path:   "/db/:bucket/:id",
		Status: []int{204},
	})

	connect = message.Create(message.Spec{
		Method: "GET",
		Path:   "/connect",
		Status: []int{200},
	})
)

func newConnector(t *testing.T, transport *connectortest.Transport) *connector.Connector {
	registry := connector.NewRegistry(&connector.RegistryServices{
		Logger: log.NewDiscard(),
	}, &connector.RegistryProps{})
	registry.Register(&connectortest.Factory{FactoryName: "fake", Usable: true, Transport: transport})

	c, err := registry.CreateURI("https://example.com/v1")
	assert.Nil(t, err)
	return c
}

func respond(status int, headers map[string]string, entity interface{}) func(*message.Message) *message.Response {
	return func(*message.Message) *message.Response {
		return &message.Response{Status: status, Headers: headers, Entity: entity}
	}
}

func TestSendSuccess(t *testing.T) {
	transport := &connectortest.Transport{
		Handler: respond(200, map[string]string{"content-type": "application/json"}, `{"id":"/db/Person/1"}`),
	}
	c := newConnector(t, transport)
	msg := getObject.New("Person", "1")

	res, err := c.Send(context.Background(), msg)

	assert.Nil(t, err)
	assert.Equal(t, 200, res.Status)
	assert.Equal(t, map[string]interface{}{"id": "/db/Person/1"}, res.Entity)
	assert.Equal(t, message.StateSucceeded, msg.State())

	sent := transport.Sent()
	assert.Equal(t, 1, len(sent))
	assert.Equal(t, "/db/Person/1", sent[0].Path)
	assert.Equal(t, "application/json", sent[0].Headers.Get("Accept"))
}

func TestSendPreparesJSONBody(t *testing.T) {
	transport := &connectortest.Transport{}
	c := newConnector(t, transport)
	msg := putObject.New("Person", "1", map[string]interface{}{"name": "Alice"})

	_, err := c.Send(context.Background(), msg)

	assert.Nil(t, err)
	sent := transport.Sent()[0]
	assert.Equal(t, "application/json;charset=utf-8", sent.Headers.Get("Content-Type"))
	assert.Equal(t, `{"name":"Alice"}`, sent.Entity)
}

func TestSendPreparesTextBody(t *testing.T) {
	transport := &connectortest.Transport{}
	c := newConnector(t, transport)
	msg := putObject.New("Person", "1").
		SetEntity("hello", "").
		SetResponseType(message.Text)

	_, err := c.Send(context.Background(), msg)

	assert.Nil(t, err)
	sent := transport.Sent()[0]
	assert.Equal(t, "text/plain;charset=utf-8", sent.Headers.Get("Content-Type"))
	assert.Equal(t, "text/*", sent.Headers.Get("Accept"))
}

func TestSendKeepsExplicitHeaders(t *testing.T) {
	transport := &connectortest.Transport{}
	c := newConnector(t, transport)
	msg := putObject.New("Person", "1").
		SetEntity("hello", "").
		SetMimeType("text/html").
		SetAccept("text/html").
		SetResponseType(message.BlobType)

	_, err := c.Send(context.Background(), msg)

	assert.Nil(t, err)
	sent := transport.Sent()[0]
	assert.Equal(t, "text/html", sent.Headers.Get("Content-Type"))
	assert.Equal(t, "text/html", sent.Headers.Get("Accept"))
}

func TestSendDefaultAccept(t *testing.T) {
	transport := &connectortest.Transport{}
	c := newConnector(t, transport)
	msg := getObject.New("Person", "1").SetResponseType(message.BlobType)

	_, err := c.Send(context.Background(), msg)

	assert.Nil(t, err)
	assert.Equal(t, "application/json,text/*;q=0.5,*/*;q=0.1", transport.Sent()[0].Headers.Get("Accept"))
}

func TestSendAuthorizationHeader(t *testing.T) {
	transport := &connectortest.Transport{}
	c := newConnector(t, transport)
	msg := getObject.New("Person", "1").SetTokenStorage(token.NewMemStorage("abc"))

	_, err := c.Send(context.Background(), msg)

	assert.Nil(t, err)
	assert.Equal(t, "BAT abc", transport.Sent()[0].Headers.Get("Authorization"))
}

func TestSendNoAuthorizationWithoutToken(t *testing.T) {
	transport := &connectortest.Transport{}
	c := newConnector(t, transport)
	msg := getObject.New("Person", "1").SetTokenStorage(token.NewMemStorage(""))

	_, err := c.Send(context.Background(), msg)

	assert.Nil(t, err)
	assert.Equal(t, "", transport.Sent()[0].Headers.Get("Authorization"))
}

func TestSendUpdatesToken(t *testing.T) {
	transport := &connectortest.Transport{
		Handler: respond(200, map[string]string{"baqend-authorization-token": "new-token"}, nil),
	}
	c := newConnector(t, transport)
	storage := token.NewMemStorage("old-token")
	msg := getObject.New("Person", "1").SetTokenStorage(storage)

	_, err := c.Send(context.Background(), msg)

	assert.Nil(t, err)
	assert.Equal(t, "new-token", storage.Token())
}

func TestSendConnectSignsPath(t *testing.T) {
	storage := &tokentest.MockStorage{}
	storage.On("SignPath", "/v1/connect").Return("/v1/connect?BAT=signed")
	storage.On("Token").Return("tok")

	transport := &connectortest.Transport{
		Handler: respond(200, nil, `{"gzip":false}`),
	}
	c := newConnector(t, transport)
	msg := connect.New().SetTokenStorage(storage)

	_, err := c.Send(context.Background(), msg)

	assert.Nil(t, err)
	sent := transport.Sent()[0]
	assert.Equal(t, "/connect?BAT=signed", sent.Path)
	assert.Equal(t, "", sent.Headers.Get("Authorization"))
	storage.AssertExpectations(t)
}

func TestSendConnectCacheBusterWithToken(t *testing.T) {
	storage := &tokentest.MockStorage{}
	storage.On("SignPath", "/v1/connect").Return("/v1/connect?BAT=signed")
	storage.On("Token").Return("tok")

	transport := &connectortest.Transport{}
	c := newConnector(t, transport)
	msg := connect.New().SetTokenStorage(storage).NoCache()

	_, err := c.Send(context.Background(), msg)

	assert.Nil(t, err)
	assert.Equal(t, "/connect?BAT=signed&BCB", transport.Sent()[0].Path)
}

func TestSendConnectCacheBusterWithoutToken(t *testing.T) {
	transport := &connectortest.Transport{}
	c := newConnector(t, transport)
	msg := connect.New().SetTokenStorage(token.NewMemStorage("")).NoCache()

	_, err := c.Send(context.Background(), msg)

	assert.Nil(t, err)
	assert.Equal(t, "/connect?BCB", transport.Sent()[0].Path)
}

func TestSendConnectCapturesGzip(t *testing.T) {
	transport := &connectortest.Transport{
		Handler: respond(200, nil, `{"gzip":true}`),
	}
	c := newConnector(t, transport)
	assert.False(t, c.Gzip())

	_, err := c.Send(context.Background(), connect.New())
	assert.Nil(t, err)
	assert.True(t, c.Gzip())

	transport.Handler = respond(200, nil, `{}`)
	_, err = c.Send(context.Background(), connect.New())
	assert.Nil(t, err)
	assert.False(t, c.Gzip())
}

func TestSendGzipRewritesIfNoneMatch(t *testing.T) {
	transport := &connectortest.Transport{
		Handler: respond(200, nil, `{"gzip":true}`),
	}
	c := newConnector(t, transport)
	_, err := c.Send(context.Background(), connect.New())
	assert.Nil(t, err)

	transport.Handler = respond(200, map[string]string{"etag": `"abc--gzip"`}, nil)
	res, err := c.Send(context.Background(), getObject.New("Person", "1").SetIfNoneMatch("abc"))

	assert.Nil(t, err)
	assert.Equal(t, `"abc--gzip"`, transport.Sent()[1].Headers.Get("If-None-Match"))
	assert.Equal(t, `"abc"`, res.Header("etag"))
}

func TestSendGzipKeepsWildcards(t *testing.T) {
	transport := &connectortest.Transport{
		Handler: respond(200, nil, `{"gzip":true}`),
	}
	c := newConnector(t, transport)
	_, err := c.Send(context.Background(), connect.New())
	assert.Nil(t, err)

	transport.Handler = nil
	_, err = c.Send(context.Background(), getObject.New("Person", "1").SetIfNoneMatch("*"))
	assert.Nil(t, err)
	_, err = c.Send(context.Background(), getObject.New("Person", "1").SetHeader("If-None-Match", `""`))
	assert.Nil(t, err)

	sent := transport.Sent()
	assert.Equal(t, "*", sent[1].Headers.Get("If-None-Match"))
	assert.Equal(t, `""`, sent[2].Headers.Get("If-None-Match"))
}

func TestSendWithoutGzipKeepsIfNoneMatch(t *testing.T) {
	transport := &connectortest.Transport{}
	c := newConnector(t, transport)

	_, err := c.Send(context.Background(), getObject.New("Person", "1").SetIfNoneMatch("abc"))

	assert.Nil(t, err)
	assert.Equal(t, `"abc"`, transport.Sent()[0].Headers.Get("If-None-Match"))
}

func TestSendNoCacheWithoutRevalidation(t *testing.T) {
	transport := &connectortest.Transport{Revalidation: false}
	c := newConnector(t, transport)

	_, err := c.Send(context.Background(), getObject.New("Person", "1").NoCache())

	assert.Nil(t, err)
	sent := transport.Sent()[0]
	assert.Equal(t, "max-age=0, no-cache", sent.Headers.Get("Cache-Control"))
	assert.Equal(t, `""`, sent.Headers.Get("If-Match"))
	assert.Equal(t, `"-"`, sent.Headers.Get("If-None-Match"))
}

func TestSendNoCacheWithRevalidation(t *testing.T) {
	transport := &connectortest.Transport{Revalidation: true}
	c := newConnector(t, transport)

	_, err := c.Send(context.Background(), getObject.New("Person", "1").NoCache())

	assert.Nil(t, err)
	sent := transport.Sent()[0]
	assert.Equal(t, "max-age=0, no-cache", sent.Headers.Get("Cache-Control"))
	assert.Equal(t, "", sent.Headers.Get("If-Match"))
	assert.Equal(t, "", sent.Headers.Get("If-None-Match"))
}

func TestSendMaps1223To204(t *testing.T) {
	transport := &connectortest.Transport{
		Handler: respond(1223, nil, "ignored"),
	}
	c := newConnector(t, transport)

	res, err := c.Send(context.Background(), deleteObject.New("Person", "1"))

	assert.Nil(t, err)
	assert.Equal(t, 204, res.Status)
	assert.Nil(t, res.Entity)
}

func TestSend204DropsEntity(t *testing.T) {
	transport := &connectortest.Transport{
		Handler: respond(204, nil, `{"proxy":"content"}`),
	}
	c := newConnector(t, transport)

	res, err := c.Send(context.Background(), deleteObject.New("Person", "1"))

	assert.Nil(t, err)
	assert.Nil(t, res.Entity)
}

func TestSendRejectedStatus(t *testing.T) {
	transport := &connectortest.Transport{
		Handler: respond(404, map[string]string{"content-type": "application/json"},
			`{"message":"Object /db/Person/1 not found","reason":"Object not found"}`),
	}
	c := newConnector(t, transport)
	msg := putObject.New("Person", "1")

	res, err := c.Send(context.Background(), msg)

	var perr *errors.PersistentError
	assert.True(t, stderr.As(err, &perr))
	assert.Equal(t, "Object /db/Person/1 not found", perr.Msg)

	var cerr *errors.CommunicationError
	assert.True(t, stderr.As(err, &cerr))
	assert.Equal(t, 404, cerr.Status)
	assert.Equal(t, "Object not found", cerr.Reason)

	assert.Equal(t, 404, res.Status)
	assert.Nil(t, res.Entity)
	assert.Equal(t, message.StateFailed, msg.State())
}

func TestSendSniffsJSONOnError(t *testing.T) {
	transport := &connectortest.Transport{
		Handler: respond(460, map[string]string{"content-type": "application/json;charset=utf-8"},
			`{"message":"bad credentials"}`),
	}
	c := newConnector(t, transport)
	msg := getObject.New("Person", "1").SetResponseType(message.Text)

	_, err := c.Send(context.Background(), msg)

	var cerr *errors.CommunicationError
	assert.True(t, stderr.As(err, &cerr))
	assert.Equal(t, "bad credentials", cerr.Msg)
}

func TestSendInvalidResponse(t *testing.T) {
	transport := &connectortest.Transport{
		Handler: respond(200, nil, `{not json`),
	}
	c := newConnector(t, transport)

	res, err := c.Send(context.Background(), getObject.New("Person", "1"))

	assert.True(t, errors.HasCode(err, errors.ErrInvalidResponse))
	assert.Contains(t, err.Error(), "Response was not valid json")
	assert.Nil(t, res.Entity)
}

func TestSendTransportFailure(t *testing.T) {
	transport := &connectortest.Transport{SendErr: stderr.New("connection refused")}
	c := newConnector(t, transport)
	msg := getObject.New("Person", "1")

	res, err := c.Send(context.Background(), msg)

	assert.Nil(t, res)
	var perr *errors.PersistentError
	assert.True(t, stderr.As(err, &perr))
	assert.True(t, errors.HasCode(err, errors.ErrTransportFailure))
	assert.Equal(t, message.StateFailed, msg.State())
}

func TestSendTwiceFails(t *testing.T) {
	transport := &connectortest.Transport{}
	c := newConnector(t, transport)
	msg := getObject.New("Person", "1")

	_, err := c.Send(context.Background(), msg)
	assert.Nil(t, err)

	_, err = c.Send(context.Background(), msg)
	assert.True(t, errors.HasCode(err, errors.ErrMessageAlreadySent))
	assert.Equal(t, 1, len(transport.Sent()))
}

func TestSendInvalidHeaderValue(t *testing.T) {
	transport := &connectortest.Transport{}
	c := newConnector(t, transport)
	msg := getObject.New("Person", "1").SetACL(make(chan int))

	_, err := c.Send(context.Background(), msg)

	assert.True(t, errors.HasCode(err, errors.ErrInvalidHeaderValue))
	assert.Equal(t, 0, len(transport.Sent()))
}

func TestSendContextCanceled(t *testing.T) {
	transport := &connectortest.Transport{
		Handler: func(*message.Message) *message.Response { return nil },
	}
	c := newConnector(t, transport)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := c.Send(ctx, getObject.New("Person", "1"))

	assert.True(t, errors.HasCode(err, errors.ErrTransportFailure))
	assert.True(t, stderr.Is(err, context.DeadlineExceeded))
}

func TestSendMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := metrics.NewConnectorMetrics(registry, "test")
	assert.Nil(t, err)

	connectors := connector.NewRegistry(&connector.RegistryServices{
		Logger:  log.NewDiscard(),
		Metrics: m,
	}, &connector.RegistryProps{})
	transport := &connectortest.Transport{}
	connectors.Register(&connectortest.Factory{FactoryName: "fake", Usable: true, Transport: transport})
	c, err := connectors.CreateURI("https://example.com/v1")
	assert.Nil(t, err)

	_, err = c.Send(context.Background(), getObject.New("Person", "1"))
	assert.Nil(t, err)

	transport.Handler = respond(404, nil, nil)
	_, err = c.Send(context.Background(), getObject.New("Person", "2"))
	assert.NotNil(t, err)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.ExchangeCounter("GET", 200, metrics.OutcomeSuccess)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ExchangeCounter("GET", 404, metrics.OutcomeRejected)))
}
