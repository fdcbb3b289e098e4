package message

import (
	stderr "errors"
	"testing"
	"time"

	"github.com/oasislabs/baqend-connector/errors"
	"github.com/oasislabs/baqend-connector/token"
	"github.com/stretchr/testify/assert"
)

func TestFormatETag(t *testing.T) {
	assert.Equal(t, "\"abc\"", FormatETag("abc"))
	assert.Equal(t, "\"abc\"", FormatETag(FormatETag("abc")))
	assert.Equal(t, "*", FormatETag("*"))
	assert.Equal(t, "", FormatETag(""))
}

func TestConditionalHeaders(t *testing.T) {
	m := getObject.New("Person", "1").
		SetIfMatch("1").
		SetIfNoneMatch("*")

	assert.Equal(t, "\"1\"", m.IfMatch())
	assert.Equal(t, "*", m.IfNoneMatch())
}

func TestIfUnmodifiedSince(t *testing.T) {
	date := time.Date(2020, 1, 2, 3, 4, 5, 0, time.FixedZone("CET", 3600))

	m := getObject.New("Person", "1").SetIfUnmodifiedSince(date)

	assert.Equal(t, "Thu, 02 Jan 2020 02:04:05 GMT", m.IfUnmodifiedSince())
}

func TestIfUnmodifiedSinceZero(t *testing.T) {
	m := getObject.New("Person", "1").SetIfUnmodifiedSince(time.Time{})

	assert.Equal(t, "", m.IfUnmodifiedSince())
}

func TestNoCache(t *testing.T) {
	m := getObject.New("Person", "1").NoCache()

	assert.True(t, m.IsNoCache())
	assert.Equal(t, "max-age=0, no-cache", m.CacheControl())
}

func TestACLAndCustomHeaders(t *testing.T) {
	m := getObject.New("Person", "1").
		SetACL(map[string]interface{}{"read": map[string]string{"/db/User/1": "allow"}}).
		SetCustomHeaders(map[string]string{"x-a": "b"})

	assert.Equal(t, `{"read":{"/db/User/1":"allow"}}`, m.ACL())
	assert.Equal(t, `{"x-a":"b"}`, m.CustomHeaders())
	assert.Nil(t, m.Err())
}

func TestACLNil(t *testing.T) {
	m := getObject.New("Person", "1").SetACL(nil)

	assert.Equal(t, "", m.ACL())
	assert.Nil(t, m.Err())
}

func TestACLInvalidRecordsError(t *testing.T) {
	m := getObject.New("Person", "1").SetACL(make(chan int))

	assert.Equal(t, "", m.ACL())
	assert.True(t, errors.HasCode(m.Err(), errors.ErrInvalidHeaderValue))
}

func TestContentLength(t *testing.T) {
	m := getObject.New("Person", "1")
	assert.Equal(t, int64(-1), m.ContentLength())

	m.SetContentLength(12)
	assert.Equal(t, int64(12), m.ContentLength())
}

func TestSetEntityDetectsType(t *testing.T) {
	m := getObject.New("Person", "1")

	assert.Equal(t, Text, m.SetEntity("hello", "").EntityType())
	assert.Equal(t, DataURL, m.SetEntity("data:text/plain,hi", "").EntityType())
	assert.Equal(t, Buffer, m.SetEntity([]byte("hi"), "").EntityType())
	assert.Equal(t, JSON, m.SetEntity(map[string]int{"a": 1}, "").EntityType())
	assert.Equal(t, Base64, m.SetEntity("aGk=", Base64).EntityType())
}

func TestIsBinary(t *testing.T) {
	m := getObject.New("Person", "1")
	assert.False(t, m.IsBinary())

	m.SetResponseType(BlobType)
	assert.True(t, m.IsBinary())

	m.SetResponseType(JSON).SetEntity(Bytes("x"), "")
	assert.True(t, m.IsBinary())
}

func TestSetPathMergesQuery(t *testing.T) {
	m := getObjectDepth.New("Person", "1", 2)

	m.SetPath("/db/Person/2")
	assert.Equal(t, "/db/Person/2?depth=2", m.Path())

	m.SetPath("/db/Person/3?x=1")
	assert.Equal(t, "/db/Person/3?x=1&depth=2", m.Path())
}

func TestAddQuery(t *testing.T) {
	m := getObject.New("Person", "1").AddQuery("a", "1", "b", "x y")

	assert.Equal(t, "/db/Person/1?a=1&b=x%20y", m.Path())

	m.AddRawQuery("&c=3")
	assert.Equal(t, "/db/Person/1?a=1&b=x%20y&c=3", m.Path())
}

func TestMessageDefaults(t *testing.T) {
	m := getObject.New("Person", "1")

	assert.Equal(t, JSON, m.ResponseType())
	assert.Equal(t, StateCreated, m.State())
	assert.NotEmpty(t, m.ID())
	assert.NotEqual(t, m.ID(), getObject.New("Person", "1").ID())
	assert.Nil(t, m.TokenStorage())
	assert.False(t, m.WithCredentials())
}

func TestTokenStorage(t *testing.T) {
	storage := token.NewMemStorage("t")
	m := getObject.New("Person", "1").SetTokenStorage(storage)

	assert.Equal(t, storage, m.TokenStorage())
}

func TestDoReceiveAccepted(t *testing.T) {
	spec := Create(Spec{Method: "PUT", Path: "/db/:bucket/:id", Status: []int{200, 201}})
	m := spec.New("Person", "1")

	assert.Nil(t, m.DoReceive(&Response{Status: 200}))
	assert.Nil(t, m.DoReceive(&Response{Status: 201}))
}

func TestDoReceiveRejected(t *testing.T) {
	spec := Create(Spec{Method: "PUT", Path: "/db/:bucket/:id", Status: []int{200, 201}})
	m := spec.New("Person", "1")

	err := m.DoReceive(&Response{
		Status: 404,
		Entity: map[string]interface{}{"message": "Object not found"},
	})

	var cerr *errors.CommunicationError
	assert.True(t, stderr.As(err, &cerr))
	assert.Equal(t, 404, cerr.Status)
	assert.Equal(t, "PUT", cerr.Method)
	assert.Equal(t, "/db/Person/1", cerr.Path)
	assert.Equal(t, "Object not found", cerr.Msg)
}

func TestResponseHeader(t *testing.T) {
	res := &Response{}
	res.SetHeader("ETag", "\"1\"")

	assert.Equal(t, "\"1\"", res.Header("etag"))
	assert.Equal(t, "\"1\"", res.Header("ETAG"))
}

func TestStatusName(t *testing.T) {
	assert.Equal(t, "object-not-found", StatusObjectNotFound.Name())
	assert.Equal(t, "bad-credentials", StatusBadCredentials.Name())
	assert.Equal(t, "script-abortion", StatusScriptAbortion.String())
	assert.Equal(t, "599", StatusCode(599).Name())
	assert.Equal(t, StatusCode(460), StatusBadCredentials)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "created", StateCreated.String())
	assert.Equal(t, "succeeded", StateSucceeded.String())
	assert.True(t, StateFailed.Done())
	assert.False(t, StateResponseReceived.Done())
}
