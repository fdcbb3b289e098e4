package message

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oasislabs/baqend-connector/errors"
	"github.com/oasislabs/baqend-connector/token"
)

// MethodOAuth is the synthetic method of the messages that run
// an OAuth handshake instead of an http exchange
const MethodOAuth = "OAUTH"

const (
	HeaderContentType       = "Content-Type"
	HeaderContentLength     = "Content-Length"
	HeaderIfMatch           = "If-Match"
	HeaderIfNoneMatch       = "If-None-Match"
	HeaderIfUnmodifiedSince = "If-Unmodified-Since"
	HeaderCacheControl      = "Cache-Control"
	HeaderAccept            = "Accept"
	HeaderAuthorization     = "Authorization"
	HeaderACL               = "Baqend-Acl"
	HeaderCustomHeaders     = "Baqend-Custom-Headers"
)

// ProgressFunc is notified while the request body is uploaded
type ProgressFunc func(sent, total int64)

// Request is the request a message resolves to
type Request struct {
	Method  string
	Path    string
	Headers http.Header
	Entity  interface{}
	Type    EntityType
}

// Message is a single logical call to the service. It is owned by the
// caller that creates it, is mutated through its setters before being
// sent and is sent exactly once.
type Message struct {
	id      string
	spec    *Specification
	request Request
	state   State
	err     error

	responseType    EntityType
	responseTarget  interface{}
	tokenStorage    token.Storage
	progress        ProgressFunc
	withCredentials bool
	noCache         bool
}

func newMessage(spec *Specification, args []interface{}) *Message {
	path, index := spec.buildPath(args)

	m := &Message{
		id:   uuid.New().String(),
		spec: spec,
		request: Request{
			Method:  spec.method,
			Path:    path,
			Headers: make(http.Header),
		},
		state:        StateCreated,
		responseType: JSON,
	}

	if body := argAt(args, index); body != nil {
		m.SetEntity(body, JSON)
	}

	return m
}

// ID returns the unique identifier of the message
func (m *Message) ID() string {
	return m.id
}

// Spec returns the specification the message was created from
func (m *Message) Spec() *Specification {
	return m.spec
}

// Request returns the request of the message. Transports read it after
// the message has been prepared.
func (m *Message) Request() *Request {
	return &m.request
}

// Method returns the http method of the request
func (m *Message) Method() string {
	return m.request.Method
}

// Path returns the request path including the query string
func (m *Message) Path() string {
	return m.request.Path
}

// SetPath replaces the path. Query parameters of the current path are
// kept and merged with the ones of the new path.
func (m *Message) SetPath(path string) *Message {
	i := strings.Index(m.request.Path, "?")
	if i < 0 {
		m.request.Path = path
		return m
	}

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	m.request.Path = path + sep + m.request.Path[i+1:]
	return m
}

// AddQuery appends the key value pairs to the request path
func (m *Message) AddQuery(pairs ...string) *Message {
	sep := "?"
	if strings.Contains(m.request.Path, "?") {
		sep = "&"
	}

	for i := 0; i+1 < len(pairs); i += 2 {
		m.request.Path += sep + pairs[i] + "=" + EncodeURIComponent(pairs[i+1])
		sep = "&"
	}

	return m
}

// AddRawQuery appends query verbatim to the request path
func (m *Message) AddRawQuery(query string) *Message {
	m.request.Path += query
	return m
}

// Header returns the value of the request header
func (m *Message) Header(name string) string {
	return m.request.Headers.Get(name)
}

// SetHeader sets the value of the request header
func (m *Message) SetHeader(name, value string) *Message {
	m.request.Headers.Set(name, value)
	return m
}

// RemoveHeader removes the request header
func (m *Message) RemoveHeader(name string) *Message {
	m.request.Headers.Del(name)
	return m
}

// Entity returns the request body
func (m *Message) Entity() interface{} {
	return m.request.Entity
}

// EntityType returns the type tag of the request body
func (m *Message) EntityType() EntityType {
	return m.request.Type
}

// SetEntity sets the request body. An empty type is inferred
// from the value
func (m *Message) SetEntity(data interface{}, t EntityType) *Message {
	if len(t) == 0 {
		t = DetectEntityType(data)
	}

	m.request.Type = t
	m.request.Entity = data
	return m
}

// MimeType returns the content type of the request
func (m *Message) MimeType() string {
	return m.Header(HeaderContentType)
}

// SetMimeType sets the content type of the request
func (m *Message) SetMimeType(mimeType string) *Message {
	return m.SetHeader(HeaderContentType, mimeType)
}

// ContentLength returns the declared content length or -1
// when it is not set
func (m *Message) ContentLength() int64 {
	v := m.Header(HeaderContentLength)
	if len(v) == 0 {
		return -1
	}

	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return -1
	}
	return n
}

// SetContentLength sets the content length of the request
func (m *Message) SetContentLength(length int64) *Message {
	return m.SetHeader(HeaderContentLength, strconv.FormatInt(length, 10))
}

// IfMatch returns the If-Match request header
func (m *Message) IfMatch() string {
	return m.Header(HeaderIfMatch)
}

// SetIfMatch sets the If-Match request header quoting the tag
// if needed
func (m *Message) SetIfMatch(eTag string) *Message {
	return m.SetHeader(HeaderIfMatch, FormatETag(eTag))
}

// IfNoneMatch returns the If-None-Match request header
func (m *Message) IfNoneMatch() string {
	return m.Header(HeaderIfNoneMatch)
}

// SetIfNoneMatch sets the If-None-Match request header quoting the
// tag if needed
func (m *Message) SetIfNoneMatch(eTag string) *Message {
	return m.SetHeader(HeaderIfNoneMatch, FormatETag(eTag))
}

// IfUnmodifiedSince returns the If-Unmodified-Since request header
func (m *Message) IfUnmodifiedSince() string {
	return m.Header(HeaderIfUnmodifiedSince)
}

// SetIfUnmodifiedSince sets the If-Unmodified-Since request header
// as an RFC 1123 GMT date. A zero time leaves the header untouched.
func (m *Message) SetIfUnmodifiedSince(date time.Time) *Message {
	if date.IsZero() {
		return m
	}

	return m.SetHeader(HeaderIfUnmodifiedSince, date.UTC().Format(http.TimeFormat))
}

// NoCache marks the request so that it is not served by a local cache.
// Transports that cannot revalidate get conditional headers that are
// guaranteed not to match when the request is prepared.
func (m *Message) NoCache() *Message {
	m.noCache = true
	return m.SetCacheControl("max-age=0, no-cache")
}

// IsNoCache returns true if NoCache was called on the message
func (m *Message) IsNoCache() bool {
	return m.noCache
}

// CacheControl returns the Cache-Control request header
func (m *Message) CacheControl() string {
	return m.Header(HeaderCacheControl)
}

// SetCacheControl sets the Cache-Control request header
func (m *Message) SetCacheControl(value string) *Message {
	return m.SetHeader(HeaderCacheControl, value)
}

// ACL returns the serialized acl header
func (m *Message) ACL() string {
	return m.Header(HeaderACL)
}

// SetACL serializes acl as json into the acl header. A nil value
// leaves the header untouched.
func (m *Message) SetACL(acl interface{}) *Message {
	return m.setJSONHeader(HeaderACL, acl)
}

// CustomHeaders returns the serialized custom headers header
func (m *Message) CustomHeaders() string {
	return m.Header(HeaderCustomHeaders)
}

// SetCustomHeaders serializes headers as json into the custom headers
// header. A nil value leaves the header untouched.
func (m *Message) SetCustomHeaders(headers interface{}) *Message {
	return m.setJSONHeader(HeaderCustomHeaders, headers)
}

func (m *Message) setJSONHeader(name string, v interface{}) *Message {
	if v == nil {
		return m
	}

	p, err := json.Marshal(v)
	if err != nil {
		m.err = errors.New(errors.ErrInvalidHeaderValue, err)
		return m
	}

	return m.SetHeader(name, string(p))
}

// Accept returns the Accept request header
func (m *Message) Accept() string {
	return m.Header(HeaderAccept)
}

// SetAccept sets the Accept request header
func (m *Message) SetAccept(accept string) *Message {
	return m.SetHeader(HeaderAccept, accept)
}

// ResponseType returns the type the response body is decoded to
func (m *Message) ResponseType() EntityType {
	return m.responseType
}

// SetResponseType sets the type the response body is decoded to. An
// empty type lets the connector sniff it from the response.
func (m *Message) SetResponseType(t EntityType) *Message {
	m.responseType = t
	return m
}

// ResponseTarget returns the value json responses are decoded into
func (m *Message) ResponseTarget() interface{} {
	return m.responseTarget
}

// SetResponseTarget sets a pointer json responses are decoded into
// instead of generic maps and slices
func (m *Message) SetResponseTarget(v interface{}) *Message {
	m.responseTarget = v
	return m
}

// Progress returns the upload progress callback
func (m *Message) Progress() ProgressFunc {
	return m.progress
}

// SetProgress sets the upload progress callback
func (m *Message) SetProgress(fn ProgressFunc) *Message {
	if fn != nil {
		m.progress = fn
	}
	return m
}

// TokenStorage returns the storage of the session the message belongs to
func (m *Message) TokenStorage() token.Storage {
	return m.tokenStorage
}

// SetTokenStorage sets the storage of the session the message belongs to
func (m *Message) SetTokenStorage(storage token.Storage) *Message {
	m.tokenStorage = storage
	return m
}

// WithCredentials returns true if the transport should send credentials
// such as cookies along with the request
func (m *Message) WithCredentials() bool {
	return m.withCredentials
}

// SetWithCredentials sets whether the transport should send
// credentials along with the request
func (m *Message) SetWithCredentials(withCredentials bool) *Message {
	m.withCredentials = withCredentials
	return m
}

// IsBinary returns true if the request body or the response are binary
func (m *Message) IsBinary() bool {
	return m.request.Type.IsBinary() || m.responseType.IsBinary()
}

// Err returns the first error recorded by a setter
func (m *Message) Err() error {
	return m.err
}

// State returns the lifecycle state of the message
func (m *Message) State() State {
	return m.state
}

// SetState moves the message to a new lifecycle state
func (m *Message) SetState(state State) {
	m.state = state
}

// DoReceive validates the response status against the statuses the
// message accepts. A response must not be considered successful
// unless DoReceive returns nil.
func (m *Message) DoReceive(res *Response) error {
	if m.spec.Accepts(res.Status) {
		return nil
	}

	return errors.NewCommunicationError(
		m.request.Method,
		m.request.Path,
		res.Status,
		m.spec.Status(),
		res.Headers,
		res.Entity)
}

// FormatETag quotes eTag unless it is the wildcard, empty or
// already quoted
func FormatETag(eTag string) string {
	if len(eTag) == 0 || eTag == "*" || strings.Contains(eTag, "\"") {
		return eTag
	}

	return "\"" + eTag + "\""
}
