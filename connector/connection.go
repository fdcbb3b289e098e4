package connector

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/oasislabs/baqend-connector/errors"
	pkgerrors "github.com/pkg/errors"
)

const (
	// DefaultBasePath is the base path of the api when none is given
	DefaultBasePath = "/v1"

	// DefaultAppDomain is appended to hosts that are app names
	DefaultAppDomain = ".app.baqend.com"
)

// ResponseHeaders are the response headers transports expose
// to the connector
var ResponseHeaders = []string{
	"baqend-authorization-token",
	"content-type",
	"baqend-size",
	"baqend-acl",
	"etag",
	"last-modified",
	"baqend-created-at",
	"baqend-custom-headers",
}

var (
	uriPattern     = regexp.MustCompile(`^(https?)://([^/:]+|\[[^\]]+\])(:(\d*))?(/\w+)?/?$`)
	appNamePattern = regexp.MustCompile(`^[a-z0-9-]*$`)
)

// Endpoint describes the service a connector is created for. Host is
// either a host name, an app name or an absolute uri. Zero values are
// replaced by defaults.
type Endpoint struct {
	Host     string
	Port     int
	Secure   *bool
	BasePath *string
}

// Connection identifies one (host, port, secure, basePath) tuple
type Connection struct {
	Host     string
	Port     int
	Secure   bool
	BasePath string

	// Origin is the uri of the connection without the base path
	Origin string
}

// URI returns the canonical uri of the connection
func (c Connection) URI() string {
	return c.Origin + c.BasePath
}

// ToURI builds the canonical uri for a connection. The port is omitted
// when it is the default port of the scheme and ipv6 hosts are
// enclosed in brackets.
func ToURI(host string, port int, secure bool, basePath string) string {
	var sb strings.Builder
	if secure {
		sb.WriteString("https://")
	} else {
		sb.WriteString("http://")
	}

	if strings.Contains(host, ":") {
		sb.WriteString("[" + host + "]")
	} else {
		sb.WriteString(host)
	}

	if (secure && port != 443) || (!secure && port != 80) {
		sb.WriteString(":" + strconv.Itoa(port))
	}

	sb.WriteString(basePath)
	return sb.String()
}

// resolveConnection applies the defaults to endpoint. location may be
// nil when there is no ambient location.
func resolveConnection(endpoint Endpoint, location *url.URL, appDomain string) (Connection, error) {
	host := endpoint.Host
	port := endpoint.Port
	secure := false

	if location != nil {
		if len(host) == 0 {
			host = location.Hostname()
			port, _ = strconv.Atoi(location.Port())
		}
		secure = location.Scheme == "https"
	}

	if endpoint.Secure != nil {
		secure = *endpoint.Secure
	}

	basePath := DefaultBasePath
	if endpoint.BasePath != nil {
		basePath = *endpoint.BasePath
	}

	if len(host) == 0 {
		return Connection{}, errors.New(errors.ErrHostNotSet, nil)
	}

	if strings.Contains(host, "/") {
		matches := uriPattern.FindStringSubmatch(host)
		if matches == nil {
			return Connection{}, errors.New(errors.ErrInvalidConnectionURI,
				pkgerrors.Errorf("the connection uri host %s seems not to be valid", host))
		}

		secure = matches[1] == "https"
		host = strings.Trim(matches[2], "[]")
		port, _ = strconv.Atoi(matches[4])
		basePath = matches[5]
	} else if host != "localhost" && appNamePattern.MatchString(host) {
		host += appDomain
	}

	if port == 0 {
		if secure {
			port = 443
		} else {
			port = 80
		}
	}

	return Connection{
		Host:     host,
		Port:     port,
		Secure:   secure,
		BasePath: basePath,
		Origin:   ToURI(host, port, secure, ""),
	}, nil
}
