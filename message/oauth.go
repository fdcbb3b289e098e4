package message

import (
	"github.com/google/uuid"
)

// OAuthProvider is a third party identity provider that the service
// can complete an OAuth login for
type OAuthProvider struct {
	// Name of the provider as used in the redirect path
	Name string

	spec *Specification

	// redirectPath is appended to the base uri of the service
	redirectPath string

	// replacePath is true for providers whose authorization is driven
	// by the service itself, so the redirect becomes the request path
	replacePath bool
}

// OAuthMessage is a message that runs an OAuth handshake
type OAuthMessage struct {
	*Message
	provider *OAuthProvider
}

func newOAuthProvider(name, path string, query []string, redirectPath string) *OAuthProvider {
	return &OAuthProvider{
		Name: name,
		spec: CreateExternal(ExternalSpec{
			Method: MethodOAuth,
			Path:   path,
			Query:  query,
			Status: []int{200},
		}),
		redirectPath: redirectPath,
	}
}

var (
	OAuthGoogle = newOAuthProvider("google",
		"https://accounts.google.com/o/oauth2/auth?response_type=code&access_type=online",
		[]string{"client_id", "scope", "state"},
		"/db/User/OAuth/google")

	OAuthFacebook = newOAuthProvider("facebook",
		"https://www.facebook.com/v7.0/dialog/oauth?response_type=code",
		[]string{"client_id", "scope", "state"},
		"/db/User/OAuth/facebook")

	OAuthGitHub = newOAuthProvider("github",
		"https://github.com/login/oauth/authorize?response_type=code&access_type=online",
		[]string{"client_id", "scope", "state"},
		"/db/User/OAuth/github")

	OAuthLinkedIn = newOAuthProvider("linkedin",
		"https://www.linkedin.com/oauth/v2/authorization?response_type=code",
		[]string{"client_id", "scope", "state"},
		"/db/User/OAuth/linkedin")

	OAuthTwitter = &OAuthProvider{
		Name: "twitter",
		spec: CreateExternal(ExternalSpec{
			Method: MethodOAuth,
			Status: []int{200},
		}),
		redirectPath: "/db/User/OAuth1/twitter",
		replacePath:  true,
	}

	OAuthSalesforce = newOAuthProvider("salesforce",
		"",
		[]string{"client_id", "scope", "state"},
		"/db/User/OAuth/salesforce")
)

// Spec returns the specification of the provider's messages
func (p *OAuthProvider) Spec() *Specification {
	return p.spec
}

// New creates an OAuth message. The arguments are the values of the
// provider's query parameters, client id, scope and state.
func (p *OAuthProvider) New(args ...interface{}) *OAuthMessage {
	return &OAuthMessage{
		Message:  p.spec.New(args...),
		provider: p,
	}
}

// Provider returns the provider the message authorizes against
func (m *OAuthMessage) Provider() *OAuthProvider {
	return m.provider
}

// AddRedirectOrigin points the provider's redirect at the OAuth
// endpoint of the service reachable under baseURI
func (m *OAuthMessage) AddRedirectOrigin(baseURI string) *OAuthMessage {
	redirect := baseURI + m.provider.redirectPath
	if m.provider.replacePath {
		m.request.Path = redirect
		return m
	}

	m.AddQuery("redirect_uri", redirect)
	return m
}

// NewOAuthState returns a random value used as the state parameter
// of an OAuth handshake
func NewOAuthState() string {
	return uuid.New().String()
}
