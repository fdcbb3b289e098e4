package token

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"net/url"
	"sync"
)

// signatureLength is the number of trailing characters of a token
// that hold the key used to sign resource paths
const signatureLength = 40

// Storage holds the bearer token of a session. A storage is shared by
// every message created for the same session, so implementations must
// be safe for concurrent use. Updates are last-writer-wins.
type Storage interface {
	// Token returns the current token or an empty string
	Token() string

	// SignPath embeds the credentials of the current token into the
	// provided path so that it can be requested without headers
	SignPath(path string) string

	// Update replaces the current token
	Update(token string)
}

// SignPath signs the path with the given token. The token is split
// into its data part and its trailing key, and the path is extended with
// a BAT query parameter holding the data and the hmac of path and data.
// Paths are returned unchanged when there is no token.
func SignPath(path, token string) string {
	if len(token) == 0 {
		return path
	}

	data, key := token, ""
	if len(token) > signatureLength {
		data = token[:len(token)-signatureLength]
		key = token[len(token)-signatureLength:]
	}

	mac := hmac.New(sha1.New, []byte(key))
	_, _ = mac.Write([]byte(path + data))
	signature := hex.EncodeToString(mac.Sum(nil))

	return path + "?BAT=" + url.QueryEscape(data+signature)
}

// MemStorage keeps the token in memory
type MemStorage struct {
	mu    sync.RWMutex
	token string
}

// NewMemStorage creates a new in memory storage initialized
// with the provided token, which may be empty
func NewMemStorage(token string) *MemStorage {
	return &MemStorage{token: token}
}

// Token implementation of Storage for MemStorage
func (s *MemStorage) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// SignPath implementation of Storage for MemStorage
func (s *MemStorage) SignPath(path string) string {
	return SignPath(path, s.Token())
}

// Update implementation of Storage for MemStorage
func (s *MemStorage) Update(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}
