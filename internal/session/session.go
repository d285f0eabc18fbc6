// Package session persists authentication state under the same fixed keys
// the browser client used in local storage.
package session

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	KeyToken        = "token"
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
	KeyUser         = "user"
)

var ErrNoUser = errors.New("session: no user stored")

// Storage is the subset of localstore.Store a session needs.
type Storage interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Clear(keys ...string) error
}

type TokenPair struct {
	AccessToken  string `json:"access"`
	RefreshToken string `json:"refresh"`
}

type Manager struct {
	storage Storage
	mu      sync.RWMutex
	now     func() time.Time
}

func NewManager(storage Storage) *Manager {
	return &Manager{storage: storage, now: time.Now}
}

// Save stores the token pair and the user object. The access token is
// written under both token keys since older screens read "token".
func (m *Manager) Save(pair TokenPair, user any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.storage.Set(KeyAccessToken, pair.AccessToken); err != nil {
		return err
	}
	if err := m.storage.Set(KeyToken, pair.AccessToken); err != nil {
		return err
	}
	if pair.RefreshToken != "" {
		if err := m.storage.Set(KeyRefreshToken, pair.RefreshToken); err != nil {
			return err
		}
	}
	if user == nil {
		return nil
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return m.storage.Set(KeyUser, string(raw))
}

// SetAccessToken replaces the access token after a refresh.
func (m *Manager) SetAccessToken(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.storage.Set(KeyAccessToken, token); err != nil {
		return err
	}
	return m.storage.Set(KeyToken, token)
}

// Token returns the bearer token, preferring accessToken over token.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, key := range []string{KeyAccessToken, KeyToken} {
		if value, err := m.storage.Get(key); err == nil && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func (m *Manager) RefreshToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, err := m.storage.Get(KeyRefreshToken)
	if err != nil {
		return ""
	}
	return value
}

func (m *Manager) User(dest any) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	raw, err := m.storage.Get(KeyUser)
	if err != nil || raw == "" {
		return ErrNoUser
	}
	return json.Unmarshal([]byte(raw), dest)
}

func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.storage.Clear(KeyToken, KeyAccessToken, KeyRefreshToken, KeyUser)
}

// Valid reports whether a token is stored and not past its exp claim.
func (m *Manager) Valid() bool {
	token := m.Token()
	if token == "" {
		return false
	}
	exp, ok := Expiry(token)
	if !ok {
		return true
	}
	return m.now().Before(exp)
}

// Expiry reads the exp claim of a JWT without verifying its signature; the
// backend remains the authority. ok is false for opaque tokens and tokens
// without exp.
func Expiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
