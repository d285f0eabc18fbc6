package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"astro-admin-go/internal/models"
	"astro-admin-go/internal/session"
	"astro-admin-go/internal/store"

	"github.com/sirupsen/logrus"
)

const (
	loginPath   = "/auth/login/"
	logoutPath  = "/auth/logout/"
	refreshPath = "/auth/token/refresh/"
)

// refreshWindow is how close to expiry EnsureFresh renews the access token.
const refreshWindow = time.Minute

type Auth struct {
	api     store.Requester
	session *session.Manager
	store   *store.Store
	log     logrus.FieldLogger
	now     func() time.Time
}

func NewAuth(api store.Requester, sessions *session.Manager, st *store.Store, log logrus.FieldLogger) *Auth {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Auth{api: api, session: sessions, store: st, log: log, now: time.Now}
}

// Login exchanges credentials for tokens and persists them with the user.
func (a *Auth) Login(ctx context.Context, email, password string) (models.User, error) {
	creds := models.Credentials{Email: strings.TrimSpace(email), Password: password}
	if err := creds.Validate(); err != nil {
		return models.User{}, err
	}
	var resp models.LoginResponse
	if err := a.api.Post(ctx, loginPath, creds, &resp); err != nil {
		return models.User{}, err
	}
	token := resp.BearerToken()
	if token == "" {
		return models.User{}, ErrUnauthorized("Login response did not include a token")
	}
	pair := session.TokenPair{AccessToken: token, RefreshToken: resp.RefreshValue()}
	// A new sign-in replaces the whole session, including any refresh token
	// the response did not renew.
	if err := a.session.Clear(); err != nil {
		return models.User{}, WrapError(err, "clear session")
	}
	if err := a.session.Save(pair, nil); err != nil {
		return models.User{}, WrapError(err, "save session")
	}

	var user models.User
	if resp.User != nil {
		user = *resp.User
		if err := a.session.Save(pair, user); err != nil {
			return models.User{}, WrapError(err, "save session")
		}
	} else {
		fetched, err := a.Me(ctx)
		if err != nil {
			_ = a.session.Clear()
			return models.User{}, err
		}
		user = fetched
	}
	a.log.WithFields(logrus.Fields{"email": user.Email, "role": user.Role}).Info("signed in")
	return user, nil
}

// Logout tells the backend when possible, then always drops the stored
// session and every slice's state.
func (a *Auth) Logout(ctx context.Context) error {
	if a.session.Token() != "" {
		body := map[string]string{}
		if refresh := a.session.RefreshToken(); refresh != "" {
			body["refresh"] = refresh
		}
		if err := a.api.Post(ctx, logoutPath, body, nil); err != nil {
			a.log.WithField("error", err).Warn("backend logout failed, clearing local session anyway")
		}
	}
	err := a.session.Clear()
	if a.store != nil {
		a.store.Reset()
	}
	if err != nil {
		return WrapError(err, "clear session")
	}
	a.log.Info("signed out")
	return nil
}

// Refresh trades the stored refresh token for a new access token.
func (a *Auth) Refresh(ctx context.Context) error {
	refresh := a.session.RefreshToken()
	if refresh == "" {
		return ErrUnauthorized("No refresh token stored")
	}
	var resp models.LoginResponse
	if err := a.api.Post(ctx, refreshPath, map[string]string{"refresh": refresh}, &resp); err != nil {
		return err
	}
	token := resp.BearerToken()
	if token == "" {
		return ErrUnauthorized("Refresh response did not include a token")
	}
	if rotated := resp.RefreshValue(); rotated != "" {
		return a.session.Save(session.TokenPair{AccessToken: token, RefreshToken: rotated}, nil)
	}
	return a.session.SetAccessToken(token)
}

// EnsureFresh refreshes the access token when it expires within a minute.
// Opaque tokens are left alone.
func (a *Auth) EnsureFresh(ctx context.Context) error {
	token := a.session.Token()
	if token == "" {
		return ErrUnauthorized("Not signed in")
	}
	exp, ok := session.Expiry(token)
	if !ok || exp.Sub(a.now()) > refreshWindow {
		return nil
	}
	return a.Refresh(ctx)
}

// Me loads the signed-in user from the backend and updates the stored copy.
func (a *Auth) Me(ctx context.Context) (models.User, error) {
	if a.session.Token() == "" {
		return models.User{}, ErrUnauthorized("Not signed in")
	}
	var user models.User
	if err := a.api.Get(ctx, profilePath, nil, &user); err != nil {
		return models.User{}, err
	}
	pair := session.TokenPair{AccessToken: a.session.Token(), RefreshToken: a.session.RefreshToken()}
	if err := a.session.Save(pair, user); err != nil {
		return models.User{}, WrapError(err, "save user")
	}
	return user, nil
}

// Current returns the stored user without a request.
func (a *Auth) Current() (models.User, error) {
	if !a.session.Valid() {
		return models.User{}, ErrUnauthorized("Not signed in")
	}
	var user models.User
	if err := a.session.User(&user); err != nil {
		if errors.Is(err, session.ErrNoUser) {
			return models.User{}, ErrUnauthorized("Not signed in")
		}
		return models.User{}, err
	}
	return user, nil
}

// HandleUnauthorized clears the session after a 401 from any request.
func (a *Auth) HandleUnauthorized() {
	if err := a.session.Clear(); err != nil {
		a.log.WithField("error", err).Error("clear session after 401")
	}
	a.log.Warn("session rejected by backend, signed out")
}

// IsAuthError reports whether err means the user must sign in again.
func IsAuthError(err error) bool {
	return StatusOf(err) == http.StatusUnauthorized
}
