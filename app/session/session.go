package session

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mytheresa/storefront/app/notify"
	"github.com/mytheresa/storefront/app/storage"
	"github.com/mytheresa/storefront/internal/api"
	"github.com/mytheresa/storefront/models"
)

var ErrNotLoggedIn = errors.New("session: not logged in")

var _ api.TokenSource = (*Session)(nil)

type AuthProvider interface {
	Login(ctx context.Context, email, password string) (*api.LoginResponse, error)
	Profile(ctx context.Context) (*models.User, error)
}

// Session holds the bearer token and the cached profile. A remembered
// login lives in durable storage; otherwise it lives in process memory and
// is gone after a restart.
type Session struct {
	auth    AuthProvider
	durable storage.Storage
	memory  storage.Storage
	notices notify.Notifier
	log     logrus.FieldLogger
	now     func() time.Time

	mu       sync.Mutex
	teardown []func()
}

func New(auth AuthProvider, durable, memory storage.Storage, n notify.Notifier, log logrus.FieldLogger) *Session {
	return &Session{
		auth:    auth,
		durable: durable,
		memory:  memory,
		notices: n,
		log:     log.WithField("component", "session"),
		now:     time.Now,
	}
}

// SetAuth wires the provider after construction, for when the provider
// itself takes its tokens from this session.
func (s *Session) SetAuth(a AuthProvider) {
	s.auth = a
}

// OnLogout registers f to run on every logout.
func (s *Session) OnLogout(f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teardown = append(s.teardown, f)
}

func (s *Session) Login(ctx context.Context, email, password string, remember bool) (*models.User, error) {
	res, err := s.auth.Login(ctx, email, password)
	if err != nil {
		s.notices.Notify(notify.LevelError, api.Message(err, "Login failed"))
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.forget()
	target := s.memory
	if remember {
		target = s.durable
	}
	if err := storage.SaveJSON(target, storage.KeyToken, res.Token); err != nil {
		return nil, errors.Wrap(err, "store token")
	}
	if err := storage.SaveJSON(target, storage.KeyUser, res.User); err != nil {
		return nil, errors.Wrap(err, "store profile")
	}

	s.log.WithFields(logrus.Fields{"user": res.User.Email, "remember": remember}).Info("logged in")
	s.notices.Notify(notify.LevelSuccess, "Logged in successfully")
	user := res.User
	return &user, nil
}

// Token returns the current bearer token, session storage first. An
// expired JWT is dropped along with the cached profile.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, _ := s.lookup()
	if token == "" {
		return ""
	}
	if s.expired(token) {
		s.log.Info("dropping expired token")
		s.forget()
		return ""
	}
	return token
}

// User returns the cached profile of the signed-in user.
func (s *Session) User() (*models.User, error) {
	if s.Token() == "" {
		return nil, ErrNotLoggedIn
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, store := s.lookup()
	var user models.User
	if err := storage.LoadJSON(store, storage.KeyUser, &user); err != nil {
		return nil, ErrNotLoggedIn
	}
	return &user, nil
}

// Refresh fetches the profile again and updates the cached copy.
func (s *Session) Refresh(ctx context.Context) (*models.User, error) {
	if s.Token() == "" {
		return nil, ErrNotLoggedIn
	}
	user, err := s.auth.Profile(ctx)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			s.Logout()
		}
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, store := s.lookup(); store != nil {
		if err := storage.SaveJSON(store, storage.KeyUser, user); err != nil {
			s.log.WithError(err).Warn("failed to cache profile")
		}
	}
	return user, nil
}

// Logout forgets the token and profile and runs the teardown hooks.
func (s *Session) Logout() {
	s.mu.Lock()
	s.forget()
	hooks := append([]func(){}, s.teardown...)
	s.mu.Unlock()

	for _, f := range hooks {
		f()
	}
	s.notices.Notify(notify.LevelInfo, "Logged out")
}

// lookup must be called with mu held.
func (s *Session) lookup() (string, storage.Storage) {
	for _, store := range []storage.Storage{s.memory, s.durable} {
		var token string
		if err := storage.LoadJSON(store, storage.KeyToken, &token); err == nil && token != "" {
			return token, store
		}
	}
	return "", nil
}

// forget must be called with mu held.
func (s *Session) forget() {
	for _, store := range []storage.Storage{s.memory, s.durable} {
		for _, key := range []string{storage.KeyToken, storage.KeyUser} {
			if err := store.Remove(key); err != nil {
				s.log.WithError(err).WithField("key", key).Warn("failed to clear session data")
			}
		}
	}
}

// expired reads the exp claim without verifying the signature; the remote
// API stays the authority on validity. Tokens that are not JWTs never
// expire here.
func (s *Session) expired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !s.now().Before(exp.Time)
}
