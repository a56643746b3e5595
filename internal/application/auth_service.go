package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Session represents an issued admin session.
type Session struct {
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// SessionStore keeps issued sessions. Implementations must be safe for
// concurrent use.
type SessionStore interface {
	Put(session Session)
	Get(token string) (Session, bool)
	Delete(token string)
}

// SecretVerifier compares the configured admin secret with a candidate
// password.
type SecretVerifier func(secret, password string) error

// AuthService gates the admin area behind a single shared secret. A correct
// login yields a session token; every admin operation validates the token
// against the session store.
type AuthService struct {
	secret         string
	sessions       SessionStore
	verifySecret   SecretVerifier
	tokenGenerator func() string
	now            func() time.Time
	sessionTTL     time.Duration
	logger         *slog.Logger
}

// NewAuthService constructs an AuthService with the provided dependencies.
func NewAuthService(secret string, sessions SessionStore, tokenGenerator func() string, now func() time.Time, sessionTTL time.Duration) *AuthService {
	return NewAuthServiceWithLogger(secret, sessions, tokenGenerator, now, sessionTTL, nil)
}

// NewAuthServiceWithLogger constructs an AuthService with a specified logger.
func NewAuthServiceWithLogger(secret string, sessions SessionStore, tokenGenerator func() string, now func() time.Time, sessionTTL time.Duration, logger *slog.Logger) *AuthService {
	verify := comparePlainSecret
	if strings.HasPrefix(secret, "$argon2id$") {
		verify = VerifyPassword
	}
	if tokenGenerator == nil {
		tokenGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &AuthService{
		secret:         secret,
		sessions:       sessions,
		verifySecret:   verify,
		tokenGenerator: tokenGenerator,
		now:            now,
		sessionTTL:     sessionTTL,
		logger:         defaultLogger(logger),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// Login checks the candidate password against the configured secret and
// issues a new session on success.
func (s *AuthService) Login(ctx context.Context, password string) (session Session, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.sessions == nil {
		err = fmt.Errorf("session store not configured")
		return
	}

	logger := s.loggerWith(ctx, "Login")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "login failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "login succeeded")
	}()

	if password == "" || s.secret == "" {
		err = ErrInvalidCredentials
		return
	}
	if err = s.verifySecret(s.secret, password); err != nil {
		err = ErrInvalidCredentials
		return
	}

	now := s.now()
	session = Session{
		Token:     s.tokenGenerator(),
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if session.Token == "" {
		err = fmt.Errorf("token generator returned empty token")
		session = Session{}
		return
	}

	s.sessions.Put(session)
	return
}

// Validate verifies that the token corresponds to a live session. Expired
// sessions are removed on sight.
func (s *AuthService) Validate(ctx context.Context, token string) (Session, error) {
	if s == nil {
		return Session{}, fmt.Errorf("AuthService is nil")
	}
	if s.sessions == nil {
		return Session{}, fmt.Errorf("session store not configured")
	}

	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return Session{}, ErrUnauthorized
	}

	session, ok := s.sessions.Get(trimmed)
	if !ok {
		return Session{}, ErrUnauthorized
	}
	if !session.ExpiresAt.After(s.now()) {
		s.sessions.Delete(trimmed)
		return Session{}, ErrUnauthorized
	}
	return session, nil
}

// Logout discards the session for the given token. Unknown tokens are a
// no-op.
func (s *AuthService) Logout(ctx context.Context, token string) {
	if s == nil || s.sessions == nil {
		return
	}
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return
	}
	s.sessions.Delete(trimmed)
	s.loggerWith(ctx, "Logout").InfoContext(ctx, "session ended")
}
