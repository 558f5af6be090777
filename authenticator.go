package auth

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
)

// TokenTypeBearer is the token type reported to clients
const TokenTypeBearer = "bearer"

// LoginResult is the outcome of a successful login
type LoginResult struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"-"`
	User        *User     `json:"-"`
}

// Auther checks credentials and issues access tokens
type Auther struct {
	verifier     CredentialChecker
	tokens       TokenIssuer
	activitySink ActivitySink
	now          Clock
	logger       Logger
}

// NewAuthenticator creates an Auther
func NewAuthenticator(verifier CredentialChecker, tokens TokenIssuer) *Auther {
	return &Auther{
		verifier:     verifier,
		tokens:       tokens,
		activitySink: noopActivitySink{},
		now:          time.Now,
		logger:       defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithActivitySink sets the sink that receives login events
func (s *Auther) WithActivitySink(sink ActivitySink) *Auther {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

func (s *Auther) WithClock(now Clock) *Auther {
	if now != nil {
		s.now = now
	}
	return s
}

// Login verifies the credentials and returns a bearer token for the user.
// A successful login emits ActivityEventLoginSuccess without waiting on it.
func (s *Auther) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.verifier.VerifyCredentials(ctx, email, password)
	if err != nil {
		s.logger.Info("Login rejected", "email", email, "error", err)
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, 0, map[string]any{
			"email": email,
			"error": err.Error(),
		})
		return nil, err
	}

	token, expiresAt, err := s.tokens.Generate(user.Subject())
	if err != nil {
		s.logger.Error("Login token generation failed", "user_id", user.ID, "error", err)
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to issue access token")
	}

	s.emitAuthEvent(ctx, ActivityEventLoginSuccess, user.ID, map[string]any{
		"email": email,
	})

	return &LoginResult{
		AccessToken: token,
		TokenType:   TokenTypeBearer,
		ExpiresAt:   expiresAt,
		User:        user,
	}, nil
}

func (s *Auther) emitAuthEvent(ctx context.Context, eventType ActivityEventType, userID int64, metadata map[string]any) {
	sink := normalizeActivitySink(s.activitySink)
	event := ActivityEvent{
		EventType:  eventType,
		UserID:     userID,
		Metadata:   metadata,
		OccurredAt: s.now(),
	}

	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}

	if err := sink.Record(ctx, event); err != nil {
		s.logger.Warn("activity sink record error", "error", err)
	}
}
