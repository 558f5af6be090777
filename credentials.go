package auth

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// UserFinder is a store we can use to retrieve users by email
type UserFinder interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// CredentialVerifier checks an email/password pair against stored users
type CredentialVerifier struct {
	store  UserFinder
	logger Logger
}

// NewCredentialVerifier will create a new CredentialVerifier
func NewCredentialVerifier(store UserFinder) *CredentialVerifier {
	return &CredentialVerifier{
		store:  store,
		logger: defLogger{},
	}
}

func (v *CredentialVerifier) WithLogger(l Logger) *CredentialVerifier {
	if l != nil {
		v.logger = l
	}
	return v
}

// VerifyCredentials returns the user when the email exists, the password
// matches and the email was verified. Checks run in that order so the first
// failing one decides the error.
func (v *CredentialVerifier) VerifyCredentials(ctx context.Context, email, password string) (*User, error) {
	user, err := v.store.GetByEmail(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during verification")
	}

	if err := ComparePasswordAndHash(password, user.HashedPassword); err != nil {
		if !errors.Is(err, ErrIncorrectPassword) {
			v.logger.Error("password comparison failed", "user_id", user.ID, "error", err)
		}
		return nil, ErrIncorrectPassword
	}

	if !user.IsVerified {
		return nil, ErrEmailNotVerified
	}

	return user, nil
}
