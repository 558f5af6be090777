package auth

import (
	"net/http"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeUserNotFound       = "USER_NOT_FOUND"
	TextCodeIncorrectPassword  = "INCORRECT_PASSWORD"
	TextCodeEmailNotVerified   = "EMAIL_NOT_VERIFIED"
	TextCodeDuplicateEmail     = "DUPLICATE_EMAIL"
	TextCodeRegistrationFailed = "REGISTRATION_FAILED"
	TextCodeAlreadyVerified    = "ALREADY_VERIFIED"
	TextCodeInvalidCode        = "INVALID_CODE"
	TextCodeOTPExpired         = "OTP_EXPIRED"
	TextCodeUnauthenticated    = "UNAUTHENTICATED"
	TextCodeTokenExpired       = "TOKEN_EXPIRED"
	TextCodeTokenMalformed     = "TOKEN_MALFORMED"
	TextCodeEmptyPassword      = "EMPTY_PASSWORD"
	TextCodeValidationFailed   = "VALIDATION_FAILED"
	TextCodeTaskRejected       = "TASK_REJECTED"
)

// ErrUserNotFound is returned when no account matches the given email
var ErrUserNotFound = errors.New("user not found", errors.CategoryNotFound).
	WithTextCode(TextCodeUserNotFound).
	WithCode(errors.CodeNotFound)

// ErrIncorrectPassword is returned when the password does not match the stored hash
var ErrIncorrectPassword = errors.New("incorrect password", errors.CategoryAuth).
	WithTextCode(TextCodeIncorrectPassword).
	WithCode(errors.CodeUnauthorized)

// ErrEmailNotVerified is returned on login for accounts that never verified their code
var ErrEmailNotVerified = errors.New("email not verified", errors.CategoryAuthz).
	WithTextCode(TextCodeEmailNotVerified).
	WithCode(errors.CodeForbidden)

// ErrDuplicateEmail is returned when signing up with an email that is already registered
var ErrDuplicateEmail = errors.New("email already registered", errors.CategoryConflict).
	WithTextCode(TextCodeDuplicateEmail).
	WithCode(http.StatusNotAcceptable)

// ErrRegistrationFailed is returned when an account could not be persisted
var ErrRegistrationFailed = errors.New("registration failed", errors.CategoryInternal).
	WithTextCode(TextCodeRegistrationFailed).
	WithCode(http.StatusNotAcceptable)

// ErrAlreadyVerified is returned when resending a code to a verified account
var ErrAlreadyVerified = errors.New("email already verified", errors.CategoryBadInput).
	WithTextCode(TextCodeAlreadyVerified).
	WithCode(errors.CodeBadRequest)

// ErrInvalidCode is returned when the submitted code is not the outstanding one
var ErrInvalidCode = errors.New("invalid verification code", errors.CategoryValidation).
	WithTextCode(TextCodeInvalidCode).
	WithCode(errors.CodeBadRequest)

// ErrOTPExpired is returned when the outstanding code is past its expiry
var ErrOTPExpired = errors.New("verification code expired", errors.CategoryValidation).
	WithTextCode(TextCodeOTPExpired).
	WithCode(errors.CodeBadRequest)

// ErrUnauthenticated is returned when a request carries no usable credentials
var ErrUnauthenticated = errors.New("could not validate credentials", errors.CategoryAuth).
	WithTextCode(TextCodeUnauthenticated).
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired is returned for tokens at or past their expiry
var ErrTokenExpired = errors.New("token expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed is returned for tokens that fail to parse or verify
var ErrTokenMalformed = errors.New("token malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrNoEmptyString is returned when hashing an empty password
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword).
	WithCode(errors.CodeBadRequest)

// ErrTaskRejected is returned when the background runner is closed or its queue is full
var ErrTaskRejected = errors.New("background task rejected", errors.CategoryOperation).
	WithTextCode(TextCodeTaskRejected).
	WithCode(errors.CodeInternal)

// IsUnauthenticated reports whether err should produce a 401 with a bearer challenge
func IsUnauthenticated(err error) bool {
	return errors.Is(err, ErrUnauthenticated) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrTokenMalformed)
}
