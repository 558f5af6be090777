package auth

import (
	"context"
	"net/http"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"

	"github.com/viabilize/viabilize-auth/middleware/jwtware"
)

// SessionResolverService resolves bearer tokens to users
type SessionResolverService interface {
	Resolve(ctx context.Context, raw string) (*User, error)
}

// RouteAuthenticator guards routes with bearer tokens
type RouteAuthenticator struct {
	resolver SessionResolverService
	cfg      Config
	Logger   Logger
}

func NewHTTPAuthenticator(resolver SessionResolverService, cfg Config) *RouteAuthenticator {
	return &RouteAuthenticator{
		resolver: resolver,
		cfg:      cfg,
		Logger:   defLogger{},
	}
}

// ResolveSession implements jwtware.SessionResolver
func (a *RouteAuthenticator) ResolveSession(ctx context.Context, raw string) (any, error) {
	return a.resolver.Resolve(ctx, raw)
}

// ProtectedRoute requires a valid bearer token and puts the resolved
// *User in the request context.
func (a *RouteAuthenticator) ProtectedRoute() router.MiddlewareFunc {
	return jwtware.New(jwtware.Config{
		Resolver:     a,
		ErrorHandler: a.authErrHandler,
		AuthScheme:   a.cfg.GetAuthScheme(),
		ContextKey:   a.cfg.GetContextKey(),
		TokenLookup:  a.cfg.GetTokenLookup(),
		ContextEnricher: func(c context.Context, principal any) context.Context {
			if user, ok := principal.(*User); ok {
				return WithContext(c, user)
			}
			return c
		},
	})
}

func (a *RouteAuthenticator) authErrHandler(c router.Context, err error) error {
	if errors.Is(err, jwtware.ErrJWTMissingOrMalformed) || IsUnauthenticated(err) {
		return WriteError(c, ErrUnauthenticated, a.Logger)
	}
	return WriteError(c, err, a.Logger)
}

// ErrorResponse is the body of every error response
type ErrorResponse struct {
	Detail     string `json:"detail"`
	Code       string `json:"code,omitempty"`
	Validation any    `json:"validation,omitempty"`
}

// WriteError renders err as a JSON error response. Errors that do not carry
// a status become 500 without leaking their message. 401 responses carry a
// bearer challenge.
func WriteError(c router.Context, err error, logger Logger) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	status := richErr.Code
	if status == 0 {
		status = http.StatusInternalServerError
	}

	detail := localizedDetail(richErr)
	if status >= http.StatusInternalServerError {
		detail = messageInternalError
		if logger != nil {
			logger.Error("request failed",
				"error", err,
				"category", richErr.Category,
				"details", print.MaybePrettyJSON(richErr.Metadata),
			)
		}
	}

	if status == http.StatusUnauthorized {
		c.SetHeader("WWW-Authenticate", "Bearer")
	}

	return c.JSON(status, ErrorResponse{
		Detail: detail,
		Code:   richErr.TextCode,
	})
}

// WriteValidationError renders validation failures with the given status
func WriteValidationError(c router.Context, status int, err *errors.Error) error {
	return c.JSON(status, ErrorResponse{
		Detail:     messageInvalidPayload,
		Code:       TextCodeValidationFailed,
		Validation: err.ValidationMap(),
	})
}
