package auth_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auth "github.com/viabilize/viabilize-auth"
)

type controllerMocks struct {
	accounts *MockAccountService
	login    *MockLoginService
	users    *MockUserDirectory
	sessions *MockSessionService
	activity *MockActivityReader
}

func newTestController(t *testing.T) (*auth.AuthController, *controllerMocks) {
	t.Helper()

	m := &controllerMocks{
		accounts: new(MockAccountService),
		login:    new(MockLoginService),
		users:    new(MockUserDirectory),
		sessions: new(MockSessionService),
		activity: new(MockActivityReader),
	}

	controller := auth.NewAuthController(func(c *auth.AuthController) *auth.AuthController {
		c.Accounts = m.accounts
		c.Auther = m.login
		c.Users = m.users
		c.Sessions = m.sessions
		c.ActivityLog = m.activity
		c.ActivityLimit = 10
		c.Protected = func(next router.HandlerFunc) router.HandlerFunc { return next }
		return c
	})

	return controller, m
}

// bindJSON makes Bind copy payload into the handler's request struct
func bindJSON[T any](ctx *router.MockContext, payload T) {
	ctx.On("Bind", mock.Anything).Run(func(args mock.Arguments) {
		if dst, ok := args.Get(0).(*T); ok {
			*dst = payload
		}
	}).Return(nil)
}

// captureJSON records the status and body passed to JSON
func captureJSON(ctx *router.MockContext) (*int, *any) {
	status := new(int)
	body := new(any)
	ctx.On("JSON", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		*status = args.Int(0)
		*body = args.Get(1)
	}).Return(nil)
	return status, body
}

func TestNewAuthController_RequiresDependencies(t *testing.T) {
	assert.Panics(t, func() { auth.NewAuthController() })
}

func TestAuthController_HealthCheck(t *testing.T) {
	controller, _ := newTestController(t)

	ctx := router.NewMockContext()
	status, body := captureJSON(ctx)

	require.NoError(t, controller.HealthCheck(ctx))
	assert.Equal(t, http.StatusOK, *status)
	assert.Equal(t, map[string]string{"mensagem": "Bem-vindo à vIAbilize!"}, *body)
}

func TestAuthController_Signup(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		controller, m := newTestController(t)
		m.accounts.On("Issue", mock.Anything, auth.SignupRequest{Email: "ana@example.com", Password: "s3cret!"}).
			Return(&auth.User{ID: 1, Email: "ana@example.com"}, nil).Once()

		ctx := router.NewMockContext()
		ctx.On("Context").Return(context.Background())
		bindJSON(ctx, auth.SignupPayload{Email: "ana@example.com", Password: "s3cret!"})
		status, _ := captureJSON(ctx)

		require.NoError(t, controller.Signup(ctx))
		assert.Equal(t, http.StatusCreated, *status)
		m.accounts.AssertExpectations(t)
	})

	t.Run("duplicate email", func(t *testing.T) {
		controller, m := newTestController(t)
		m.accounts.On("Issue", mock.Anything, mock.Anything).Return(nil, auth.ErrDuplicateEmail).Once()

		ctx := router.NewMockContext()
		ctx.On("Context").Return(context.Background())
		bindJSON(ctx, auth.SignupPayload{Email: "ana@example.com", Password: "s3cret!"})
		status, body := captureJSON(ctx)

		require.NoError(t, controller.Signup(ctx))
		assert.Equal(t, http.StatusNotAcceptable, *status)

		resp, ok := (*body).(auth.ErrorResponse)
		require.True(t, ok)
		assert.Equal(t, auth.TextCodeDuplicateEmail, resp.Code)
		assert.Equal(t, "E-mail já cadastrado.", resp.Detail)
	})

	t.Run("invalid payload", func(t *testing.T) {
		controller, m := newTestController(t)

		ctx := router.NewMockContext()
		ctx.On("Context").Return(context.Background())
		bindJSON(ctx, auth.SignupPayload{Email: "not-an-email", Password: ""})
		status, body := captureJSON(ctx)

		require.NoError(t, controller.Signup(ctx))
		assert.Equal(t, http.StatusNotAcceptable, *status)

		resp, ok := (*body).(auth.ErrorResponse)
		require.True(t, ok)
		assert.Equal(t, auth.TextCodeValidationFailed, resp.Code)
		assert.NotNil(t, resp.Validation)
		m.accounts.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything)
	})

	t.Run("unreadable body", func(t *testing.T) {
		controller, _ := newTestController(t)

		ctx := router.NewMockContext()
		ctx.On("Context").Return(context.Background())
		ctx.On("Bind", mock.Anything).Return(errors.New("unexpected EOF"))
		status, _ := captureJSON(ctx)

		require.NoError(t, controller.Signup(ctx))
		assert.Equal(t, http.StatusNotAcceptable, *status)
	})
}

func TestAuthController_ResendOTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"resent", nil, http.StatusOK, ""},
		{"unknown email", auth.ErrUserNotFound, http.StatusNotFound, auth.TextCodeUserNotFound},
		{"already verified", auth.ErrAlreadyVerified, http.StatusBadRequest, auth.TextCodeAlreadyVerified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			controller, m := newTestController(t)
			m.accounts.On("Resend", mock.Anything, "ana@example.com").Return(tt.err).Once()

			ctx := router.NewMockContext()
			ctx.On("Context").Return(context.Background())
			bindJSON(ctx, auth.ResendOTPPayload{Email: "ana@example.com"})
			status, body := captureJSON(ctx)

			require.NoError(t, controller.ResendOTP(ctx))
			assert.Equal(t, tt.wantStatus, *status)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, (*body).(auth.ErrorResponse).Code)
			}
		})
	}
}

func TestAuthController_VerifyOTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"verified", nil, http.StatusCreated, ""},
		{"unknown email", auth.ErrUserNotFound, http.StatusNotFound, auth.TextCodeUserNotFound},
		{"wrong code", auth.ErrInvalidCode, http.StatusBadRequest, auth.TextCodeInvalidCode},
		{"expired code", auth.ErrOTPExpired, http.StatusBadRequest, auth.TextCodeOTPExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			controller, m := newTestController(t)
			m.accounts.On("Verify", mock.Anything, "ana@example.com", "123456").Return(tt.err).Once()

			ctx := router.NewMockContext()
			ctx.On("Context").Return(context.Background())
			bindJSON(ctx, auth.VerifyOTPPayload{Email: "ana@example.com", OTPCode: "123456"})
			status, body := captureJSON(ctx)

			require.NoError(t, controller.VerifyOTP(ctx))
			assert.Equal(t, tt.wantStatus, *status)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, (*body).(auth.ErrorResponse).Code)
			}
		})
	}
}

func TestAuthController_Login(t *testing.T) {
	t.Run("issues token", func(t *testing.T) {
		controller, m := newTestController(t)
		result := &auth.LoginResult{AccessToken: "signed", TokenType: auth.TokenTypeBearer}
		m.login.On("Login", mock.Anything, "ana@example.com", "s3cret!").Return(result, nil).Once()

		ctx := router.NewMockContext()
		ctx.On("Context").Return(context.Background())
		bindJSON(ctx, auth.LoginPayload{Email: "ana@example.com", Password: "s3cret!"})
		status, body := captureJSON(ctx)

		require.NoError(t, controller.Login(ctx))
		assert.Equal(t, http.StatusOK, *status)
		assert.Equal(t, result, *body)
	})

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"unknown email", auth.ErrUserNotFound, http.StatusNotFound},
		{"unverified", auth.ErrEmailNotVerified, http.StatusForbidden},
		{"unexpected", errors.New("database is locked"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			controller, m := newTestController(t)
			m.login.On("Login", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err).Once()

			ctx := router.NewMockContext()
			ctx.On("Context").Return(context.Background())
			bindJSON(ctx, auth.LoginPayload{Email: "ana@example.com", Password: "s3cret!"})
			status, _ := captureJSON(ctx)

			require.NoError(t, controller.Login(ctx))
			assert.Equal(t, tt.wantStatus, *status)
		})
	}

	t.Run("wrong password sends challenge", func(t *testing.T) {
		controller, m := newTestController(t)
		m.login.On("Login", mock.Anything, mock.Anything, mock.Anything).Return(nil, auth.ErrIncorrectPassword).Once()

		ctx := router.NewMockContext()
		ctx.On("Context").Return(context.Background())
		ctx.On("SetHeader", "WWW-Authenticate", "Bearer").Return(ctx).Once()
		bindJSON(ctx, auth.LoginPayload{Email: "ana@example.com", Password: "nope"})
		status, _ := captureJSON(ctx)

		require.NoError(t, controller.Login(ctx))
		assert.Equal(t, http.StatusUnauthorized, *status)
		ctx.AssertExpectations(t)
	})
}

func TestAuthController_ProtectedHandlers(t *testing.T) {
	created := time.Date(2024, time.January, 2, 3, 4, 5, 0, time.UTC)
	user := &auth.User{ID: 3, Email: "ana@example.com", HashedPassword: "hash", TOTPSecret: "123456", IsVerified: true, IsActive: true, CreatedAt: created}
	authed := auth.WithContext(context.Background(), user)

	t.Run("logged", func(t *testing.T) {
		controller, _ := newTestController(t)

		ctx := router.NewMockContext()
		ctx.On("Context").Return(authed)
		status, body := captureJSON(ctx)

		require.NoError(t, controller.Logged(ctx))
		assert.Equal(t, http.StatusOK, *status)
		assert.Equal(t, user.Profile(), *body)
	})

	t.Run("all", func(t *testing.T) {
		controller, m := newTestController(t)
		other := &auth.User{ID: 4, Email: "bob@example.com"}
		m.users.On("List", mock.Anything).Return([]*auth.User{user, other}, nil).Once()

		ctx := router.NewMockContext()
		ctx.On("Context").Return(authed)
		status, body := captureJSON(ctx)

		require.NoError(t, controller.All(ctx))
		assert.Equal(t, http.StatusOK, *status)
		assert.Equal(t, []auth.UserProfile{user.Profile(), other.Profile()}, *body)
	})

	t.Run("current user", func(t *testing.T) {
		controller, m := newTestController(t)
		m.users.On("GetByID", mock.Anything, int64(3)).Return(user, nil).Once()

		ctx := router.NewMockContext()
		ctx.On("Context").Return(authed)
		status, body := captureJSON(ctx)

		require.NoError(t, controller.CurrentUser(ctx))
		assert.Equal(t, http.StatusOK, *status)
		assert.Equal(t, []auth.UserProfile{user.Profile()}, *body)
	})

	t.Run("current user removed", func(t *testing.T) {
		controller, m := newTestController(t)
		m.users.On("GetByID", mock.Anything, int64(3)).Return(nil, repository.NewRecordNotFound()).Once()

		ctx := router.NewMockContext()
		ctx.On("Context").Return(authed)
		status, _ := captureJSON(ctx)

		require.NoError(t, controller.CurrentUser(ctx))
		assert.Equal(t, http.StatusNotFound, *status)
	})

	t.Run("activity", func(t *testing.T) {
		controller, m := newTestController(t)
		entries := []*auth.ActivityLog{{ID: 1, UserID: 3, Activity: auth.ActivityLogin, DateTime: created}}
		m.activity.On("ListByUser", mock.Anything, int64(3), 10).Return(entries, nil).Once()

		ctx := router.NewMockContext()
		ctx.On("Context").Return(authed)
		status, body := captureJSON(ctx)

		require.NoError(t, controller.Activity(ctx))
		assert.Equal(t, http.StatusOK, *status)
		assert.Equal(t, entries, *body)
	})

	t.Run("logout", func(t *testing.T) {
		controller, m := newTestController(t)
		m.sessions.On("Logout", mock.Anything, user).Return().Once()

		ctx := router.NewMockContext()
		ctx.On("Context").Return(authed)
		status, _ := captureJSON(ctx)

		require.NoError(t, controller.Logout(ctx))
		assert.Equal(t, http.StatusOK, *status)
		m.sessions.AssertExpectations(t)
	})
}

func TestAuthController_ProtectedHandlersRequireUser(t *testing.T) {
	controller, _ := newTestController(t)

	handlers := map[string]router.HandlerFunc{
		"logged":   controller.Logged,
		"all":      controller.All,
		"user":     controller.CurrentUser,
		"activity": controller.Activity,
		"logout":   controller.Logout,
	}

	for name, handler := range handlers {
		t.Run(name, func(t *testing.T) {
			ctx := router.NewMockContext()
			ctx.On("Context").Return(context.Background())
			ctx.On("SetHeader", "WWW-Authenticate", "Bearer").Return(ctx)
			status, body := captureJSON(ctx)

			require.NoError(t, handler(ctx))
			assert.Equal(t, http.StatusUnauthorized, *status)
			assert.Equal(t, auth.TextCodeUnauthenticated, (*body).(auth.ErrorResponse).Code)
		})
	}
}

func TestUserProfileHidesSecrets(t *testing.T) {
	user := &auth.User{ID: 1, Email: "ana@example.com", HashedPassword: "bcrypt-hash", TOTPSecret: "654321"}

	for _, v := range []any{user, user.Profile()} {
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		assert.Contains(t, string(raw), `"email":"ana@example.com"`)
		assert.NotContains(t, string(raw), "bcrypt-hash")
		assert.NotContains(t, string(raw), "654321")
	}
}
