package auth

import (
	"context"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-router"
)

// AccountService runs the signup and verification flows
type AccountService interface {
	Issue(ctx context.Context, req SignupRequest) (*User, error)
	Resend(ctx context.Context, email string) error
	Verify(ctx context.Context, email, code string) error
}

// LoginService issues tokens for valid credentials
type LoginService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
}

// SessionService ends sessions
type SessionService interface {
	Logout(ctx context.Context, user *User)
}

// UserDirectory lists and loads users
type UserDirectory interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	List(ctx context.Context) ([]*User, error)
}

// ActivityReader reads a user's activity log
type ActivityReader interface {
	ListByUser(ctx context.Context, userID int64, limit int) ([]*ActivityLog, error)
}

func RegisterAuthRoutes[T any](app router.Router[T], opts ...AuthControllerOption) {

	controller := NewAuthController(opts...)

	app.Get(controller.Routes.Health, controller.HealthCheck).
		SetName("health.get")

	users := app.Group(controller.Routes.Prefix)

	users.Post(controller.Routes.Signup, controller.Signup).
		SetName("users.signup.post")
	users.Post(controller.Routes.ResendOTP, controller.ResendOTP).
		SetName("users.resend-otp.post")
	users.Post(controller.Routes.VerifyOTP, controller.VerifyOTP).
		SetName("users.verify-otp.post")
	users.Post(controller.Routes.Login, controller.Login).
		SetName("users.login.post")

	users.Get(controller.Routes.Logged, controller.Logged, controller.Protected).
		SetName("users.logged.get")
	users.Get(controller.Routes.All, controller.All, controller.Protected).
		SetName("users.all.get")
	users.Get(controller.Routes.User, controller.CurrentUser, controller.Protected).
		SetName("users.user.get")
	users.Get(controller.Routes.Activity, controller.Activity, controller.Protected).
		SetName("users.activity.get")
	users.Post(controller.Routes.Logout, controller.Logout, controller.Protected).
		SetName("users.logout.post")
}

type AuthControllerRoutes struct {
	Health    string
	Prefix    string
	Signup    string
	ResendOTP string
	VerifyOTP string
	Login     string
	Logged    string
	All       string
	User      string
	Activity  string
	Logout    string
}

type AuthController struct {
	Debug         bool
	Logger        Logger
	Accounts      AccountService
	Auther        LoginService
	Sessions      SessionService
	Users         UserDirectory
	ActivityLog   ActivityReader
	ActivityLimit int
	Protected     router.MiddlewareFunc
	Routes        *AuthControllerRoutes
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:        defLogger{},
		ActivityLimit: 50,
		Routes: &AuthControllerRoutes{
			Health:    "/",
			Prefix:    "/users",
			Signup:    "/signup",
			ResendOTP: "/resend-otp",
			VerifyOTP: "/verify-otp",
			Login:     "/login",
			Logged:    "/logged",
			All:       "/all",
			User:      "/user",
			Activity:  "/activity",
			Logout:    "/logout",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Accounts == nil {
		panic("Missing AccountService in auth controller...")
	}

	if c.Auther == nil {
		panic("Missing LoginService in auth controller...")
	}

	if c.Users == nil {
		panic("Missing UserDirectory in auth controller...")
	}

	if c.Protected == nil {
		panic("Missing protected route middleware in auth controller...")
	}

	return c
}

func (a *AuthController) WithLogger(l Logger) *AuthController {
	if l != nil {
		a.Logger = l
	}
	return a
}

type messageResponse struct {
	Message string `json:"message"`
}

func (a *AuthController) HealthCheck(ctx router.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{
		"mensagem": messageWelcome,
	})
}

// SignupPayload is the signup request body
type SignupPayload struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// Validate will run validation rules
func (r SignupPayload) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Email, validation.Required, validation.Length(3, 254), is.Email),
			validation.Field(&r.Password, validation.Required, validation.Length(1, 72)),
		)
	}, "Invalid signup payload")
}

func (a *AuthController) Signup(ctx router.Context) error {
	payload := new(SignupPayload)
	if err := ctx.Bind(payload); err != nil {
		return WriteValidationError(ctx, http.StatusNotAcceptable, bindError(err))
	}

	if verr := payload.Validate(); verr != nil {
		return WriteValidationError(ctx, http.StatusNotAcceptable, verr)
	}

	if a.Debug {
		a.Logger.Debug("signup", "payload", print.MaybePrettyJSON(map[string]string{"email": payload.Email}))
	}

	if _, err := a.Accounts.Issue(ctx.Context(), SignupRequest{
		Email:    payload.Email,
		Password: payload.Password,
	}); err != nil {
		if errors.Is(err, ErrNoEmptyString) {
			err = ErrRegistrationFailed
		}
		return WriteError(ctx, err, a.Logger)
	}

	return ctx.JSON(http.StatusCreated, messageResponse{Message: messageSignedUp})
}

// ResendOTPPayload is the resend request body
type ResendOTPPayload struct {
	Email string `json:"email" form:"email"`
}

// Validate will run validation rules
func (r ResendOTPPayload) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Email, validation.Required, is.Email),
		)
	}, "Invalid resend payload")
}

func (a *AuthController) ResendOTP(ctx router.Context) error {
	payload := new(ResendOTPPayload)
	if err := ctx.Bind(payload); err != nil {
		return WriteValidationError(ctx, http.StatusBadRequest, bindError(err))
	}

	if verr := payload.Validate(); verr != nil {
		return WriteValidationError(ctx, http.StatusBadRequest, verr)
	}

	if err := a.Accounts.Resend(ctx.Context(), payload.Email); err != nil {
		return WriteError(ctx, err, a.Logger)
	}

	return ctx.JSON(http.StatusOK, messageResponse{Message: messageCodeResent})
}

// VerifyOTPPayload is the verification request body
type VerifyOTPPayload struct {
	Email   string `json:"email" form:"email"`
	OTPCode string `json:"otp_code" form:"otp_code"`
}

// Validate will run validation rules
func (r VerifyOTPPayload) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Email, validation.Required, is.Email),
			validation.Field(&r.OTPCode, validation.Required),
		)
	}, "Invalid verification payload")
}

func (a *AuthController) VerifyOTP(ctx router.Context) error {
	payload := new(VerifyOTPPayload)
	if err := ctx.Bind(payload); err != nil {
		return WriteValidationError(ctx, http.StatusBadRequest, bindError(err))
	}

	if verr := payload.Validate(); verr != nil {
		return WriteValidationError(ctx, http.StatusBadRequest, verr)
	}

	if err := a.Accounts.Verify(ctx.Context(), payload.Email, payload.OTPCode); err != nil {
		return WriteError(ctx, err, a.Logger)
	}

	return ctx.JSON(http.StatusCreated, messageResponse{Message: messageVerified})
}

// LoginPayload is the login request body
type LoginPayload struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// Validate will run validation rules
func (r LoginPayload) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Email, validation.Required, is.Email),
			validation.Field(&r.Password, validation.Required),
		)
	}, "Invalid login payload")
}

func (a *AuthController) Login(ctx router.Context) error {
	payload := new(LoginPayload)
	if err := ctx.Bind(payload); err != nil {
		return WriteValidationError(ctx, http.StatusBadRequest, bindError(err))
	}

	if verr := payload.Validate(); verr != nil {
		return WriteValidationError(ctx, http.StatusBadRequest, verr)
	}

	result, err := a.Auther.Login(ctx.Context(), payload.Email, payload.Password)
	if err != nil {
		return WriteError(ctx, err, a.Logger)
	}

	return ctx.JSON(http.StatusOK, result)
}

func (a *AuthController) Logged(ctx router.Context) error {
	user, ok := FromContext(ctx.Context())
	if !ok {
		return WriteError(ctx, ErrUnauthenticated, a.Logger)
	}
	return ctx.JSON(http.StatusOK, user.Profile())
}

func (a *AuthController) All(ctx router.Context) error {
	if _, ok := FromContext(ctx.Context()); !ok {
		return WriteError(ctx, ErrUnauthenticated, a.Logger)
	}

	records, err := a.Users.List(ctx.Context())
	if err != nil {
		return WriteError(ctx, err, a.Logger)
	}

	profiles := make([]UserProfile, 0, len(records))
	for _, record := range records {
		profiles = append(profiles, record.Profile())
	}

	return ctx.JSON(http.StatusOK, profiles)
}

func (a *AuthController) CurrentUser(ctx router.Context) error {
	user, ok := FromContext(ctx.Context())
	if !ok {
		return WriteError(ctx, ErrUnauthenticated, a.Logger)
	}

	record, err := a.Users.GetByID(ctx.Context(), user.ID)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return WriteError(ctx, ErrUserNotFound, a.Logger)
		}
		return WriteError(ctx, err, a.Logger)
	}

	return ctx.JSON(http.StatusOK, []UserProfile{record.Profile()})
}

func (a *AuthController) Activity(ctx router.Context) error {
	user, ok := FromContext(ctx.Context())
	if !ok {
		return WriteError(ctx, ErrUnauthenticated, a.Logger)
	}

	if a.ActivityLog == nil {
		return ctx.JSON(http.StatusOK, []*ActivityLog{})
	}

	entries, err := a.ActivityLog.ListByUser(ctx.Context(), user.ID, a.ActivityLimit)
	if err != nil {
		return WriteError(ctx, err, a.Logger)
	}

	return ctx.JSON(http.StatusOK, entries)
}

func (a *AuthController) Logout(ctx router.Context) error {
	user, ok := FromContext(ctx.Context())
	if !ok {
		return WriteError(ctx, ErrUnauthenticated, a.Logger)
	}

	if a.Sessions != nil {
		a.Sessions.Logout(ctx.Context(), user)
	}

	return ctx.JSON(http.StatusOK, messageResponse{Message: messageLoggedOut})
}

func bindError(err error) *errors.Error {
	return errors.Wrap(err, errors.CategoryValidation, "Invalid request body").
		WithCode(errors.CodeBadRequest)
}
