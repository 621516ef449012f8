package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"agroMarket/business/user"
	"agroMarket/domain"
	"agroMarket/internal/middleware"
	"agroMarket/pkg/logger"
	"agroMarket/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type UserService interface {
	Register(ctx context.Context, in user.RegisterInput) (domain.User, error)
	Authenticate(ctx context.Context, email, password string) (domain.User, error)
}

// SessionManager creates and destroys the server side session behind the cookie.
type SessionManager interface {
	Create(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, id string) error
}

type UserHandler struct {
	userService  UserService
	sessions     SessionManager
	validator    *validator.Validate
	jwtSecret    []byte
	sessionTTL   time.Duration
	secureCookie bool
	timeout      time.Duration
}

func NewUserHandler(userService UserService, sessions SessionManager, jwtSecret []byte, sessionTTL time.Duration, secureCookie bool) *UserHandler {
	return &UserHandler{
		userService:  userService,
		sessions:     sessions,
		validator:    validator.New(),
		jwtSecret:    jwtSecret,
		sessionTTL:   sessionTTL,
		secureCookie: secureCookie,
		timeout:      defaultTimeout,
	}
}

type UserRegisterRequest struct {
	Username string `form:"username" validate:"required,max=100"`
	Email    string `form:"email" validate:"required,email"`
	Whatsapp string `form:"whatsapp" validate:"required,max=30"`
	Password string `form:"password" validate:"required,min=6"`
	Role     string `form:"role" validate:"required,oneof=farmer customer"`
}

type UserLoginRequest struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

// RegisterPage refills the register form, never with the password.
type RegisterPage struct {
	Username string
	Email    string
	Whatsapp string
	Role     string
}

type LoginPage struct {
	Email string
}

func (h *UserHandler) ShowRegister(c echo.Context) error {
	return c.Render(http.StatusOK, "register", RegisterPage{Role: domain.RoleCustomer.String()})
}

func (h *UserHandler) Register(c echo.Context) error {
	var req UserRegisterRequest

	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid request body", err)
		middleware.AddFlash(c, domain.FlashDanger, "Invalid registration form.")
		return c.Render(http.StatusBadRequest, "register", RegisterPage{})
	}

	page := RegisterPage{Username: req.Username, Email: req.Email, Whatsapp: req.Whatsapp, Role: req.Role}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validation user register", err)
		middleware.AddFlash(c, domain.FlashDanger, "Please fill in every field with valid values.")
		return c.Render(http.StatusBadRequest, "register", page)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	_, err := h.userService.Register(ctx, user.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Whatsapp: req.Whatsapp,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateEmail):
			middleware.AddFlash(c, domain.FlashDanger, "Email already registered!")
			page.Email = ""
			return c.Render(http.StatusConflict, "register", page)
		case errors.Is(err, domain.ErrInvalidRole):
			middleware.AddFlash(c, domain.FlashDanger, "Choose farmer or customer.")
			return c.Render(http.StatusBadRequest, "register", page)
		}
		logger.Error("Failed to register user", err)
		middleware.AddFlash(c, domain.FlashDanger, "Registration failed, please try again.")
		return c.Render(http.StatusInternalServerError, "register", page)
	}

	return redirectWithFlash(c, "/login", domain.FlashSuccess, "Registration successful! Please login.")
}

func (h *UserHandler) ShowLogin(c echo.Context) error {
	return c.Render(http.StatusOK, "login", LoginPage{})
}

func (h *UserHandler) Login(c echo.Context) error {
	var req UserLoginRequest

	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind request", err)
		middleware.AddFlash(c, domain.FlashDanger, "Invalid email or password.")
		return c.Render(http.StatusBadRequest, "login", LoginPage{})
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate user login", err)
		middleware.AddFlash(c, domain.FlashDanger, "Invalid email or password.")
		return c.Render(http.StatusBadRequest, "login", LoginPage{Email: req.Email})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	u, err := h.userService.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			logger.Error("Failed to authenticate user", err)
		}
		middleware.AddFlash(c, domain.FlashDanger, "Invalid email or password.")
		return c.Render(http.StatusUnauthorized, "login", LoginPage{Email: req.Email})
	}

	// a fresh login replaces whatever session the browser had
	if old := middleware.CurrentSession(c); old != nil {
		if err := h.sessions.Delete(ctx, old.ID); err != nil {
			logger.Warn("failed to drop previous session", err)
		}
	}

	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		Username:  u.Username,
		Role:      u.Role,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.sessions.Create(ctx, session); err != nil {
		logger.Error("Failed to create session", err)
		middleware.AddFlash(c, domain.FlashDanger, "Login is unavailable right now, please try again.")
		return c.Render(http.StatusServiceUnavailable, "login", LoginPage{Email: req.Email})
	}

	token, err := utils.GenerateJWT(h.jwtSecret, strconv.FormatUint(uint64(u.ID), 10), u.Username, u.Role.String(), session.ID, h.sessionTTL)
	if err != nil {
		logger.Error("Failed to sign session token", err)
		_ = h.sessions.Delete(ctx, session.ID)
		middleware.AddFlash(c, domain.FlashDanger, "Login is unavailable right now, please try again.")
		return c.Render(http.StatusInternalServerError, "login", LoginPage{Email: req.Email})
	}

	middleware.SetSessionCookie(c, token, h.sessionTTL, h.secureCookie)
	logger.Info("user logged in", "user_id", u.ID, "role", u.Role.String())

	return c.Redirect(http.StatusFound, u.Role.DashboardPath())
}

// Logout clears the session unconditionally.
func (h *UserHandler) Logout(c echo.Context) error {
	if session := middleware.CurrentSession(c); session != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
		defer cancel()

		if err := h.sessions.Delete(ctx, session.ID); err != nil {
			logger.Error("Failed to delete session", err)
		}
	}

	middleware.ClearSessionCookie(c)
	return redirectWithFlash(c, "/login", domain.FlashInfo, "You have been logged out.")
}
