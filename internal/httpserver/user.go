package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/modern_shop/internal/service"
	"github.com/Skotchmaster/modern_shop/internal/tokens"
	"github.com/Skotchmaster/modern_shop/internal/transport"
	"github.com/Skotchmaster/modern_shop/pkg/logging"
)

type UserHTTP struct {
	Svc    *service.UserService
	Tokens *tokens.Issuer
}

func (h *UserHTTP) CreateUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.create_user")

	var req transport.UserCreate
	if err := c.Bind(&req); err != nil {
		l.Warn("create_user_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	sess, err := session(c)
	if err != nil {
		l.Error("create_user_error", "status", 500, "reason", "no session", "error", err)
		return err
	}

	user, err := h.Svc.CreateUser(ctx, sess, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			l.Warn("create_user_error", "status", 422, "reason", "validation failed", "error", err)
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, service.ErrConflict):
			l.Warn("create_user_error", "status", 409, "reason", "email already registered", "error", err)
			return echo.NewHTTPError(http.StatusConflict, "email already registered")
		default:
			l.Error("create_user_error", "status", 500, "reason", "cannot create user", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot create user")
		}
	}

	l.Info("create_user_success", "user_id", user.ID)
	return c.JSON(http.StatusCreated, transport.ToUser(user))
}

func (h *UserHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	sess, err := session(c)
	if err != nil {
		l.Error("login_error", "status", 500, "reason", "no session", "error", err)
		return err
	}

	user, err := h.Svc.Authenticate(ctx, sess, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			l.Warn("login_error", "status", 422, "reason", "validation failed", "error", err)
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, service.ErrInvalidCredentials):
			l.Warn("login_error", "status", 401, "reason", "invalid credentials")
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
		default:
			l.Error("login_error", "status", 500, "reason", "cannot authenticate", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot authenticate")
		}
	}

	token, exp, err := h.Tokens.Issue(user.ID)
	if err != nil {
		l.Error("login_error", "status", 500, "reason", "cannot issue token", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot issue token")
	}

	l.Info("login_success", "user_id", user.ID)
	return c.JSON(http.StatusOK, transport.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   exp,
	})
}

func (h *UserHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.me")

	id, ok := currentUserID(c)
	if !ok {
		l.Warn("me_error", "status", 401, "reason", "no user in context")
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	sess, err := session(c)
	if err != nil {
		l.Error("me_error", "status", 500, "reason", "no session", "error", err)
		return err
	}

	user, err := h.Svc.GetUser(ctx, sess, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("me_error", "status", 404, "reason", "user not found", "user_id", id)
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		l.Error("me_error", "status", 500, "reason", "cannot get user", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get user")
	}

	return c.JSON(http.StatusOK, transport.ToUser(user))
}
