// Package auth is the authenticate-then-authorize checkpoint in front of
// the protected routes.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sweetshop/backend/internal/models"
	"github.com/sweetshop/backend/internal/repo"
	"github.com/sweetshop/backend/internal/tokens"
)

const (
	SessionCookie = "accessToken"

	userContextKey = "user"
)

type UserResolver interface {
	FindUserByID(ctx context.Context, id uint) (*models.User, error)
}

type Middleware struct {
	Tokens *tokens.Service
	Users  UserResolver
}

type State int

const (
	StateRejected State = iota
	StateAnonymous
	StateAuthenticated
)

// Result is the outcome of the authenticate stage. Anonymous means the
// token verified but its subject no longer resolves to a user; the request
// proceeds without an identity instead of failing.
type Result struct {
	State  State
	User   *models.User
	Reason string
}

func (m *Middleware) Resolve(c echo.Context) (Result, error) {
	raw := tokenFromRequest(c)
	if raw == "" {
		return Result{State: StateRejected, Reason: "no token"}, nil
	}

	claims, err := m.Tokens.Validate(raw)
	if err != nil {
		return Result{State: StateRejected, Reason: "token failed"}, nil
	}

	id, err := claims.UserID()
	if err != nil {
		return Result{State: StateRejected, Reason: "token failed"}, nil
	}

	user, err := m.Users.FindUserByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return Result{State: StateAnonymous}, nil
		}
		return Result{}, err
	}

	return Result{State: StateAuthenticated, User: user}, nil
}

func (m *Middleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		res, err := m.Resolve(c)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		switch res.State {
		case StateRejected:
			return echo.NewHTTPError(http.StatusUnauthorized, res.Reason)
		case StateAuthenticated:
			c.Set(userContextKey, res.User)
		}
		return next(c)
	}
}

func (m *Middleware) AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, ok := CurrentUser(c)
		if !ok || !user.IsAdmin() {
			return echo.NewHTTPError(http.StatusForbidden, "not authorized as admin")
		}
		return next(c)
	}
}

func CurrentUser(c echo.Context) (*models.User, bool) {
	user, ok := c.Get(userContextKey).(*models.User)
	return user, ok
}

func tokenFromRequest(c echo.Context) string {
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
