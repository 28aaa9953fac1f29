package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	authmw "github.com/sweetshop/backend/internal/middleware/auth"
	"github.com/sweetshop/backend/internal/models"
	"github.com/sweetshop/backend/internal/mykafka"
	"github.com/sweetshop/backend/internal/repo"
	"github.com/sweetshop/backend/internal/service"
	"github.com/sweetshop/backend/internal/tokens"
)

type AuthHandler struct {
	Service  *service.AuthService
	Tokens   *tokens.Service
	Producer *mykafka.Producer
}

type identityResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
}

func identityFrom(u *models.User) identityResponse {
	return identityResponse{ID: u.ID, Username: u.Username, IsAdmin: u.IsAdmin()}
}

func CreateCookie(name string, value string, path string, expTime time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  expTime,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *AuthHandler) setSession(c echo.Context, user *models.User) error {
	token, exp, err := h.Tokens.Issue(user.ID, user.Role)
	if err != nil {
		return err
	}
	c.SetCookie(CreateCookie(authmw.SessionCookie, token, "/", exp))
	return nil
}

func (h *AuthHandler) publish(c echo.Context, key string, event map[string]interface{}) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, mykafka.TopicUserEvents, key, event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.Service.Register(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		var ve *service.ValidationError
		switch {
		case errors.As(err, &ve):
			return echo.NewHTTPError(http.StatusBadRequest, ve.Error())
		case errors.Is(err, repo.ErrDuplicateUser):
			return echo.NewHTTPError(http.StatusBadRequest, "User already exists")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	if err := h.setSession(c, user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, fmt.Sprint(user.ID), map[string]interface{}{
		"type":     "user_registered",
		"userID":   user.ID,
		"username": user.Username,
	})

	return c.JSON(http.StatusCreated, identityFrom(user))
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.Service.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid username or password")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.setSession(c, user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, fmt.Sprint(user.ID), map[string]interface{}{
		"type":     "user_logged_in",
		"userID":   user.ID,
		"username": user.Username,
	})

	return c.JSON(http.StatusOK, identityFrom(user))
}

// Logout replaces the session cookie with an already-expired one. The token
// itself stays valid until its expiry; the client is just told to drop it.
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(CreateCookie(authmw.SessionCookie, "", "/", time.Unix(0, 0)))
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Logged out successfully",
	})
}

func (h *AuthHandler) Me(c echo.Context) error {
	user, ok := authmw.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized")
	}
	return c.JSON(http.StatusOK, identityFrom(user))
}
