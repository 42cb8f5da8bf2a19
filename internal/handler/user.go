package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/flash-sale-tickets/internal/model"
)

// UserStore groups the user repository methods the handler calls.  The
// concrete implementation is repository.UserRepo.
type UserStore interface {
	CreateIfNotExists(ctx context.Context, userID, username, email string) (model.User, error)
	GetByUserID(ctx context.Context, userID string) (model.User, error)
	Exists(ctx context.Context, userID string) (bool, error)
}

// UserHandler exposes buyer registration and lookup.  Buyers carry no
// credentials; registration is idempotent CRUD around the purchase core.
type UserHandler struct {
	users UserStore
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(users UserStore) *UserHandler {
	if users == nil {
		panic("nil store passed to NewUserHandler")
	}
	return &UserHandler{users: users}
}

// Register handles POST /v1/users.  Registering an already-known user_id
// returns the existing user rather than an error, so load generators and
// retrying clients can call it blindly.
func (h *UserHandler) Register(c echo.Context) error {
	var body struct {
		UserID   string `json:"user_id"`
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.UserID == "" || body.Username == "" || body.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id, username and email are required"})
	}
	u, err := h.users.CreateIfNotExists(c.Request().Context(), body.UserID, body.Username, body.Email)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to register user"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": u})
}

// Get handles GET /v1/users/:id.
func (h *UserHandler) Get(c echo.Context) error {
	userID := c.Param("id")
	if userID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	u, err := h.users.GetByUserID(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load user"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": u})
}

// Exists handles GET /v1/users/:id/exists.
func (h *UserHandler) Exists(c echo.Context) error {
	userID := c.Param("id")
	if userID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	ok, err := h.users.Exists(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check user"})
	}
	return c.JSON(http.StatusOK, echo.Map{"exists": ok})
}
