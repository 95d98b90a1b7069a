package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/geocoder89/coursehub/internal/domain/user"
	"github.com/geocoder89/coursehub/internal/domain/validation"
	"github.com/geocoder89/coursehub/internal/http/middlewares"
	"github.com/geocoder89/coursehub/internal/security"
	"github.com/gin-gonic/gin"
)

type UserStore interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	Create(ctx context.Context, u user.User) (user.User, error)
}

type UsersHandler struct {
	repo    UserStore
	timeout time.Duration
}

func NewUsersHandler(repo UserStore, timeout time.Duration) *UsersHandler {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &UsersHandler{repo: repo, timeout: timeout}
}

// Me returns the profile of the authenticated caller.
func (h *UsersHandler) Me(ctx *gin.Context) error {
	u, ok := middlewares.CurrentUser(ctx)
	if !ok {
		return ErrUnauthenticated
	}

	ctx.JSON(http.StatusOK, u.Profile())
	return nil
}

func (h *UsersHandler) Create(ctx *gin.Context) error {
	var req user.CreateUserRequest

	if err := BindJSON(ctx, &req); err != nil {
		return err
	}

	hash, err := security.HashPassword(req.Password)
	if errors.Is(err, security.ErrPasswordTooLong) {
		return validation.New(fmt.Sprintf("%q must be at most %d bytes", "password", security.MaxPasswordBytes))
	}
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), h.timeout)
	defer cancel()

	if _, err := h.repo.Create(cctx, user.NewFromCreateRequest(req, hash)); err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	ctx.Header("Location", "/")
	ctx.Status(http.StatusCreated)
	return nil
}
