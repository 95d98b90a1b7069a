package middlewares

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/coursehub/internal/actorctx"
	"github.com/geocoder89/coursehub/internal/domain/user"
	"github.com/geocoder89/coursehub/internal/security"
	"github.com/gin-gonic/gin"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// Keep this small interface so tests can fake it easily.
type UserFinder interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

// CredentialVerifier resolves an email/password pair to a stored user.
type CredentialVerifier struct {
	users UserFinder
}

func NewCredentialVerifier(users UserFinder) *CredentialVerifier {
	return &CredentialVerifier{users: users}
}

// Verify returns ErrInvalidCredentials for an unknown email or a wrong
// password. Any other error comes from the store.
func (v *CredentialVerifier) Verify(ctx context.Context, email, password string) (user.User, error) {
	u, err := v.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, ErrInvalidCredentials
		}
		return user.User{}, fmt.Errorf("lookup user: %w", err)
	}

	if err := security.CheckPassword(u.PasswordHash, password); err != nil {
		return user.User{}, ErrInvalidCredentials
	}

	return u, nil
}

type BasicAuth struct {
	verifier *CredentialVerifier
	timeout  time.Duration
}

func NewBasicAuth(verifier *CredentialVerifier, timeout time.Duration) *BasicAuth {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &BasicAuth{verifier: verifier, timeout: timeout}
}

// RequireAuth authenticates every request from its "Basic" Authorization
// header. Nothing is remembered between requests.
func (m *BasicAuth) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		email, password, ok := c.Request.BasicAuth()
		if !ok || email == "" {
			abortUnauthorized(c, "missing or malformed authorization header")
			return
		}

		cctx, cancel := context.WithTimeout(c.Request.Context(), m.timeout)
		defer cancel()

		u, err := m.verifier.Verify(cctx, email, password)
		if err != nil {
			if errors.Is(err, ErrInvalidCredentials) {
				abortUnauthorized(c, "invalid credentials")
				return
			}

			slog.Default().ErrorContext(c.Request.Context(), "authentication failed", "err", err)
			abortWithError(c, http.StatusInternalServerError, "internal_error", "Could not authenticate request")
			return
		}

		c.Set(CtxUser, u)
		c.Request = c.Request.WithContext(actorctx.WithUserID(c.Request.Context(), u.ID))

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, reason string) {
	slog.Default().DebugContext(c.Request.Context(), "access denied", "reason", reason, "path", c.Request.URL.Path)

	abortWithError(c, http.StatusUnauthorized, "unauthorized", "Access Denied")
}

// abortWithError writes the same error envelope as the handlers, request id
// included.
func abortWithError(c *gin.Context, status int, code, message string) {
	body := gin.H{
		"code":    code,
		"message": message,
	}
	if id := RequestIDFrom(c); id != "" {
		body["requestId"] = id
	}

	c.AbortWithStatusJSON(status, gin.H{"error": body})
}

// CurrentUser returns the user stored by RequireAuth.
func CurrentUser(c *gin.Context) (user.User, bool) {
	v, ok := c.Get(CtxUser)
	if !ok {
		return user.User{}, false
	}
	u, ok := v.(user.User)
	return u, ok
}
