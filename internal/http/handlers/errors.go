package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/geocoder89/coursehub/internal/domain/course"
	"github.com/geocoder89/coursehub/internal/domain/user"
	"github.com/geocoder89/coursehub/internal/domain/validation"
	"github.com/gin-gonic/gin"
)

var (
	ErrNotFound        = errors.New("resource not found")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthenticated = errors.New("unauthenticated")
)

const defaultNotFoundMessage = "Resource Not found."

var errorStatusMap = map[error]int{
	ErrNotFound:        http.StatusNotFound,
	course.ErrNotFound: http.StatusNotFound,
	user.ErrNotFound:   http.StatusNotFound,
	ErrForbidden:       http.StatusForbidden,
	ErrUnauthenticated: http.StatusUnauthorized,
}

// notFoundError lets a route choose the message of its 404.
type notFoundError struct {
	message string
	err     error
}

func (e *notFoundError) Error() string { return e.message }
func (e *notFoundError) Unwrap() error { return e.err }

func notFound(message string, err error) error {
	if err == nil {
		err = ErrNotFound
	}
	return &notFoundError{message: message, err: err}
}

// HandlerFunc is a route handler that reports failure by returning an error
// instead of writing the response itself.
type HandlerFunc func(ctx *gin.Context) error

// Handle adapts fn to gin and turns its error into the matching response.
func Handle(log *slog.Logger, fn HandlerFunc) gin.HandlerFunc {
	if log == nil {
		log = slog.Default()
	}

	return func(ctx *gin.Context) {
		err := fn(ctx)
		if err == nil {
			return
		}

		if messages, ok := validation.Messages(err); ok {
			RespondValidation(ctx, messages)
			return
		}

		switch statusFromError(err) {
		case http.StatusNotFound:
			message := defaultNotFoundMessage
			var nf *notFoundError
			if errors.As(err, &nf) {
				message = nf.message
			}
			RespondNotFound(ctx, message)
		case http.StatusForbidden:
			RespondForbidden(ctx)
		case http.StatusUnauthorized:
			RespondUnauthorized(ctx)
		default:
			log.ErrorContext(ctx.Request.Context(), "request failed",
				"method", ctx.Request.Method,
				"route", ctx.FullPath(),
				"err", err,
			)
			RespondInternal(ctx, "Something went wrong")
		}
	}
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}
