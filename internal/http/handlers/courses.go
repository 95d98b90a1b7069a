package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/geocoder89/coursehub/internal/domain/course"
	"github.com/geocoder89/coursehub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type CourseStore interface {
	List(ctx context.Context) ([]course.Course, error)
	GetByID(ctx context.Context, id int64) (course.Course, error)
	Create(ctx context.Context, c course.Course) (course.Course, error)
	Update(ctx context.Context, id int64, req course.UpdateCourseRequest) error
	Delete(ctx context.Context, id int64) error
}

const (
	msgCourseNotFound  = defaultNotFoundMessage
	msgNothingToUpdate = "Resource Not found, nothing to update!"
	msgNothingToDelete = "Resource Not found, nothing to delete!"
)

type CoursesHandler struct {
	repo    CourseStore
	timeout time.Duration
}

func NewCoursesHandler(repo CourseStore, timeout time.Duration) *CoursesHandler {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &CoursesHandler{repo: repo, timeout: timeout}
}

func (h *CoursesHandler) List(ctx *gin.Context) error {
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), h.timeout)
	defer cancel()

	courses, err := h.repo.List(cctx)
	if err != nil {
		return fmt.Errorf("list courses: %w", err)
	}

	if courses == nil {
		courses = []course.Course{}
	}

	RespondJSONWithETag(ctx, http.StatusOK, courses)
	return nil
}

func (h *CoursesHandler) GetByID(ctx *gin.Context) error {
	c, err := h.load(ctx, msgCourseNotFound)
	if err != nil {
		return err
	}

	RespondJSONWithETag(ctx, http.StatusOK, c)
	return nil
}

func (h *CoursesHandler) Create(ctx *gin.Context) error {
	caller, ok := middlewares.CurrentUser(ctx)
	if !ok {
		return ErrUnauthenticated
	}

	var req course.CreateCourseRequest

	if err := BindJSON(ctx, &req); err != nil {
		return err
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), h.timeout)
	defer cancel()

	created, err := h.repo.Create(cctx, course.NewFromCreateRequest(req, caller.ID))
	if err != nil {
		return fmt.Errorf("create course: %w", err)
	}

	ctx.Header("Location", fmt.Sprintf("/api/courses/%d", created.ID))
	ctx.Status(http.StatusCreated)
	return nil
}

// Update checks existence, then ownership, then the payload.
func (h *CoursesHandler) Update(ctx *gin.Context) error {
	caller, ok := middlewares.CurrentUser(ctx)
	if !ok {
		return ErrUnauthenticated
	}

	c, err := h.load(ctx, msgNothingToUpdate)
	if err != nil {
		return err
	}

	if !c.OwnedBy(caller.ID) {
		return ErrForbidden
	}

	var req course.UpdateCourseRequest

	if err := BindJSON(ctx, &req); err != nil {
		return err
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), h.timeout)
	defer cancel()

	if err := h.repo.Update(cctx, c.ID, req); err != nil {
		if errors.Is(err, course.ErrNotFound) {
			// deleted between the lookup and the write
			return notFound(msgNothingToUpdate, err)
		}
		return fmt.Errorf("update course %d: %w", c.ID, err)
	}

	ctx.Status(http.StatusNoContent)
	return nil
}

func (h *CoursesHandler) Delete(ctx *gin.Context) error {
	caller, ok := middlewares.CurrentUser(ctx)
	if !ok {
		return ErrUnauthenticated
	}

	c, err := h.load(ctx, msgNothingToDelete)
	if err != nil {
		return err
	}

	if !c.OwnedBy(caller.ID) {
		return ErrForbidden
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), h.timeout)
	defer cancel()

	if err := h.repo.Delete(cctx, c.ID); err != nil {
		if errors.Is(err, course.ErrNotFound) {
			return notFound(msgNothingToDelete, err)
		}
		return fmt.Errorf("delete course %d: %w", c.ID, err)
	}

	ctx.Status(http.StatusNoContent)
	return nil
}

// load resolves the :id path parameter. Anything but plain decimal digits
// naming a positive id cannot be a course and is reported as not found.
func (h *CoursesHandler) load(ctx *gin.Context, notFoundMessage string) (course.Course, error) {
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		return course.Course{}, notFound(notFoundMessage, nil)
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), h.timeout)
	defer cancel()

	c, err := h.repo.GetByID(cctx, id)
	if err != nil {
		if errors.Is(err, course.ErrNotFound) {
			return course.Course{}, notFound(notFoundMessage, err)
		}
		return course.Course{}, fmt.Errorf("get course %d: %w", id, err)
	}

	return c, nil
}

func parseID(raw string) (int64, bool) {
	if raw == "" {
		return 0, false
	}

	// ParseInt alone would accept a leading sign
	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0, false
		}
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
