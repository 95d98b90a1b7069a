package memory

import (
	"context"
	"sort"

	"github.com/geocoder89/coursehub/internal/domain/course"
	"github.com/geocoder89/coursehub/internal/domain/validation"
)

type CoursesRepo struct {
	s *Store
}

func (r *CoursesRepo) Create(ctx context.Context, c course.Course) (course.Course, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[c.UserID]; !ok {
		return course.Course{}, validation.New(validation.MsgUnknownOwner)
	}

	r.s.nextCourseID++
	c.ID = r.s.nextCourseID
	r.s.courses[c.ID] = c

	return r.s.withOwner(c), nil
}

func (r *CoursesRepo) List(ctx context.Context) ([]course.Course, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]course.Course, 0, len(r.s.courses))
	for _, c := range r.s.courses {
		out = append(out, r.s.withOwner(c))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *CoursesRepo) GetByID(ctx context.Context, id int64) (course.Course, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.courses[id]
	if !ok {
		return course.Course{}, course.ErrNotFound
	}

	return r.s.withOwner(c), nil
}

func (r *CoursesRepo) Update(ctx context.Context, id int64, req course.UpdateCourseRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.courses[id]
	if !ok {
		return course.ErrNotFound
	}

	if req.IsEmpty() {
		return nil
	}

	r.s.courses[id] = c.Apply(req)

	return nil
}

func (r *CoursesRepo) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.courses[id]; !ok {
		return course.ErrNotFound
	}

	delete(r.s.courses, id)

	return nil
}
