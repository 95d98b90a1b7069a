package memory

import (
	"sync"

	"github.com/geocoder89/coursehub/internal/domain/course"
	"github.com/geocoder89/coursehub/internal/domain/user"
)

// Store keeps users and courses in maps behind one lock so the owner
// reference of a course can be checked and joined atomically.
type Store struct {
	mu      sync.RWMutex
	users   map[int64]user.User
	byEmail map[string]int64
	courses map[int64]course.Course

	nextUserID   int64
	nextCourseID int64
}

func NewStore() *Store {
	return &Store{
		users:   make(map[int64]user.User),
		byEmail: make(map[string]int64),
		courses: make(map[int64]course.Course),
	}
}

func (s *Store) Users() *UsersRepo {
	return &UsersRepo{s: s}
}

func (s *Store) Courses() *CoursesRepo {
	return &CoursesRepo{s: s}
}

// withOwner fills the public owner projection. Caller holds s.mu.
func (s *Store) withOwner(c course.Course) course.Course {
	if u, ok := s.users[c.UserID]; ok {
		c.Owner = course.Owner{
			FirstName:    u.FirstName,
			LastName:     u.LastName,
			EmailAddress: u.EmailAddress,
		}
	}
	return c
}
