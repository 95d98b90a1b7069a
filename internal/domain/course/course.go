package course

import (
	"errors"
	"time"

	"github.com/geocoder89/coursehub/internal/domain/validation"
)

var ErrNotFound = errors.New("course not found")

// Owner is the public projection of the user who owns a course.
type Owner struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	EmailAddress string `json:"emailAddress"`
}

type Course struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	EstimatedTime   *string   `json:"estimatedTime"`
	MaterialsNeeded *string   `json:"materialsNeeded"`
	UserID          int64     `json:"-"`
	Owner           Owner     `json:"User"`
	CreatedAt       time.Time `json:"-"`
	UpdatedAt       time.Time `json:"-"`
}

type CreateCourseRequest struct {
	Title           string  `json:"title" binding:"required"`
	Description     string  `json:"description" binding:"required"`
	EstimatedTime   *string `json:"estimatedTime"`
	MaterialsNeeded *string `json:"materialsNeeded"`
}

// UpdateCourseRequest is a partial update: fields whose key is absent are left
// untouched, a null clears an optional field. The owner is not part of the
// payload and cannot change.
type UpdateCourseRequest struct {
	Title           Optional[string] `json:"title"`
	Description     Optional[string] `json:"description"`
	EstimatedTime   Optional[string] `json:"estimatedTime"`
	MaterialsNeeded Optional[string] `json:"materialsNeeded"`
}

func (r UpdateCourseRequest) IsEmpty() bool {
	return !r.Title.Set && !r.Description.Set && !r.EstimatedTime.Set && !r.MaterialsNeeded.Set
}

// Validate rejects required fields that were sent as null or "".
func (r UpdateCourseRequest) Validate() error {
	var messages []string

	if r.Title.Set && (r.Title.Value == nil || *r.Title.Value == "") {
		messages = append(messages, validation.RequiredMsg("title"))
	}
	if r.Description.Set && (r.Description.Value == nil || *r.Description.Value == "") {
		messages = append(messages, validation.RequiredMsg("description"))
	}

	if len(messages) > 0 {
		return validation.New(messages...)
	}
	return nil
}

func (c Course) OwnedBy(userID int64) bool {
	return c.UserID == userID
}
