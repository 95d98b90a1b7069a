package course

import "time"

func NewFromCreateRequest(req CreateCourseRequest, ownerID int64) Course {
	now := time.Now().UTC()

	return Course{
		Title:           req.Title,
		Description:     req.Description,
		EstimatedTime:   req.EstimatedTime,
		MaterialsNeeded: req.MaterialsNeeded,
		UserID:          ownerID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Apply returns c with every field present in req written over it. Required
// fields are only written when they carry a value.
func (c Course) Apply(req UpdateCourseRequest) Course {
	if req.Title.Set && req.Title.Value != nil {
		c.Title = *req.Title.Value
	}
	if req.Description.Set && req.Description.Value != nil {
		c.Description = *req.Description.Value
	}
	if req.EstimatedTime.Set {
		c.EstimatedTime = req.EstimatedTime.Value
	}
	if req.MaterialsNeeded.Set {
		c.MaterialsNeeded = req.MaterialsNeeded.Value
	}
	c.UpdatedAt = time.Now().UTC()

	return c
}
