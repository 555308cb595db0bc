package models

import "time"

// LectureProgress tracks a single viewed lecture
type LectureProgress struct {
	LectureID  int        `json:"lectureId"`
	Viewed     bool       `json:"viewed"`
	DateViewed *time.Time `json:"dateViewed,omitempty"`
}

// CourseProgress is the per-user completion state of a course
type CourseProgress struct {
	UserID         int               `json:"userId"`
	CourseID       int               `json:"courseId"`
	Completed      bool              `json:"completed"`
	CompletionDate *time.Time        `json:"completionDate,omitempty"`
	Lectures       []LectureProgress `json:"lecturesProgress"`
}
