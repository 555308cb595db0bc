package services

import (
	"context"

	"coursehub/db"
	apperrors "coursehub/errors"
	"coursehub/models"
)

// ProgressStore persists per-user completion state
type ProgressStore interface {
	MarkLectureViewed(ctx context.Context, userID, courseID, lectureID int) (*models.CourseProgress, error)
	Get(ctx context.Context, userID, courseID int) (*models.CourseProgress, error)
	Reset(ctx context.Context, userID, courseID int) error
}

// ProgressService tracks lecture views and course completion
type ProgressService struct {
	Progress    ProgressStore
	Enrollments EnrollmentReader
	Courses     CourseStore
}

// NewProgressService wires the progress service to the database
func NewProgressService() *ProgressService {
	return &ProgressService{
		Progress:    db.NewProgressStore(db.DB),
		Enrollments: db.NewAccessStore(db.DB),
		Courses:     db.NewCourseStore(db.DB),
	}
}

func (s *ProgressService) requirePurchase(ctx context.Context, userID, courseID int) error {
	if userID == 0 || courseID == 0 {
		return apperrors.NewInvalidParamsError("userId and courseId are required")
	}
	owned, err := s.Enrollments.HasPurchased(ctx, userID, courseID)
	if err != nil {
		return apperrors.E(apperrors.Internal, "error checking purchase", err)
	}
	if !owned {
		return apperrors.NewForbiddenError("You need to purchase this course to access it")
	}
	return nil
}

// MarkLectureViewed records a viewed lecture; viewing the last remaining
// lecture completes the course
func (s *ProgressService) MarkLectureViewed(ctx context.Context, userID, courseID, lectureID int) (*models.CourseProgress, error) {
	if lectureID == 0 {
		return nil, apperrors.NewInvalidParamsError("lectureId is required")
	}
	if err := s.requirePurchase(ctx, userID, courseID); err != nil {
		return nil, err
	}

	progress, err := s.Progress.MarkLectureViewed(ctx, userID, courseID, lectureID)
	if err != nil {
		return nil, apperrors.E(apperrors.Internal, "error updating progress", err)
	}
	return progress, nil
}

// ProgressView bundles course details with the user's progress
type ProgressView struct {
	CourseDetails  *models.Course           `json:"courseDetails"`
	Progress       []models.LectureProgress `json:"progress"`
	Completed      bool                     `json:"completed"`
	CompletionDate *string                  `json:"completionDate,omitempty"`
	IsPurchased    bool                     `json:"isPurchased"`
}

// GetProgress returns the course with the user's per-lecture progress. A
// student who has not bought the course only learns that.
func (s *ProgressService) GetProgress(ctx context.Context, userID, courseID int) (*ProgressView, error) {
	if userID == 0 || courseID == 0 {
		return nil, apperrors.NewInvalidParamsError("userId and courseId are required")
	}

	owned, err := s.Enrollments.HasPurchased(ctx, userID, courseID)
	if err != nil {
		return nil, apperrors.E(apperrors.Internal, "error checking purchase", err)
	}
	if !owned {
		return &ProgressView{IsPurchased: false}, nil
	}

	course, err := s.Courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, apperrors.NewNotFoundError("Course not found")
	}

	progress, err := s.Progress.Get(ctx, userID, courseID)
	if err != nil {
		return nil, apperrors.E(apperrors.Internal, "error loading progress", err)
	}

	view := &ProgressView{
		CourseDetails: course,
		Progress:      progress.Lectures,
		Completed:     progress.Completed,
		IsPurchased:   true,
	}
	if progress.CompletionDate != nil {
		d := progress.CompletionDate.Format("2006-01-02T15:04:05Z07:00")
		view.CompletionDate = &d
	}
	return view, nil
}

// ResetProgress clears the user's progress for the course
func (s *ProgressService) ResetProgress(ctx context.Context, userID, courseID int) (*models.CourseProgress, error) {
	if err := s.requirePurchase(ctx, userID, courseID); err != nil {
		return nil, err
	}
	if err := s.Progress.Reset(ctx, userID, courseID); err != nil {
		return nil, apperrors.E(apperrors.Internal, "error resetting progress", err)
	}
	progress, err := s.Progress.Get(ctx, userID, courseID)
	if err != nil {
		return nil, apperrors.E(apperrors.Internal, "error loading progress", err)
	}
	return progress, nil
}
