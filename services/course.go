package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"coursehub/cache"
	"coursehub/db"
	apperrors "coursehub/errors"
	"coursehub/logger"
	"coursehub/models"
	"coursehub/utils"
)

// CourseStore is the persistence surface the course services need
type CourseStore interface {
	Create(ctx context.Context, c *models.Course) (int, error)
	Update(ctx context.Context, c *models.Course) error
	GetByID(ctx context.Context, id int) (*models.Course, error)
	ListByInstructor(ctx context.Context, instructorID int) ([]models.Course, error)
	ListPublished(ctx context.Context, filter models.CourseFilter) ([]models.Course, error)
	Roster(ctx context.Context, courseID int) ([]models.RosterEntry, error)
}

// EnrollmentReader answers ownership questions for students
type EnrollmentReader interface {
	HasPurchased(ctx context.Context, userID, courseID int) (bool, error)
	ListByUser(ctx context.Context, userID int) (*models.StudentCourses, error)
}

// CourseService covers instructor course management and the student catalog
type CourseService struct {
	Courses     CourseStore
	Enrollments EnrollmentReader
}

// NewCourseService wires the course service to the database
func NewCourseService() *CourseService {
	return &CourseService{
		Courses:     db.NewCourseStore(db.DB),
		Enrollments: db.NewAccessStore(db.DB),
	}
}

func validateCourse(c *models.Course) error {
	switch {
	case c.InstructorID == 0:
		return apperrors.NewInvalidParamsError("instructorId is required")
	case strings.TrimSpace(c.Title) == "":
		return apperrors.NewInvalidParamsError("title is required")
	case len(c.Title) > utils.MaxTitleLength:
		return apperrors.NewInvalidParamsError(fmt.Sprintf("title must be less than %d characters", utils.MaxTitleLength))
	case c.Pricing < 0:
		return apperrors.NewInvalidParamsError("pricing cannot be negative")
	}
	return nil
}

// AddCourse creates a course with its curriculum
func (s *CourseService) AddCourse(ctx context.Context, course *models.Course) (*models.Course, error) {
	if err := validateCourse(course); err != nil {
		return nil, err
	}

	id, err := s.Courses.Create(ctx, course)
	if err != nil {
		return nil, apperrors.E(apperrors.Internal, "error creating course", err)
	}
	course.ID = id

	cache.InvalidateCatalog(ctx)
	logger.Info("Course %d created by instructor %d: %s", id, course.InstructorID, course.Title)
	return course, nil
}

// UpdateCourse replaces course details and curriculum
func (s *CourseService) UpdateCourse(ctx context.Context, course *models.Course) (*models.Course, error) {
	if course.ID == 0 {
		return nil, apperrors.NewInvalidParamsError("course id is required")
	}
	if err := validateCourse(course); err != nil {
		return nil, err
	}

	if err := s.Courses.Update(ctx, course); err != nil {
		if apperrors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("Course not found")
		}
		return nil, apperrors.E(apperrors.Internal, "error updating course", err)
	}

	cache.InvalidateCatalog(ctx)
	logger.Info("Course %d updated", course.ID)
	return course, nil
}

// GetCourse returns one course with its curriculum
func (s *CourseService) GetCourse(ctx context.Context, id int) (*models.Course, error) {
	course, err := s.Courses.GetByID(ctx, id)
	if err != nil {
		if apperrors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("Course not found")
		}
		return nil, apperrors.E(apperrors.Internal, "error loading course", err)
	}
	return course, nil
}

// ListInstructorCourses returns the courses owned by an instructor
func (s *CourseService) ListInstructorCourses(ctx context.Context, instructorID int) ([]models.Course, error) {
	if instructorID == 0 {
		return nil, apperrors.NewInvalidParamsError("instructorId is required")
	}
	courses, err := s.Courses.ListByInstructor(ctx, instructorID)
	if err != nil {
		return nil, apperrors.E(apperrors.Internal, "error listing courses", err)
	}
	return courses, nil
}

// ExportRoster builds the enrolled-students workbook for a course
func (s *CourseService) ExportRoster(ctx context.Context, courseID int) ([]byte, string, error) {
	course, err := s.GetCourse(ctx, courseID)
	if err != nil {
		return nil, "", err
	}

	entries, err := s.Courses.Roster(ctx, courseID)
	if err != nil {
		return nil, "", apperrors.E(apperrors.Internal, "error loading roster", err)
	}

	workbook, err := BuildRosterWorkbook(course, entries)
	if err != nil {
		return nil, "", apperrors.E(apperrors.Internal, "error building roster export", err)
	}

	fileName := fmt.Sprintf("roster_course_%d.xlsx", courseID)
	return workbook, fileName, nil
}

// CatalogQueryKey derives a stable cache key from the filter
func CatalogQueryKey(filter models.CourseFilter) string {
	norm := func(values []string) string {
		sorted := append([]string(nil), values...)
		sort.Strings(sorted)
		return strings.Join(sorted, ",")
	}
	return fmt.Sprintf("cat=%s|lvl=%s|lang=%s|sort=%s",
		norm(filter.Categories), norm(filter.Levels), norm(filter.PrimaryLanguages), filter.SortBy)
}

// BrowseCatalog lists published courses for students, cache-aside
func (s *CourseService) BrowseCatalog(ctx context.Context, filter models.CourseFilter) ([]models.Course, error) {
	queryKey := CatalogQueryKey(filter)

	var cached []models.Course
	if cache.GetCatalog(ctx, queryKey, &cached) {
		return cached, nil
	}

	courses, err := s.Courses.ListPublished(ctx, filter)
	if err != nil {
		return nil, apperrors.E(apperrors.Internal, "error listing courses", err)
	}

	cache.SetCatalog(ctx, queryKey, courses)
	return courses, nil
}

// GetCatalogCourse returns public details of a published course
func (s *CourseService) GetCatalogCourse(ctx context.Context, id int) (*models.Course, error) {
	course, err := s.GetCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	if !course.IsPublished {
		return nil, apperrors.NewNotFoundError("Course not found")
	}
	return course, nil
}

// CheckPurchase reports whether the student already owns the course
func (s *CourseService) CheckPurchase(ctx context.Context, courseID, studentID int) (bool, error) {
	owned, err := s.Enrollments.HasPurchased(ctx, studentID, courseID)
	if err != nil {
		return false, apperrors.E(apperrors.Internal, "error checking purchase", err)
	}
	return owned, nil
}

// CoursesBought returns the student's purchased course list
func (s *CourseService) CoursesBought(ctx context.Context, studentID int) (*models.StudentCourses, error) {
	list, err := s.Enrollments.ListByUser(ctx, studentID)
	if err != nil {
		return nil, apperrors.E(apperrors.Internal, "error listing purchased courses", err)
	}
	return list, nil
}
