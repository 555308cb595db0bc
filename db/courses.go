package db

import (
	"context"
	"coursehub/models"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// CourseStore persists courses and their curriculum
type CourseStore struct {
	db *sql.DB
}

func NewCourseStore(database *sql.DB) *CourseStore {
	return &CourseStore{db: database}
}

const courseColumns = `id, instructor_id, instructor_name, title, subtitle, category, level,
	primary_language, description, image_url, image_public_id, welcome_message, pricing,
	objectives, is_published, created_at, updated_at`

func scanCourse(scanner interface{ Scan(...interface{}) error }) (*models.Course, error) {
	var c models.Course
	err := scanner.Scan(&c.ID, &c.InstructorID, &c.InstructorName, &c.Title, &c.Subtitle,
		&c.Category, &c.Level, &c.PrimaryLanguage, &c.Description, &c.ImageURL,
		&c.ImagePublicID, &c.WelcomeMessage, &c.Pricing, &c.Objectives, &c.IsPublished,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a course together with its curriculum in a single transaction
func (s *CourseStore) Create(ctx context.Context, c *models.Course) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	var id int
	err = tx.QueryRowContext(ctx,
		`INSERT INTO courses (instructor_id, instructor_name, title, subtitle, category, level,
			primary_language, description, image_url, image_public_id, welcome_message, pricing,
			objectives, is_published)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14) RETURNING id`,
		c.InstructorID, c.InstructorName, c.Title, c.Subtitle, c.Category, c.Level,
		c.PrimaryLanguage, c.Description, c.ImageURL, c.ImagePublicID, c.WelcomeMessage,
		c.Pricing, c.Objectives, c.IsPublished).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("error inserting course: %w", err)
	}

	if err := insertLectures(ctx, tx, id, c.Curriculum); err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("error committing transaction: %w", err)
	}
	return id, nil
}

// Update replaces the course details and its curriculum
func (s *CourseStore) Update(ctx context.Context, c *models.Course) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE courses SET title = $1, subtitle = $2, category = $3, level = $4,
			primary_language = $5, description = $6, image_url = $7, image_public_id = $8,
			welcome_message = $9, pricing = $10, objectives = $11, is_published = $12,
			updated_at = CURRENT_TIMESTAMP
		 WHERE id = $13`,
		c.Title, c.Subtitle, c.Category, c.Level, c.PrimaryLanguage, c.Description,
		c.ImageURL, c.ImagePublicID, c.WelcomeMessage, c.Pricing, c.Objectives,
		c.IsPublished, c.ID)
	if err != nil {
		return fmt.Errorf("error updating course: %w", err)
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return sql.ErrNoRows
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM lectures WHERE course_id = $1", c.ID); err != nil {
		return fmt.Errorf("error clearing curriculum: %w", err)
	}
	if err := insertLectures(ctx, tx, c.ID, c.Curriculum); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}
	return nil
}

func insertLectures(ctx context.Context, tx *sql.Tx, courseID int, lectures []models.Lecture) error {
	for i, l := range lectures {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO lectures (course_id, position, title, video_url, video_public_id, free_preview, duration_seconds)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			courseID, i+1, l.Title, l.VideoURL, l.VideoPublicID, l.FreePreview, l.DurationSeconds)
		if err != nil {
			return fmt.Errorf("error inserting lecture %d: %w", i+1, err)
		}
	}
	return nil
}

// GetByID returns a course with its curriculum, or sql.ErrNoRows
func (s *CourseStore) GetByID(ctx context.Context, id int) (*models.Course, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+courseColumns+" FROM courses WHERE id = $1", id)
	course, err := scanCourse(row)
	if err != nil {
		return nil, err
	}

	lectures, err := s.getLectures(ctx, id)
	if err != nil {
		return nil, err
	}
	course.Curriculum = lectures

	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM course_students WHERE course_id = $1", id).Scan(&course.Students); err != nil {
		return nil, fmt.Errorf("error counting students: %w", err)
	}

	return course, nil
}

func (s *CourseStore) getLectures(ctx context.Context, courseID int) ([]models.Lecture, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, course_id, position, title, video_url, video_public_id, free_preview, duration_seconds
		 FROM lectures WHERE course_id = $1 ORDER BY position`, courseID)
	if err != nil {
		return nil, fmt.Errorf("error loading curriculum: %w", err)
	}
	defer rows.Close()

	var lectures []models.Lecture
	for rows.Next() {
		var l models.Lecture
		if err := rows.Scan(&l.ID, &l.CourseID, &l.Position, &l.Title, &l.VideoURL,
			&l.VideoPublicID, &l.FreePreview, &l.DurationSeconds); err != nil {
			return nil, err
		}
		lectures = append(lectures, l)
	}
	return lectures, rows.Err()
}

// ListByInstructor returns all courses owned by an instructor
func (s *CourseStore) ListByInstructor(ctx context.Context, instructorID int) ([]models.Course, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+courseColumns+" FROM courses WHERE instructor_id = $1 ORDER BY created_at DESC",
		instructorID)
	if err != nil {
		return nil, fmt.Errorf("error listing instructor courses: %w", err)
	}
	return collectCourses(rows)
}

// ListPublished returns published courses matching the catalog filter
func (s *CourseStore) ListPublished(ctx context.Context, filter models.CourseFilter) ([]models.Course, error) {
	query := "SELECT " + courseColumns + " FROM courses WHERE is_published = TRUE"
	var args []interface{}

	addIn := func(column string, values []string) {
		if len(values) == 0 {
			return
		}
		args = append(args, pq.Array(values))
		query += fmt.Sprintf(" AND %s = ANY($%d)", column, len(args))
	}
	addIn("category", filter.Categories)
	addIn("level", filter.Levels)
	addIn("primary_language", filter.PrimaryLanguages)

	switch filter.SortBy {
	case models.SortPriceLowToHigh:
		query += " ORDER BY pricing ASC"
	case models.SortPriceHighToLow:
		query += " ORDER BY pricing DESC"
	case models.SortTitleZToA:
		query += " ORDER BY LOWER(title) DESC"
	default:
		query += " ORDER BY LOWER(title) ASC"
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing courses: %w", err)
	}
	return collectCourses(rows)
}

func collectCourses(rows *sql.Rows) ([]models.Course, error) {
	defer rows.Close()
	courses := []models.Course{}
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, *c)
	}
	return courses, rows.Err()
}

// Roster returns the enrolled students of a course
func (s *CourseStore) Roster(ctx context.Context, courseID int) ([]models.RosterEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT course_id, student_id, student_name, student_email, paid_amount, enrolled_at
		 FROM course_students WHERE course_id = $1 ORDER BY enrolled_at`, courseID)
	if err != nil {
		return nil, fmt.Errorf("error loading roster: %w", err)
	}
	defer rows.Close()

	var roster []models.RosterEntry
	for rows.Next() {
		var e models.RosterEntry
		if err := rows.Scan(&e.CourseID, &e.StudentID, &e.StudentName, &e.StudentEmail,
			&e.PaidAmount, &e.EnrolledAt); err != nil {
			return nil, err
		}
		roster = append(roster, e)
	}
	return roster, rows.Err()
}
