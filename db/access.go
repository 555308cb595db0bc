package db

import (
	"context"
	"coursehub/models"
	"database/sql"
	"fmt"
)

// AccessStore owns the two enrollment collections: the per-user purchased
// course list and the per-course student roster.
type AccessStore struct {
	db *sql.DB
}

func NewAccessStore(database *sql.DB) *AccessStore {
	return &AccessStore{db: database}
}

// Grant enrolls the buyer. Both writes run in one transaction and both are
// conflict-free upserts, so repeated grants for the same purchase converge
// to a single list entry and a single roster row.
func (s *AccessStore) Grant(ctx context.Context, g models.CourseGrant) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO student_courses (user_id, course_id, title, instructor_id, instructor_name, course_image, date_of_purchase)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (user_id, course_id) DO NOTHING`,
		g.UserID, g.CourseID, g.CourseTitle, g.InstructorID, g.InstructorName, g.CourseImage, g.PurchaseDate)
	if err != nil {
		return fmt.Errorf("error adding course to student list: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO course_students (course_id, student_id, student_name, student_email, paid_amount)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (course_id, student_id) DO NOTHING`,
		g.CourseID, g.UserID, g.UserName, g.UserEmail, g.PricePaid)
	if err != nil {
		return fmt.Errorf("error adding student to roster: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}
	return nil
}

// HasPurchased reports whether the user already owns the course
func (s *AccessStore) HasPurchased(ctx context.Context, userID, courseID int) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM student_courses WHERE user_id = $1 AND course_id = $2)",
		userID, courseID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking purchase: %w", err)
	}
	return exists, nil
}

// ListByUser returns the user's purchased courses, oldest purchase first
func (s *AccessStore) ListByUser(ctx context.Context, userID int) (*models.StudentCourses, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT course_id, title, instructor_id, instructor_name, course_image, date_of_purchase
		 FROM student_courses WHERE user_id = $1 ORDER BY date_of_purchase`, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing student courses: %w", err)
	}
	defer rows.Close()

	list := &models.StudentCourses{UserID: userID, Courses: []models.StudentCourse{}}
	for rows.Next() {
		var c models.StudentCourse
		if err := rows.Scan(&c.CourseID, &c.Title, &c.InstructorID, &c.InstructorName,
			&c.CourseImage, &c.DateOfPurchase); err != nil {
			return nil, err
		}
		list.Courses = append(list.Courses, c)
	}
	return list, rows.Err()
}
