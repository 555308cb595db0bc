package db

import (
	"context"
	"coursehub/models"
	"database/sql"
	"fmt"
	"time"
)

// ProgressStore persists per-user lecture and course completion state
type ProgressStore struct {
	db *sql.DB
}

func NewProgressStore(database *sql.DB) *ProgressStore {
	return &ProgressStore{db: database}
}

// MarkLectureViewed upserts a viewed lecture and, when every lecture of the
// course is viewed, flips the course to completed.
func (s *ProgressStore) MarkLectureViewed(ctx context.Context, userID, courseID, lectureID int) (*models.CourseProgress, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO lecture_progress (user_id, course_id, lecture_id, viewed, date_viewed)
		 VALUES ($1, $2, $3, TRUE, $4)
		 ON CONFLICT (user_id, course_id, lecture_id)
		 DO UPDATE SET viewed = TRUE, date_viewed = EXCLUDED.date_viewed`,
		userID, courseID, lectureID, now)
	if err != nil {
		return nil, fmt.Errorf("error marking lecture viewed: %w", err)
	}

	var totalLectures, viewedLectures int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM lectures WHERE course_id = $1", courseID).Scan(&totalLectures); err != nil {
		return nil, fmt.Errorf("error counting lectures: %w", err)
	}
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM lecture_progress WHERE user_id = $1 AND course_id = $2 AND viewed",
		userID, courseID).Scan(&viewedLectures); err != nil {
		return nil, fmt.Errorf("error counting viewed lectures: %w", err)
	}

	completed := totalLectures > 0 && viewedLectures >= totalLectures
	if completed {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO course_progress (user_id, course_id, completed, completion_date)
			 VALUES ($1, $2, TRUE, $3)
			 ON CONFLICT (user_id, course_id)
			 DO UPDATE SET completed = TRUE,
				completion_date = COALESCE(course_progress.completion_date, EXCLUDED.completion_date)`,
			userID, courseID, now)
	} else {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO course_progress (user_id, course_id, completed)
			 VALUES ($1, $2, FALSE)
			 ON CONFLICT (user_id, course_id) DO NOTHING`,
			userID, courseID)
	}
	if err != nil {
		return nil, fmt.Errorf("error updating course completion: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing transaction: %w", err)
	}

	return s.Get(ctx, userID, courseID)
}

// Get returns the user's progress for a course. A user with no recorded
// progress gets an empty, not-completed result.
func (s *ProgressStore) Get(ctx context.Context, userID, courseID int) (*models.CourseProgress, error) {
	progress := &models.CourseProgress{
		UserID:   userID,
		CourseID: courseID,
		Lectures: []models.LectureProgress{},
	}

	var completionDate sql.NullTime
	err := s.db.QueryRowContext(ctx,
		"SELECT completed, completion_date FROM course_progress WHERE user_id = $1 AND course_id = $2",
		userID, courseID).Scan(&progress.Completed, &completionDate)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("error loading course progress: %w", err)
	}
	if completionDate.Valid {
		progress.CompletionDate = &completionDate.Time
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT lecture_id, viewed, date_viewed FROM lecture_progress
		 WHERE user_id = $1 AND course_id = $2 ORDER BY lecture_id`, userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("error loading lecture progress: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var lp models.LectureProgress
		var viewedAt sql.NullTime
		if err := rows.Scan(&lp.LectureID, &lp.Viewed, &viewedAt); err != nil {
			return nil, err
		}
		if viewedAt.Valid {
			lp.DateViewed = &viewedAt.Time
		}
		progress.Lectures = append(progress.Lectures, lp)
	}
	return progress, rows.Err()
}

// Reset clears all progress the user has for the course
func (s *ProgressStore) Reset(ctx context.Context, userID, courseID int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM lecture_progress WHERE user_id = $1 AND course_id = $2", userID, courseID); err != nil {
		return fmt.Errorf("error clearing lecture progress: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM course_progress WHERE user_id = $1 AND course_id = $2", userID, courseID); err != nil {
		return fmt.Errorf("error clearing course progress: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}
	return nil
}
