package db

import (
	"coursehub/config"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

var DB *sql.DB

func InitDB() error {
	var err error
	connStr := config.GetDBConnString()

	DB, err = sql.Open("postgres", connStr)
	if err != nil {
		return fmt.Errorf("error opening database: %w", err)
	}

	// Test the connection
	err = DB.Ping()
	if err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}

	// Create tables
	if err := createTables(); err != nil {
		return fmt.Errorf("error creating tables: %w", err)
	}

	return nil
}

func createTables() error {
	userTable := `
	CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		user_name TEXT NOT NULL UNIQUE,
		user_email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'student',
		auth_provider TEXT NOT NULL DEFAULT 'local',
		google_id TEXT DEFAULT '',
		avatar TEXT DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`

	courseTable := `
	CREATE TABLE IF NOT EXISTS courses (
		id SERIAL PRIMARY KEY,
		instructor_id INTEGER NOT NULL,
		instructor_name TEXT NOT NULL,
		title TEXT NOT NULL,
		subtitle TEXT DEFAULT '',
		category TEXT DEFAULT '',
		level TEXT DEFAULT '',
		primary_language TEXT DEFAULT '',
		description TEXT DEFAULT '',
		image_url TEXT DEFAULT '',
		image_public_id TEXT DEFAULT '',
		welcome_message TEXT DEFAULT '',
		pricing REAL NOT NULL DEFAULT 0,
		objectives TEXT DEFAULT '',
		is_published BOOLEAN DEFAULT FALSE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,

		CONSTRAINT fk_instructor
			FOREIGN KEY (instructor_id)
			REFERENCES users(id)
			ON DELETE CASCADE
	);`

	lectureTable := `
	CREATE TABLE IF NOT EXISTS lectures (
		id SERIAL PRIMARY KEY,
		course_id INTEGER NOT NULL,
		position INTEGER NOT NULL,
		title TEXT NOT NULL,
		video_url TEXT DEFAULT '',
		video_public_id TEXT DEFAULT '',
		free_preview BOOLEAN DEFAULT FALSE,
		duration_seconds INTEGER DEFAULT 0,

		CONSTRAINT fk_course
			FOREIGN KEY (course_id)
			REFERENCES courses(id)
			ON DELETE CASCADE
	);`

	orderTable := `
	CREATE TABLE IF NOT EXISTS orders (
		id SERIAL PRIMARY KEY,
		user_id INTEGER NOT NULL,
		user_name TEXT NOT NULL,
		user_email TEXT NOT NULL,
		course_id INTEGER NOT NULL,
		course_title TEXT NOT NULL,
		course_image TEXT DEFAULT '',
		course_pricing REAL NOT NULL,
		instructor_id INTEGER NOT NULL,
		instructor_name TEXT NOT NULL,
		order_status TEXT NOT NULL DEFAULT 'created',
		payment_status TEXT NOT NULL DEFAULT 'pending',
		payment_method TEXT NOT NULL DEFAULT 'razorpay',
		currency TEXT NOT NULL DEFAULT 'INR',
		amount_in_paise BIGINT NOT NULL,
		razorpay_order_id TEXT NOT NULL UNIQUE,
		razorpay_payment_id TEXT DEFAULT '',
		razorpay_signature TEXT DEFAULT '',
		receipt TEXT NOT NULL,
		order_date TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		payment_date TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`

	studentCoursesTable := `
	CREATE TABLE IF NOT EXISTS student_courses (
		id SERIAL PRIMARY KEY,
		user_id INTEGER NOT NULL,
		course_id INTEGER NOT NULL,
		title TEXT NOT NULL,
		instructor_id INTEGER NOT NULL,
		instructor_name TEXT NOT NULL,
		course_image TEXT DEFAULT '',
		date_of_purchase TIMESTAMP DEFAULT CURRENT_TIMESTAMP,

		CONSTRAINT uq_student_course UNIQUE (user_id, course_id)
	);`

	courseStudentsTable := `
	CREATE TABLE IF NOT EXISTS course_students (
		course_id INTEGER NOT NULL,
		student_id INTEGER NOT NULL,
		student_name TEXT NOT NULL,
		student_email TEXT NOT NULL,
		paid_amount REAL NOT NULL DEFAULT 0,
		enrolled_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,

		PRIMARY KEY (course_id, student_id)
	);`

	courseProgressTable := `
	CREATE TABLE IF NOT EXISTS course_progress (
		id SERIAL PRIMARY KEY,
		user_id INTEGER NOT NULL,
		course_id INTEGER NOT NULL,
		completed BOOLEAN DEFAULT FALSE,
		completion_date TIMESTAMP,

		CONSTRAINT uq_course_progress UNIQUE (user_id, course_id)
	);`

	lectureProgressTable := `
	CREATE TABLE IF NOT EXISTS lecture_progress (
		user_id INTEGER NOT NULL,
		course_id INTEGER NOT NULL,
		lecture_id INTEGER NOT NULL,
		viewed BOOLEAN DEFAULT FALSE,
		date_viewed TIMESTAMP,

		PRIMARY KEY (user_id, course_id, lecture_id)
	);`

	webhookEventsTable := `
	CREATE TABLE IF NOT EXISTS webhook_events (
		id SERIAL PRIMARY KEY,
		event_id TEXT NOT NULL,
		event_type TEXT NOT NULL,
		payload TEXT NOT NULL,
		signature TEXT DEFAULT '',
		signature_valid BOOLEAN DEFAULT FALSE,
		status TEXT NOT NULL DEFAULT 'RECEIVED',
		error TEXT DEFAULT '',
		received_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`

	dlqTable := `
	CREATE TABLE IF NOT EXISTS dlq_messages (
		id SERIAL PRIMARY KEY,
		topic TEXT NOT NULL,
		key TEXT NOT NULL,
		payload TEXT NOT NULL,
		error TEXT DEFAULT '',
		status TEXT NOT NULL DEFAULT 'FAILED',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`

	tables := []struct {
		name string
		ddl  string
	}{
		{"users", userTable},
		{"courses", courseTable},
		{"lectures", lectureTable},
		{"orders", orderTable},
		{"student_courses", studentCoursesTable},
		{"course_students", courseStudentsTable},
		{"course_progress", courseProgressTable},
		{"lecture_progress", lectureProgressTable},
		{"webhook_events", webhookEventsTable},
		{"dlq_messages", dlqTable},
	}

	for _, t := range tables {
		if _, err := DB.Exec(t.ddl); err != nil {
			return fmt.Errorf("error creating %s table: %w", t.name, err)
		}
	}

	return nil
}
