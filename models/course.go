package models

import "time"

// Lecture is a single curriculum item of a course
type Lecture struct {
	ID              int    `json:"id"`
	CourseID        int    `json:"courseId"`
	Position        int    `json:"position"`
	Title           string `json:"title"`
	VideoURL        string `json:"videoUrl"`
	VideoPublicID   string `json:"public_id"`
	FreePreview     bool   `json:"freePreview"`
	DurationSeconds int    `json:"durationSeconds,omitempty"`
}

// Course represents a published or draft course with its curriculum
type Course struct {
	ID              int       `json:"id"`
	InstructorID    int       `json:"instructorId"`
	InstructorName  string    `json:"instructorName"`
	Title           string    `json:"title"`
	Subtitle        string    `json:"subtitle,omitempty"`
	Category        string    `json:"category"`
	Level           string    `json:"level"`
	PrimaryLanguage string    `json:"primaryLanguage"`
	Description     string    `json:"description"`
	ImageURL        string    `json:"image"`
	ImagePublicID   string    `json:"imagePublicId,omitempty"`
	WelcomeMessage  string    `json:"welcomeMessage,omitempty"`
	Pricing         float64   `json:"pricing"`
	Objectives      string    `json:"objectives,omitempty"`
	IsPublished     bool      `json:"isPublished"`
	Curriculum      []Lecture `json:"curriculum,omitempty"`
	Students        int       `json:"students"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// CourseFilter holds the catalog browse filters
type CourseFilter struct {
	Categories       []string
	Levels           []string
	PrimaryLanguages []string
	SortBy           string
}

// Supported catalog sort orders
const (
	SortPriceLowToHigh = "price-lowtohigh"
	SortPriceHighToLow = "price-hightolow"
	SortTitleAToZ      = "title-atoz"
	SortTitleZToA      = "title-ztoa"
)

// RosterEntry is one enrolled student on a course
type RosterEntry struct {
	CourseID     int       `json:"courseId"`
	StudentID    int       `json:"studentId"`
	StudentName  string    `json:"studentName"`
	StudentEmail string    `json:"studentEmail"`
	PaidAmount   float64   `json:"paidAmount"`
	EnrolledAt   time.Time `json:"enrolledAt"`
}
