package models

import "time"

// StudentCourse is one purchased course in a student's list
type StudentCourse struct {
	CourseID       int       `json:"courseId"`
	Title          string    `json:"title"`
	InstructorID   int       `json:"instructorId"`
	InstructorName string    `json:"instructorName"`
	CourseImage    string    `json:"courseImage"`
	DateOfPurchase time.Time `json:"dateOfPurchase"`
}

// StudentCourses groups a user's purchases, at most one entry per course
type StudentCourses struct {
	UserID  int             `json:"userId"`
	Courses []StudentCourse `json:"courses"`
}

// CourseGrant carries everything the access granter needs to enroll a buyer
type CourseGrant struct {
	UserID         int
	UserName       string
	UserEmail      string
	CourseID       int
	CourseTitle    string
	CourseImage    string
	InstructorID   int
	InstructorName string
	PricePaid      float64
	PurchaseDate   time.Time
}
