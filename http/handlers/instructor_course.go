package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	resp "coursehub/http/response"
	"coursehub/models"
	"coursehub/services"
)

// InstructorCourseHandler exposes course management for instructors
type InstructorCourseHandler struct {
	Courses *services.CourseService
}

func NewInstructorCourseHandler(courses *services.CourseService) *InstructorCourseHandler {
	return &InstructorCourseHandler{Courses: courses}
}

// Add handles POST /instructor/course/add
func (h *InstructorCourseHandler) Add(w http.ResponseWriter, r *http.Request) {
	var course models.Course
	if err := json.NewDecoder(r.Body).Decode(&course); err != nil {
		resp.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.Courses.AddCourse(r.Context(), &course)
	if err != nil {
		resp.Error(w, err)
		return
	}
	resp.OKMessage(w, http.StatusCreated, "Course saved successfully", created)
}

// List handles GET /instructor/course/get?instructorId=
func (h *InstructorCourseHandler) List(w http.ResponseWriter, r *http.Request) {
	instructorID, _ := strconv.Atoi(r.URL.Query().Get("instructorId"))

	courses, err := h.Courses.ListInstructorCourses(r.Context(), instructorID)
	if err != nil {
		resp.Error(w, err)
		return
	}
	resp.OK(w, http.StatusOK, courses)
}

// GetDetails handles GET /instructor/course/get/details/{id}
func (h *InstructorCourseHandler) GetDetails(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		resp.Fail(w, http.StatusBadRequest, "Invalid course id")
		return
	}

	course, err := h.Courses.GetCourse(r.Context(), id)
	if err != nil {
		resp.Error(w, err)
		return
	}
	resp.OK(w, http.StatusOK, course)
}

// Update handles PUT /instructor/course/update/{id}
func (h *InstructorCourseHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		resp.Fail(w, http.StatusBadRequest, "Invalid course id")
		return
	}

	var course models.Course
	if err := json.NewDecoder(r.Body).Decode(&course); err != nil {
		resp.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	course.ID = id

	updated, err := h.Courses.UpdateCourse(r.Context(), &course)
	if err != nil {
		resp.Error(w, err)
		return
	}
	resp.OKMessage(w, http.StatusOK, "Course updated successfully", updated)
}

// ExportRoster handles GET /instructor/course/{id}/roster.xlsx
func (h *InstructorCourseHandler) ExportRoster(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		resp.Fail(w, http.StatusBadRequest, "Invalid course id")
		return
	}

	workbook, fileName, err := h.Courses.ExportRoster(r.Context(), id)
	if err != nil {
		resp.Error(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	w.WriteHeader(http.StatusOK)
	w.Write(workbook)
}
