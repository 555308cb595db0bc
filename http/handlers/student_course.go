package handlers

import (
	"net/http"
	"strconv"

	resp "coursehub/http/response"
	"coursehub/models"
	"coursehub/services"
	"coursehub/utils"
)

// StudentCourseHandler exposes the public catalog and the student's library
type StudentCourseHandler struct {
	Courses *services.CourseService
}

func NewStudentCourseHandler(courses *services.CourseService) *StudentCourseHandler {
	return &StudentCourseHandler{Courses: courses}
}

// Browse handles GET /student/course/get with filter and sort query params
func (h *StudentCourseHandler) Browse(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.CourseFilter{
		Categories:       utils.NormalizeFilterList(q.Get("category")),
		Levels:           utils.NormalizeFilterList(q.Get("level")),
		PrimaryLanguages: utils.NormalizeFilterList(q.Get("primaryLanguage")),
		SortBy:           q.Get("sortBy"),
	}

	courses, err := h.Courses.BrowseCatalog(r.Context(), filter)
	if err != nil {
		resp.Error(w, err)
		return
	}
	resp.OK(w, http.StatusOK, courses)
}

// GetDetails handles GET /student/course/get/details/{id}
func (h *StudentCourseHandler) GetDetails(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		resp.Fail(w, http.StatusBadRequest, "Invalid course id")
		return
	}

	course, err := h.Courses.GetCatalogCourse(r.Context(), id)
	if err != nil {
		resp.Error(w, err)
		return
	}
	resp.OK(w, http.StatusOK, course)
}

// PurchaseInfo handles GET /student/course/purchase-info/{id}/{studentId}
func (h *StudentCourseHandler) PurchaseInfo(w http.ResponseWriter, r *http.Request) {
	courseID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		resp.Fail(w, http.StatusBadRequest, "Invalid course id")
		return
	}
	studentID, err := strconv.Atoi(r.PathValue("studentId"))
	if err != nil {
		resp.Fail(w, http.StatusBadRequest, "Invalid student id")
		return
	}

	owned, err := h.Courses.CheckPurchase(r.Context(), courseID, studentID)
	if err != nil {
		resp.Error(w, err)
		return
	}
	resp.OK(w, http.StatusOK, owned)
}

// CoursesBought handles GET /student/courses-bought/get/{studentId}
func (h *StudentCourseHandler) CoursesBought(w http.ResponseWriter, r *http.Request) {
	studentID, err := strconv.Atoi(r.PathValue("studentId"))
	if err != nil {
		resp.Fail(w, http.StatusBadRequest, "Invalid student id")
		return
	}

	list, err := h.Courses.CoursesBought(r.Context(), studentID)
	if err != nil {
		resp.Error(w, err)
		return
	}
	resp.OK(w, http.StatusOK, list)
}
