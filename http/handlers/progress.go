package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	resp "coursehub/http/response"
	"coursehub/services"
)

// ProgressHandler exposes the course progress endpoints
type ProgressHandler struct {
	Progress *services.ProgressService
}

func NewProgressHandler(progress *services.ProgressService) *ProgressHandler {
	return &ProgressHandler{Progress: progress}
}

type progressRequest struct {
	UserID    int `json:"userId"`
	CourseID  int `json:"courseId"`
	LectureID int `json:"lectureId"`
}

// MarkLectureViewed handles POST /student/course-progress/mark-lecture-viewed
func (h *ProgressHandler) MarkLectureViewed(w http.ResponseWriter, r *http.Request) {
	var req progressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		resp.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	progress, err := h.Progress.MarkLectureViewed(r.Context(), req.UserID, req.CourseID, req.LectureID)
	if err != nil {
		resp.Error(w, err)
		return
	}
	resp.OKMessage(w, http.StatusOK, "Lecture marked as viewed", progress)
}

// Get handles GET /student/course-progress/get/{userId}/{courseId}
func (h *ProgressHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(r.PathValue("userId"))
	if err != nil {
		resp.Fail(w, http.StatusBadRequest, "Invalid user id")
		return
	}
	courseID, err := strconv.Atoi(r.PathValue("courseId"))
	if err != nil {
		resp.Fail(w, http.StatusBadRequest, "Invalid course id")
		return
	}

	view, err := h.Progress.GetProgress(r.Context(), userID, courseID)
	if err != nil {
		resp.Error(w, err)
		return
	}
	if !view.IsPurchased {
		resp.OKMessage(w, http.StatusOK, "You need to purchase this course to access it", view)
		return
	}
	resp.OK(w, http.StatusOK, view)
}

// Reset handles POST /student/course-progress/reset-progress
func (h *ProgressHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var req progressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		resp.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	progress, err := h.Progress.ResetProgress(r.Context(), req.UserID, req.CourseID)
	if err != nil {
		resp.Error(w, err)
		return
	}
	resp.OKMessage(w, http.StatusOK, "Course progress has been reset", progress)
}
