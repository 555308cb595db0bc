package handlers

import (
	"net/http"

	resp "coursehub/http/response"
	"coursehub/logger"
	"coursehub/models"
	"coursehub/services"
)

const maxUploadBytes = 512 << 20 // 512 MB, lecture videos included

// MediaHandler exposes the media hosting endpoints
type MediaHandler struct {
	Media *services.MediaService
}

func NewMediaHandler(media *services.MediaService) *MediaHandler {
	return &MediaHandler{Media: media}
}

// Upload handles POST /media/upload
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		resp.Fail(w, http.StatusBadRequest, "Invalid file")
		return
	}
	defer file.Close()

	asset, err := h.Media.Upload(r.Context(), file, header)
	if err != nil {
		logger.Error("Media upload failed for %s: %v", header.Filename, err)
		resp.Fail(w, http.StatusInternalServerError, "Error uploading file")
		return
	}
	resp.OK(w, http.StatusOK, asset)
}

// Delete handles DELETE /media/delete/{publicId}
func (h *MediaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	publicID := r.PathValue("publicId")
	if publicID == "" {
		resp.Fail(w, http.StatusBadRequest, "Asset public id is required")
		return
	}

	resourceType := r.URL.Query().Get("resourceType")
	if err := h.Media.Delete(r.Context(), publicID, resourceType); err != nil {
		logger.Error("Media delete failed for %s: %v", publicID, err)
		resp.Fail(w, http.StatusInternalServerError, "Error deleting file")
		return
	}
	resp.OKMessage(w, http.StatusOK, "Asset deleted successfully", nil)
}

// BulkUpload handles POST /media/bulk-upload with per-file outcomes
func (h *MediaHandler) BulkUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		resp.Fail(w, http.StatusBadRequest, "Invalid multipart request")
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		resp.Fail(w, http.StatusBadRequest, "No files provided")
		return
	}

	type result struct {
		FileName string             `json:"fileName"`
		Success  bool               `json:"success"`
		Error    string             `json:"error,omitempty"`
		Asset    *models.MediaAsset `json:"asset,omitempty"`
	}

	results := make([]result, 0, len(files))
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			results = append(results, result{FileName: header.Filename, Error: "could not read file"})
			continue
		}

		asset, err := h.Media.Upload(r.Context(), file, header)
		file.Close()
		if err != nil {
			logger.Warn("Bulk upload failed for %s: %v", header.Filename, err)
			results = append(results, result{FileName: header.Filename, Error: "upload failed"})
			continue
		}
		results = append(results, result{FileName: header.Filename, Success: true, Asset: asset})
	}

	resp.OK(w, http.StatusOK, results)
}
