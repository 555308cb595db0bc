package handlers

import (
	"net/http"
	"strconv"

	resp "coursehub/http/response"
	"coursehub/logger"
	"coursehub/services/kafka"
)

// ListDLQMessages handles GET /admin/dlq/messages?limit=
func ListDLQMessages(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	messages, err := kafka.ListDLQMessages(limit)
	if err != nil {
		logger.Error("Error fetching DLQ messages: %v", err)
		resp.Fail(w, http.StatusInternalServerError, "Failed to fetch DLQ messages")
		return
	}

	resp.OK(w, http.StatusOK, map[string]interface{}{
		"count":    len(messages),
		"messages": messages,
	})
}

// RetryDLQMessage handles POST /admin/dlq/messages/{id}/retry
func RetryDLQMessage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		resp.Fail(w, http.StatusBadRequest, "Invalid message id")
		return
	}

	if err := kafka.RetryDLQMessage(id); err != nil {
		logger.Error("Error retrying DLQ message %d: %v", id, err)
		resp.Fail(w, http.StatusInternalServerError, "Failed to retry message")
		return
	}
	resp.OKMessage(w, http.StatusOK, "Message republished", map[string]interface{}{"messageId": id})
}

// ResolveDLQMessage handles POST /admin/dlq/messages/{id}/resolve
func ResolveDLQMessage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		resp.Fail(w, http.StatusBadRequest, "Invalid message id")
		return
	}

	if err := kafka.ResolveDLQMessage(id); err != nil {
		logger.Error("Error resolving DLQ message %d: %v", id, err)
		resp.Fail(w, http.StatusInternalServerError, "Failed to resolve message")
		return
	}
	resp.OKMessage(w, http.StatusOK, "Message marked as resolved", map[string]interface{}{"messageId": id})
}
