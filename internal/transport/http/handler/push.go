package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/madadgarapp/listings-api/internal/application/push"
	"github.com/madadgarapp/listings-api/internal/domain"
)

// dispatchResponse is the wire shape for a completed dispatch run. Mobile
// clients depend on these exact field names.
type dispatchResponse struct {
	Success     bool               `json:"success"`
	Message     string             `json:"message"`
	SentCount   int                `json:"sentCount"`
	FailedCount int                `json:"failedCount,omitempty"`
	Details     []push.TokenResult `json:"details,omitempty"`
}

type dispatchError struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// PushHandler exposes the dispatch pipeline and its audit log. Admin-only.
type PushHandler struct {
	dispatcher push.Dispatcher
	logStore   sendLogLister
}

type sendLogLister interface {
	ListRecent(ctx context.Context, limit int32) ([]domain.SendLog, error)
}

func NewPushHandler(dispatcher push.Dispatcher, logs sendLogLister) *PushHandler {
	return &PushHandler{dispatcher: dispatcher, logStore: logs}
}

// Send runs one fan-out. Any malformed body or missing field responds with
// the canonical 400 message so clients can rely on a single error string.
func (h *PushHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req push.DispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dispatchError{Error: missingFieldsMsg})
		return
	}
	res, err := h.dispatcher.Dispatch(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrBadRequest) {
			writeJSON(w, http.StatusBadRequest, dispatchError{Error: missingFieldsMsg})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dispatchError{
			Error:   "Internal server error",
			Message: err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, dispatchResponse{
		Success:     true,
		Message:     res.Message,
		SentCount:   res.SentCount,
		FailedCount: res.FailedCount,
		Details:     res.Details,
	})
}

// Logs returns recent dispatch audit rows, newest first.
func (h *PushHandler) Logs(w http.ResponseWriter, r *http.Request) {
	limit := int32(50)
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = int32(n)
		}
	}
	rows, err := h.logStore.ListRecent(r.Context(), limit)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

const missingFieldsMsg = "Missing required fields: userIds, title, body"
