package handler

import (
	"net/http"

	"github.com/madadgarapp/listings-api/internal/application/media"
	"github.com/madadgarapp/listings-api/internal/transport/http/middleware"
)

// 32 MB multipart memory ceiling; larger parts spill to temp files.
const maxMultipartMemory = 32 << 20

// MediaHandler handles listing image and video uploads.
type MediaHandler struct {
	svc media.Service
}

func NewMediaHandler(svc media.Service) *MediaHandler {
	return &MediaHandler{svc: svc}
}

// UploadImages accepts multipart form files under the "images" field and
// returns the public URLs of every file that stored successfully.
func (h *MediaHandler) UploadImages(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	files := r.MultipartForm.File["images"]
	inputs := make([]media.UploadInput, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			continue
		}
		defer f.Close()
		inputs = append(inputs, media.UploadInput{Reader: f, Filename: fh.Filename})
	}
	urls, err := h.svc.UploadImages(r.Context(), claims.UserID, inputs)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string][]string{"image_urls": urls})
}

// UploadVideo accepts a single multipart file under the "video" field.
func (h *MediaHandler) UploadVideo(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	f, fh, err := r.FormFile("video")
	if err != nil {
		writeError(w, http.StatusBadRequest, "video file required")
		return
	}
	defer f.Close()
	url, err := h.svc.UploadVideo(r.Context(), claims.UserID, media.UploadInput{Reader: f, Filename: fh.Filename})
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"video_url": url})
}
