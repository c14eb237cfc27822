package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"docbase/internal/service"
	"docbase/internal/storage"
)

// maxUploadSize caps multipart uploads at 64 MiB.
const maxUploadSize = 64 << 20

// FileHandler handles HTTP requests for files.
type FileHandler struct {
	files *service.FileService
}

// NewFileHandler creates a new FileHandler.
func NewFileHandler(files *service.FileService) *FileHandler {
	return &FileHandler{files: files}
}

// FileResponse represents a file in HTTP responses.
type FileResponse struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"content_type"`
	CollectionID string    `json:"collection_id"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

func fileResponse(f *storage.FileRecord) FileResponse {
	return FileResponse{
		ID:           f.ID,
		Filename:     f.Filename,
		Size:         f.Size,
		ContentType:  f.ContentType,
		CollectionID: f.CollectionID,
		Status:       string(f.Status),
		CreatedAt:    f.CreatedAt,
	}
}

// Upload handles POST /api/collections/{collectionID}/files.
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	part, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer func() {
		_ = part.Close()
	}()

	contentType := header.Header.Get("Content-Type")
	record, err := h.files.Upload(ctx, chi.URLParam(r, "collectionID"), header.Filename, contentType, part)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to upload file")
		return
	}
	writeJSON(w, http.StatusCreated, fileResponse(record))
}

// List handles GET /api/collections/{collectionID}/files.
func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	q := r.URL.Query()
	filter := storage.FileFilter{
		Filename:    q.Get("filename"),
		ContentType: q.Get("content_type"),
	}
	page := pageFromQuery(r)

	records, total, err := h.files.List(ctx, chi.URLParam(r, "collectionID"), filter, page)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to list files")
		return
	}

	items := make([]FileResponse, len(records))
	for i := range records {
		items[i] = fileResponse(&records[i])
	}
	writeJSON(w, http.StatusOK, PagedResponse{Items: items, Total: total, Limit: page.Limit, Offset: page.Offset})
}

// DeleteAll handles DELETE /api/collections/{collectionID}/files.
func (h *FileHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	results, err := h.files.DeleteAll(ctx, chi.URLParam(r, "collectionID"))
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to delete files")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// Get handles GET /api/files/{fileID}.
func (h *FileHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	record, err := h.files.Get(ctx, chi.URLParam(r, "fileID"))
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to load file")
		return
	}
	writeJSON(w, http.StatusOK, fileResponse(record))
}

// Delete handles DELETE /api/files/{fileID}.
func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.files.Delete(ctx, chi.URLParam(r, "fileID")); err != nil {
		handleServiceError(w, ctx, err, "Failed to delete file")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Retry handles POST /api/files/{fileID}/retry.
func (h *FileHandler) Retry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	record, err := h.files.Retry(ctx, chi.URLParam(r, "fileID"))
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to retry file")
		return
	}
	writeJSON(w, http.StatusAccepted, fileResponse(record))
}
