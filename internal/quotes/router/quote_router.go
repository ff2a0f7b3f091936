package router

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/cargodesk/cargodesk/internal/quotes/model"
	"github.com/cargodesk/cargodesk/internal/quotes/service"
)

// maxUploadBytes caps quote uploads at 32 MiB.
const maxUploadBytes = 32 << 20

type QuoteRouter struct {
	qs *service.QuoteService
}

func NewQuoteRouter(qs *service.QuoteService) *QuoteRouter {
	return &QuoteRouter{qs: qs}
}

// Register attaches all quote routes to the mux. The literal "compare"
// segment takes precedence over the {forwarder} wildcard. Mutating routes
// are wrapped in the auth guard.
func (qr *QuoteRouter) Register(mux *http.ServeMux, guard func(http.Handler) http.Handler) {
	mux.HandleFunc("POST /api/quotes/compare", qr.HandleCompare)
	mux.HandleFunc("GET /api/quotes/{forwarder}", qr.HandleList)
	mux.Handle("POST /api/quotes/{forwarder}", guard(http.HandlerFunc(qr.HandleUpload)))
	mux.Handle("DELETE /api/quotes/{forwarder}/{id}", guard(http.HandlerFunc(qr.HandleDelete)))
	mux.Handle("PUT /api/quotes/{forwarder}/{id}/rename", guard(http.HandlerFunc(qr.HandleRename)))
	mux.HandleFunc("GET /api/quotes/{forwarder}/{id}/download", qr.HandleDownload)
	mux.Handle("POST /api/quotes/{forwarder}/{id}/analyze", guard(http.HandlerFunc(qr.HandleAnalyze)))
}

// HandleList handles GET /api/quotes/{forwarder}
func (qr *QuoteRouter) HandleList(w http.ResponseWriter, r *http.Request) {
	forwarder := model.Forwarder(r.PathValue("forwarder"))
	docs, err := qr.qs.List(r.Context(), forwarder)
	if err != nil {
		writeQuoteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

// HandleUpload handles POST /api/quotes/{forwarder} with a multipart "file"
// part.
func (qr *QuoteRouter) HandleUpload(w http.ResponseWriter, r *http.Request) {
	forwarder := model.Forwarder(r.PathValue("forwarder"))

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart request: "+err.Error(), http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing 'file' part: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	doc, err := qr.qs.Upload(r.Context(), forwarder, header.Filename, mimeType, header.Size, file)
	if err != nil {
		writeQuoteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

// HandleDelete handles DELETE /api/quotes/{forwarder}/{id}
func (qr *QuoteRouter) HandleDelete(w http.ResponseWriter, r *http.Request) {
	forwarder, id, ok := parseQuotePath(w, r)
	if !ok {
		return
	}
	if err := qr.qs.Delete(r.Context(), forwarder, id); err != nil {
		writeQuoteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRename handles PUT /api/quotes/{forwarder}/{id}/rename
func (qr *QuoteRouter) HandleRename(w http.ResponseWriter, r *http.Request) {
	forwarder, id, ok := parseQuotePath(w, r)
	if !ok {
		return
	}
	var req model.RenameDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	doc, err := qr.qs.Rename(r.Context(), forwarder, id, req.NewName)
	if err != nil {
		writeQuoteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// HandleDownload handles GET /api/quotes/{forwarder}/{id}/download
func (qr *QuoteRouter) HandleDownload(w http.ResponseWriter, r *http.Request) {
	forwarder, id, ok := parseQuotePath(w, r)
	if !ok {
		return
	}
	body, doc, err := qr.qs.Download(r.Context(), forwarder, id)
	if err != nil {
		writeQuoteError(w, err)
		return
	}
	defer body.Close()

	contentType := doc.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))
	if _, err := io.Copy(w, body); err != nil {
		// Headers are already written; cannot report the error to the client.
		return
	}
}

// HandleAnalyze handles POST /api/quotes/{forwarder}/{id}/analyze
func (qr *QuoteRouter) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	forwarder, id, ok := parseQuotePath(w, r)
	if !ok {
		return
	}
	doc, err := qr.qs.Analyze(r.Context(), forwarder, id)
	if err != nil {
		writeQuoteError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, doc)
}

// HandleCompare handles POST /api/quotes/compare
func (qr *QuoteRouter) HandleCompare(w http.ResponseWriter, r *http.Request) {
	var req model.CompareRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	ids := make([]uuid.UUID, 0, len(req.DocumentIDs))
	for _, raw := range req.DocumentIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, "invalid document ID: "+raw, http.StatusBadRequest)
			return
		}
		ids = append(ids, id)
	}
	report, err := qr.qs.Compare(r.Context(), ids)
	if err != nil {
		writeQuoteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func parseQuotePath(w http.ResponseWriter, r *http.Request) (model.Forwarder, uuid.UUID, bool) {
	forwarder := model.Forwarder(r.PathValue("forwarder"))
	idStr := r.PathValue("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		http.Error(w, "invalid document ID format: "+err.Error(), http.StatusBadRequest)
		return forwarder, uuid.Nil, false
	}
	return forwarder, id, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

func writeQuoteError(w http.ResponseWriter, err error) {
	var verr *service.ValidationError
	switch {
	case errors.Is(err, service.ErrQuoteNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, service.ErrUnknownForwarder):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &verr):
		http.Error(w, verr.Msg, http.StatusUnprocessableEntity)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
