package router

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cargodesk/cargodesk/internal/archive/service"
	shipmentModel "github.com/cargodesk/cargodesk/internal/shipment/model"
)

type ArchiveRouter struct {
	as *service.ArchiveService
}

func NewArchiveRouter(as *service.ArchiveService) *ArchiveRouter {
	return &ArchiveRouter{as: as}
}

// Register attaches all archive routes to the mux. The stats route is
// registered before the {file} wildcard so it is not captured by it.
// Mutating routes are wrapped in the auth guard.
func (ar *ArchiveRouter) Register(mux *http.ServeMux, guard func(http.Handler) http.Handler) {
	mux.HandleFunc("GET /api/shipments/archives", ar.HandleList)
	mux.HandleFunc("GET /api/shipments/archives/stats", ar.HandleMonthlyStats)
	mux.HandleFunc("GET /api/shipments/archives/{file}", ar.HandleGet)
	mux.Handle("PUT /api/shipments/archives/{file}", guard(http.HandlerFunc(ar.HandleUpdate)))
	mux.Handle("PUT /api/shipments/archives/{file}/rename", guard(http.HandlerFunc(ar.HandleRename)))
}

// HandleList handles GET /api/shipments/archives
func (ar *ArchiveRouter) HandleList(w http.ResponseWriter, r *http.Request) {
	infos, err := ar.as.ListArchives(r.Context())
	if err != nil {
		http.Error(w, "failed to list archives: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, infos)
}

// HandleGet handles GET /api/shipments/archives/{file}?search=
func (ar *ArchiveRouter) HandleGet(w http.ResponseWriter, r *http.Request) {
	fileName := r.PathValue("file")
	if fileName == "" {
		http.Error(w, "archive file name is required", http.StatusBadRequest)
		return
	}

	snapshot, err := ar.as.GetArchive(r.Context(), fileName)
	if err != nil {
		writeArchiveError(w, err)
		return
	}

	if term := r.URL.Query().Get("search"); term != "" {
		snapshot.Shipments = service.FilterShipments(snapshot.Shipments, term)
	}
	writeJSON(w, http.StatusOK, snapshot)
}

// HandleUpdate handles PUT /api/shipments/archives/{file}
// Body: either {"orderRef": "...", "shipment": {...}} to edit one record, or
// {"shipments": [...]} to replace the whole data array.
func (ar *ArchiveRouter) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	fileName := r.PathValue("file")
	if fileName == "" {
		http.Error(w, "archive file name is required", http.StatusBadRequest)
		return
	}

	var req struct {
		OrderRef  string                    `json:"orderRef,omitempty"`
		Shipment  *shipmentModel.Shipment   `json:"shipment,omitempty"`
		Shipments *[]shipmentModel.Shipment `json:"shipments,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	switch {
	case req.Shipments != nil:
		snapshot, err := ar.as.ReplaceData(r.Context(), fileName, *req.Shipments)
		if err != nil {
			writeArchiveError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, snapshot)
	case req.OrderRef != "" && req.Shipment != nil:
		snapshot, err := ar.as.UpdateShipment(r.Context(), fileName, req.OrderRef, *req.Shipment)
		if err != nil {
			writeArchiveError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, snapshot)
	default:
		http.Error(w, "either shipments or orderRef+shipment must be provided", http.StatusBadRequest)
	}
}

// HandleRename handles PUT /api/shipments/archives/{file}/rename
func (ar *ArchiveRouter) HandleRename(w http.ResponseWriter, r *http.Request) {
	fileName := r.PathValue("file")
	if fileName == "" {
		http.Error(w, "archive file name is required", http.StatusBadRequest)
		return
	}

	var req struct {
		NewName string `json:"newName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	info, err := ar.as.RenameArchive(r.Context(), fileName, req.NewName)
	if err != nil {
		writeArchiveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// HandleMonthlyStats handles GET /api/shipments/archives/stats?month=YYYY-MM
func (ar *ArchiveRouter) HandleMonthlyStats(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	if month == "" {
		http.Error(w, "'month' query parameter is required (YYYY-MM)", http.StatusBadRequest)
		return
	}

	stats, err := ar.as.GetMonthlyStats(r.Context(), month)
	if err != nil {
		writeArchiveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

func writeArchiveError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrArchiveNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, service.ErrMalformedSnapshot):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
