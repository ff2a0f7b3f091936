package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/cargodesk/cargodesk/internal/shipment/model"
	"github.com/cargodesk/cargodesk/internal/shipment/service"
)

type ShipmentRouter struct {
	ss *service.ShipmentService
}

func NewShipmentRouter(ss *service.ShipmentService) *ShipmentRouter {
	return &ShipmentRouter{ss: ss}
}

// Register attaches all shipment routes to the mux. Mutating routes are
// wrapped in the auth guard.
func (sr *ShipmentRouter) Register(mux *http.ServeMux, guard func(http.Handler) http.Handler) {
	mux.HandleFunc("GET /api/shipments", sr.HandleList)
	mux.Handle("POST /api/shipments", guard(http.HandlerFunc(sr.HandleCreate)))
	mux.HandleFunc("GET /api/shipments/{id}", sr.HandleGet)
	mux.Handle("PUT /api/shipments/{id}", guard(http.HandlerFunc(sr.HandleUpdate)))
	mux.Handle("DELETE /api/shipments/{id}", guard(http.HandlerFunc(sr.HandleDelete)))
	mux.Handle("POST /api/shipments/{id}/start-unloading", guard(http.HandlerFunc(sr.HandleStartUnloading)))
	mux.Handle("POST /api/shipments/{id}/complete-unloading", guard(http.HandlerFunc(sr.HandleCompleteUnloading)))
	mux.Handle("POST /api/shipments/{id}/start-inspection", guard(http.HandlerFunc(sr.HandleStartInspection)))
	mux.Handle("POST /api/shipments/{id}/complete-inspection", guard(http.HandlerFunc(sr.HandleCompleteInspection)))
	mux.Handle("POST /api/shipments/{id}/start-receiving", guard(http.HandlerFunc(sr.HandleStartReceiving)))
	mux.Handle("POST /api/shipments/{id}/complete-receiving", guard(http.HandlerFunc(sr.HandleCompleteReceiving)))
	mux.Handle("POST /api/shipments/{id}/mark-stored", guard(http.HandlerFunc(sr.HandleMarkStored)))
	mux.Handle("POST /api/shipments/{id}/amend-status", guard(http.HandlerFunc(sr.HandleAmendStatus)))
}

// HandleList handles GET /api/shipments?status=&page=&limit=
// status=archived selects DB-flagged archived shipments.
func (sr *ShipmentRouter) HandleList(w http.ResponseWriter, r *http.Request) {
	var filter service.ListFilter

	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		if statusStr == "archived" {
			filter.Archived = true
		} else {
			status := model.ShipmentStatus(statusStr)
			filter.Status = &status
		}
	}
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil {
			http.Error(w, "invalid 'page' query parameter, must be an integer", http.StatusBadRequest)
			return
		}
		filter.Page = &page
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			http.Error(w, "invalid 'limit' query parameter, must be an integer", http.StatusBadRequest)
			return
		}
		filter.Limit = &limit
	}

	shipments, total, err := sr.ss.List(r.Context(), filter)
	if err != nil {
		http.Error(w, "failed to list shipments: "+err.Error(), http.StatusInternalServerError)
		return
	}

	page, limit := 1, 20
	if filter.Page != nil && *filter.Page > 0 {
		page = *filter.Page
	}
	if filter.Limit != nil && *filter.Limit > 0 {
		limit = *filter.Limit
	}

	resp := model.ShipmentListResponseDTO{
		Shipments: make([]model.ShipmentResponseDTO, 0, len(shipments)),
		Page:      page,
		Limit:     limit,
		Total:     total,
	}
	for _, s := range shipments {
		resp.Shipments = append(resp.Shipments, service.ToResponseDTO(s))
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleCreate handles POST /api/shipments
func (sr *ShipmentRouter) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req model.CreateShipmentDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	shipment, err := sr.ss.Create(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, service.ToResponseDTO(*shipment))
}

// HandleGet handles GET /api/shipments/{id}
func (sr *ShipmentRouter) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseShipmentID(w, r)
	if !ok {
		return
	}
	shipment, err := sr.ss.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, service.ToResponseDTO(*shipment))
}

// HandleUpdate handles PUT /api/shipments/{id}
func (sr *ShipmentRouter) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseShipmentID(w, r)
	if !ok {
		return
	}
	var req model.UpdateShipmentDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	shipment, err := sr.ss.Update(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, service.ToResponseDTO(*shipment))
}

// HandleDelete handles DELETE /api/shipments/{id}
func (sr *ShipmentRouter) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseShipmentID(w, r)
	if !ok {
		return
	}
	if err := sr.ss.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleStartUnloading handles POST /api/shipments/{id}/start-unloading
func (sr *ShipmentRouter) HandleStartUnloading(w http.ResponseWriter, r *http.Request) {
	sr.handleSimpleAction(w, r, sr.ss.StartUnloading)
}

// HandleCompleteUnloading handles POST /api/shipments/{id}/complete-unloading
func (sr *ShipmentRouter) HandleCompleteUnloading(w http.ResponseWriter, r *http.Request) {
	sr.handleSimpleAction(w, r, sr.ss.CompleteUnloading)
}

// HandleStartInspection handles POST /api/shipments/{id}/start-inspection
func (sr *ShipmentRouter) HandleStartInspection(w http.ResponseWriter, r *http.Request) {
	id, ok := parseShipmentID(w, r)
	if !ok {
		return
	}
	var req model.StartInspectionDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	shipment, err := sr.ss.StartInspection(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, service.ToResponseDTO(*shipment))
}

// HandleCompleteInspection handles POST /api/shipments/{id}/complete-inspection
func (sr *ShipmentRouter) HandleCompleteInspection(w http.ResponseWriter, r *http.Request) {
	id, ok := parseShipmentID(w, r)
	if !ok {
		return
	}
	var req model.CompleteInspectionDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	shipment, err := sr.ss.CompleteInspection(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, service.ToResponseDTO(*shipment))
}

// HandleStartReceiving handles POST /api/shipments/{id}/start-receiving
func (sr *ShipmentRouter) HandleStartReceiving(w http.ResponseWriter, r *http.Request) {
	sr.handleSimpleAction(w, r, sr.ss.StartReceiving)
}

// HandleCompleteReceiving handles POST /api/shipments/{id}/complete-receiving
func (sr *ShipmentRouter) HandleCompleteReceiving(w http.ResponseWriter, r *http.Request) {
	id, ok := parseShipmentID(w, r)
	if !ok {
		return
	}
	var req model.CompleteReceivingDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	shipment, err := sr.ss.CompleteReceiving(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, service.ToResponseDTO(*shipment))
}

// HandleMarkStored handles POST /api/shipments/{id}/mark-stored
func (sr *ShipmentRouter) HandleMarkStored(w http.ResponseWriter, r *http.Request) {
	sr.handleSimpleAction(w, r, sr.ss.MarkStored)
}

// HandleAmendStatus handles POST /api/shipments/{id}/amend-status
func (sr *ShipmentRouter) HandleAmendStatus(w http.ResponseWriter, r *http.Request) {
	sr.handleSimpleAction(w, r, sr.ss.AmendStatus)
}

func (sr *ShipmentRouter) handleSimpleAction(
	w http.ResponseWriter,
	r *http.Request,
	action func(ctx context.Context, id uuid.UUID) (*model.Shipment, error),
) {
	id, ok := parseShipmentID(w, r)
	if !ok {
		return
	}
	shipment, err := action(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, service.ToResponseDTO(*shipment))
}

func parseShipmentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idStr := r.PathValue("id")
	if idStr == "" {
		http.Error(w, "shipment ID is required", http.StatusBadRequest)
		return uuid.Nil, false
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		http.Error(w, "invalid shipment ID format: "+err.Error(), http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	var verr *service.ValidationError
	switch {
	case errors.Is(err, service.ErrShipmentNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &verr):
		http.Error(w, verr.Msg, http.StatusUnprocessableEntity)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
