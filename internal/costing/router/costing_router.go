package router

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/cargodesk/cargodesk/internal/costing/model"
	"github.com/cargodesk/cargodesk/internal/costing/service"
)

type CostingRouter struct {
	cs    *service.CostingService
	rates *service.ExchangeRateService
}

func NewCostingRouter(cs *service.CostingService, rates *service.ExchangeRateService) *CostingRouter {
	return &CostingRouter{cs: cs, rates: rates}
}

// Register attaches all costing and supplier routes to the mux. Mutating
// routes are wrapped in the auth guard.
func (cr *CostingRouter) Register(mux *http.ServeMux, guard func(http.Handler) http.Handler) {
	mux.HandleFunc("GET /api/costing", cr.HandleList)
	mux.Handle("POST /api/costing", guard(http.HandlerFunc(cr.HandleCreate)))
	mux.HandleFunc("GET /api/costing/{id}", cr.HandleGet)
	mux.Handle("PUT /api/costing/{id}", guard(http.HandlerFunc(cr.HandleUpdate)))
	mux.Handle("DELETE /api/costing/{id}", guard(http.HandlerFunc(cr.HandleDelete)))
	mux.Handle("POST /api/costing/{id}/duplicate", guard(http.HandlerFunc(cr.HandleDuplicate)))
	mux.Handle("POST /api/costing/{id}/send-email", guard(http.HandlerFunc(cr.HandleSendEmail)))
	mux.HandleFunc("GET /api/costing/exchange-rate/current", cr.HandleExchangeRates)
	mux.HandleFunc("GET /api/costing/exchange-rate/refresh", cr.HandleRefreshRates)
	mux.HandleFunc("GET /api/suppliers", cr.HandleListSuppliers)
	mux.Handle("POST /api/suppliers", guard(http.HandlerFunc(cr.HandleCreateSupplier)))
}

// HandleList handles GET /api/costing
func (cr *CostingRouter) HandleList(w http.ResponseWriter, r *http.Request) {
	estimates, err := cr.cs.List(r.Context())
	if err != nil {
		writeCostingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"estimates": estimates})
}

// HandleCreate handles POST /api/costing
func (cr *CostingRouter) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req model.EstimateFormDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	estimate, err := cr.cs.Create(r.Context(), &req)
	if err != nil {
		writeCostingError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, estimate)
}

// HandleGet handles GET /api/costing/{id}
func (cr *CostingRouter) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseEstimateID(w, r)
	if !ok {
		return
	}
	estimate, err := cr.cs.Get(r.Context(), id)
	if err != nil {
		writeCostingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, estimate)
}

// HandleUpdate handles PUT /api/costing/{id}
func (cr *CostingRouter) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseEstimateID(w, r)
	if !ok {
		return
	}
	var req model.EstimateFormDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	estimate, err := cr.cs.Update(r.Context(), id, &req)
	if err != nil {
		writeCostingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, estimate)
}

// HandleDelete handles DELETE /api/costing/{id}
func (cr *CostingRouter) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseEstimateID(w, r)
	if !ok {
		return
	}
	if err := cr.cs.Delete(r.Context(), id); err != nil {
		writeCostingError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDuplicate handles POST /api/costing/{id}/duplicate
func (cr *CostingRouter) HandleDuplicate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseEstimateID(w, r)
	if !ok {
		return
	}
	estimate, err := cr.cs.Duplicate(r.Context(), id)
	if err != nil {
		writeCostingError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, estimate)
}

// HandleSendEmail handles POST /api/costing/{id}/send-email
func (cr *CostingRouter) HandleSendEmail(w http.ResponseWriter, r *http.Request) {
	id, ok := parseEstimateID(w, r)
	if !ok {
		return
	}
	var req model.SendEmailDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := cr.cs.SendEmail(r.Context(), id, req.Recipient); err != nil {
		writeCostingError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

// HandleExchangeRates handles GET /api/costing/exchange-rate/current
func (cr *CostingRouter) HandleExchangeRates(w http.ResponseWriter, r *http.Request) {
	rates, err := cr.rates.Current(r.Context())
	if err != nil {
		writeCostingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rates": rates})
}

// HandleRefreshRates handles GET /api/costing/exchange-rate/refresh
func (cr *CostingRouter) HandleRefreshRates(w http.ResponseWriter, r *http.Request) {
	rates, err := cr.rates.Refresh(r.Context())
	if err != nil {
		writeCostingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rates": rates})
}

// HandleListSuppliers handles GET /api/suppliers
func (cr *CostingRouter) HandleListSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := cr.cs.ListSuppliers(r.Context())
	if err != nil {
		writeCostingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"suppliers": suppliers})
}

// HandleCreateSupplier handles POST /api/suppliers
func (cr *CostingRouter) HandleCreateSupplier(w http.ResponseWriter, r *http.Request) {
	var req model.Supplier
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	supplier, err := cr.cs.CreateSupplier(r.Context(), &req)
	if err != nil {
		writeCostingError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, supplier)
}

func parseEstimateID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idStr := r.PathValue("id")
	if idStr == "" {
		http.Error(w, "estimate ID is required", http.StatusBadRequest)
		return uuid.Nil, false
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		http.Error(w, "invalid estimate ID format: "+err.Error(), http.StatusBadRequest)
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

func writeCostingError(w http.ResponseWriter, err error) {
	var ferr *service.FormValidationError
	switch {
	case errors.Is(err, service.ErrEstimateNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, service.ErrNoRates):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &ferr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": ferr.Errors})
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
