package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"

	"github.com/cargodesk/cargodesk/internal/config"
	"github.com/cargodesk/cargodesk/internal/costing/calc"
	"github.com/cargodesk/cargodesk/internal/costing/model"
	"github.com/cargodesk/cargodesk/internal/queue"
)

// ErrEstimateNotFound is returned when the referenced estimate does not exist.
var ErrEstimateNotFound = errors.New("cost estimate not found")

// FormValidationError carries the field-keyed error array the estimate form
// renders inline. Routers map it to 422.
type FormValidationError struct {
	Errors []model.FieldError
}

func (e *FormValidationError) Error() string {
	fields := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		fields = append(fields, fe.Field)
	}
	return fmt.Sprintf("validation failed for: %s", strings.Join(fields, ", "))
}

// EstimateResponseDTO is an estimate with its derived totals attached.
type EstimateResponseDTO struct {
	model.CostEstimate
	Totals calc.EstimateTotals `json:"totals"`
}

// CostingService owns cost estimate CRUD, supplier lookup and the derived
// totals computation. Email delivery happens in the worker; the service only
// enqueues.
type CostingService struct {
	db       *gorm.DB
	queue    *asynq.Client
	defaults calc.Defaults
}

func NewCostingService(db *gorm.DB, queueClient *asynq.Client, cfg config.CostingConfig) *CostingService {
	return &CostingService{
		db:    db,
		queue: queueClient,
		defaults: calc.Defaults{
			AgencyFeePercent: cfg.AgencyFeePercent,
			AgencyFeeMinimum: cfg.AgencyFeeMinimum,
		},
	}
}

// Create validates and stores a new estimate.
func (s *CostingService) Create(ctx context.Context, form *model.EstimateFormDTO) (*EstimateResponseDTO, error) {
	estimate, err := s.estimateFromForm(form, &model.CostEstimate{})
	if err != nil {
		return nil, err
	}
	if estimate.ReferenceNumber == "" {
		estimate.ReferenceNumber = newReferenceNumber()
	}
	if estimate.Status == "" {
		estimate.Status = model.EstimateStatusDraft
	}
	if err := s.db.WithContext(ctx).Create(estimate).Error; err != nil {
		return nil, fmt.Errorf("failed to create estimate: %w", err)
	}
	return s.toResponse(estimate), nil
}

// Get returns one estimate with its derived totals.
func (s *CostingService) Get(ctx context.Context, id uuid.UUID) (*EstimateResponseDTO, error) {
	estimate, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(estimate), nil
}

// List returns all estimates, newest first, totals attached.
func (s *CostingService) List(ctx context.Context) ([]EstimateResponseDTO, error) {
	var estimates []model.CostEstimate
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&estimates).Error; err != nil {
		return nil, fmt.Errorf("failed to list estimates: %w", err)
	}
	responses := make([]EstimateResponseDTO, 0, len(estimates))
	for i := range estimates {
		responses = append(responses, *s.toResponse(&estimates[i]))
	}
	return responses, nil
}

// Update validates the form and replaces the estimate's raw inputs.
func (s *CostingService) Update(ctx context.Context, id uuid.UUID, form *model.EstimateFormDTO) (*EstimateResponseDTO, error) {
	var estimate *model.CostEstimate
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.CostEstimate
		if err := tx.First(&existing, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEstimateNotFound
			}
			return fmt.Errorf("failed to query estimate: %w", err)
		}
		var err error
		estimate, err = s.estimateFromForm(form, &existing)
		if err != nil {
			return err
		}
		return tx.Save(estimate).Error
	})
	if err != nil {
		return nil, err
	}
	return s.toResponse(estimate), nil
}

// Delete removes an estimate.
func (s *CostingService) Delete(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&model.CostEstimate{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete estimate: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrEstimateNotFound
	}
	return nil
}

// Duplicate copies an estimate under a fresh reference number, reset to
// draft.
func (s *CostingService) Duplicate(ctx context.Context, id uuid.UUID) (*EstimateResponseDTO, error) {
	source, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	clone := *source
	clone.BaseModel = model.BaseModel{}
	clone.ReferenceNumber = newReferenceNumber()
	clone.Status = model.EstimateStatusDraft

	if err := s.db.WithContext(ctx).Create(&clone).Error; err != nil {
		return nil, fmt.Errorf("failed to duplicate estimate: %w", err)
	}
	return s.toResponse(&clone), nil
}

// SendEmail queues delivery of an estimate summary. The estimate must exist
// and the recipient must look like an address before anything is enqueued.
func (s *CostingService) SendEmail(ctx context.Context, id uuid.UUID, recipient string) error {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" || !strings.Contains(recipient, "@") {
		return &FormValidationError{Errors: []model.FieldError{{Field: "recipient", Message: "a valid email address is required"}}}
	}
	estimate, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	return queue.EnqueueSendEstimateEmail(ctx, s.queue, queue.SendEstimateEmailPayload{
		EstimateID: estimate.ID.String(),
		Recipient:  recipient,
	})
}

// ListSuppliers returns all suppliers ordered by name.
func (s *CostingService) ListSuppliers(ctx context.Context) ([]model.Supplier, error) {
	var suppliers []model.Supplier
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&suppliers).Error; err != nil {
		return nil, fmt.Errorf("failed to list suppliers: %w", err)
	}
	return suppliers, nil
}

// CreateSupplier stores a new supplier.
func (s *CostingService) CreateSupplier(ctx context.Context, supplier *model.Supplier) (*model.Supplier, error) {
	if strings.TrimSpace(supplier.Name) == "" {
		return nil, &FormValidationError{Errors: []model.FieldError{{Field: "name", Message: "name is required"}}}
	}
	if err := s.db.WithContext(ctx).Create(supplier).Error; err != nil {
		return nil, fmt.Errorf("failed to create supplier: %w", err)
	}
	return supplier, nil
}

func (s *CostingService) get(ctx context.Context, id uuid.UUID) (*model.CostEstimate, error) {
	var estimate model.CostEstimate
	if err := s.db.WithContext(ctx).First(&estimate, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEstimateNotFound
		}
		return nil, fmt.Errorf("failed to query estimate: %w", err)
	}
	return &estimate, nil
}

func (s *CostingService) toResponse(estimate *model.CostEstimate) *EstimateResponseDTO {
	return &EstimateResponseDTO{
		CostEstimate: *estimate,
		Totals:       calc.CalculateAllTotals(estimate, s.defaults),
	}
}

// estimateFromForm parses every raw numeric field, accumulating errors so
// the form can show them all at once. The invoice value of each product is
// rederived from weight and rate here, never taken from the client.
func (s *CostingService) estimateFromForm(form *model.EstimateFormDTO, into *model.CostEstimate) (*model.CostEstimate, error) {
	if form == nil {
		return nil, &FormValidationError{Errors: []model.FieldError{{Field: "body", Message: "request body is required"}}}
	}

	var fieldErrors []model.FieldError
	parse := func(field, value string) float64 {
		v, err := calc.ParseAmount(field, value)
		if err != nil {
			fieldErrors = append(fieldErrors, model.FieldError{Field: field, Message: err.Error()})
		}
		return v
	}
	parseOptional := func(field string, value *string) *float64 {
		if value == nil || strings.TrimSpace(*value) == "" {
			return nil
		}
		v := parse(field, *value)
		return &v
	}
	parseChargeSet := func(field string, dto model.ChargeSetFormDTO) model.ChargeSet {
		return model.ChargeSet{
			USD: parse(field+".usd", dto.USD),
			EUR: parse(field+".eur", dto.EUR),
			ZAR: parse(field+".zar", dto.ZAR),
		}
	}

	into.ReferenceNumber = strings.TrimSpace(form.ReferenceNumber)
	if form.Status != "" {
		switch form.Status {
		case model.EstimateStatusDraft, model.EstimateStatusFinal, model.EstimateStatusArchived:
			into.Status = form.Status
		default:
			fieldErrors = append(fieldErrors, model.FieldError{Field: "status", Message: fmt.Sprintf("unknown status %q", form.Status)})
		}
	}
	into.Supplier = form.Supplier
	into.Notes = form.Notes
	into.ROEOrigin = parse("roeOrigin", form.ROEOrigin)
	into.ROEEUR = parse("roeEur", form.ROEEUR)
	into.AgencyFeePercent = parseOptional("agencyFeePercent", form.AgencyFeePercent)
	into.AgencyFeeMinimum = parseOptional("agencyFeeMinimum", form.AgencyFeeMinimum)
	into.OriginCharges = parseChargeSet("originCharges", form.OriginCharges)
	into.OceanFreightCharges = parseChargeSet("oceanFreightCharges", form.OceanFreightCharges)
	into.LocalCharges = parseChargeSet("localCharges", form.LocalCharges)
	into.DestinationCharges = parseChargeSet("destinationCharges", form.DestinationCharges)

	into.Products = make([]model.Product, 0, len(form.Products))
	for i, p := range form.Products {
		prefix := fmt.Sprintf("products[%d]", i)
		weight := parse(prefix+".weightKg", p.WeightKg)
		rate := parse(prefix+".ratePerKg", p.RatePerKg)
		if weight < 0 {
			fieldErrors = append(fieldErrors, model.FieldError{Field: prefix + ".weightKg", Message: "weight cannot be negative"})
		}
		currency := p.Currency
		if currency == "" {
			currency = model.CurrencyUSD
		}
		switch currency {
		case model.CurrencyUSD, model.CurrencyEUR, model.CurrencyZAR:
		default:
			fieldErrors = append(fieldErrors, model.FieldError{Field: prefix + ".currency", Message: fmt.Sprintf("unknown currency %q", currency)})
		}
		into.Products = append(into.Products, model.Product{
			Name:             p.Name,
			WeightKg:         weight,
			RatePerKg:        rate,
			InvoiceValue:     calc.InvoiceValue(weight, rate),
			Currency:         currency,
			DutyPct:          parse(prefix+".dutyPct", p.DutyPct),
			DutySchedule1Pct: parse(prefix+".dutySchedule1Pct", p.DutySchedule1Pct),
		})
	}

	if len(fieldErrors) > 0 {
		return nil, &FormValidationError{Errors: fieldErrors}
	}
	return into, nil
}

func newReferenceNumber() string {
	return fmt.Sprintf("FCL-%s-%s",
		time.Now().UTC().Format("200601"),
		strings.ToUpper(uuid.NewString()[:8]),
	)
}
