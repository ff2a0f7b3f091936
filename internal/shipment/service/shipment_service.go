package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cargodesk/cargodesk/internal/shipment/model"
	"github.com/cargodesk/cargodesk/utils"
)

// ErrShipmentNotFound is returned when the referenced shipment does not exist.
var ErrShipmentNotFound = errors.New("shipment not found")

// ValidationError marks request-level failures so the router can answer 422
// instead of 500.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// ShipmentService owns shipment CRUD and the post-arrival workflow actions.
// Every workflow action validates the transition against the state machine
// and applies its field updates inside one transaction.
type ShipmentService struct {
	db *gorm.DB
}

func NewShipmentService(db *gorm.DB) *ShipmentService {
	return &ShipmentService{db: db}
}

// Create stores a new shipment. An empty status defaults to in_transit_seaway.
func (s *ShipmentService) Create(ctx context.Context, req *model.CreateShipmentDTO) (*model.Shipment, error) {
	if req == nil {
		return nil, validationErrorf("request body is required")
	}
	if strings.TrimSpace(req.OrderRef) == "" {
		return nil, validationErrorf("orderRef is required")
	}
	if strings.TrimSpace(req.Supplier) == "" {
		return nil, validationErrorf("supplier is required")
	}

	shipment := &model.Shipment{
		Supplier:    req.Supplier,
		OrderRef:    req.OrderRef,
		ProductName: req.ProductName,
		Quantity:    req.Quantity,
		FinalPOD:    req.FinalPOD,
		WeekNumber:  req.WeekNumber,
		Status:      req.Status,
	}
	if shipment.Status == "" {
		shipment.Status = model.StatusInTransitSeaway
	}

	if err := s.db.WithContext(ctx).Create(shipment).Error; err != nil {
		return nil, fmt.Errorf("failed to create shipment: %w", err)
	}
	return shipment, nil
}

// Get returns a shipment by ID.
func (s *ShipmentService) Get(ctx context.Context, id uuid.UUID) (*model.Shipment, error) {
	var shipment model.Shipment
	if err := s.db.WithContext(ctx).First(&shipment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShipmentNotFound
		}
		return nil, fmt.Errorf("failed to query shipment: %w", err)
	}
	return &shipment, nil
}

// ListFilter narrows the shipment listing. Status "archived" selects the
// DB-flagged archived set regardless of latest status.
type ListFilter struct {
	Status   *model.ShipmentStatus
	Archived bool
	Page     *int
	Limit    *int
}

// List returns a page of shipments plus the total matching count.
func (s *ShipmentService) List(ctx context.Context, filter ListFilter) ([]model.Shipment, int64, error) {
	offset, limit := utils.GetPaginationParams(filter.Page, filter.Limit)

	query := s.db.WithContext(ctx).Model(&model.Shipment{})
	if filter.Archived {
		query = query.Where("archived = ?", true)
	} else {
		query = query.Where("archived = ?", false)
		if filter.Status != nil {
			query = query.Where("latest_status = ?", *filter.Status)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count shipments: %w", err)
	}

	var shipments []model.Shipment
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&shipments).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list shipments: %w", err)
	}
	return shipments, total, nil
}

// Update edits shipment master data; workflow fields are untouched.
func (s *ShipmentService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateShipmentDTO) (*model.Shipment, error) {
	if req == nil {
		return nil, validationErrorf("request body is required")
	}

	var shipment *model.Shipment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		shipment, err = s.getForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if req.Supplier != nil {
			shipment.Supplier = *req.Supplier
		}
		if req.OrderRef != nil {
			if strings.TrimSpace(*req.OrderRef) == "" {
				return validationErrorf("orderRef cannot be empty")
			}
			shipment.OrderRef = *req.OrderRef
		}
		if req.ProductName != nil {
			shipment.ProductName = *req.ProductName
		}
		if req.Quantity != nil {
			shipment.Quantity = *req.Quantity
		}
		if req.FinalPOD != nil {
			shipment.FinalPOD = *req.FinalPOD
		}
		if req.WeekNumber != nil {
			shipment.WeekNumber = *req.WeekNumber
		}
		return tx.Save(shipment).Error
	})
	if err != nil {
		return nil, err
	}
	return shipment, nil
}

// Delete removes a shipment.
func (s *ShipmentService) Delete(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&model.Shipment{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete shipment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrShipmentNotFound
	}
	return nil
}

// StartUnloading moves an arrived shipment into unloading.
func (s *ShipmentService) StartUnloading(ctx context.Context, id uuid.UUID) (*model.Shipment, error) {
	return s.applyTransition(ctx, id, "start-unloading", func(shipment *model.Shipment, now time.Time) error {
		shipment.Status = model.StatusUnloading
		shipment.UnloadingStartDate = &now
		return nil
	})
}

// CompleteUnloading moves an unloading shipment to inspection_pending.
func (s *ShipmentService) CompleteUnloading(ctx context.Context, id uuid.UUID) (*model.Shipment, error) {
	return s.applyTransition(ctx, id, "complete-unloading", func(shipment *model.Shipment, now time.Time) error {
		shipment.Status = model.StatusInspectionPending
		shipment.UnloadingCompleteDate = &now
		return nil
	})
}

// StartInspection begins (or, from inspection_failed, re-runs) an inspection.
// A re-inspection clears the prior outcome.
func (s *ShipmentService) StartInspection(ctx context.Context, id uuid.UUID, req *model.StartInspectionDTO) (*model.Shipment, error) {
	if req == nil || strings.TrimSpace(req.InspectedBy) == "" {
		return nil, validationErrorf("inspectedBy is required")
	}
	return s.applyTransition(ctx, id, "start-inspection", func(shipment *model.Shipment, now time.Time) error {
		shipment.Status = model.StatusInspecting
		shipment.InspectionDate = &now
		shipment.InspectedBy = &req.InspectedBy
		shipment.InspectionStatus = nil
		shipment.HoldType = nil
		shipment.FailureReason = nil
		return nil
	})
}

// CompleteInspection records the operator-selected outcome. The three
// outcomes are mutually exclusive; passed_on_hold requires a hold type and
// failed requires a failure reason.
func (s *ShipmentService) CompleteInspection(ctx context.Context, id uuid.UUID, req *model.CompleteInspectionDTO) (*model.Shipment, error) {
	if req == nil || req.Outcome == "" {
		return nil, validationErrorf("an inspection outcome must be selected")
	}
	next, err := InspectionOutcomeStatus(req.Outcome)
	if err != nil {
		return nil, validationErrorf("%v", err)
	}
	if req.Outcome == model.InspectionPassedOnHold && strings.TrimSpace(req.HoldType) == "" {
		return nil, validationErrorf("holdType is required for a passed-on-hold inspection")
	}
	if req.Outcome == model.InspectionFailed && strings.TrimSpace(req.FailureReason) == "" {
		return nil, validationErrorf("failureReason is required for a failed inspection")
	}

	return s.applyTransition(ctx, id, "complete-inspection", func(shipment *model.Shipment, now time.Time) error {
		outcome := req.Outcome
		shipment.Status = next
		shipment.InspectionStatus = &outcome
		if outcome == model.InspectionPassedOnHold {
			shipment.HoldType = &req.HoldType
		}
		if outcome == model.InspectionFailed {
			shipment.FailureReason = &req.FailureReason
			shipment.RejectionDate = &now
			shipment.RejectedBy = shipment.InspectedBy
			shipment.RejectionReason = &req.FailureReason
		}
		return nil
	})
}

// StartReceiving moves a passed shipment into receiving.
func (s *ShipmentService) StartReceiving(ctx context.Context, id uuid.UUID) (*model.Shipment, error) {
	return s.applyTransition(ctx, id, "start-receiving", func(shipment *model.Shipment, now time.Time) error {
		shipment.Status = model.StatusReceiving
		shipment.ReceivingDate = &now
		return nil
	})
}

// CompleteReceiving records who received the goods and how many. Partial
// receipts are allowed and recorded as-is.
func (s *ShipmentService) CompleteReceiving(ctx context.Context, id uuid.UUID, req *model.CompleteReceivingDTO) (*model.Shipment, error) {
	if req == nil || strings.TrimSpace(req.ReceivedBy) == "" {
		return nil, validationErrorf("receivedBy is required")
	}
	if req.ReceivedQuantity < 0 {
		return nil, validationErrorf("receivedQuantity cannot be negative")
	}
	return s.applyTransition(ctx, id, "complete-receiving", func(shipment *model.Shipment, now time.Time) error {
		shipment.Status = model.StatusReceived
		shipment.ReceivedBy = &req.ReceivedBy
		shipment.ReceivedQuantity = &req.ReceivedQuantity
		return nil
	})
}

// MarkStored moves a received shipment into its terminal forward state.
func (s *ShipmentService) MarkStored(ctx context.Context, id uuid.UUID) (*model.Shipment, error) {
	return s.applyTransition(ctx, id, "mark-stored", func(shipment *model.Shipment, now time.Time) error {
		shipment.Status = model.StatusStored
		return nil
	})
}

// AmendStatus is the escape hatch: it reverts the shipment to
// in_transit_seaway and clears every workflow field in a single atomic
// update. Available from any status.
func (s *ShipmentService) AmendStatus(ctx context.Context, id uuid.UUID) (*model.Shipment, error) {
	var shipment *model.Shipment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		shipment, err = s.getForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		shipment.Status = model.StatusInTransitSeaway
		shipment.ClearWorkflowFields()
		return tx.Save(shipment).Error
	})
	if err != nil {
		return nil, err
	}
	return shipment, nil
}

// applyTransition loads the shipment under the transaction, validates the
// workflow action against its current status, applies the mutation, and
// persists the whole record.
func (s *ShipmentService) applyTransition(
	ctx context.Context,
	id uuid.UUID,
	endpoint string,
	mutate func(shipment *model.Shipment, now time.Time) error,
) (*model.Shipment, error) {
	var shipment *model.Shipment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		shipment, err = s.getForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := ValidateTransition(endpoint, shipment.Status); err != nil {
			return &ValidationError{Msg: err.Error()}
		}
		if err := mutate(shipment, time.Now().UTC()); err != nil {
			return err
		}
		return tx.Save(shipment).Error
	})
	if err != nil {
		return nil, err
	}
	return shipment, nil
}

func (s *ShipmentService) getForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Shipment, error) {
	var shipment model.Shipment
	if err := tx.WithContext(ctx).First(&shipment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShipmentNotFound
		}
		return nil, fmt.Errorf("failed to query shipment: %w", err)
	}
	return &shipment, nil
}

// ToResponseDTO decorates a shipment with its derived workflow view.
func ToResponseDTO(shipment model.Shipment) model.ShipmentResponseDTO {
	return model.ShipmentResponseDTO{
		Shipment:         shipment,
		ProgressPercent:  ProgressPercent(shipment.Status),
		AvailableActions: AvailableActions(shipment.Status),
	}
}
