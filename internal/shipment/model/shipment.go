package model

import (
	"time"
)

// ShipmentStatus represents where a shipment sits in its lifecycle.
type ShipmentStatus string

const (
	StatusInTransitSeaway   ShipmentStatus = "in_transit_seaway"
	StatusArrivedPTA        ShipmentStatus = "arrived_pta"
	StatusArrivedKLM        ShipmentStatus = "arrived_klm"
	StatusUnloading         ShipmentStatus = "unloading"
	StatusInspectionPending ShipmentStatus = "inspection_pending"
	StatusInspecting        ShipmentStatus = "inspecting"
	StatusInspectionPassed  ShipmentStatus = "inspection_passed"
	StatusInspectionFailed  ShipmentStatus = "inspection_failed"
	StatusReceiving         ShipmentStatus = "receiving"
	StatusReceived          ShipmentStatus = "received"
	StatusStored            ShipmentStatus = "stored"
)

// InspectionOutcome is the operator-selected result of an inspection.
// Exactly one outcome must be chosen when completing an inspection.
type InspectionOutcome string

const (
	InspectionPassed       InspectionOutcome = "passed"
	InspectionPassedOnHold InspectionOutcome = "passed_on_hold"
	InspectionFailed       InspectionOutcome = "failed"
)

// Shipment represents a tracked import shipment and its post-arrival
// workflow fields. Workflow fields are nil until the corresponding step
// has been performed, and are all cleared by an amend-status rollback.
type Shipment struct {
	BaseModel
	Supplier    string         `gorm:"type:varchar(255);column:supplier;not null" json:"supplier"`
	OrderRef    string         `gorm:"type:varchar(100);column:order_ref;not null;index" json:"orderRef"`
	ProductName string         `gorm:"type:varchar(255);column:product_name" json:"productName"`
	Quantity    int            `gorm:"column:quantity" json:"quantity"`
	FinalPOD    string         `gorm:"type:varchar(100);column:final_pod" json:"finalPod"`
	WeekNumber  int            `gorm:"column:week_number" json:"weekNumber"`
	Status      ShipmentStatus `gorm:"type:varchar(50);column:latest_status;not null;index" json:"latestStatus"`
	Archived    bool           `gorm:"column:archived;not null;default:false;index" json:"archived"`

	UnloadingStartDate    *time.Time         `gorm:"type:timestamptz;column:unloading_start_date" json:"unloadingStartDate,omitempty"`
	UnloadingCompleteDate *time.Time         `gorm:"type:timestamptz;column:unloading_complete_date" json:"unloadingCompleteDate,omitempty"`
	InspectionDate        *time.Time         `gorm:"type:timestamptz;column:inspection_date" json:"inspectionDate,omitempty"`
	InspectedBy           *string            `gorm:"type:varchar(255);column:inspected_by" json:"inspectedBy,omitempty"`
	InspectionStatus      *InspectionOutcome `gorm:"type:varchar(50);column:inspection_status" json:"inspectionStatus,omitempty"`
	HoldType              *string            `gorm:"type:varchar(100);column:hold_type" json:"holdType,omitempty"`
	FailureReason         *string            `gorm:"type:varchar(255);column:failure_reason" json:"failureReason,omitempty"`
	ReceivingDate         *time.Time         `gorm:"type:timestamptz;column:receiving_date" json:"receivingDate,omitempty"`
	ReceivedBy            *string            `gorm:"type:varchar(255);column:received_by" json:"receivedBy,omitempty"`
	ReceivedQuantity      *int               `gorm:"column:received_quantity" json:"receivedQuantity,omitempty"`
	RejectionDate         *time.Time         `gorm:"type:timestamptz;column:rejection_date" json:"rejectionDate,omitempty"`
	RejectedBy            *string            `gorm:"type:varchar(255);column:rejected_by" json:"rejectedBy,omitempty"`
	RejectionReason       *string            `gorm:"type:varchar(255);column:rejection_reason" json:"rejectionReason,omitempty"`
}

func (s *Shipment) TableName() string {
	return "shipments"
}

// ClearWorkflowFields resets every post-arrival workflow field. Used by the
// amend-status rollback, which runs as a single transaction.
func (s *Shipment) ClearWorkflowFields() {
	s.UnloadingStartDate = nil
	s.UnloadingCompleteDate = nil
	s.InspectionDate = nil
	s.InspectedBy = nil
	s.InspectionStatus = nil
	s.HoldType = nil
	s.FailureReason = nil
	s.ReceivingDate = nil
	s.ReceivedBy = nil
	s.ReceivedQuantity = nil
	s.RejectionDate = nil
	s.RejectedBy = nil
	s.RejectionReason = nil
}
