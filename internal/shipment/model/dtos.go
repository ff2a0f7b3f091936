package model

// CreateShipmentDTO is the request body for creating a shipment.
type CreateShipmentDTO struct {
	Supplier    string         `json:"supplier"`
	OrderRef    string         `json:"orderRef"`
	ProductName string         `json:"productName"`
	Quantity    int            `json:"quantity"`
	FinalPOD    string         `json:"finalPod"`
	WeekNumber  int            `json:"weekNumber"`
	Status      ShipmentStatus `json:"latestStatus"`
}

// UpdateShipmentDTO is the request body for editing shipment master data.
// Workflow fields are only mutated through the workflow actions.
type UpdateShipmentDTO struct {
	Supplier    *string `json:"supplier,omitempty"`
	OrderRef    *string `json:"orderRef,omitempty"`
	ProductName *string `json:"productName,omitempty"`
	Quantity    *int    `json:"quantity,omitempty"`
	FinalPOD    *string `json:"finalPod,omitempty"`
	WeekNumber  *int    `json:"weekNumber,omitempty"`
}

// StartInspectionDTO carries the inspector starting an inspection.
type StartInspectionDTO struct {
	InspectedBy string `json:"inspectedBy"`
}

// CompleteInspectionDTO carries the operator-selected inspection outcome.
// HoldType is required for passed_on_hold, FailureReason for failed.
type CompleteInspectionDTO struct {
	Outcome       InspectionOutcome `json:"outcome"`
	HoldType      string            `json:"holdType,omitempty"`
	FailureReason string            `json:"failureReason,omitempty"`
}

// CompleteReceivingDTO carries the receiving confirmation.
type CompleteReceivingDTO struct {
	ReceivedBy       string `json:"receivedBy"`
	ReceivedQuantity int    `json:"receivedQuantity"`
}

// WorkflowAction describes one action the operator can take on a shipment
// in its current state.
type WorkflowAction struct {
	Name     string `json:"name"`
	Endpoint string `json:"endpoint"`
}

// ShipmentResponseDTO decorates a shipment with its derived workflow view.
type ShipmentResponseDTO struct {
	Shipment
	ProgressPercent  float64          `json:"progressPercent"`
	AvailableActions []WorkflowAction `json:"availableActions"`
}

// ShipmentListResponseDTO is the paginated list envelope.
type ShipmentListResponseDTO struct {
	Shipments []ShipmentResponseDTO `json:"shipments"`
	Page      int                   `json:"page"`
	Limit     int                   `json:"limit"`
	Total     int64                 `json:"total"`
}
