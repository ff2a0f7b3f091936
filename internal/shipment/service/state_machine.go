package service

import (
	"fmt"

	"github.com/cargodesk/cargodesk/internal/shipment/model"
)

// progression is the fixed post-arrival status order. Progress percentage
// and forward-action availability are both derived from it. The two arrival
// ports share an index, so either counts as step one.
var progression = []model.ShipmentStatus{
	model.StatusArrivedPTA,
	model.StatusUnloading,
	model.StatusInspectionPending,
	model.StatusInspecting,
	model.StatusInspectionPassed,
	model.StatusReceiving,
	model.StatusReceived,
	model.StatusStored,
}

// AmendStatusAction is available from every state. It is a compensating
// rollback to in_transit_seaway that clears all workflow fields, not a
// forward transition.
var AmendStatusAction = model.WorkflowAction{
	Name:     "Amend Status",
	Endpoint: "amend-status",
}

// forwardActions maps each status to its single forward action.
// inspection_failed maps to Re-inspect, which re-enters inspecting.
var forwardActions = map[model.ShipmentStatus]model.WorkflowAction{
	model.StatusArrivedPTA:        {Name: "Start Unloading", Endpoint: "start-unloading"},
	model.StatusArrivedKLM:        {Name: "Start Unloading", Endpoint: "start-unloading"},
	model.StatusUnloading:         {Name: "Complete Unloading", Endpoint: "complete-unloading"},
	model.StatusInspectionPending: {Name: "Start Inspection", Endpoint: "start-inspection"},
	model.StatusInspecting:        {Name: "Complete Inspection", Endpoint: "complete-inspection"},
	model.StatusInspectionPassed:  {Name: "Start Receiving", Endpoint: "start-receiving"},
	model.StatusInspectionFailed:  {Name: "Re-inspect", Endpoint: "start-inspection"},
	model.StatusReceiving:         {Name: "Complete Receiving", Endpoint: "complete-receiving"},
	model.StatusReceived:          {Name: "Mark Stored", Endpoint: "mark-stored"},
}

// allowedFrom maps each workflow action endpoint to the statuses it may be
// invoked from. The service validates against this before mutating anything.
var allowedFrom = map[string][]model.ShipmentStatus{
	"start-unloading":     {model.StatusArrivedPTA, model.StatusArrivedKLM},
	"complete-unloading":  {model.StatusUnloading},
	"start-inspection":    {model.StatusInspectionPending, model.StatusInspectionFailed},
	"complete-inspection": {model.StatusInspecting},
	"start-receiving":     {model.StatusInspectionPassed},
	"complete-receiving":  {model.StatusReceiving},
	"mark-stored":         {model.StatusReceived},
}

// AvailableActions returns the actions an operator can take on a shipment in
// the given status. There is exactly one forward action per state; stored and
// unknown statuses expose only Amend Status.
func AvailableActions(status model.ShipmentStatus) []model.WorkflowAction {
	actions := make([]model.WorkflowAction, 0, 2)
	if forward, ok := forwardActions[status]; ok {
		actions = append(actions, forward)
	}
	return append(actions, AmendStatusAction)
}

// ValidateTransition checks that the given workflow action may run from the
// current status.
func ValidateTransition(endpoint string, current model.ShipmentStatus) error {
	allowed, ok := allowedFrom[endpoint]
	if !ok {
		return fmt.Errorf("unknown workflow action %q", endpoint)
	}
	for _, s := range allowed {
		if s == current {
			return nil
		}
	}
	return fmt.Errorf("cannot %s a shipment in status %q", endpoint, current)
}

// ProgressPercent returns how far through the fixed progression the status
// is, as a percentage. Purely cosmetic.
func ProgressPercent(status model.ShipmentStatus) float64 {
	index := -1
	for i, s := range progression {
		if s == status {
			index = i
			break
		}
	}
	// arrived_klm shares the first slot; inspection_failed sits at the
	// inspecting step it re-enters.
	switch status {
	case model.StatusArrivedKLM:
		index = 0
	case model.StatusInspectionFailed:
		index = 3
	}
	if index < 0 {
		return 0
	}
	return float64(index+1) / float64(len(progression)) * 100
}

// InspectionOutcomeStatus maps a completed inspection outcome to the next
// shipment status. passed_on_hold still counts as passed for workflow
// purposes; the hold is recorded on the shipment itself.
func InspectionOutcomeStatus(outcome model.InspectionOutcome) (model.ShipmentStatus, error) {
	switch outcome {
	case model.InspectionPassed, model.InspectionPassedOnHold:
		return model.StatusInspectionPassed, nil
	case model.InspectionFailed:
		return model.StatusInspectionFailed, nil
	default:
		return "", fmt.Errorf("unknown inspection outcome %q", outcome)
	}
}
