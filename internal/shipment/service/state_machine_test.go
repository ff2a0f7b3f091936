package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cargodesk/cargodesk/internal/shipment/model"
)

func TestAvailableActions(t *testing.T) {
	t.Run("every state offers amend", func(t *testing.T) {
		statuses := []model.ShipmentStatus{
			model.StatusInTransitSeaway,
			model.StatusArrivedPTA,
			model.StatusArrivedKLM,
			model.StatusUnloading,
			model.StatusInspectionPending,
			model.StatusInspecting,
			model.StatusInspectionPassed,
			model.StatusInspectionFailed,
			model.StatusReceiving,
			model.StatusReceived,
			model.StatusStored,
		}
		for _, status := range statuses {
			actions := AvailableActions(status)
			assert.Equal(t, AmendStatusAction, actions[len(actions)-1], "status %s", status)
		}
	})

	t.Run("inspection_failed offers re-inspect plus amend", func(t *testing.T) {
		actions := AvailableActions(model.StatusInspectionFailed)
		require.Len(t, actions, 2)
		assert.Equal(t, "Re-inspect", actions[0].Name)
		assert.Equal(t, "start-inspection", actions[0].Endpoint)
		assert.Equal(t, AmendStatusAction, actions[1])
	})

	t.Run("stored offers only amend", func(t *testing.T) {
		actions := AvailableActions(model.StatusStored)
		require.Len(t, actions, 1)
		assert.Equal(t, AmendStatusAction, actions[0])
	})

	t.Run("both arrival ports offer start unloading", func(t *testing.T) {
		for _, status := range []model.ShipmentStatus{model.StatusArrivedPTA, model.StatusArrivedKLM} {
			actions := AvailableActions(status)
			require.Len(t, actions, 2, "status %s", status)
			assert.Equal(t, "start-unloading", actions[0].Endpoint)
		}
	})

	t.Run("received offers mark stored", func(t *testing.T) {
		actions := AvailableActions(model.StatusReceived)
		require.Len(t, actions, 2)
		assert.Equal(t, "mark-stored", actions[0].Endpoint)
	})
}

func TestValidateTransition(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		current  model.ShipmentStatus
		wantErr  bool
	}{
		{name: "start unloading from PTA", endpoint: "start-unloading", current: model.StatusArrivedPTA},
		{name: "start unloading from KLM", endpoint: "start-unloading", current: model.StatusArrivedKLM},
		{name: "start unloading while in transit", endpoint: "start-unloading", current: model.StatusInTransitSeaway, wantErr: true},
		{name: "complete unloading mid-unload", endpoint: "complete-unloading", current: model.StatusUnloading},
		{name: "complete unloading too early", endpoint: "complete-unloading", current: model.StatusArrivedPTA, wantErr: true},
		{name: "re-inspect after failure", endpoint: "start-inspection", current: model.StatusInspectionFailed},
		{name: "inspect before unloading done", endpoint: "start-inspection", current: model.StatusUnloading, wantErr: true},
		{name: "receive only after pass", endpoint: "start-receiving", current: model.StatusInspectionFailed, wantErr: true},
		{name: "mark stored after received", endpoint: "mark-stored", current: model.StatusReceived},
		{name: "mark stored twice", endpoint: "mark-stored", current: model.StatusStored, wantErr: true},
		{name: "unknown endpoint", endpoint: "teleport", current: model.StatusReceived, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTransition(tt.endpoint, tt.current)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProgressPercent(t *testing.T) {
	t.Run("monotone along the progression", func(t *testing.T) {
		prev := -1.0
		for _, status := range progression {
			pct := ProgressPercent(status)
			assert.Greater(t, pct, prev, "status %s", status)
			prev = pct
		}
	})

	t.Run("both arrival ports share the first step", func(t *testing.T) {
		assert.Equal(t, ProgressPercent(model.StatusArrivedPTA), ProgressPercent(model.StatusArrivedKLM))
	})

	t.Run("inspection_failed sits at the inspecting step", func(t *testing.T) {
		assert.Equal(t, ProgressPercent(model.StatusInspecting), ProgressPercent(model.StatusInspectionFailed))
	})

	t.Run("stored is complete", func(t *testing.T) {
		assert.Equal(t, 100.0, ProgressPercent(model.StatusStored))
	})

	t.Run("pre-arrival status has no progress", func(t *testing.T) {
		assert.Equal(t, 0.0, ProgressPercent(model.StatusInTransitSeaway))
	})
}

func TestInspectionOutcomeStatus(t *testing.T) {
	tests := []struct {
		outcome model.InspectionOutcome
		want    model.ShipmentStatus
		wantErr bool
	}{
		{outcome: model.InspectionPassed, want: model.StatusInspectionPassed},
		{outcome: model.InspectionPassedOnHold, want: model.StatusInspectionPassed},
		{outcome: model.InspectionFailed, want: model.StatusInspectionFailed},
		{outcome: "maybe", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(string(tt.outcome), func(t *testing.T) {
			status, err := InspectionOutcomeStatus(tt.outcome)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, status)
		})
	}
}
