package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cargodesk/cargodesk/internal/costing/calc"
	"github.com/cargodesk/cargodesk/internal/costing/model"
)

func testService() *CostingService {
	return &CostingService{
		defaults: calc.Defaults{AgencyFeePercent: 3.5, AgencyFeeMinimum: 1187},
	}
}

func TestEstimateFromForm(t *testing.T) {
	s := testService()

	t.Run("parses numeric strings and derives invoice values", func(t *testing.T) {
		form := &model.EstimateFormDTO{
			ReferenceNumber: "FCL-202508-TEST",
			Supplier:        "Acme Textiles",
			ROEOrigin:       "18.50",
			ROEEUR:          "20.00",
			OriginCharges:   model.ChargeSetFormDTO{USD: "100", ZAR: "250.75"},
			Products: []model.ProductFormDTO{
				{Name: "Cotton", WeightKg: "120.5", RatePerKg: "3.2", Currency: model.CurrencyUSD, DutyPct: "10"},
			},
		}

		estimate, err := s.estimateFromForm(form, &model.CostEstimate{})
		require.NoError(t, err)

		assert.Equal(t, 18.5, estimate.ROEOrigin)
		assert.Equal(t, 20.0, estimate.ROEEUR)
		assert.Equal(t, 100.0, estimate.OriginCharges.USD)
		assert.Equal(t, 250.75, estimate.OriginCharges.ZAR)

		require.Len(t, estimate.Products, 1)
		p := estimate.Products[0]
		assert.Equal(t, 120.5, p.WeightKg)
		assert.Equal(t, 3.2, p.RatePerKg)
		assert.Equal(t, 385.60, p.InvoiceValue)
		assert.Equal(t, 10.0, p.DutyPct)
	})

	t.Run("empty numeric fields mean zero", func(t *testing.T) {
		form := &model.EstimateFormDTO{ROEOrigin: "", ROEEUR: "  "}
		estimate, err := s.estimateFromForm(form, &model.CostEstimate{})
		require.NoError(t, err)
		assert.Equal(t, 0.0, estimate.ROEOrigin)
		assert.Equal(t, 0.0, estimate.ROEEUR)
	})

	t.Run("non-numeric input collects field errors instead of zeroing", func(t *testing.T) {
		form := &model.EstimateFormDTO{
			ROEOrigin: "abc",
			LocalCharges: model.ChargeSetFormDTO{USD: "12x"},
			Products: []model.ProductFormDTO{
				{Name: "Bad", WeightKg: "heavy", RatePerKg: "1"},
			},
		}

		_, err := s.estimateFromForm(form, &model.CostEstimate{})
		var ferr *FormValidationError
		require.ErrorAs(t, err, &ferr)

		fields := make([]string, 0, len(ferr.Errors))
		for _, fe := range ferr.Errors {
			fields = append(fields, fe.Field)
		}
		assert.Contains(t, fields, "roeOrigin")
		assert.Contains(t, fields, "localCharges.usd")
		assert.Contains(t, fields, "products[0].weightKg")
	})

	t.Run("agency fee overrides are optional", func(t *testing.T) {
		pct := "5.0"
		form := &model.EstimateFormDTO{AgencyFeePercent: &pct}
		estimate, err := s.estimateFromForm(form, &model.CostEstimate{})
		require.NoError(t, err)
		require.NotNil(t, estimate.AgencyFeePercent)
		assert.Equal(t, 5.0, *estimate.AgencyFeePercent)
		assert.Nil(t, estimate.AgencyFeeMinimum)
	})

	t.Run("blank override clears the field", func(t *testing.T) {
		blank := " "
		form := &model.EstimateFormDTO{AgencyFeePercent: &blank}
		estimate, err := s.estimateFromForm(form, &model.CostEstimate{})
		require.NoError(t, err)
		assert.Nil(t, estimate.AgencyFeePercent)
	})

	t.Run("product currency defaults to USD", func(t *testing.T) {
		form := &model.EstimateFormDTO{
			Products: []model.ProductFormDTO{{Name: "X", WeightKg: "1", RatePerKg: "1"}},
		}
		estimate, err := s.estimateFromForm(form, &model.CostEstimate{})
		require.NoError(t, err)
		assert.Equal(t, model.CurrencyUSD, estimate.Products[0].Currency)
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		form := &model.EstimateFormDTO{Status: "bogus"}
		_, err := s.estimateFromForm(form, &model.CostEstimate{})
		var ferr *FormValidationError
		require.ErrorAs(t, err, &ferr)
		assert.Equal(t, "status", ferr.Errors[0].Field)
	})

	t.Run("nil form rejected", func(t *testing.T) {
		_, err := s.estimateFromForm(nil, &model.CostEstimate{})
		require.Error(t, err)
	})
}
