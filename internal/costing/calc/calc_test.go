package calc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cargodesk/cargodesk/internal/costing/model"
)

func TestInvoiceValue(t *testing.T) {
	tests := []struct {
		name     string
		weightKg float64
		rate     float64
		want     float64
	}{
		{name: "typical product", weightKg: 120.5, rate: 3.2, want: 385.60},
		{name: "zero weight", weightKg: 0, rate: 3.2, want: 0},
		{name: "zero rate", weightKg: 100, rate: 0, want: 0},
		{name: "rounds to two decimals", weightKg: 1.333, rate: 1.333, want: 1.78},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InvoiceValue(tt.weightKg, tt.rate))
		})
	}
}

func TestChargeSetTotalZAR(t *testing.T) {
	cs := model.ChargeSet{USD: 100, EUR: 50, ZAR: 200}
	// 100*18.5 + 50*20 + 200
	assert.Equal(t, 3050.0, ChargeSetTotalZAR(cs, 18.5, 20))

	t.Run("zero rates leave only ZAR", func(t *testing.T) {
		assert.Equal(t, 200.0, ChargeSetTotalZAR(cs, 0, 0))
	})
}

func TestAgencyFee(t *testing.T) {
	t.Run("minimum applies to small bases", func(t *testing.T) {
		assert.Equal(t, 1187.0, AgencyFee(1000, 3.5, 1187))
	})
	t.Run("percentage applies to large bases", func(t *testing.T) {
		assert.Equal(t, 3500.0, AgencyFee(100000, 3.5, 1187))
	})
	t.Run("boundary where both are equal", func(t *testing.T) {
		base := 1187 / 3.5 * 100
		assert.InDelta(t, 1187.0, AgencyFee(base, 3.5, 1187), 0.001)
	})
}

func TestAllocateShipping(t *testing.T) {
	t.Run("proportional split", func(t *testing.T) {
		shares := AllocateShipping([]float64{40, 60}, 1000)
		assert.Equal(t, []float64{400, 600}, shares)
	})

	t.Run("shares sum exactly to the total", func(t *testing.T) {
		weights := []float64{1, 1, 1}
		shares := AllocateShipping(weights, 100)
		var sum float64
		for _, s := range shares {
			sum += s
		}
		assert.Equal(t, 100.0, Round2(sum))
	})

	t.Run("order independent", func(t *testing.T) {
		a := AllocateShipping([]float64{10, 20, 70}, 543.21)
		b := AllocateShipping([]float64{70, 20, 10}, 543.21)
		assert.Equal(t, a[0], b[2])
		assert.Equal(t, a[1], b[1])
		assert.Equal(t, a[2], b[0])
	})

	t.Run("zero total weight yields zero shares", func(t *testing.T) {
		shares := AllocateShipping([]float64{0, 0}, 1000)
		assert.Equal(t, []float64{0, 0}, shares)
	})

	t.Run("zero-weight product gets nothing", func(t *testing.T) {
		shares := AllocateShipping([]float64{0, 50}, 500)
		assert.Equal(t, []float64{0, 500}, shares)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, AllocateShipping(nil, 1000))
	})
}

func TestComputeCustoms(t *testing.T) {
	p := model.Product{
		InvoiceValue:     1000,
		Currency:         model.CurrencyUSD,
		DutyPct:          10,
		DutySchedule1Pct: 5,
	}
	customs := ComputeCustoms(p, 18.5, 20)

	// cv = 1000 * 18.5
	assert.Equal(t, 18500.0, customs.CustomsValue)
	assert.Equal(t, 1850.0, customs.Duty)
	assert.Equal(t, 925.0, customs.Schedule1Duty)
	// VAT on cv + duty + schedule1
	assert.Equal(t, Round2(0.15*(18500+1850+925)), customs.ImportVAT)

	t.Run("EUR product converts at the EUR rate", func(t *testing.T) {
		p := model.Product{InvoiceValue: 100, Currency: model.CurrencyEUR}
		customs := ComputeCustoms(p, 18.5, 20)
		assert.Equal(t, 2000.0, customs.CustomsValue)
	})

	t.Run("ZAR product is not converted", func(t *testing.T) {
		p := model.Product{InvoiceValue: 100, Currency: model.CurrencyZAR}
		customs := ComputeCustoms(p, 18.5, 20)
		assert.Equal(t, 100.0, customs.CustomsValue)
	})
}

func TestCalculateAllTotals(t *testing.T) {
	estimate := &model.CostEstimate{
		ROEOrigin:     18.0,
		ROEEUR:        20.0,
		OriginCharges: model.ChargeSet{USD: 100},
		LocalCharges:  model.ChargeSet{ZAR: 500},
		Products: []model.Product{
			{Name: "A", WeightKg: 40, RatePerKg: 2, InvoiceValue: 80, Currency: model.CurrencyUSD, DutyPct: 10},
			{Name: "B", WeightKg: 60, RatePerKg: 3, InvoiceValue: 180, Currency: model.CurrencyUSD},
		},
	}
	defaults := Defaults{AgencyFeePercent: 3.5, AgencyFeeMinimum: 1187}

	totals := CalculateAllTotals(estimate, defaults)

	assert.Equal(t, 1800.0, totals.OriginChargesZAR)
	assert.Equal(t, 500.0, totals.LocalChargesZAR)
	assert.Equal(t, 2300.0, totals.SubtotalZAR)
	// 3.5% of 2300 is below the minimum
	assert.Equal(t, 1187.0, totals.AgencyFee)
	assert.Equal(t, 3487.0, totals.TotalShippingZAR)
	assert.Equal(t, 100.0, totals.TotalWeightKg)

	require.Len(t, totals.Products, 2)
	// 40/100 and 60/100 of total shipping
	assert.Equal(t, Round2(3487.0*0.4), totals.Products[0].AllocatedShipping)
	assert.Equal(t, Round2(3487.0*0.6), totals.Products[1].AllocatedShipping)

	// Landed cost excludes import VAT
	dutyA := Round2(80 * 18.0 * 0.10)
	assert.Equal(t, Round2(totals.Products[0].AllocatedShipping+dutyA), totals.Products[0].LandedCost)
	assert.Equal(t, totals.Products[1].AllocatedShipping, totals.Products[1].LandedCost)

	t.Run("estimate overrides beat defaults", func(t *testing.T) {
		pct := 10.0
		minFee := 1.0
		estimate.AgencyFeePercent = &pct
		estimate.AgencyFeeMinimum = &minFee
		totals := CalculateAllTotals(estimate, defaults)
		assert.Equal(t, 230.0, totals.AgencyFee)
	})
}

func TestParseAmount(t *testing.T) {
	t.Run("valid number", func(t *testing.T) {
		v, err := ParseAmount("weight", "120.5")
		require.NoError(t, err)
		assert.Equal(t, 120.5, v)
	})

	t.Run("empty string means zero", func(t *testing.T) {
		v, err := ParseAmount("weight", "")
		require.NoError(t, err)
		assert.Equal(t, 0.0, v)
	})

	t.Run("whitespace only means zero", func(t *testing.T) {
		v, err := ParseAmount("weight", "   ")
		require.NoError(t, err)
		assert.Equal(t, 0.0, v)
	})

	t.Run("non-numeric is an error, not zero", func(t *testing.T) {
		_, err := ParseAmount("weight", "abc")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "weight")
	})

	t.Run("NaN literal rejected", func(t *testing.T) {
		_, err := ParseAmount("rate", "NaN")
		require.Error(t, err)
	})
}
