// Package calc holds the pure costing arithmetic. Every function here is a
// pure function of its inputs; the service recomputes all derived figures
// from the raw estimate on every read, nothing derived is stored.
package calc

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cargodesk/cargodesk/internal/costing/model"
)

// VATRate is the South African import VAT rate.
const VATRate = 0.15

// Round2 rounds to two decimal places, the resolution of all monetary
// figures in an estimate.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// InvoiceValue derives a product's invoice value from its weight and rate.
// The invariant invoice_value == weight_kg * rate_per_kg is maintained on
// every edit to either factor.
func InvoiceValue(weightKg, ratePerKg float64) float64 {
	return Round2(weightKg * ratePerKg)
}

// ChargeSetTotalZAR converts one charge category to ZAR using the two
// independently entered rates of exchange.
func ChargeSetTotalZAR(c model.ChargeSet, roeOrigin, roeEUR float64) float64 {
	return c.USD*roeOrigin + c.EUR*roeEUR + c.ZAR
}

// AgencyFee applies the percentage with a floor: whichever of
// base*pct/100 and minimum is larger.
func AgencyFee(base, percent, minimum float64) float64 {
	fee := base * percent / 100
	return math.Max(fee, minimum)
}

// roeFor returns the ZAR conversion rate for a product's invoice currency.
func roeFor(currency model.Currency, roeOrigin, roeEUR float64) float64 {
	switch currency {
	case model.CurrencyUSD:
		return roeOrigin
	case model.CurrencyEUR:
		return roeEUR
	default:
		return 1
	}
}

// Customs is the customs block for one product.
type Customs struct {
	CustomsValue  float64 `json:"customsValue"`
	Duty          float64 `json:"duty"`
	Schedule1Duty float64 `json:"schedule1Duty"`
	// ImportVAT is computed for reporting but excluded from landed totals.
	ImportVAT float64 `json:"importVat"`
}

// ComputeCustoms evaluates the customs block for one product. The customs
// value is the invoice value converted at the rate for the product's own
// currency; each product's duties are independent of the other products.
func ComputeCustoms(p model.Product, roeOrigin, roeEUR float64) Customs {
	cv := p.InvoiceValue * roeFor(p.Currency, roeOrigin, roeEUR)
	duty := cv * p.DutyPct / 100
	schedule1 := cv * p.DutySchedule1Pct / 100
	return Customs{
		CustomsValue:  Round2(cv),
		Duty:          Round2(duty),
		Schedule1Duty: Round2(schedule1),
		ImportVAT:     Round2(VATRate * (cv + duty + schedule1)),
	}
}

// AllocateShipping splits a total shipping cost across products in
// proportion to weight: share_i = total * w_i / W. The shares always sum to
// the total (the last share absorbs the rounding remainder) and the split is
// independent of product order. A zero total weight yields zero shares.
func AllocateShipping(weights []float64, total float64) []float64 {
	shares := make([]float64, len(weights))
	if len(weights) == 0 {
		return shares
	}

	var totalWeight float64
	for _, w := range weights {
		totalWeight += w
	}
	if totalWeight == 0 {
		return shares
	}

	var allocated float64
	lastNonZero := -1
	for i, w := range weights {
		shares[i] = Round2(total * w / totalWeight)
		allocated += shares[i]
		if w != 0 {
			lastNonZero = i
		}
	}
	// Absorb the rounding remainder so the shares sum exactly to the total
	if lastNonZero >= 0 {
		shares[lastNonZero] = Round2(shares[lastNonZero] + total - allocated)
	}
	return shares
}

// ProductTotals is the derived costing line for one product.
type ProductTotals struct {
	Name              string  `json:"name"`
	WeightKg          float64 `json:"weightKg"`
	InvoiceValue      float64 `json:"invoiceValue"`
	Customs           Customs `json:"customs"`
	AllocatedShipping float64 `json:"allocatedShipping"`
	// LandedCost = allocated shipping + duties. Import VAT is excluded.
	LandedCost float64 `json:"landedCost"`
	CostPerKg  float64 `json:"costPerKg"`
}

// EstimateTotals is everything the estimate views derive from raw inputs.
type EstimateTotals struct {
	OriginChargesZAR       float64         `json:"originChargesZar"`
	OceanFreightChargesZAR float64         `json:"oceanFreightChargesZar"`
	LocalChargesZAR        float64         `json:"localChargesZar"`
	DestinationChargesZAR  float64         `json:"destinationChargesZar"`
	SubtotalZAR            float64         `json:"subtotalZar"`
	AgencyFee              float64         `json:"agencyFee"`
	TotalShippingZAR       float64         `json:"totalShippingZar"`
	TotalWeightKg          float64         `json:"totalWeightKg"`
	TotalDuties            float64         `json:"totalDuties"`
	TotalImportVAT         float64         `json:"totalImportVat"`
	TotalLandedCost        float64         `json:"totalLandedCost"`
	Products               []ProductTotals `json:"products"`
}

// Defaults carries the configured agency fee parameters applied when an
// estimate does not override them.
type Defaults struct {
	AgencyFeePercent float64
	AgencyFeeMinimum float64
}

// CalculateAllTotals derives the full costing view from an estimate's raw
// inputs.
func CalculateAllTotals(e *model.CostEstimate, defaults Defaults) EstimateTotals {
	totals := EstimateTotals{
		OriginChargesZAR:       Round2(ChargeSetTotalZAR(e.OriginCharges, e.ROEOrigin, e.ROEEUR)),
		OceanFreightChargesZAR: Round2(ChargeSetTotalZAR(e.OceanFreightCharges, e.ROEOrigin, e.ROEEUR)),
		LocalChargesZAR:        Round2(ChargeSetTotalZAR(e.LocalCharges, e.ROEOrigin, e.ROEEUR)),
		DestinationChargesZAR:  Round2(ChargeSetTotalZAR(e.DestinationCharges, e.ROEOrigin, e.ROEEUR)),
	}
	totals.SubtotalZAR = Round2(totals.OriginChargesZAR + totals.OceanFreightChargesZAR +
		totals.LocalChargesZAR + totals.DestinationChargesZAR)

	feePercent := defaults.AgencyFeePercent
	if e.AgencyFeePercent != nil {
		feePercent = *e.AgencyFeePercent
	}
	feeMinimum := defaults.AgencyFeeMinimum
	if e.AgencyFeeMinimum != nil {
		feeMinimum = *e.AgencyFeeMinimum
	}
	totals.AgencyFee = Round2(AgencyFee(totals.SubtotalZAR, feePercent, feeMinimum))
	totals.TotalShippingZAR = Round2(totals.SubtotalZAR + totals.AgencyFee)

	weights := make([]float64, len(e.Products))
	for i, p := range e.Products {
		weights[i] = p.WeightKg
		totals.TotalWeightKg += p.WeightKg
	}
	shares := AllocateShipping(weights, totals.TotalShippingZAR)

	totals.Products = make([]ProductTotals, len(e.Products))
	for i, p := range e.Products {
		customs := ComputeCustoms(p, e.ROEOrigin, e.ROEEUR)
		line := ProductTotals{
			Name:              p.Name,
			WeightKg:          p.WeightKg,
			InvoiceValue:      p.InvoiceValue,
			Customs:           customs,
			AllocatedShipping: shares[i],
			LandedCost:        Round2(shares[i] + customs.Duty + customs.Schedule1Duty),
		}
		if p.WeightKg > 0 {
			line.CostPerKg = Round2(line.LandedCost / p.WeightKg)
		}
		totals.Products[i] = line

		totals.TotalDuties = Round2(totals.TotalDuties + customs.Duty + customs.Schedule1Duty)
		totals.TotalImportVAT = Round2(totals.TotalImportVAT + customs.ImportVAT)
		totals.TotalLandedCost = Round2(totals.TotalLandedCost + line.LandedCost)
	}

	return totals
}

// ParseAmount parses a numeric form field. Unlike the silent zero fallback
// this replaces, a non-numeric value is an error the caller must surface.
// An empty string is valid and means zero (a cleared field).
func ParseAmount(field, value string) (float64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", field, value)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s: %q is not a finite number", field, value)
	}
	return v, nil
}
