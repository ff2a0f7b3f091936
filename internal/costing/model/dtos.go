package model

// EstimateFormDTO is the request body for creating or updating an estimate.
// Numeric fields arrive as strings straight from form inputs; the service
// parses them and rejects non-numeric values with a field-keyed error list
// instead of silently coercing to zero. A nil or empty string clears the
// field.
type EstimateFormDTO struct {
	ReferenceNumber string         `json:"referenceNumber"`
	Status          EstimateStatus `json:"status"`
	Supplier        string         `json:"supplier"`
	Notes           string         `json:"notes"`

	ROEOrigin string `json:"roeOrigin"`
	ROEEUR    string `json:"roeEur"`

	AgencyFeePercent *string `json:"agencyFeePercent,omitempty"`
	AgencyFeeMinimum *string `json:"agencyFeeMinimum,omitempty"`

	OriginCharges       ChargeSetFormDTO `json:"originCharges"`
	OceanFreightCharges ChargeSetFormDTO `json:"oceanFreightCharges"`
	LocalCharges        ChargeSetFormDTO `json:"localCharges"`
	DestinationCharges  ChargeSetFormDTO `json:"destinationCharges"`

	Products []ProductFormDTO `json:"products"`
}

// ChargeSetFormDTO mirrors ChargeSet with raw string amounts.
type ChargeSetFormDTO struct {
	USD string `json:"usd"`
	EUR string `json:"eur"`
	ZAR string `json:"zar"`
}

// ProductFormDTO mirrors Product with raw string amounts. InvoiceValue is
// absent on purpose: it is always derived from weight and rate.
type ProductFormDTO struct {
	Name             string   `json:"name"`
	WeightKg         string   `json:"weightKg"`
	RatePerKg        string   `json:"ratePerKg"`
	Currency         Currency `json:"currency"`
	DutyPct          string   `json:"dutyPct"`
	DutySchedule1Pct string   `json:"dutySchedule1Pct"`
}

// FieldError is one entry of the validation error array surfaced inline by
// the estimate form.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// SendEmailDTO is the request body for mailing an estimate summary.
type SendEmailDTO struct {
	Recipient string `json:"recipient"`
}
