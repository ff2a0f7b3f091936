package model

import (
	"time"
)

// EstimateStatus is the lifecycle of a cost estimate.
type EstimateStatus string

const (
	EstimateStatusDraft    EstimateStatus = "draft"
	EstimateStatusFinal    EstimateStatus = "final"
	EstimateStatusArchived EstimateStatus = "archived"
)

// Currency identifies the currency a product is invoiced in.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyZAR Currency = "ZAR"
)

// ChargeSet groups one category of shipping charges by the currency they
// were quoted in. Conversion to ZAR happens in the calc package.
type ChargeSet struct {
	USD float64 `json:"usd"`
	EUR float64 `json:"eur"`
	ZAR float64 `json:"zar"`
}

// Product is one line item of an FCL estimate. InvoiceValue is maintained as
// WeightKg * RatePerKg on every write, never entered directly.
type Product struct {
	Name             string   `json:"name"`
	WeightKg         float64  `json:"weightKg"`
	RatePerKg        float64  `json:"ratePerKg"`
	InvoiceValue     float64  `json:"invoiceValue"`
	Currency         Currency `json:"currency"`
	DutyPct          float64  `json:"dutyPct"`
	DutySchedule1Pct float64  `json:"dutySchedule1Pct"`
}

// CostEstimate is a shipment-independent FCL import costing record. Charges
// and products are stored raw; every derived figure is recomputed from them
// on read.
type CostEstimate struct {
	BaseModel
	ReferenceNumber string         `gorm:"type:varchar(50);column:reference_number;not null;uniqueIndex" json:"referenceNumber"`
	Status          EstimateStatus `gorm:"type:varchar(20);column:status;not null" json:"status"`
	Supplier        string         `gorm:"type:varchar(255);column:supplier" json:"supplier"`
	Notes           string         `gorm:"type:text;column:notes" json:"notes"`

	// Two independently entered rates of exchange: USD and EUR to ZAR.
	ROEOrigin float64 `gorm:"column:roe_origin" json:"roeOrigin"`
	ROEEUR    float64 `gorm:"column:roe_eur" json:"roeEur"`

	AgencyFeePercent *float64 `gorm:"column:agency_fee_percent" json:"agencyFeePercent,omitempty"`
	AgencyFeeMinimum *float64 `gorm:"column:agency_fee_minimum" json:"agencyFeeMinimum,omitempty"`

	OriginCharges       ChargeSet `gorm:"type:jsonb;column:origin_charges;serializer:json" json:"originCharges"`
	OceanFreightCharges ChargeSet `gorm:"type:jsonb;column:ocean_freight_charges;serializer:json" json:"oceanFreightCharges"`
	LocalCharges        ChargeSet `gorm:"type:jsonb;column:local_charges;serializer:json" json:"localCharges"`
	DestinationCharges  ChargeSet `gorm:"type:jsonb;column:destination_charges;serializer:json" json:"destinationCharges"`

	Products []Product `gorm:"type:jsonb;column:products;serializer:json" json:"products"`
}

func (e *CostEstimate) TableName() string {
	return "cost_estimates"
}

// Supplier is a reusable supplier record for the costing forms.
type Supplier struct {
	BaseModel
	Name    string `gorm:"type:varchar(255);column:name;not null;uniqueIndex" json:"name"`
	Country string `gorm:"type:varchar(100);column:country" json:"country"`
	Email   string `gorm:"type:varchar(255);column:email" json:"email"`
}

func (s *Supplier) TableName() string {
	return "suppliers"
}

// ExchangeRate is the cached result of the external rate feed.
type ExchangeRate struct {
	Currency  Currency  `gorm:"type:varchar(10);column:currency;primaryKey" json:"currency"`
	Rate      float64   `gorm:"column:rate;not null" json:"rate"`
	FetchedAt time.Time `gorm:"type:timestamptz;column:fetched_at;not null" json:"fetchedAt"`
}

func (e *ExchangeRate) TableName() string {
	return "exchange_rates"
}
