package model

// Forwarder identifies which freight forwarder a quote came from.
type Forwarder string

const (
	ForwarderDHL         Forwarder = "dhl"
	ForwarderDSV         Forwarder = "dsv"
	ForwarderAfrigistics Forwarder = "afrigistics"
)

// KnownForwarders lists every forwarder tab, in display order.
var KnownForwarders = []Forwarder{ForwarderDHL, ForwarderDSV, ForwarderAfrigistics}

// Valid reports whether the forwarder is one of the known set.
func (f Forwarder) Valid() bool {
	switch f {
	case ForwarderDHL, ForwarderDSV, ForwarderAfrigistics:
		return true
	}
	return false
}

// AnalysisStatus is the lifecycle of a quote document's price analysis.
type AnalysisStatus string

const (
	AnalysisPending    AnalysisStatus = "pending"
	AnalysisProcessing AnalysisStatus = "processing"
	AnalysisCompleted  AnalysisStatus = "completed"
	AnalysisFailed     AnalysisStatus = "failed"
)

// DetectedPrice is one currency amount found in the extracted quote text,
// with a snippet of the surrounding line for context.
type DetectedPrice struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Context  string  `json:"context"`
}

// QuoteDocument is a forwarder quote file stored as a blob plus this
// metadata row. Renaming changes FileName only; the object key is fixed at
// upload time.
type QuoteDocument struct {
	BaseModel
	Forwarder Forwarder `gorm:"type:varchar(20);column:forwarder;not null;index" json:"forwarder"`
	FileName  string    `gorm:"type:varchar(255);column:file_name;not null" json:"fileName"`
	ObjectKey string    `gorm:"type:varchar(512);column:object_key;not null;uniqueIndex" json:"objectKey"`
	Size      int64     `gorm:"column:size;not null" json:"size"`
	MimeType  string    `gorm:"type:varchar(100);column:mime_type" json:"mimeType"`

	AnalysisStatus AnalysisStatus  `gorm:"type:varchar(20);column:analysis_status;not null;default:pending" json:"analysisStatus"`
	ExtractedText  string          `gorm:"type:text;column:extracted_text" json:"extractedText,omitempty"`
	DetectedPrices []DetectedPrice `gorm:"type:jsonb;column:detected_prices;serializer:json" json:"detectedPrices,omitempty"`
	AnalysisError  string          `gorm:"type:text;column:analysis_error" json:"analysisError,omitempty"`
}

func (q *QuoteDocument) TableName() string {
	return "quote_documents"
}

// RenameDTO is the request body for renaming a quote document.
type RenameDTO struct {
	NewName string `json:"newName"`
}

// CompareRequestDTO selects the documents to compare by id.
type CompareRequestDTO struct {
	DocumentIDs []string `json:"documentIds"`
}
