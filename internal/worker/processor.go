package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	json "github.com/goccy/go-json"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"

	"github.com/cargodesk/cargodesk/internal/costing/calc"
	costingModel "github.com/cargodesk/cargodesk/internal/costing/model"
	"github.com/cargodesk/cargodesk/internal/pdfutil"
	"github.com/cargodesk/cargodesk/internal/queue"
	quoteModel "github.com/cargodesk/cargodesk/internal/quotes/model"
	"github.com/cargodesk/cargodesk/internal/storage"
)

// Processor is plugged into the asynq worker loop. It carries everything
// the background jobs need: the database, blob storage, outgoing mail and
// the costing defaults used to render estimate summaries.
type Processor struct {
	db       *gorm.DB
	store    storage.Driver
	mailer   *Mailer
	defaults calc.Defaults
	logger   *slog.Logger
}

func NewProcessor(db *gorm.DB, store storage.Driver, mailer *Mailer, defaults calc.Defaults, logger *slog.Logger) *Processor {
	return &Processor{db: db, store: store, mailer: mailer, defaults: defaults, logger: logger}
}

// Handler registers all job handlers.
func (p *Processor) Handler() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.ExtractQuoteTask, p.handleExtractQuote)
	mux.HandleFunc(queue.SendEstimateEmailTask, p.handleSendEstimateEmail)
	return mux
}

func (p *Processor) handleExtractQuote(ctx context.Context, task *asynq.Task) error {
	var payload queue.ExtractQuotePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	failure := func(err error) error {
		p.logger.Error("quote analysis failed",
			"documentID", payload.DocumentID,
			"error", err)
		p.markAnalysisFailed(ctx, payload.DocumentID, err.Error())
		return err
	}

	body, _, err := p.store.Get(ctx, payload.ObjectKey)
	if err != nil {
		return failure(fmt.Errorf("download quote file: %w", err))
	}
	defer body.Close()

	text, err := pdfutil.ExtractFromReader(body)
	if err != nil {
		return failure(fmt.Errorf("extract text: %w", err))
	}
	prices := DetectPrices(text)

	var doc quoteModel.QuoteDocument
	if err := p.db.WithContext(ctx).First(&doc, "id = ?", payload.DocumentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Deleted while the job was queued; nothing to record
			p.logger.Warn("quote document gone before analysis", "documentID", payload.DocumentID)
			return nil
		}
		return failure(fmt.Errorf("load quote document: %w", err))
	}
	doc.AnalysisStatus = quoteModel.AnalysisCompleted
	doc.ExtractedText = text
	doc.DetectedPrices = prices
	doc.AnalysisError = ""
	if err := p.db.WithContext(ctx).Save(&doc).Error; err != nil {
		return failure(fmt.Errorf("store analysis: %w", err))
	}

	p.logger.Info("quote analyzed",
		"documentID", payload.DocumentID,
		"fileName", payload.FileName,
		"textBytes", len(text),
		"pricesFound", len(prices))
	return nil
}

func (p *Processor) handleSendEstimateEmail(ctx context.Context, task *asynq.Task) error {
	var payload queue.SendEstimateEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	var estimate costingModel.CostEstimate
	err := p.db.WithContext(ctx).First(&estimate, "id = ?", payload.EstimateID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// The estimate was deleted after enqueueing; nothing to retry
			p.logger.Warn("estimate gone before mail delivery", "estimateID", payload.EstimateID)
			return nil
		}
		return fmt.Errorf("load estimate: %w", err)
	}

	totals := calc.CalculateAllTotals(&estimate, p.defaults)
	if err := p.mailer.SendEstimate(payload.Recipient, &estimate, totals); err != nil {
		p.logger.Error("estimate mail failed",
			"estimateID", payload.EstimateID,
			"recipient", payload.Recipient,
			"error", err)
		return err
	}

	p.logger.Info("estimate mailed",
		"estimateID", payload.EstimateID,
		"recipient", payload.Recipient)
	return nil
}

func (p *Processor) markAnalysisFailed(ctx context.Context, documentID, reason string) {
	err := p.db.WithContext(ctx).Model(&quoteModel.QuoteDocument{}).
		Where("id = ?", documentID).
		Updates(map[string]any{
			"analysis_status": quoteModel.AnalysisFailed,
			"analysis_error":  reason,
		}).Error
	if err != nil {
		p.logger.Error("failed to record analysis failure",
			"documentID", documentID,
			"error", err)
	}
}
