package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"

	"github.com/cargodesk/cargodesk/internal/queue"
	"github.com/cargodesk/cargodesk/internal/quotes/model"
	"github.com/cargodesk/cargodesk/internal/storage"
)

const quotePrefix = "quotes/"

var (
	// ErrQuoteNotFound is returned when the document does not exist under
	// the given forwarder.
	ErrQuoteNotFound = errors.New("quote document not found")
	// ErrUnknownForwarder is returned for a forwarder outside the known set.
	ErrUnknownForwarder = errors.New("unknown forwarder")
)

// ValidationError marks a rejected request. Routers map it to 422.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// QuoteService stores forwarder quote files behind the storage driver and
// their metadata rows in Postgres. Analysis itself runs in the worker.
type QuoteService struct {
	db    *gorm.DB
	store storage.Driver
	queue *asynq.Client
}

func NewQuoteService(db *gorm.DB, store storage.Driver, queueClient *asynq.Client) *QuoteService {
	return &QuoteService{db: db, store: store, queue: queueClient}
}

// Upload stores the file content and creates the metadata row with analysis
// pending.
func (s *QuoteService) Upload(ctx context.Context, forwarder model.Forwarder, fileName, mimeType string, size int64, content io.Reader) (*model.QuoteDocument, error) {
	if !forwarder.Valid() {
		return nil, ErrUnknownForwarder
	}
	fileName = strings.TrimSpace(path.Base(fileName))
	if fileName == "" || fileName == "." {
		return nil, validationErrorf("file name is required")
	}

	doc := &model.QuoteDocument{
		Forwarder:      forwarder,
		FileName:       fileName,
		Size:           size,
		MimeType:       mimeType,
		AnalysisStatus: model.AnalysisPending,
	}
	doc.ID = uuid.New()
	doc.ObjectKey = fmt.Sprintf("%s%s/%s%s", quotePrefix, forwarder, doc.ID, path.Ext(fileName))

	if err := s.store.Save(ctx, doc.ObjectKey, content, mimeType); err != nil {
		return nil, fmt.Errorf("failed to store quote file: %w", err)
	}
	if err := s.db.WithContext(ctx).Create(doc).Error; err != nil {
		// Roll the blob back so storage does not accumulate orphans
		_ = s.store.Delete(ctx, doc.ObjectKey)
		return nil, fmt.Errorf("failed to create quote document: %w", err)
	}
	return doc, nil
}

// List returns one forwarder's documents, newest first.
func (s *QuoteService) List(ctx context.Context, forwarder model.Forwarder) ([]model.QuoteDocument, error) {
	if !forwarder.Valid() {
		return nil, ErrUnknownForwarder
	}
	var docs []model.QuoteDocument
	err := s.db.WithContext(ctx).
		Where("forwarder = ?", forwarder).
		Order("created_at DESC").
		Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list quote documents: %w", err)
	}
	return docs, nil
}

// Rename changes the display file name. The stored object key is untouched.
func (s *QuoteService) Rename(ctx context.Context, forwarder model.Forwarder, id uuid.UUID, newName string) (*model.QuoteDocument, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, validationErrorf("new name cannot be empty")
	}
	doc, err := s.get(ctx, forwarder, id)
	if err != nil {
		return nil, err
	}
	if path.Ext(newName) == "" {
		newName += path.Ext(doc.FileName)
	}
	doc.FileName = newName
	if err := s.db.WithContext(ctx).Save(doc).Error; err != nil {
		return nil, fmt.Errorf("failed to rename quote document: %w", err)
	}
	return doc, nil
}

// Delete removes the blob and the metadata row.
func (s *QuoteService) Delete(ctx context.Context, forwarder model.Forwarder, id uuid.UUID) error {
	doc, err := s.get(ctx, forwarder, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, doc.ObjectKey); err != nil {
		return fmt.Errorf("failed to delete quote file: %w", err)
	}
	if err := s.db.WithContext(ctx).Delete(doc).Error; err != nil {
		return fmt.Errorf("failed to delete quote document: %w", err)
	}
	return nil
}

// Download streams the stored file back along with its metadata.
func (s *QuoteService) Download(ctx context.Context, forwarder model.Forwarder, id uuid.UUID) (io.ReadCloser, *model.QuoteDocument, error) {
	doc, err := s.get(ctx, forwarder, id)
	if err != nil {
		return nil, nil, err
	}
	body, _, err := s.store.Get(ctx, doc.ObjectKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read quote file: %w", err)
	}
	return body, doc, nil
}

// Analyze marks the document processing and hands it to the worker. A
// document already being processed is not queued twice.
func (s *QuoteService) Analyze(ctx context.Context, forwarder model.Forwarder, id uuid.UUID) (*model.QuoteDocument, error) {
	doc, err := s.get(ctx, forwarder, id)
	if err != nil {
		return nil, err
	}
	if doc.AnalysisStatus == model.AnalysisProcessing {
		return nil, validationErrorf("analysis is already in progress for %q", doc.FileName)
	}

	doc.AnalysisStatus = model.AnalysisProcessing
	doc.AnalysisError = ""
	if err := s.db.WithContext(ctx).Save(doc).Error; err != nil {
		return nil, fmt.Errorf("failed to update quote document: %w", err)
	}

	err = queue.EnqueueExtractQuote(ctx, s.queue, queue.ExtractQuotePayload{
		DocumentID: doc.ID.String(),
		ObjectKey:  doc.ObjectKey,
		FileName:   doc.FileName,
	})
	if err != nil {
		doc.AnalysisStatus = model.AnalysisFailed
		doc.AnalysisError = "failed to queue analysis"
		_ = s.db.WithContext(ctx).Save(doc).Error
		return nil, err
	}
	return doc, nil
}

// Compare loads the selected documents and builds the comparison report.
// Only documents with a completed analysis participate.
func (s *QuoteService) Compare(ctx context.Context, ids []uuid.UUID) (*ComparisonReport, error) {
	if len(ids) < 2 {
		return nil, validationErrorf("select at least two documents to compare")
	}
	var docs []model.QuoteDocument
	err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load quote documents: %w", err)
	}
	if len(docs) != len(ids) {
		return nil, ErrQuoteNotFound
	}
	for _, doc := range docs {
		if doc.AnalysisStatus != model.AnalysisCompleted {
			return nil, validationErrorf("%q has no completed analysis", doc.FileName)
		}
	}
	report := BuildComparison(docs)
	return &report, nil
}

func (s *QuoteService) get(ctx context.Context, forwarder model.Forwarder, id uuid.UUID) (*model.QuoteDocument, error) {
	if !forwarder.Valid() {
		return nil, ErrUnknownForwarder
	}
	var doc model.QuoteDocument
	err := s.db.WithContext(ctx).
		First(&doc, "id = ? AND forwarder = ?", id, forwarder).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to query quote document: %w", err)
	}
	return &doc, nil
}
