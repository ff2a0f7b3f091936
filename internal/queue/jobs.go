package queue

import (
	"context"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/hibiken/asynq"
)

const (
	// ExtractQuoteTask is scheduled when a forwarder quote PDF is sent for
	// price analysis.
	ExtractQuoteTask = "quote:extract"

	// SendEstimateEmailTask is scheduled when a cost estimate summary is
	// mailed to a recipient.
	SendEstimateEmailTask = "estimate:email"
)

// ExtractQuotePayload tells the worker which stored document to analyze.
type ExtractQuotePayload struct {
	DocumentID string `json:"document_id"`
	ObjectKey  string `json:"object_key"`
	FileName   string `json:"file_name"`
}

// SendEstimateEmailPayload tells the worker which estimate to mail and to
// whom.
type SendEstimateEmailPayload struct {
	EstimateID string `json:"estimate_id"`
	Recipient  string `json:"recipient"`
}

// EnqueueExtractQuote enqueues a quote text extraction job.
func EnqueueExtractQuote(ctx context.Context, client *asynq.Client, payload ExtractQuotePayload) error {
	return enqueue(ctx, client, ExtractQuoteTask, payload)
}

// EnqueueSendEstimateEmail enqueues an estimate email job.
func EnqueueSendEstimateEmail(ctx context.Context, client *asynq.Client, payload SendEstimateEmailPayload) error {
	return enqueue(ctx, client, SendEstimateEmailTask, payload)
}

func enqueue(ctx context.Context, client *asynq.Client, taskType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", taskType, err)
	}
	task := asynq.NewTask(taskType, data)
	if _, err := client.EnqueueContext(ctx, task, asynq.MaxRetry(5)); err != nil {
		return fmt.Errorf("enqueue %s task: %w", taskType, err)
	}
	return nil
}
