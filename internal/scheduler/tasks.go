package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskInvoiceDeliver = "invoices.deliver"

// InvoiceDeliverPayload identifies a quote whose invoice should be
// rendered and emailed. SessionID lets the worker reuse the requesting
// user's upstream token to fetch a fresh copy of the quote; when the
// session is gone by the time the task runs, the worker falls back to
// the cached snapshot.
type InvoiceDeliverPayload struct {
	QuoteID   string `json:"quoteId"`
	SessionID string `json:"sessionId"`
}

func NewInvoiceDeliverTask(payload InvoiceDeliverPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskInvoiceDeliver, data), nil
}

func ParseInvoiceDeliverPayload(task *asynq.Task) (InvoiceDeliverPayload, error) {
	var payload InvoiceDeliverPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return InvoiceDeliverPayload{}, err
	}
	return payload, nil
}
