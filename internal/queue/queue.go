// Package queue abstracts the notification job transport. Production uses
// SQS; tests and single-process deployments use the in-memory queue.
package queue

import "context"

// Message is a received queue entry.
type Message struct {
	ID            string
	Body          string
	ReceiptHandle string
}

// Client is the minimal queue contract shared by producers and the worker.
type Client interface {
	Send(ctx context.Context, body string) error
	Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]Message, error)
	Delete(ctx context.Context, receiptHandle string) error
}
