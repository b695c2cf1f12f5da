// Package events publishes domain events for downstream consumers such as
// push notification workers.
package events

import (
	"context"
	"time"
)

const QueueMessageSent = "message.sent"

// MessageSent is emitted once per committed paid send.
type MessageSent struct {
	PaymentRequestID string    `json:"payment_request_id"`
	TransactionID    string    `json:"transaction_id"`
	SenderID         string    `json:"sender_id"`
	RecipientIDs     []string  `json:"recipient_ids"`
	MessageIDs       []string  `json:"message_ids"`
	FileType         string    `json:"file_type"`
	CostMinor        int64     `json:"cost_minor"`
	SentAt           time.Time `json:"sent_at"`
}

type Publisher interface {
	PublishMessageSent(ctx context.Context, event MessageSent) error
}

type Noop struct{}

func (Noop) PublishMessageSent(context.Context, MessageSent) error { return nil }
