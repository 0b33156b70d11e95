// Package events carries map notices to other systems.
package events

import (
	"context"
	"time"
)

// NoticeEvent is the message published when a reconciliation pass degrades.
type NoticeEvent struct {
	Type       string    `json:"type"`
	AgentID    string    `json:"agent_id"`
	OrderID    string    `json:"order_id,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	Message    string    `json:"message"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher delivers notice events.
type Publisher interface {
	Publish(ctx context.Context, evt NoticeEvent) error
}
