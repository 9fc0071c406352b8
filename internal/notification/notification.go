// Package notification delivers workflow events to people after the
// originating transaction has committed. Delivery is best-effort.
package notification

//go:generate mockgen -source=notification.go -destination=mocks/mocks.go -package=mocks Gateway,Directory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Event names a workflow occurrence worth telling someone about.
type Event string

const (
	EventReviewRequested       Event = "compliance.review_requested"
	EventDecisionRecorded      Event = "compliance.decision_recorded"
	EventResubmitted           Event = "compliance.resubmitted"
	EventActiveVersionChanged  Event = "compliance.active_version_changed"
	EventDeactivationRequested Event = "compliance.deactivation_requested"
	EventDeactivationDecided   Event = "compliance.deactivation_decided"
)

// ErrQueueFull is returned by Send when the message was dropped.
var ErrQueueFull = errors.New("notification queue is full")

// ErrClosed is returned by Send after the dispatcher shut down.
var ErrClosed = errors.New("notification dispatcher is closed")

// Recipient is a resolved user.
type Recipient struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email,omitempty"`
	Name   string    `json:"name,omitempty"`
}

// Message is what channels deliver.
type Message struct {
	Event     Event          `json:"event"`
	Recipient Recipient      `json:"recipient"`
	Payload   map[string]any `json:"payload"`
	SentAt    time.Time      `json:"sent_at"`
}

// Gateway accepts notifications without blocking the caller.
type Gateway interface {
	Send(ctx context.Context, event Event, recipientID uuid.UUID, payload map[string]any) error
}

// Directory resolves user ids to contact details.
type Directory interface {
	Resolve(ctx context.Context, userID uuid.UUID) (Recipient, error)
}

// Channel is one delivery medium.
type Channel interface {
	Name() string
	Deliver(ctx context.Context, msg Message) error
}
