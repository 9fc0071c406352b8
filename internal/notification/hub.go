package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Publisher pushes bytes to a user's live connections.
type Publisher interface {
	Publish(userID uuid.UUID, data []byte)
}

// HubChannel forwards messages to connected websocket clients.
type HubChannel struct {
	hub Publisher
}

func NewHubChannel(hub Publisher) *HubChannel {
	return &HubChannel{hub: hub}
}

func (c *HubChannel) Name() string { return "websocket" }

func (c *HubChannel) Deliver(_ context.Context, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to serialize message: %w", err)
	}
	c.hub.Publish(msg.Recipient.UserID, data)
	return nil
}
