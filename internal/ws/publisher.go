package ws

import (
	"context"
	"encoding/json"
	"time"

	"taskboard/internal/domain"
)

// notificationEvent is the frame pushed to connected clients.
type notificationEvent struct {
	Type         string               `json:"type"`
	Notification *domain.Notification `json:"notification"`
	SentAt       time.Time            `json:"sentAt"`
}

// Publisher fans a stored notification out to the recipient's live
// connections. Satisfies service.Publisher.
type Publisher struct {
	hub *Hub
}

func NewPublisher(hub *Hub) *Publisher {
	return &Publisher{hub: hub}
}

func (p *Publisher) Publish(_ context.Context, n *domain.Notification) error {
	msg, err := json.Marshal(notificationEvent{
		Type:         "notification",
		Notification: n,
		SentAt:       time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	p.hub.Send(n.RecipientUserID, msg)
	return nil
}
