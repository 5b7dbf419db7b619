package service

import (
	"context"
	"encoding/json"
	"time"

	"marketplace-wallet/internal/core/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const notifyTimeout = 5 * time.Second

// NotificationService implements ports.Notifier over a queue. Delivery is
// fire-and-forget: settlement and withdrawals never wait on it and never see
// its errors.
type NotificationService struct {
	queue ports.NotificationQueue
	log   zerolog.Logger
}

// NewNotificationService creates a queue-backed notifier.
func NewNotificationService(queue ports.NotificationQueue, log zerolog.Logger) *NotificationService {
	return &NotificationService{queue: queue, log: log}
}

type notification struct {
	UserID    uuid.UUID `json:"user_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// Notify enqueues a notification asynchronously. The enqueue runs detached
// from the caller's context lifetime so a finished request does not cancel
// an in-flight publish.
func (s *NotificationService) Notify(ctx context.Context, userID uuid.UUID, title, body string) {
	payload, err := json.Marshal(notification{
		UserID:    userID,
		Title:     title,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		s.log.Error().Err(err).Msg("failed to marshal notification")
		return
	}

	detached := context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(detached, notifyTimeout)
		defer cancel()
		if err := s.queue.Enqueue(ctx, payload); err != nil {
			s.log.Error().
				Err(err).
				Str("user_id", userID.String()).
				Str("title", title).
				Msg("failed to enqueue notification")
		}
	}()
}
