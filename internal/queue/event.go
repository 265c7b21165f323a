package queue

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Event is the envelope published after a successful mutation.
type Event struct {
	ID         string    `json:"id"`
	Topic      string    `json:"topic"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

func NewEvent(topic string, data any) Event {
	return Event{
		ID:         uuid.NewString(),
		Topic:      topic,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

// Topic builds "<collection>.<action>" routing keys.
func Topic(collection, action string) string {
	return collection + "." + action
}

// StartEventLogger subscribes a handler that logs every event on the given
// patterns. It is the default consumer when no broker is configured.
func StartEventLogger(q Queue, patterns ...string) error {
	for _, p := range patterns {
		if err := q.Subscribe(p, logEvent); err != nil {
			return err
		}
	}
	return nil
}

func logEvent(payload any) error {
	switch ev := payload.(type) {
	case Event:
		slog.Info("📣 event", "topic", ev.Topic, "id", ev.ID, "occurred_at", ev.OccurredAt)
	case *Event:
		slog.Info("📣 event", "topic", ev.Topic, "id", ev.ID, "occurred_at", ev.OccurredAt)
	default:
		slog.Info("📣 event", "payload", payload)
	}
	return nil
}
