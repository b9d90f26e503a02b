package realtime

import (
	"context"
	"log"

	"gigspace/pkg/errors"
)

// ReadBackend persists a read transition. The realtime layer flips state
// optimistically and calls the backend to make it durable.
type ReadBackend interface {
	MarkRead(ctx context.Context, rec Record) error
}

// MarkRead flips a record to read, optimistically in the local store
// first, then durably through the backend. If the backend rejects the
// write the local flip is rolled back and an unavailable error returned,
// so the caller sees exactly the state the next full fetch would show.
// Marking an already-read record is a no-op.
func (m *Manager) MarkRead(ctx context.Context, topic Topic, id string) error {
	rec, ok := m.store.Get(topic, id)
	if !ok {
		return errors.NotFound("Record", nil)
	}
	if rec.Read {
		return nil
	}

	m.store.SetRead(topic, id)

	if err := m.backend.MarkRead(ctx, rec); err != nil {
		m.store.ClearRead(topic, id)
		log.Printf("MarkRead Error: rolling back read flag for %s on %s: %v", id, topic, err)
		return errors.Unavailable("Failed to persist read state", err)
	}

	m.notify(topic)
	return nil
}
