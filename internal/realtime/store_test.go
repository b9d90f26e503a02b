package realtime_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gigspace/internal/realtime"
)

func rec(topic realtime.Topic, id string, at time.Time, read bool) realtime.Record {
	payload, _ := json.Marshal(map[string]string{"id": id})
	return realtime.Record{
		Kind:      realtime.KindMessage,
		ID:        id,
		Topic:     topic,
		Read:      read,
		CreatedAt: at,
		Payload:   payload,
	}
}

func ids(records []realtime.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func TestStoreAppendOrdersByCreatedAtThenID(t *testing.T) {
	store := realtime.NewStore()
	topic := realtime.ConversationTopic("c1")
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	store.Apply(rec(topic, "m3", base.Add(2*time.Second), false))
	store.Apply(rec(topic, "m1", base, false))
	store.Apply(rec(topic, "m2", base.Add(time.Second), false))
	// Same timestamp as m2; id breaks the tie.
	store.Apply(rec(topic, "m2a", base.Add(time.Second), false))

	assert.Equal(t, []string{"m1", "m2", "m2a", "m3"}, ids(store.Records(topic)))
}

func TestStoreApplyDedupesByID(t *testing.T) {
	store := realtime.NewStore()
	topic := realtime.ConversationTopic("c1")
	now := time.Now()

	inserted, changed := store.Apply(rec(topic, "m1", now, false))
	assert.True(t, inserted)
	assert.True(t, changed)

	inserted, changed = store.Apply(rec(topic, "m1", now, false))
	assert.False(t, inserted)
	assert.False(t, changed)
	assert.Equal(t, 1, store.Len(topic))
}

func TestStoreReadFlagIsMonotonic(t *testing.T) {
	store := realtime.NewStore()
	topic := realtime.ConversationTopic("c1")
	now := time.Now()

	store.Apply(rec(topic, "m1", now, false))
	store.Apply(rec(topic, "m1", now, true))

	got, ok := store.Get(topic, "m1")
	require.True(t, ok)
	assert.True(t, got.Read)

	// A stale unread copy of the same row must not clear the flag.
	_, changed := store.Apply(rec(topic, "m1", now, false))
	assert.False(t, changed)
	got, _ = store.Get(topic, "m1")
	assert.True(t, got.Read)
}

func TestStoreUnreadCountMatchesLog(t *testing.T) {
	store := realtime.NewStore()
	topic := realtime.NotificationTopic("u1")
	base := time.Now()

	store.Apply(rec(topic, "n1", base, false))
	store.Apply(rec(topic, "n2", base.Add(time.Second), true))
	store.Apply(rec(topic, "n3", base.Add(2*time.Second), false))
	assert.Equal(t, 2, store.UnreadCount(topic))

	store.SetRead(topic, "n1")
	assert.Equal(t, 1, store.UnreadCount(topic))

	store.ClearRead(topic, "n1")
	assert.Equal(t, 2, store.UnreadCount(topic))
}

func TestStoreSnapshotIsIsolatedAndRestartable(t *testing.T) {
	store := realtime.NewStore()
	topic := realtime.ConversationTopic("c1")
	base := time.Now()

	store.Apply(rec(topic, "m1", base, false))
	store.Apply(rec(topic, "m2", base.Add(time.Second), false))

	snap := store.Snapshot(topic)
	require.Equal(t, 2, snap.Len())

	// Appending after the snapshot must not show up in it.
	store.Apply(rec(topic, "m3", base.Add(2*time.Second), false))
	assert.Equal(t, 2, snap.Len())

	first, ok := snap.Next()
	require.True(t, ok)
	assert.Equal(t, "m1", first.ID)

	snap.Reset()
	first, ok = snap.Next()
	require.True(t, ok)
	assert.Equal(t, "m1", first.ID)

	second, ok := snap.Next()
	require.True(t, ok)
	assert.Equal(t, "m2", second.ID)

	_, ok = snap.Next()
	assert.False(t, ok)
}

func TestStoreDropDiscardsTopic(t *testing.T) {
	store := realtime.NewStore()
	topic := realtime.ConversationTopic("c1")

	store.Apply(rec(topic, "m1", time.Now(), false))
	store.Drop(topic)

	assert.Equal(t, 0, store.Len(topic))
	_, ok := store.Get(topic, "m1")
	assert.False(t, ok)
}
