package realtime

import (
	"bytes"
	"sort"
	"sync"
)

// Store holds the per-topic logs. Logs are append-only and ordered by
// (CreatedAt, ID); a record id appears at most once per topic, so feed
// replays and backfill overlap are harmless.
type Store struct {
	mu    sync.RWMutex
	logs  map[Topic][]Record
	index map[Topic]map[string]int
}

func NewStore() *Store {
	return &Store{
		logs:  make(map[Topic][]Record),
		index: make(map[Topic]map[string]int),
	}
}

// Apply merges a record into its topic log. New ids are inserted at their
// ordered position; known ids are updated in place, with the read flag
// only ever moving false to true. It reports whether the record was newly
// inserted and whether anything visible changed.
func (s *Store) Apply(rec Record) (inserted, changed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.index[rec.Topic]
	if !ok {
		idx = make(map[string]int)
		s.index[rec.Topic] = idx
	}

	if pos, exists := idx[rec.ID]; exists {
		cur := &s.logs[rec.Topic][pos]
		if rec.Read && !cur.Read {
			cur.Read = true
			changed = true
		}
		if len(rec.Payload) > 0 && !bytes.Equal(rec.Payload, cur.Payload) {
			// Replacing the payload must not lose a read flag we already
			// saw; cur.Read stays as-is unless flipped above.
			cur.Payload = rec.Payload
			changed = true
		}
		return false, changed
	}

	log := s.logs[rec.Topic]
	pos := sort.Search(len(log), func(i int) bool {
		return rec.Before(log[i])
	})

	log = append(log, Record{})
	copy(log[pos+1:], log[pos:])
	log[pos] = rec
	s.logs[rec.Topic] = log

	idx[rec.ID] = pos
	for i := pos + 1; i < len(log); i++ {
		idx[log[i].ID] = i
	}

	return true, true
}

// SetRead flips a record's read flag to true. It reports whether the
// record exists; flipping an already-read record is a no-op.
func (s *Store) SetRead(topic Topic, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.position(topic, id)
	if !ok {
		return false
	}
	s.logs[topic][pos].Read = true
	return true
}

// ClearRead undoes an optimistic read flip after the backing store
// rejected it.
func (s *Store) ClearRead(topic Topic, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pos, ok := s.position(topic, id); ok {
		s.logs[topic][pos].Read = false
	}
}

func (s *Store) Get(topic Topic, id string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pos, ok := s.position(topic, id)
	if !ok {
		return Record{}, false
	}
	return s.logs[topic][pos], true
}

func (s *Store) Len(topic Topic) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.logs[topic])
}

// UnreadCount recomputes the number of unread records from the log itself
// rather than maintaining a counter, so it can never drift.
func (s *Store) UnreadCount(topic Topic) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, rec := range s.logs[topic] {
		if !rec.Read {
			n++
		}
	}
	return n
}

// Records returns an ordered copy of the topic log.
func (s *Store) Records(topic Topic) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, len(s.logs[topic]))
	copy(out, s.logs[topic])
	return out
}

// Snapshot captures the topic log for iteration. The snapshot is
// isolated from later appends and can be rewound and replayed.
func (s *Store) Snapshot(topic Topic) *Snapshot {
	return &Snapshot{records: s.Records(topic)}
}

// Drop discards a topic's log, typically on teardown of its last
// subscriber.
func (s *Store) Drop(topic Topic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.logs, topic)
	delete(s.index, topic)
}

func (s *Store) position(topic Topic, id string) (int, bool) {
	idx, ok := s.index[topic]
	if !ok {
		return 0, false
	}
	pos, ok := idx[id]
	return pos, ok
}

// Snapshot is a restartable iterator over a point-in-time copy of a
// topic log.
type Snapshot struct {
	records []Record
	pos     int
}

func (s *Snapshot) Len() int {
	return len(s.records)
}

// Next returns the next record in order, or false when exhausted.
func (s *Snapshot) Next() (Record, bool) {
	if s.pos >= len(s.records) {
		return Record{}, false
	}
	rec := s.records[s.pos]
	s.pos++
	return rec, true
}

// Reset rewinds the snapshot to its first record.
func (s *Snapshot) Reset() {
	s.pos = 0
}
