// Package memstore provides process-local implementations of the small
// store interfaces the personal-tier adapters (journal, task, health)
// depend on. Grounded on the in-memory repository pattern of
// Kaikei-e-Alt's InMemoryTokenRepository: a mutex-guarded map standing
// in for a real persistence layer, suitable for a single-process
// deployment or for development. A deployment wanting durable storage
// implements the same interfaces against a database and passes that in
// instead of these types.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"scrollfeed/internal/adapter"
)

// JournalStore is an in-memory adapter.JournalStore.
type JournalStore struct {
	mu      sync.Mutex
	entries map[string][]adapter.JournalEntry // keyed by user
}

// NewJournalStore returns an empty JournalStore.
func NewJournalStore() *JournalStore {
	return &JournalStore{entries: make(map[string][]adapter.JournalEntry)}
}

// Seed registers entries for user, oldest-appended-last order preserved.
func (s *JournalStore) Seed(user string, entries ...adapter.JournalEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[user] = append(s.entries[user], entries...)
}

func (s *JournalStore) ListEntries(ctx context.Context, user string, pageSize int, pageToken string) ([]adapter.JournalEntry, string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.entries[user]
	start := 0
	if pageToken != "" {
		n, err := parseOffset(pageToken)
		if err != nil {
			return nil, "", false, fmt.Errorf("memstore: bad page token %q: %w", pageToken, err)
		}
		start = n
	}
	if pageSize <= 0 {
		pageSize = len(all)
	}
	if start >= len(all) {
		return nil, "", false, nil
	}
	end := start + pageSize
	hasMore := end < len(all)
	if end > len(all) {
		end = len(all)
	}
	out := make([]adapter.JournalEntry, end-start)
	copy(out, all[start:end])

	next := ""
	if hasMore {
		next = formatOffset(end)
	}
	return out, next, hasMore, nil
}

func (s *JournalStore) GetEntry(ctx context.Context, user, id string) (*adapter.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries[user] {
		if e.ID == id {
			cp := e
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("memstore: journal entry %q not found for %q", id, user)
}

// TaskStore is an in-memory adapter.TaskStore.
type TaskStore struct {
	mu    sync.Mutex
	tasks map[string]map[string]adapter.Task // user -> id -> task
}

// NewTaskStore returns an empty TaskStore.
func NewTaskStore() *TaskStore {
	return &TaskStore{tasks: make(map[string]map[string]adapter.Task)}
}

// Seed registers open tasks for user.
func (s *TaskStore) Seed(user string, tasks ...adapter.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tasks[user] == nil {
		s.tasks[user] = make(map[string]adapter.Task)
	}
	for _, t := range tasks {
		s.tasks[user][t.ID] = t
	}
}

func (s *TaskStore) ListOpen(ctx context.Context, user string) ([]adapter.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]adapter.Task, 0, len(s.tasks[user]))
	for _, t := range s.tasks[user] {
		if t.Due.IsZero() || !t.Due.After(time.Now().Add(24*time.Hour)) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *TaskStore) Complete(ctx context.Context, user, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[user][id]; !ok {
		return fmt.Errorf("memstore: task %q not found for %q", id, user)
	}
	delete(s.tasks[user], id)
	return nil
}

func (s *TaskStore) Snooze(ctx context.Context, user, id string, until time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[user][id]
	if !ok {
		return fmt.Errorf("memstore: task %q not found for %q", id, user)
	}
	t.Due = until
	s.tasks[user][id] = t
	return nil
}

// HealthStore is an in-memory adapter.HealthStore.
type HealthStore struct {
	mu   sync.Mutex
	last map[string]adapter.HealthLog // "user\x00metric" -> last rating
}

// NewHealthStore returns an empty HealthStore.
func NewHealthStore() *HealthStore {
	return &HealthStore{last: make(map[string]adapter.HealthLog)}
}

func healthKey(user, metric string) string { return user + "\x00" + metric }

func (s *HealthStore) RecordRating(ctx context.Context, user, metric string, rating int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last[healthKey(user, metric)] = adapter.HealthLog{Timestamp: time.Now(), Metric: metric, Rating: rating}
	return nil
}

func (s *HealthStore) LastRating(ctx context.Context, user, metric string) (*adapter.HealthLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log, ok := s.last[healthKey(user, metric)]
	if !ok {
		return nil, nil
	}
	cp := log
	return &cp, nil
}

func parseOffset(token string) (int, error) {
	var n int
	_, err := fmt.Sscanf(token, "%d", &n)
	return n, err
}

func formatOffset(n int) string { return fmt.Sprintf("%d", n) }
