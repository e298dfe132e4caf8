package question

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type stubGenerator struct {
	mu      sync.Mutex
	prompts []string
	reply   string
	err     error
}

func (s *stubGenerator) Complete(_ context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func (s *stubGenerator) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

type memoryStore struct {
	mu        sync.Mutex
	items     map[string]Question
	order     []string
	insertErr error
	getErr    error
}

func newMemoryStore(seed ...Question) *memoryStore {
	s := &memoryStore{items: map[string]Question{}}
	for _, q := range seed {
		s.put(q)
	}
	return s
}

func (s *memoryStore) put(q Question) Question {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	s.items[q.ID] = q
	s.order = append(s.order, q.ID)
	return q
}

func (s *memoryStore) Insert(_ context.Context, q Question) (Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return Question{}, s.insertErr
	}
	return s.put(q), nil
}

func (s *memoryStore) Get(_ context.Context, id uuid.UUID) (Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return Question{}, s.getErr
	}
	q, ok := s.items[id.String()]
	if !ok {
		return Question{}, ErrQuestionNotFound
	}
	return q, nil
}

func (s *memoryStore) Random(_ context.Context) (Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return Question{}, s.getErr
	}
	if len(s.order) == 0 {
		return Question{}, ErrQuestionNotFound
	}
	return s.items[s.order[0]], nil
}

func (s *memoryStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

type memoryLedger struct {
	mu      sync.Mutex
	records map[string]StatsRecord
	err     error
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{records: map[string]StatsRecord{}}
}

func (l *memoryLedger) Increment(_ context.Context, email string, correct bool) (StatsRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return StatsRecord{}, l.err
	}
	rec := l.records[email]
	rec.Email = email
	rec.TotalAnswered++
	if correct {
		rec.Correct++
	} else {
		rec.Incorrect++
	}
	l.records[email] = rec
	return rec, nil
}

func (l *memoryLedger) get(email string) StatsRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.records[email]
}
