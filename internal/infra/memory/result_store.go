package memory

import (
	"context"
	"sort"
	"sync"

	"classroom-quiz-service/internal/domain"
)

// ResultStore keeps quiz results keyed by their derived id.
type ResultStore struct {
	mu      sync.RWMutex
	results map[string]domain.QuizResult
}

func NewResultStore() *ResultStore {
	return &ResultStore{results: make(map[string]domain.QuizResult)}
}

func (s *ResultStore) GetResult(_ context.Context, resultID string) (domain.QuizResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.results[resultID]
	if !ok {
		return domain.QuizResult{}, domain.ErrResultNotFound
	}
	return cloneResult(result), nil
}

func (s *ResultStore) CreateResult(_ context.Context, result domain.QuizResult) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.results[result.ID]; ok {
		return false, nil
	}
	s.results[result.ID] = cloneResult(result)
	return true, nil
}

func (s *ResultStore) PutResult(_ context.Context, result domain.QuizResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[result.ID] = cloneResult(result)
	return nil
}

// ListResults returns the quiz's results in submission order.
func (s *ResultStore) ListResults(_ context.Context, quizID string) ([]domain.QuizResult, error) {
	s.mu.RLock()
	out := make([]domain.QuizResult, 0)
	for _, result := range s.results {
		if result.QuizID == quizID {
			out = append(out, cloneResult(result))
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].SubmittedAt.Before(out[j].SubmittedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *ResultStore) DeleteResults(_ context.Context, quizID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, result := range s.results {
		if result.QuizID == quizID {
			delete(s.results, id)
		}
	}
	return nil
}

func cloneResult(result domain.QuizResult) domain.QuizResult {
	result.Answers = result.Answers.Clone()
	return result
}
