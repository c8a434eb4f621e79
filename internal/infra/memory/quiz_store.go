package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"classroom-quiz-service/internal/domain"
)

// QuizStore is an in-memory quiz collection (useful for tests/demos).
type QuizStore struct {
	mu      sync.RWMutex
	quizzes map[string]domain.Quiz
}

// NewQuizStore seeds the store with the given quizzes.
func NewQuizStore(seed ...domain.Quiz) *QuizStore {
	s := &QuizStore{quizzes: make(map[string]domain.Quiz, len(seed))}
	for _, quiz := range seed {
		s.quizzes[quiz.ID] = cloneQuiz(quiz)
	}
	return s
}

func (s *QuizStore) LoadQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if quiz, ok := s.quizzes[quizID]; ok {
		return cloneQuiz(quiz), nil
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}

func (s *QuizStore) CreateQuiz(_ context.Context, quiz domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[quiz.ID]; ok {
		return fmt.Errorf("create quiz: id %q already exists", quiz.ID)
	}
	s.quizzes[quiz.ID] = cloneQuiz(quiz)
	return nil
}

func (s *QuizStore) SaveQuestions(_ context.Context, quizID string, questions []domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz, ok := s.quizzes[quizID]
	if !ok {
		return domain.ErrQuizNotFound
	}
	quiz.Questions = copyQuestions(questions)
	s.quizzes[quizID] = quiz
	return nil
}

func (s *QuizStore) DeleteQuiz(_ context.Context, quizID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[quizID]; !ok {
		return domain.ErrQuizNotFound
	}
	delete(s.quizzes, quizID)
	return nil
}

// ListQuizzes returns the classroom's quizzes, newest first.
func (s *QuizStore) ListQuizzes(_ context.Context, classroomID string) ([]domain.Quiz, error) {
	s.mu.RLock()
	out := make([]domain.Quiz, 0)
	for _, quiz := range s.quizzes {
		if quiz.ClassroomID == classroomID {
			out = append(out, cloneQuiz(quiz))
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func cloneQuiz(quiz domain.Quiz) domain.Quiz {
	quiz.Questions = copyQuestions(quiz.Questions)
	if quiz.TimeLimit != nil {
		limit := *quiz.TimeLimit
		quiz.TimeLimit = &limit
	}
	return quiz
}

func copyQuestions(questions []domain.Question) []domain.Question {
	if questions == nil {
		return nil
	}
	out := make([]domain.Question, len(questions))
	for i, q := range questions {
		q.Options = append([]domain.Option(nil), q.Options...)
		out[i] = q
	}
	return out
}
