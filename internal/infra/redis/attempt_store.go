package redis

import (
	"context"
	"sync"
	"time"

	"classroom-quiz-service/internal/app"
	"github.com/redis/go-redis/v9"
)

// AttemptStore is a Redis-aware implementation of app.AttemptRepository.
// Notes:
//   - Attempts (answers, countdown, subscribers) stay in a local map; only the
//     process that started an attempt can drive its timer.
//   - Redis marks which attempts are live so other instances can see them.
type AttemptStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	attempts map[string]*app.Attempt
}

func NewAttemptStore(client *redis.Client, ttl time.Duration) *AttemptStore {
	return &AttemptStore{
		client:   client,
		ttl:      ttl,
		attempts: make(map[string]*app.Attempt),
	}
}

func (s *AttemptStore) GetOrCreate(key string, create func() *app.Attempt) (*app.Attempt, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if attempt, ok := s.attempts[key]; ok {
		return attempt, false
	}
	attempt := create()
	s.attempts[key] = attempt
	// best-effort liveness marker, outliving the countdown by ttl
	ttl := s.ttl + time.Duration(attempt.Quiz().CountdownSeconds())*time.Second
	_ = s.client.Set(context.Background(), s.key(key), attempt.Quiz().ID, ttl).Err()
	return attempt, true
}

func (s *AttemptStore) Get(key string) (*app.Attempt, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	attempt, ok := s.attempts[key]
	return attempt, ok
}

func (s *AttemptStore) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.attempts[key]; !ok {
		return
	}
	delete(s.attempts, key)
	_ = s.client.Del(context.Background(), s.key(key)).Err()
}

// Live reports whether any instance holds the attempt open.
func (s *AttemptStore) Live(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *AttemptStore) key(key string) string {
	return "quiz:attempt:" + key
}
