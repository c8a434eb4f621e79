package memory

import (
	"testing"

	"classroom-quiz-service/internal/app"
	"classroom-quiz-service/internal/domain"
)

func TestAttemptStoreLifecycle(t *testing.T) {
	store := NewAttemptStore()
	created := 0
	create := func() *app.Attempt {
		created++
		return app.NewAttempt(sampleQuiz(), "s1", "class-1", nil, nil)
	}

	first, ok := store.GetOrCreate("quiz-1_s1", create)
	if first == nil || !ok {
		t.Fatalf("expected attempt to be created")
	}
	second, ok := store.GetOrCreate("quiz-1_s1", create)
	if ok || second != first || created != 1 {
		t.Fatalf("expected existing attempt to be reused")
	}
	if _, ok := store.Get("quiz-1_s1"); !ok {
		t.Fatalf("expected attempt present")
	}

	store.Remove("quiz-1_s1")
	if _, ok := store.Get("quiz-1_s1"); ok {
		t.Fatalf("expected attempt removed")
	}
	if store.Len() != 0 {
		t.Fatalf("expected empty store, got %d", store.Len())
	}
}

func TestAttemptStoreSeparatesStudents(t *testing.T) {
	store := NewAttemptStore()
	a, _ := store.GetOrCreate(domain.ResultID("quiz-1", "s1"), func() *app.Attempt {
		return app.NewAttempt(sampleQuiz(), "s1", "class-1", nil, nil)
	})
	b, _ := store.GetOrCreate(domain.ResultID("quiz-1", "s2"), func() *app.Attempt {
		return app.NewAttempt(sampleQuiz(), "s2", "class-1", nil, nil)
	})
	if a == b || store.Len() != 2 {
		t.Fatalf("expected one attempt per student")
	}
}
