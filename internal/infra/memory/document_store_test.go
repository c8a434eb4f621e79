package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"classroom-quiz-service/internal/domain"
)

func TestQuizStoreCRUD(t *testing.T) {
	ctx := context.Background()
	store := NewQuizStore()
	older := sampleQuiz()
	older.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := sampleQuiz()
	newer.ID = "quiz-2"
	newer.CreatedAt = older.CreatedAt.Add(time.Hour)
	other := sampleQuiz()
	other.ID = "quiz-3"
	other.ClassroomID = "class-2"

	for _, q := range []domain.Quiz{older, newer, other} {
		if err := store.CreateQuiz(ctx, q); err != nil {
			t.Fatalf("create quiz: %v", err)
		}
	}
	if err := store.CreateQuiz(ctx, older); err == nil {
		t.Fatalf("expected duplicate id to be rejected")
	}

	list, err := store.ListQuizzes(ctx, "class-1")
	if err != nil {
		t.Fatalf("list quizzes: %v", err)
	}
	if len(list) != 2 || list[0].ID != "quiz-2" || list[1].ID != "quiz-1" {
		t.Fatalf("expected newest first for class-1, got %+v", list)
	}

	loaded, _ := store.LoadQuiz(ctx, "quiz-1")
	loaded.Questions[0].Text = "mutated"
	again, _ := store.LoadQuiz(ctx, "quiz-1")
	if again.Questions[0].Text == "mutated" {
		t.Fatalf("expected store to hand out copies")
	}

	if err := store.DeleteQuiz(ctx, "quiz-1"); err != nil {
		t.Fatalf("delete quiz: %v", err)
	}
	if _, err := store.LoadQuiz(ctx, "quiz-1"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if err := store.SaveQuestions(ctx, "quiz-1", nil); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected not found on save, got %v", err)
	}
}

func TestResultStoreConditionalCreate(t *testing.T) {
	ctx := context.Background()
	store := NewResultStore()
	first := domain.QuizResult{ID: "quiz-1_s1", QuizID: "quiz-1", StudentID: "s1", Score: 1}
	second := first
	second.Score = 0

	created, err := store.CreateResult(ctx, first)
	if err != nil || !created {
		t.Fatalf("expected first create to succeed, created=%v err=%v", created, err)
	}
	created, err = store.CreateResult(ctx, second)
	if err != nil || created {
		t.Fatalf("expected second create to be a no-op, created=%v err=%v", created, err)
	}
	got, _ := store.GetResult(ctx, "quiz-1_s1")
	if got.Score != 1 {
		t.Fatalf("expected first result kept, got score %d", got.Score)
	}

	if err := store.PutResult(ctx, second); err != nil {
		t.Fatalf("put result: %v", err)
	}
	got, _ = store.GetResult(ctx, "quiz-1_s1")
	if got.Score != 0 {
		t.Fatalf("expected put to overwrite, got score %d", got.Score)
	}

	if err := store.DeleteResults(ctx, "quiz-1"); err != nil {
		t.Fatalf("delete results: %v", err)
	}
	if _, err := store.GetResult(ctx, "quiz-1_s1"); !errors.Is(err, domain.ErrResultNotFound) {
		t.Fatalf("expected result gone, got %v", err)
	}
}

func TestAttendanceStoreUpserts(t *testing.T) {
	ctx := context.Background()
	store := NewAttendanceStore()
	day := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	ten, five := 10, 5
	view := domain.Attendance{
		ID: "s1_c1_lesson_view_l1_20240310", StudentID: "s1", ClassroomID: "c1",
		ActivityType: domain.ActivityLessonView, ActivityID: "l1", Date: day, Duration: &ten,
	}
	if err := store.AddLessonView(ctx, view); err != nil {
		t.Fatalf("add lesson view: %v", err)
	}
	view.Duration = &five
	view.Date = day.Add(time.Hour)
	if err := store.AddLessonView(ctx, view); err != nil {
		t.Fatalf("add lesson view: %v", err)
	}

	records, _ := store.ListAttendance(ctx, domain.AttendanceFilter{ClassroomID: "c1"})
	if len(records) != 1 || *records[0].Duration != 15 || !records[0].Date.Equal(day) {
		t.Fatalf("expected one record with 15s from the first view, got %+v", records)
	}

	attempt := domain.Attendance{
		ID: "s1_c1_quiz_attempt_q1_20240310", StudentID: "s1", ClassroomID: "c1",
		ActivityType: domain.ActivityQuizAttempt, ActivityID: "q1", Date: day,
	}
	if created, _ := store.AddQuizAttempt(ctx, attempt); !created {
		t.Fatalf("expected quiz attempt created")
	}
	if created, _ := store.AddQuizAttempt(ctx, attempt); created {
		t.Fatalf("expected second quiz attempt to be a no-op")
	}
	records, _ = store.ListAttendance(ctx, domain.AttendanceFilter{ClassroomID: "c1", ActivityType: domain.ActivityQuizAttempt})
	if len(records) != 1 || records[0].Duration != nil {
		t.Fatalf("expected one quiz attempt without duration, got %+v", records)
	}
}
