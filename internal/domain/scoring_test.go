package domain_test

import (
	"testing"
	"time"

	"classroom-quiz-service/internal/domain"
)

func TestScore(t *testing.T) {
	quiz := threeQuestionQuiz()

	cases := []struct {
		name    string
		answers domain.Answers
		want    int
	}{
		{"all correct", domain.Answers{0: 1, 1: 0, 2: 3}, 3},
		{"empty", domain.Answers{}, 0},
		{"nil", nil, 0},
		{"one wrong", domain.Answers{0: 1, 1: 1, 2: 3}, 2},
		{"out of range never matches", domain.Answers{0: 9, 1: -1, 2: 3}, 1},
		{"unknown question ignored", domain.Answers{0: 1, 7: 0}, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := domain.Score(quiz, tc.answers); got != tc.want {
				t.Fatalf("expected score %d, got %d", tc.want, got)
			}
		})
	}
}

func TestNewResult(t *testing.T) {
	quiz := threeQuestionQuiz()
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	answers := domain.Answers{0: 1}

	result := domain.NewResult(quiz, "s1", "c1", answers, now)
	if result.ID != "quiz-1_s1" {
		t.Fatalf("expected derived id, got %s", result.ID)
	}
	if result.Score != 1 || result.TotalQuestions != 3 || !result.SubmittedAt.Equal(now) {
		t.Fatalf("unexpected result: %+v", result)
	}

	answers[1] = 0
	if len(result.Answers) != 1 {
		t.Fatalf("expected result answers to be a copy")
	}
}

func TestSummarize(t *testing.T) {
	quiz := threeQuestionQuiz()
	if s := domain.Summarize(quiz, nil); s.TotalAttempts != 0 || s.AverageScore != nil {
		t.Fatalf("expected empty summary, got %+v", s)
	}
	s := domain.Summarize(quiz, []domain.QuizResult{{Score: 3}, {Score: 0}})
	if s.TotalAttempts != 2 || s.AverageScore == nil || *s.AverageScore != 1.5 {
		t.Fatalf("unexpected summary: %+v", s)
	}
}

func TestCountdown(t *testing.T) {
	limit := 1
	view := domain.TakingView{Quiz: domain.Quiz{TimeLimit: &limit}}
	if view.Countdown() != 60 {
		t.Fatalf("expected 60 second countdown, got %d", view.Countdown())
	}
	view.PriorResult = &domain.QuizResult{}
	if view.Countdown() != 0 {
		t.Fatalf("expected no countdown after submission")
	}
	if (domain.Quiz{}).Timed() {
		t.Fatalf("expected quiz without limit to be untimed")
	}
}

func threeQuestionQuiz() domain.Quiz {
	opts := []domain.Option{{Text: "A"}, {Text: "B"}, {Text: "C"}, {Text: "D"}}
	return domain.Quiz{
		ID:    "quiz-1",
		Title: "Sample",
		Questions: []domain.Question{
			{ID: "q1", Text: "one", Options: opts, CorrectAnswer: 1},
			{ID: "q2", Text: "two", Options: opts, CorrectAnswer: 0},
			{ID: "q3", Text: "three", Options: opts, CorrectAnswer: 3},
		},
	}
}
