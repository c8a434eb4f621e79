package domain

import (
	"fmt"
	"strings"
	"time"
)

// Option represents a possible answer for a question.
type Option struct {
	Text  string `json:"text"`
	Image string `json:"image,omitempty"`
}

// Question models a multiple choice question with one correct option.
type Question struct {
	ID            string   `json:"id"`
	Text          string   `json:"text"`
	Image         string   `json:"image,omitempty"`
	Options       []Option `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
}

// Validate checks the authoring rules for a single question.
func (q Question) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return ErrEmptyQuestionText
	}
	if len(q.Options) < MinOptions {
		return ErrTooFewOptions
	}
	if len(q.Options) > MaxOptions {
		return ErrTooManyOptions
	}
	for _, opt := range q.Options {
		if strings.TrimSpace(opt.Text) == "" {
			return ErrEmptyOptionText
		}
	}
	if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
		return ErrCorrectAnswerRange
	}
	return nil
}

// Quiz is an ordered collection of questions owned by a classroom.
type Quiz struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Questions   []Question `json:"questions"`
	TimeLimit   *int       `json:"timeLimit,omitempty"` // minutes; nil means untimed
	ClassroomID string     `json:"classId"`
	CreatedBy   string     `json:"createdBy"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Timed reports whether the quiz declares a positive time limit.
func (q Quiz) Timed() bool {
	return q.TimeLimit != nil && *q.TimeLimit > 0
}

// CountdownSeconds is the time a student has to finish, or 0 for untimed quizzes.
func (q Quiz) CountdownSeconds() int {
	if !q.Timed() {
		return 0
	}
	return *q.TimeLimit * 60
}

// WithQuestionIDs returns a copy whose questions all carry an id. Missing ids
// are derived from the question position so they stay stable across loads.
func (q Quiz) WithQuestionIDs() Quiz {
	q.Questions = NormalizeQuestionIDs(q.Questions)
	return q
}

// NormalizeQuestionIDs fills in "q_<index>" for questions without an id.
func NormalizeQuestionIDs(questions []Question) []Question {
	out := make([]Question, len(questions))
	for i, question := range questions {
		if question.ID == "" {
			question.ID = fmt.Sprintf("q_%d", i)
		}
		question.Options = append([]Option(nil), question.Options...)
		out[i] = question
	}
	return out
}

// AssignQuestionIDs returns a copy where every question without an id gets newID().
func AssignQuestionIDs(questions []Question, newID func() string) []Question {
	out := make([]Question, len(questions))
	for i, question := range questions {
		if question.ID == "" {
			question.ID = newID()
		}
		question.Options = append([]Option(nil), question.Options...)
		out[i] = question
	}
	return out
}

// ValidateQuestions checks every question and that ids are unique.
func ValidateQuestions(questions []Question) error {
	seen := make(map[string]struct{}, len(questions))
	for i, question := range questions {
		if err := question.Validate(); err != nil {
			return fmt.Errorf("question %d: %w", i+1, err)
		}
		if question.ID == "" {
			continue
		}
		if _, ok := seen[question.ID]; ok {
			return ErrDuplicateQuestion
		}
		seen[question.ID] = struct{}{}
	}
	return nil
}

// Answers maps a question index to the selected option index.
type Answers map[int]int

// Clone copies the answer map.
func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// QuizResult is the single persisted outcome of a student's attempt at a quiz.
type QuizResult struct {
	ID             string    `json:"id"`
	QuizID         string    `json:"quizId"`
	StudentID      string    `json:"userId"`
	ClassroomID    string    `json:"classId"`
	Answers        Answers   `json:"answers"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	SubmittedAt    time.Time `json:"submittedAt"`
}

// ResultID derives the result identity so each student has at most one result per quiz.
func ResultID(quizID, studentID string) string {
	return quizID + "_" + studentID
}

// Submission is the outcome of submitting a quiz.
type Submission struct {
	Result QuizResult `json:"result"`
	// Duplicate is set when an earlier result already existed and was kept.
	Duplicate bool `json:"duplicate"`
}

// QuizSummary decorates a quiz with its submission statistics.
type QuizSummary struct {
	Quiz          Quiz     `json:"quiz"`
	TotalAttempts int      `json:"totalAttempts"`
	AverageScore  *float64 `json:"averageScore"`
}

// TakingView is what a student sees when opening a quiz.
type TakingView struct {
	Quiz        Quiz        `json:"quiz"`
	PriorResult *QuizResult `json:"priorResult"`
}

// Submitted reports whether the student already has a result for the quiz.
func (v TakingView) Submitted() bool {
	return v.PriorResult != nil
}

// Countdown is the number of seconds the student gets, 0 if untimed or already submitted.
func (v TakingView) Countdown() int {
	if v.Submitted() {
		return 0
	}
	return v.Quiz.CountdownSeconds()
}

// AttemptState is a snapshot of an in-progress attempt.
type AttemptState struct {
	QuizID    string      `json:"quizId"`
	StudentID string      `json:"userId"`
	Timed     bool        `json:"timed"`
	Remaining int         `json:"remaining"`
	Answered  int         `json:"answered"`
	Expired   bool        `json:"expired"`
	Submitted bool        `json:"submitted"`
	Result    *Submission `json:"result,omitempty"`
}
