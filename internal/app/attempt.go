package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"classroom-quiz-service/internal/domain"
	"github.com/sirupsen/logrus"
)

var (
	// ErrAttemptLocked is returned when answers arrive after submission started.
	ErrAttemptLocked = errors.New("quiz attempt is being submitted")
	// ErrAttemptExpired is returned when answers arrive after the time limit ran out.
	ErrAttemptExpired = errors.New("quiz time is up")
)

// SubmitFunc scores and persists the answers of an attempt.
type SubmitFunc func(ctx context.Context, answers domain.Answers) (domain.Submission, error)

// Attempt is the in-progress state of one student taking one quiz. It only
// lives in memory; the submitted result is what gets persisted.
type Attempt struct {
	quiz        domain.Quiz
	studentID   string
	classroomID string
	submit      SubmitFunc
	onFinish    func()

	// submitMu serializes manual and timer submissions so only one scoring event happens.
	submitMu sync.Mutex

	mu          sync.Mutex
	answers     domain.Answers
	remaining   int
	expired     bool
	submitting  bool
	result      *domain.Submission
	closed      bool
	subscribers map[chan domain.AttemptState]struct{}

	stop     chan struct{}
	stopOnce sync.Once
}

// NewAttempt is exported for infrastructure layers and tests that need to seed attempts.
// onFinish runs once after a successful submission.
func NewAttempt(quiz domain.Quiz, studentID, classroomID string, submit SubmitFunc, onFinish func()) *Attempt {
	if onFinish == nil {
		onFinish = func() {}
	}
	return &Attempt{
		quiz:        quiz,
		studentID:   studentID,
		classroomID: classroomID,
		submit:      submit,
		onFinish:    onFinish,
		answers:     make(domain.Answers),
		remaining:   quiz.CountdownSeconds(),
		subscribers: make(map[chan domain.AttemptState]struct{}),
		stop:        make(chan struct{}),
	}
}

// Quiz returns the quiz being taken.
func (a *Attempt) Quiz() domain.Quiz {
	return a.quiz
}

// Timed reports whether a countdown runs for this attempt.
func (a *Attempt) Timed() bool {
	return a.quiz.Timed()
}

// State returns a snapshot of the attempt.
func (a *Attempt) State() domain.AttemptState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

// Answers returns a copy of the recorded answers.
func (a *Attempt) Answers() domain.Answers {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.answers.Clone()
}

// RecordAnswer sets the selected option for a question, replacing any earlier choice.
// Indices are not range checked; a bad selection simply never scores.
func (a *Attempt) RecordAnswer(questionIndex, optionIndex int) (domain.AttemptState, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return domain.AttemptState{}, domain.ErrAttemptNotFound
	}
	if a.result != nil {
		return domain.AttemptState{}, domain.ErrAlreadySubmitted
	}
	if a.submitting {
		return domain.AttemptState{}, ErrAttemptLocked
	}
	if a.expired {
		return domain.AttemptState{}, ErrAttemptExpired
	}
	a.answers[questionIndex] = optionIndex
	return a.broadcastLocked(), nil
}

// Submit scores and persists the recorded answers. Calling it again after a
// successful submission returns the first outcome without scoring twice.
func (a *Attempt) Submit(ctx context.Context) (domain.Submission, error) {
	a.submitMu.Lock()
	defer a.submitMu.Unlock()

	a.mu.Lock()
	if a.result != nil {
		sub := *a.result
		a.mu.Unlock()
		return sub, nil
	}
	if a.closed {
		a.mu.Unlock()
		return domain.Submission{}, domain.ErrAttemptNotFound
	}
	a.submitting = true
	answers := a.answers.Clone()
	a.mu.Unlock()

	sub, err := a.submit(ctx, answers)

	a.mu.Lock()
	a.submitting = false
	if err != nil {
		a.mu.Unlock()
		return domain.Submission{}, err
	}
	a.result = &sub
	a.broadcastLocked()
	a.mu.Unlock()

	a.halt()
	a.onFinish()
	return sub, nil
}

// Tick advances the countdown by one second and reports whether time just ran
// out. Once it has, the answers are frozen: a retried submit scores exactly
// what was recorded before the deadline.
func (a *Attempt) Tick() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.quiz.Timed() || a.closed || a.result != nil || a.remaining <= 0 {
		return false
	}
	a.remaining--
	if a.remaining == 0 {
		a.expired = true
	}
	a.broadcastLocked()
	return a.expired
}

// Close abandons the attempt and cancels its countdown. Nothing is persisted.
func (a *Attempt) Close() {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()
	a.halt()
}

// Done is closed once the attempt is submitted or abandoned.
func (a *Attempt) Done() <-chan struct{} {
	return a.stop
}

func (a *Attempt) halt() {
	a.stopOnce.Do(func() { close(a.stop) })
}

// run drives the countdown from ticks until the attempt ends. When time runs
// out it submits whatever answers were recorded.
func (a *Attempt) run(ticks <-chan time.Time, stopTicker func(), log logrus.FieldLogger) {
	defer stopTicker()
	for {
		select {
		case <-a.stop:
			return
		case <-ticks:
			if !a.Tick() {
				continue
			}
			if _, err := a.Submit(context.Background()); err != nil {
				log.WithFields(logrus.Fields{
					"quizId":    a.quiz.ID,
					"studentId": a.studentID,
				}).WithError(err).Error("auto-submit failed")
			}
			return
		}
	}
}

// Subscribe returns a channel that receives state updates. The caller must
// invoke the returned cancel function to avoid leaks.
func (a *Attempt) Subscribe() (<-chan domain.AttemptState, func()) {
	ch := make(chan domain.AttemptState, 8)

	a.mu.Lock()
	a.subscribers[ch] = struct{}{}
	initial := a.snapshotLocked()
	a.mu.Unlock()

	ch <- initial

	cancel := func() {
		a.mu.Lock()
		if _, ok := a.subscribers[ch]; ok {
			delete(a.subscribers, ch)
			close(ch)
		}
		a.mu.Unlock()
	}
	return ch, cancel
}

func (a *Attempt) broadcastLocked() domain.AttemptState {
	state := a.snapshotLocked()
	for ch := range a.subscribers {
		select {
		case ch <- state:
		default:
			// slow subscriber: drop its oldest update so the latest state always lands
			select {
			case <-ch:
			default:
			}
			ch <- state
		}
	}
	return state
}

func (a *Attempt) snapshotLocked() domain.AttemptState {
	state := domain.AttemptState{
		QuizID:    a.quiz.ID,
		StudentID: a.studentID,
		Timed:     a.quiz.Timed(),
		Remaining: a.remaining,
		Answered:  len(a.answers),
		Expired:   a.expired,
		Submitted: a.result != nil,
	}
	if a.result != nil {
		sub := *a.result
		state.Result = &sub
	}
	return state
}
