package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"classroom-quiz-service/internal/domain"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// QuizStore is the authoritative quiz collection.
type QuizStore interface {
	LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	CreateQuiz(ctx context.Context, quiz domain.Quiz) error
	// SaveQuestions replaces the quiz's question sequence in a single write.
	SaveQuestions(ctx context.Context, quizID string, questions []domain.Question) error
	DeleteQuiz(ctx context.Context, quizID string) error
	ListQuizzes(ctx context.Context, classroomID string) ([]domain.Quiz, error)
}

// QuizRepository serves quiz reads for students (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	Invalidate(ctx context.Context, quizID string) error
}

// ResultStore persists quiz results under their derived id.
type ResultStore interface {
	GetResult(ctx context.Context, resultID string) (domain.QuizResult, error)
	// CreateResult writes the result only if none exists yet and reports whether it did.
	CreateResult(ctx context.Context, result domain.QuizResult) (bool, error)
	// PutResult writes the result unconditionally, replacing any earlier one.
	PutResult(ctx context.Context, result domain.QuizResult) error
	ListResults(ctx context.Context, quizID string) ([]domain.QuizResult, error)
	DeleteResults(ctx context.Context, quizID string) error
}

// AttemptRepository abstracts where in-progress attempts are kept (in-memory, Redis, etc).
type AttemptRepository interface {
	// GetOrCreate returns the attempt under key, calling create if there is none.
	// The bool reports whether create was used.
	GetOrCreate(key string, create func() *Attempt) (*Attempt, bool)
	Get(key string) (*Attempt, bool)
	Remove(key string)
}

// AttemptLocator is implemented by attempt repositories shared between
// instances. Live reports whether any instance holds the attempt open.
type AttemptLocator interface {
	Live(ctx context.Context, key string) (bool, error)
}

// ErrAttemptElsewhere is returned when the attempt is already open on another instance.
var ErrAttemptElsewhere = errors.New("quiz attempt is open in another session")

// QuizAttemptRecorder records quiz attempts as attendance.
type QuizAttemptRecorder interface {
	RecordQuizAttempt(ctx context.Context, studentID, classroomID, quizID string) bool
}

// Ticker starts a one-second ticker and returns its channel and stop function.
type Ticker func() (<-chan time.Time, func())

func secondTicker() (<-chan time.Time, func()) {
	t := time.NewTicker(time.Second)
	return t.C, t.Stop
}

// QuizService contains the quiz taking and authoring use cases.
type QuizService struct {
	store      QuizStore
	quizzes    QuizRepository
	results    ResultStore
	attempts   AttemptRepository
	attendance QuizAttemptRecorder

	log              logrus.FieldLogger
	now              func() time.Time
	newTicker        Ticker
	newID            func() string
	defaultTimeLimit int
	allowResubmit    bool
	attemptLifetime  time.Duration
}

// Option customizes a QuizService.
type Option func(*QuizService)

// WithLogger sets the logger used for background failures.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *QuizService) { s.log = log }
}

// WithClock overrides the time source for submissions and new quizzes.
func WithClock(now func() time.Time) Option {
	return func(s *QuizService) { s.now = now }
}

// WithTicker overrides how attempt countdowns are driven; tests feed ticks by hand.
func WithTicker(t Ticker) Option {
	return func(s *QuizService) { s.newTicker = t }
}

// WithDefaultTimeLimit sets the limit in minutes for quizzes created without one. 0 leaves them untimed.
func WithDefaultTimeLimit(minutes int) Option {
	return func(s *QuizService) { s.defaultTimeLimit = minutes }
}

// WithResubmission lets a later submission overwrite an earlier result instead of being ignored.
func WithResubmission(allow bool) Option {
	return func(s *QuizService) { s.allowResubmit = allow }
}

// WithAttemptLifetime bounds how long an attempt may sit idle, on top of its
// countdown, before it is dropped. 0 keeps attempts until they end.
func WithAttemptLifetime(d time.Duration) Option {
	return func(s *QuizService) { s.attemptLifetime = d }
}

func NewQuizService(store QuizStore, quizzes QuizRepository, results ResultStore, attempts AttemptRepository, attendance QuizAttemptRecorder, opts ...Option) *QuizService {
	s := &QuizService{
		store:      store,
		quizzes:    quizzes,
		results:    results,
		attempts:   attempts,
		attendance: attendance,
		log:        logrus.StandardLogger(),
		now:        time.Now,
		newTicker:  secondTicker,
		newID:      uuid.NewString,

		attemptLifetime: 2 * time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchQuizForTaking loads the quiz for a student along with any result they already submitted.
func (s *QuizService) FetchQuizForTaking(ctx context.Context, quizID, studentID string) (domain.TakingView, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.TakingView{}, err
	}
	view := domain.TakingView{Quiz: quiz.WithQuestionIDs()}

	prior, err := s.results.GetResult(ctx, domain.ResultID(quizID, studentID))
	switch {
	case err == nil:
		view.PriorResult = &prior
	case errors.Is(err, domain.ErrResultNotFound):
	default:
		return domain.TakingView{}, err
	}
	return view, nil
}

// SubmitInput carries everything needed to score and store one submission.
type SubmitInput struct {
	Quiz        domain.Quiz
	StudentID   string
	ClassroomID string
	Answers     domain.Answers
}

// Submit scores the answers, stores the result under the derived id and records
// the quiz attempt as attendance. Attendance failures never fail the submission.
func (s *QuizService) Submit(ctx context.Context, in SubmitInput) (domain.Submission, error) {
	result := domain.NewResult(in.Quiz, in.StudentID, in.ClassroomID, in.Answers, s.now())

	if s.allowResubmit {
		if err := s.results.PutResult(ctx, result); err != nil {
			return domain.Submission{}, err
		}
	} else {
		created, err := s.results.CreateResult(ctx, result)
		if err != nil {
			return domain.Submission{}, err
		}
		if !created {
			existing, err := s.results.GetResult(ctx, result.ID)
			if err != nil {
				return domain.Submission{}, err
			}
			return domain.Submission{Result: existing, Duplicate: true}, nil
		}
	}

	if s.attendance != nil {
		s.attendance.RecordQuizAttempt(ctx, in.StudentID, in.ClassroomID, in.Quiz.ID)
	}
	return domain.Submission{Result: result}, nil
}

// StartAttempt opens (or rejoins) the student's in-progress attempt. Timed
// quizzes get a countdown that auto-submits when it reaches zero. An empty
// classroomID means the quiz's own classroom.
func (s *QuizService) StartAttempt(ctx context.Context, quizID, studentID, classroomID string) (domain.TakingView, *Attempt, error) {
	view, err := s.FetchQuizForTaking(ctx, quizID, studentID)
	if err != nil {
		return domain.TakingView{}, nil, err
	}
	if view.Submitted() {
		return view, nil, domain.ErrAlreadySubmitted
	}
	if classroomID == "" {
		classroomID = view.Quiz.ClassroomID
	} else if classroomID != view.Quiz.ClassroomID {
		return domain.TakingView{}, nil, domain.ErrClassroomMismatch
	}

	key := attemptKey(quizID, studentID)
	if _, ok := s.attempts.Get(key); !ok && s.openElsewhere(ctx, key) {
		return domain.TakingView{}, nil, ErrAttemptElsewhere
	}
	attempt, created := s.attempts.GetOrCreate(key, func() *Attempt {
		quiz := view.Quiz
		return NewAttempt(quiz, studentID, classroomID,
			func(ctx context.Context, answers domain.Answers) (domain.Submission, error) {
				return s.Submit(ctx, SubmitInput{
					Quiz:        quiz,
					StudentID:   studentID,
					ClassroomID: classroomID,
					Answers:     answers,
				})
			},
			func() { s.attempts.Remove(key) },
		)
	})
	if created {
		s.evictWhenIdle(key, attempt)
		if attempt.Timed() {
			ticks, stop := s.newTicker()
			go attempt.run(ticks, stop, s.log)
		}
	}
	return view, attempt, nil
}

// openElsewhere asks a shared attempt repository whether another instance
// holds the attempt. Lookup failures let the start go ahead.
func (s *QuizService) openElsewhere(ctx context.Context, key string) bool {
	locator, ok := s.attempts.(AttemptLocator)
	if !ok {
		return false
	}
	live, err := locator.Live(ctx, key)
	if err != nil {
		s.log.WithField("attempt", key).WithError(err).Warn("attempt lookup failed")
		return false
	}
	return live
}

// evictWhenIdle drops the attempt once its lifetime is over unless it ended first.
func (s *QuizService) evictWhenIdle(key string, attempt *Attempt) {
	if s.attemptLifetime <= 0 {
		return
	}
	lifetime := s.attemptLifetime + time.Duration(attempt.Quiz().CountdownSeconds())*time.Second
	timer := time.AfterFunc(lifetime, func() {
		if current, ok := s.attempts.Get(key); !ok || current != attempt {
			return
		}
		attempt.Close()
		s.attempts.Remove(key)
		s.log.WithFields(logrus.Fields{
			"quizId":    attempt.Quiz().ID,
			"studentId": attempt.studentID,
		}).Info("idle attempt evicted")
	})
	go func() {
		<-attempt.Done()
		timer.Stop()
	}()
}

// Attempt returns the student's in-progress attempt.
func (s *QuizService) Attempt(quizID, studentID string) (*Attempt, error) {
	attempt, ok := s.attempts.Get(attemptKey(quizID, studentID))
	if !ok {
		return nil, domain.ErrAttemptNotFound
	}
	return attempt, nil
}

// RecordAnswer stores the selected option in the student's attempt.
func (s *QuizService) RecordAnswer(quizID, studentID string, questionIndex, optionIndex int) (domain.AttemptState, error) {
	attempt, err := s.Attempt(quizID, studentID)
	if err != nil {
		return domain.AttemptState{}, err
	}
	return attempt.RecordAnswer(questionIndex, optionIndex)
}

// SubmitAttempt submits the student's in-progress attempt.
func (s *QuizService) SubmitAttempt(ctx context.Context, quizID, studentID string) (domain.Submission, error) {
	attempt, err := s.Attempt(quizID, studentID)
	if err != nil {
		return domain.Submission{}, err
	}
	return attempt.Submit(ctx)
}

// AbandonAttempt drops the attempt and cancels its countdown.
func (s *QuizService) AbandonAttempt(quizID, studentID string) {
	key := attemptKey(quizID, studentID)
	attempt, ok := s.attempts.Get(key)
	if !ok {
		return
	}
	attempt.Close()
	s.attempts.Remove(key)
}

// NewQuizInput describes a quiz to create.
type NewQuizInput struct {
	ClassroomID string
	CreatedBy   string
	Title       string
	Description string
	// TimeLimit in minutes; nil falls back to the service default.
	TimeLimit *int
	Questions []domain.Question
}

// CreateQuiz validates and stores a new quiz owned by in.CreatedBy.
func (s *QuizService) CreateQuiz(ctx context.Context, in NewQuizInput) (domain.Quiz, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return domain.Quiz{}, domain.ErrEmptyTitle
	}
	if in.ClassroomID == "" {
		return domain.Quiz{}, domain.ErrMissingClassroom
	}
	limit := in.TimeLimit
	if limit == nil && s.defaultTimeLimit > 0 {
		d := s.defaultTimeLimit
		limit = &d
	}
	if limit != nil && *limit < 0 {
		return domain.Quiz{}, domain.ErrNegativeTimeLimit
	}

	questions := domain.AssignQuestionIDs(in.Questions, s.newID)
	if err := domain.ValidateQuestions(questions); err != nil {
		return domain.Quiz{}, err
	}

	quiz := domain.Quiz{
		ID:          s.newID(),
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Questions:   questions,
		TimeLimit:   limit,
		ClassroomID: in.ClassroomID,
		CreatedBy:   in.CreatedBy,
		CreatedAt:   s.now(),
	}
	if err := s.store.CreateQuiz(ctx, quiz); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

// GetQuizForEditing loads the quiz straight from the store for its creator.
func (s *QuizService) GetQuizForEditing(ctx context.Context, quizID, actorID string) (domain.Quiz, error) {
	quiz, err := s.ownedQuiz(ctx, quizID, actorID)
	if err != nil {
		return domain.Quiz{}, err
	}
	return quiz.WithQuestionIDs(), nil
}

// SaveQuiz replaces the quiz's questions with the given sequence in one write.
// Concurrent editors are not merged; the last save wins.
func (s *QuizService) SaveQuiz(ctx context.Context, quizID, actorID string, questions []domain.Question) (domain.Quiz, error) {
	questions = domain.AssignQuestionIDs(questions, s.newID)
	if err := domain.ValidateQuestions(questions); err != nil {
		return domain.Quiz{}, err
	}
	quiz, err := s.ownedQuiz(ctx, quizID, actorID)
	if err != nil {
		return domain.Quiz{}, err
	}
	if err := s.store.SaveQuestions(ctx, quizID, questions); err != nil {
		return domain.Quiz{}, err
	}
	s.invalidate(ctx, quizID)
	quiz.Questions = questions
	return quiz, nil
}

// DeleteQuiz removes the quiz and every result submitted for it.
func (s *QuizService) DeleteQuiz(ctx context.Context, quizID, actorID string) error {
	if _, err := s.ownedQuiz(ctx, quizID, actorID); err != nil {
		return err
	}
	if err := s.store.DeleteQuiz(ctx, quizID); err != nil {
		return err
	}
	s.invalidate(ctx, quizID)
	return s.results.DeleteResults(ctx, quizID)
}

// ListQuizzes returns the classroom's quizzes with attempt counts and average scores.
func (s *QuizService) ListQuizzes(ctx context.Context, classroomID string) ([]domain.QuizSummary, error) {
	if classroomID == "" {
		return nil, domain.ErrMissingClassroom
	}
	quizzes, err := s.store.ListQuizzes(ctx, classroomID)
	if err != nil {
		return nil, err
	}
	summaries := make([]domain.QuizSummary, 0, len(quizzes))
	for _, quiz := range quizzes {
		results, err := s.results.ListResults(ctx, quiz.ID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, domain.Summarize(quiz.WithQuestionIDs(), results))
	}
	return summaries, nil
}

// ListResults returns every submitted result for the quiz to its creator.
func (s *QuizService) ListResults(ctx context.Context, quizID, actorID string) ([]domain.QuizResult, error) {
	if _, err := s.ownedQuiz(ctx, quizID, actorID); err != nil {
		return nil, err
	}
	return s.results.ListResults(ctx, quizID)
}

func (s *QuizService) ownedQuiz(ctx context.Context, quizID, actorID string) (domain.Quiz, error) {
	quiz, err := s.store.LoadQuiz(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, err
	}
	if quiz.CreatedBy != actorID {
		return domain.Quiz{}, domain.ErrForbidden
	}
	return quiz, nil
}

func (s *QuizService) invalidate(ctx context.Context, quizID string) {
	if err := s.quizzes.Invalidate(ctx, quizID); err != nil {
		s.log.WithField("quizId", quizID).WithError(err).Warn("quiz cache invalidation failed")
	}
}

func attemptKey(quizID, studentID string) string {
	return domain.ResultID(quizID, studentID)
}
