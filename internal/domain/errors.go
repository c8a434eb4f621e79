package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrQuizNotFound indicates the quiz document could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrResultNotFound is returned when no result exists for a (quiz, student) pair.
	ErrResultNotFound = errors.New("quiz result not found")
	// ErrAttemptNotFound is returned when a student acts on an attempt that was never started.
	ErrAttemptNotFound = errors.New("quiz attempt not found")
	// ErrAlreadySubmitted is returned when a student tries to start a quiz they already submitted.
	ErrAlreadySubmitted = errors.New("quiz already submitted")
	// ErrForbidden is returned when a non-creator tries to author or review a quiz.
	ErrForbidden = errors.New("only the quiz creator may do this")
	// ErrValidation is wrapped by every input validation failure.
	ErrValidation = errors.New("validation failed")
)

var (
	ErrEmptyTitle         = fmt.Errorf("%w: quiz title is required", ErrValidation)
	ErrMissingClassroom   = fmt.Errorf("%w: classroom id is required", ErrValidation)
	ErrNegativeTimeLimit  = fmt.Errorf("%w: time limit cannot be negative", ErrValidation)
	ErrEmptyQuestionText  = fmt.Errorf("%w: question text is required", ErrValidation)
	ErrEmptyOptionText    = fmt.Errorf("%w: every option needs text", ErrValidation)
	ErrTooFewOptions      = fmt.Errorf("%w: a question needs at least %d options", ErrValidation, MinOptions)
	ErrTooManyOptions     = fmt.Errorf("%w: a question allows at most %d options", ErrValidation, MaxOptions)
	ErrCorrectAnswerRange = fmt.Errorf("%w: correct answer must point at an option", ErrValidation)
	ErrQuestionIndex      = fmt.Errorf("%w: question index out of range", ErrValidation)
	ErrOptionIndex        = fmt.Errorf("%w: option index out of range", ErrValidation)
	ErrDuplicateQuestion  = fmt.Errorf("%w: question ids must be unique", ErrValidation)
	ErrNegativeDuration   = fmt.Errorf("%w: duration cannot be negative", ErrValidation)
	ErrClassroomMismatch  = fmt.Errorf("%w: quiz belongs to another classroom", ErrValidation)
)
