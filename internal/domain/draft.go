package domain

import "github.com/google/uuid"

const (
	MinOptions = 2
	MaxOptions = 4
)

// Draft is the creator's working copy of a quiz's question sequence.
// Nothing is persisted until the questions are saved as a whole.
type Draft struct {
	questions []Question
	newID     func() string
}

// NewDraft starts a draft from the stored questions, assigning ids to any that lack one.
func NewDraft(questions []Question) *Draft {
	return &Draft{
		questions: NormalizeQuestionIDs(questions),
		newID:     uuid.NewString,
	}
}

// Questions returns a copy of the current sequence.
func (d *Draft) Questions() []Question {
	return NormalizeQuestionIDs(d.questions)
}

// Len is the number of questions in the draft.
func (d *Draft) Len() int {
	return len(d.questions)
}

// AddQuestion appends a blank question with two empty options and returns its index.
func (d *Draft) AddQuestion() int {
	d.questions = append(d.questions, Question{
		ID:            d.newID(),
		Options:       []Option{{}, {}},
		CorrectAnswer: 0,
	})
	return len(d.questions) - 1
}

// EditQuestion replaces the question at index after validating it. On failure
// the draft is left untouched. The existing id is kept when q carries none.
func (d *Draft) EditQuestion(index int, q Question) error {
	if err := d.checkQuestion(index); err != nil {
		return err
	}
	if err := q.Validate(); err != nil {
		return err
	}
	if q.ID == "" {
		q.ID = d.questions[index].ID
	}
	for i, other := range d.questions {
		if i != index && other.ID == q.ID {
			return ErrDuplicateQuestion
		}
	}
	q.Options = append([]Option(nil), q.Options...)
	d.questions[index] = q
	return nil
}

// DeleteQuestion removes the question at index. Ids of the others are unaffected.
func (d *Draft) DeleteQuestion(index int) error {
	if err := d.checkQuestion(index); err != nil {
		return err
	}
	d.questions = append(d.questions[:index], d.questions[index+1:]...)
	return nil
}

// AddOption appends an empty option, up to MaxOptions.
func (d *Draft) AddOption(questionIndex int) error {
	if err := d.checkQuestion(questionIndex); err != nil {
		return err
	}
	q := &d.questions[questionIndex]
	if len(q.Options) >= MaxOptions {
		return ErrTooManyOptions
	}
	q.Options = append(q.Options, Option{})
	return nil
}

// RemoveOption drops an option, keeping at least MinOptions. The correct answer
// keeps pointing at the same option, or resets to 0 if that option was removed.
func (d *Draft) RemoveOption(questionIndex, optionIndex int) error {
	if err := d.checkOption(questionIndex, optionIndex); err != nil {
		return err
	}
	q := &d.questions[questionIndex]
	if len(q.Options) <= MinOptions {
		return ErrTooFewOptions
	}
	q.Options = append(q.Options[:optionIndex], q.Options[optionIndex+1:]...)
	switch {
	case q.CorrectAnswer == optionIndex:
		q.CorrectAnswer = 0
	case q.CorrectAnswer > optionIndex:
		q.CorrectAnswer--
	}
	return nil
}

// EditOption replaces the option's text and image. Emptiness is checked when
// the whole question is edited or saved.
func (d *Draft) EditOption(questionIndex, optionIndex int, opt Option) error {
	if err := d.checkOption(questionIndex, optionIndex); err != nil {
		return err
	}
	d.questions[questionIndex].Options[optionIndex] = opt
	return nil
}

// SetCorrectAnswer marks the option at optionIndex as the correct one.
func (d *Draft) SetCorrectAnswer(questionIndex, optionIndex int) error {
	if err := d.checkOption(questionIndex, optionIndex); err != nil {
		return err
	}
	d.questions[questionIndex].CorrectAnswer = optionIndex
	return nil
}

// Validate checks the whole draft before it is saved.
func (d *Draft) Validate() error {
	return ValidateQuestions(d.questions)
}

func (d *Draft) checkQuestion(index int) error {
	if index < 0 || index >= len(d.questions) {
		return ErrQuestionIndex
	}
	return nil
}

func (d *Draft) checkOption(questionIndex, optionIndex int) error {
	if err := d.checkQuestion(questionIndex); err != nil {
		return err
	}
	if optionIndex < 0 || optionIndex >= len(d.questions[questionIndex].Options) {
		return ErrOptionIndex
	}
	return nil
}
