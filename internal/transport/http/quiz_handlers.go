package http

import (
	"net/http"

	"classroom-quiz-service/internal/app"
	"classroom-quiz-service/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

type QuizHandler struct {
	service  *app.QuizService
	validate *validator.Validate
	log      logrus.FieldLogger
}

func NewQuizHandler(service *app.QuizService, validate *validator.Validate, log logrus.FieldLogger) *QuizHandler {
	return &QuizHandler{service: service, validate: validate, log: log}
}

type createQuizRequest struct {
	Title       string            `json:"title" validate:"required"`
	Description string            `json:"description"`
	TimeLimit   *int              `json:"timeLimit" validate:"omitempty,min=0"`
	Questions   []domain.Question `json:"questions"`
}

type saveQuestionsRequest struct {
	Questions []domain.Question `json:"questions" validate:"required"`
}

// startAttemptRequest may be omitted; the quiz's own classroom is used then.
type startAttemptRequest struct {
	ClassID string `json:"classId"`
}

type answerRequest struct {
	QuestionIndex *int `json:"questionIndex" validate:"required,min=0"`
	OptionIndex   *int `json:"optionIndex" validate:"required,min=0"`
}

// studentQuestion hides the correct option until the student has submitted.
type studentQuestion struct {
	ID            string          `json:"id"`
	Text          string          `json:"text"`
	Image         string          `json:"image,omitempty"`
	Options       []domain.Option `json:"options"`
	CorrectAnswer *int            `json:"correctAnswer,omitempty"`
}

type studentQuiz struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Questions   []studentQuestion `json:"questions"`
	TimeLimit   *int              `json:"timeLimit,omitempty"`
	ClassroomID string            `json:"classId"`
}

type takingResponse struct {
	Quiz        studentQuiz        `json:"quiz"`
	PriorResult *domain.QuizResult `json:"priorResult"`
	Countdown   int                `json:"countdown"`
}

type attemptResponse struct {
	takingResponse
	State domain.AttemptState `json:"state"`
}

func newTakingResponse(view domain.TakingView) takingResponse {
	questions := make([]studentQuestion, len(view.Quiz.Questions))
	for i, q := range view.Quiz.Questions {
		questions[i] = studentQuestion{ID: q.ID, Text: q.Text, Image: q.Image, Options: q.Options}
		if view.Submitted() {
			correct := q.CorrectAnswer
			questions[i].CorrectAnswer = &correct
		}
	}
	return takingResponse{
		Quiz: studentQuiz{
			ID:          view.Quiz.ID,
			Title:       view.Quiz.Title,
			Description: view.Quiz.Description,
			Questions:   questions,
			TimeLimit:   view.Quiz.TimeLimit,
			ClassroomID: view.Quiz.ClassroomID,
		},
		PriorResult: view.PriorResult,
		Countdown:   view.Countdown(),
	}
}

func (h *QuizHandler) CreateQuiz(w http.ResponseWriter, r *http.Request) {
	var req createQuizRequest
	if err := decodeBody(r, h.validate, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	quiz, err := h.service.CreateQuiz(r.Context(), app.NewQuizInput{
		ClassroomID: chi.URLParam(r, "classId"),
		CreatedBy:   userID(r),
		Title:       req.Title,
		Description: req.Description,
		TimeLimit:   req.TimeLimit,
		Questions:   req.Questions,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, quiz)
}

func (h *QuizHandler) ListQuizzes(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.service.ListQuizzes(r.Context(), chi.URLParam(r, "classId"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (h *QuizHandler) GetQuizForEditing(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.service.GetQuizForEditing(r.Context(), chi.URLParam(r, "quizId"), userID(r))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *QuizHandler) SaveQuiz(w http.ResponseWriter, r *http.Request) {
	var req saveQuestionsRequest
	if err := decodeBody(r, h.validate, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	quiz, err := h.service.SaveQuiz(r.Context(), chi.URLParam(r, "quizId"), userID(r), req.Questions)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *QuizHandler) DeleteQuiz(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteQuiz(r.Context(), chi.URLParam(r, "quizId"), userID(r)); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *QuizHandler) ListResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.service.ListResults(r.Context(), chi.URLParam(r, "quizId"), userID(r))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *QuizHandler) FetchQuizForTaking(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.FetchQuizForTaking(r.Context(), chi.URLParam(r, "quizId"), userID(r))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, newTakingResponse(view))
}

func (h *QuizHandler) StartAttempt(w http.ResponseWriter, r *http.Request) {
	var req startAttemptRequest
	if r.ContentLength != 0 {
		if err := decodeBody(r, h.validate, &req); err != nil {
			writeError(w, r, h.log, err)
			return
		}
	}
	view, attempt, err := h.service.StartAttempt(r.Context(), chi.URLParam(r, "quizId"), userID(r), req.ClassID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, attemptResponse{
		takingResponse: newTakingResponse(view),
		State:          attempt.State(),
	})
}

func (h *QuizHandler) RecordAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decodeBody(r, h.validate, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	state, err := h.service.RecordAnswer(chi.URLParam(r, "quizId"), userID(r), *req.QuestionIndex, *req.OptionIndex)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *QuizHandler) SubmitAttempt(w http.ResponseWriter, r *http.Request) {
	sub, err := h.service.SubmitAttempt(r.Context(), chi.URLParam(r, "quizId"), userID(r))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (h *QuizHandler) AbandonAttempt(w http.ResponseWriter, r *http.Request) {
	h.service.AbandonAttempt(chi.URLParam(r, "quizId"), userID(r))
	w.WriteHeader(http.StatusNoContent)
}
