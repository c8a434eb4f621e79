package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"classroom-quiz-service/internal/app"
	"classroom-quiz-service/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

type WSHandler struct {
	service  *app.QuizService
	log      logrus.FieldLogger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, log logrus.FieldLogger) *WSHandler {
	return &WSHandler{
		service: service,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type wsAnswerPayload struct {
	QuestionIndex int `json:"questionIndex"`
	OptionIndex   int `json:"optionIndex"`
}

type startedPayload struct {
	takingResponse
	State domain.AttemptState `json:"state"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS runs one student's attempt over a websocket: answers and submit come
// in, countdown ticks and the result go out. Disconnecting before submitting
// abandons the attempt. classId is optional and defaults to the quiz's classroom.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	classID := r.URL.Query().Get("classId")
	userID := r.URL.Query().Get("userId")
	if quizID == "" || userID == "" {
		http.Error(w, "missing quizId or userId", http.StatusBadRequest)
		return
	}
	log := h.log.WithFields(logrus.Fields{"quizId": quizID, "studentId": userID})

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("ws upgrade failed")
		return
	}
	defer conn.Close()

	view, attempt, err := h.service.StartAttempt(r.Context(), quizID, userID, classID)
	if errors.Is(err, domain.ErrAlreadySubmitted) {
		_ = conn.WriteJSON(outboundMessage[*domain.Submission]{
			Type:    "submitted",
			Payload: &domain.Submission{Result: *view.PriorResult, Duplicate: true},
		})
		return
	}
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	updates, cancel := attempt.Subscribe()
	defer cancel()
	defer func() {
		if !attempt.State().Submitted {
			h.service.AbandonAttempt(quizID, userID)
		}
	}()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// single writer: gorilla connections do not support concurrent writes
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.WithError(err).Debug("ws write error")
				return
			}
		}
	}()

	// the initial snapshot is folded into "started"
	state := <-updates
	started := outboundMessage[any]{Type: "started", Payload: startedPayload{
		takingResponse: newTakingResponse(view),
		State:          state,
	}}
	select {
	case send <- started:
	case <-writerDone:
	}

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				msg := outboundMessage[any]{Type: "state", Payload: update}
				if update.Submitted {
					msg = outboundMessage[any]{Type: "submitted", Payload: update.Result}
				}
				select {
				case send <- msg:
				case <-closeSignals:
					return
				case <-writerDone:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	// a dead writer means a dead connection; stop reading rather than block on send
read:
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		msg, ok := h.handleInbound(r.Context(), attempt, inbound)
		if ok {
			continue
		}
		select {
		case send <- msg:
		case <-writerDone:
			break read
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

// handleInbound applies one client message. Successful changes reach the
// client through the attempt subscription; only failures are answered here.
func (h *WSHandler) handleInbound(ctx context.Context, attempt *app.Attempt, inbound inboundMessage) (outboundMessage[any], bool) {
	fail := func(msg string) (outboundMessage[any], bool) {
		return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}}, false
	}
	switch inbound.Type {
	case "answer":
		var payload wsAnswerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return fail("invalid answer payload")
		}
		if payload.QuestionIndex < 0 || payload.OptionIndex < 0 {
			return fail("indices must not be negative")
		}
		if _, err := attempt.RecordAnswer(payload.QuestionIndex, payload.OptionIndex); err != nil {
			return fail(err.Error())
		}
	case "submit":
		if _, err := attempt.Submit(ctx); err != nil {
			return fail(err.Error())
		}
	default:
		return fail("unsupported message type")
	}
	return outboundMessage[any]{}, true
}
