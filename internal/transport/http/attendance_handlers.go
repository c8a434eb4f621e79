package http

import (
	"fmt"
	"net/http"
	"time"

	"classroom-quiz-service/internal/app"
	"classroom-quiz-service/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

type AttendanceHandler struct {
	recorder *app.AttendanceRecorder
	validate *validator.Validate
	log      logrus.FieldLogger
}

func NewAttendanceHandler(recorder *app.AttendanceRecorder, validate *validator.Validate, log logrus.FieldLogger) *AttendanceHandler {
	return &AttendanceHandler{recorder: recorder, validate: validate, log: log}
}

type lessonViewRequest struct {
	Duration *int `json:"duration" validate:"required,min=0"`
}

type lessonViewResponse struct {
	Recorded bool `json:"recorded"`
}

// RecordLessonView never fails the caller on store errors; Recorded reports the outcome.
func (h *AttendanceHandler) RecordLessonView(w http.ResponseWriter, r *http.Request) {
	var req lessonViewRequest
	if err := decodeBody(r, h.validate, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	ok := h.recorder.RecordLessonView(r.Context(), userID(r), chi.URLParam(r, "classId"), chi.URLParam(r, "lessonId"), *req.Duration)
	writeJSON(w, http.StatusOK, lessonViewResponse{Recorded: ok})
}

func (h *AttendanceHandler) ListAttendance(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.AttendanceFilter{
		ClassroomID:  chi.URLParam(r, "classId"),
		StudentID:    q.Get("studentId"),
		ActivityType: domain.ActivityType(q.Get("activityType")),
	}
	if filter.ActivityType != "" && !filter.ActivityType.Valid() {
		writeError(w, r, h.log, fmt.Errorf("%w: unknown activity type %q", domain.ErrValidation, filter.ActivityType))
		return
	}
	if raw := q.Get("since"); raw != "" {
		since, err := parseSince(raw)
		if err != nil {
			writeError(w, r, h.log, err)
			return
		}
		filter.Since = since
	}

	records, err := h.recorder.ListAttendance(r.Context(), filter)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// parseSince accepts an RFC 3339 timestamp or a bare date.
func parseSince(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: since must be RFC 3339 or YYYY-MM-DD", domain.ErrValidation)
}
