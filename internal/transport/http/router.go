package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

type contextKey string

const userIDKey contextKey = "userID"

// UserHeader carries the caller's identity. Authentication happens upstream.
const UserHeader = "X-User-ID"

// NewRouter wires the REST and WebSocket endpoints.
func NewRouter(quizzes *QuizHandler, attendance *AttendanceHandler, ws *WSHandler, log logrus.FieldLogger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/ws", ws.ServeWS)

	r.Group(func(r chi.Router) {
		r.Use(requireUser(log))

		r.Route("/classrooms/{classId}", func(r chi.Router) {
			r.Post("/quizzes", quizzes.CreateQuiz)
			r.Get("/quizzes", quizzes.ListQuizzes)
			r.Get("/attendance", attendance.ListAttendance)
			r.Post("/lessons/{lessonId}/views", attendance.RecordLessonView)
		})

		r.Route("/quizzes/{quizId}", func(r chi.Router) {
			r.Get("/", quizzes.GetQuizForEditing)
			r.Delete("/", quizzes.DeleteQuiz)
			r.Put("/questions", quizzes.SaveQuiz)
			r.Get("/results", quizzes.ListResults)
			r.Get("/take", quizzes.FetchQuizForTaking)

			r.Post("/attempt", quizzes.StartAttempt)
			r.Delete("/attempt", quizzes.AbandonAttempt)
			r.Put("/attempt/answers", quizzes.RecordAnswer)
			r.Post("/attempt/submit", quizzes.SubmitAttempt)
		})
	})
	return r
}

func requireUser(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := r.Header.Get(UserHeader)
			if userID == "" {
				writeError(w, r, log, errMissingUser)
				return
			}
			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func userID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}

func requestLogger(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.WithFields(logrus.Fields{
				"method":    r.Method,
				"path":      r.URL.Path,
				"status":    ww.Status(),
				"bytes":     ww.BytesWritten(),
				"duration":  time.Since(start).String(),
				"requestId": middleware.GetReqID(r.Context()),
			}).Info("request")
		})
	}
}
