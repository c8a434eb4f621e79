package app

import (
	"context"
	"time"

	"classroom-quiz-service/internal/domain"
	"github.com/sirupsen/logrus"
)

// AttendanceStore persists attendance records keyed by their per-day identity.
// Implementations must apply both writes atomically on the record id.
type AttendanceStore interface {
	// AddLessonView creates the record or adds record.Duration to the stored duration.
	AddLessonView(ctx context.Context, record domain.Attendance) error
	// AddQuizAttempt creates the record unless one already exists; it reports whether it created one.
	AddQuizAttempt(ctx context.Context, record domain.Attendance) (bool, error)
	ListAttendance(ctx context.Context, filter domain.AttendanceFilter) ([]domain.Attendance, error)
}

// AttendanceRecorder tracks lesson views and quiz attempts, deduplicated per local calendar day.
// Recording is best effort: failures are logged and reported as false, never returned.
type AttendanceRecorder struct {
	store AttendanceStore
	log   logrus.FieldLogger
	now   func() time.Time
	loc   *time.Location
}

// RecorderOption customizes an AttendanceRecorder.
type RecorderOption func(*AttendanceRecorder)

// WithRecorderClock overrides the time source, mainly for tests.
func WithRecorderClock(now func() time.Time) RecorderOption {
	return func(r *AttendanceRecorder) { r.now = now }
}

// WithLocation sets the zone whose midnight starts a new attendance day.
func WithLocation(loc *time.Location) RecorderOption {
	return func(r *AttendanceRecorder) {
		if loc != nil {
			r.loc = loc
		}
	}
}

func NewAttendanceRecorder(store AttendanceStore, log logrus.FieldLogger, opts ...RecorderOption) *AttendanceRecorder {
	if log == nil {
		log = logrus.StandardLogger()
	}
	r := &AttendanceRecorder{
		store: store,
		log:   log,
		now:   time.Now,
		loc:   time.Local,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RecordLessonView adds durationSeconds to today's lesson-view record for the student,
// creating the record on the first view of the day.
func (r *AttendanceRecorder) RecordLessonView(ctx context.Context, studentID, classroomID, lessonID string, durationSeconds int) bool {
	entry := r.log.WithFields(logrus.Fields{
		"studentId": studentID,
		"classId":   classroomID,
		"lessonId":  lessonID,
	})
	if durationSeconds < 0 {
		entry.WithError(domain.ErrNegativeDuration).Warn("lesson view not recorded")
		return false
	}

	record := r.newRecord(studentID, classroomID, domain.ActivityLessonView, lessonID)
	duration := durationSeconds
	record.Duration = &duration

	if err := r.store.AddLessonView(ctx, record); err != nil {
		entry.WithError(err).Error("error recording lesson view")
		return false
	}
	return true
}

// RecordQuizAttempt marks that the student attempted the quiz today. Later
// attempts on the same day leave the existing record alone.
func (r *AttendanceRecorder) RecordQuizAttempt(ctx context.Context, studentID, classroomID, quizID string) bool {
	record := r.newRecord(studentID, classroomID, domain.ActivityQuizAttempt, quizID)
	if _, err := r.store.AddQuizAttempt(ctx, record); err != nil {
		r.log.WithFields(logrus.Fields{
			"studentId": studentID,
			"classId":   classroomID,
			"quizId":    quizID,
		}).WithError(err).Error("error recording quiz attempt")
		return false
	}
	return true
}

// ListAttendance returns the classroom's records matching the filter, newest first.
func (r *AttendanceRecorder) ListAttendance(ctx context.Context, filter domain.AttendanceFilter) ([]domain.Attendance, error) {
	if filter.ClassroomID == "" {
		return nil, domain.ErrMissingClassroom
	}
	return r.store.ListAttendance(ctx, filter)
}

func (r *AttendanceRecorder) newRecord(studentID, classroomID string, activity domain.ActivityType, activityID string) domain.Attendance {
	now := r.now().In(r.loc)
	return domain.Attendance{
		ID:           domain.AttendanceID(studentID, classroomID, activity, activityID, now),
		StudentID:    studentID,
		ClassroomID:  classroomID,
		ActivityType: activity,
		ActivityID:   activityID,
		Date:         now,
	}
}
