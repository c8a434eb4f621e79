package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"classroom-quiz-service/internal/app"
	"classroom-quiz-service/internal/domain"
	"classroom-quiz-service/internal/infra/memory"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

func TestLessonViewsAccumulateSameDay(t *testing.T) {
	ctx := context.Background()
	store := memory.NewAttendanceStore()
	clock := &fakeClock{now: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)}
	recorder := newRecorder(store, clock)

	if !recorder.RecordLessonView(ctx, "s1", "c1", "l1", 30) {
		t.Fatalf("expected first view recorded")
	}
	clock.advance(3 * time.Hour)
	if !recorder.RecordLessonView(ctx, "s1", "c1", "l1", 45) {
		t.Fatalf("expected second view recorded")
	}

	records, err := recorder.ListAttendance(ctx, domain.AttendanceFilter{ClassroomID: "c1"})
	if err != nil {
		t.Fatalf("list attendance: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected exactly one record, got %d", len(records))
	}
	if records[0].Duration == nil || *records[0].Duration != 75 {
		t.Fatalf("expected accumulated duration 75, got %+v", records[0].Duration)
	}
	if records[0].ActivityType != domain.ActivityLessonView || records[0].ActivityID != "l1" {
		t.Fatalf("unexpected record %+v", records[0])
	}
}

func TestLessonViewsOnDifferentDays(t *testing.T) {
	ctx := context.Background()
	store := memory.NewAttendanceStore()
	clock := &fakeClock{now: time.Date(2024, 3, 10, 23, 50, 0, 0, time.UTC)}
	recorder := newRecorder(store, clock)

	recorder.RecordLessonView(ctx, "s1", "c1", "l1", 20)
	clock.advance(20 * time.Minute)
	recorder.RecordLessonView(ctx, "s1", "c1", "l1", 40)

	records, _ := recorder.ListAttendance(ctx, domain.AttendanceFilter{ClassroomID: "c1", StudentID: "s1"})
	if len(records) != 2 {
		t.Fatalf("expected two records across midnight, got %d", len(records))
	}
	// newest first
	if *records[0].Duration != 40 || *records[1].Duration != 20 {
		t.Fatalf("expected each day to hold its own duration, got %d and %d", *records[0].Duration, *records[1].Duration)
	}
}

func TestLessonViewUsesConfiguredZone(t *testing.T) {
	ctx := context.Background()
	store := memory.NewAttendanceStore()
	// 16:30 UTC is 23:30 in UTC+7, two hours later is the next local day
	clock := &fakeClock{now: time.Date(2024, 3, 10, 16, 30, 0, 0, time.UTC)}
	recorder := app.NewAttendanceRecorder(store, discardLogger(),
		app.WithRecorderClock(clock.Now),
		app.WithLocation(time.FixedZone("UTC+7", 7*3600)),
	)

	recorder.RecordLessonView(ctx, "s1", "c1", "l1", 10)
	clock.advance(2 * time.Hour)
	recorder.RecordLessonView(ctx, "s1", "c1", "l1", 10)

	records, _ := recorder.ListAttendance(ctx, domain.AttendanceFilter{ClassroomID: "c1"})
	if len(records) != 2 {
		t.Fatalf("expected local midnight to split the records, got %d", len(records))
	}
}

func TestLessonViewsKeepStudentsApartWithUnderscoredIDs(t *testing.T) {
	ctx := context.Background()
	store := memory.NewAttendanceStore()
	clock := &fakeClock{now: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)}
	recorder := newRecorder(store, clock)

	recorder.RecordLessonView(ctx, "a_b", "c", "l1", 10)
	recorder.RecordLessonView(ctx, "a", "b_c", "l1", 5)

	first, _ := recorder.ListAttendance(ctx, domain.AttendanceFilter{ClassroomID: "c"})
	second, _ := recorder.ListAttendance(ctx, domain.AttendanceFilter{ClassroomID: "b_c"})
	if len(first) != 1 || *first[0].Duration != 10 || first[0].StudentID != "a_b" {
		t.Fatalf("expected class c to hold only a_b's 10s view, got %+v", first)
	}
	if len(second) != 1 || *second[0].Duration != 5 || second[0].StudentID != "a" {
		t.Fatalf("expected class b_c to hold a's 5s view, got %+v", second)
	}
}

func TestQuizAttemptRecordedOncePerDay(t *testing.T) {
	ctx := context.Background()
	store := memory.NewAttendanceStore()
	clock := &fakeClock{now: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)}
	recorder := newRecorder(store, clock)

	if !recorder.RecordQuizAttempt(ctx, "s1", "c1", "quiz-1") {
		t.Fatalf("expected attempt recorded")
	}
	clock.advance(time.Hour)
	if !recorder.RecordQuizAttempt(ctx, "s1", "c1", "quiz-1") {
		t.Fatalf("expected repeated attempt to succeed as a no-op")
	}

	records, _ := recorder.ListAttendance(ctx, domain.AttendanceFilter{ClassroomID: "c1", ActivityType: domain.ActivityQuizAttempt})
	if len(records) != 1 {
		t.Fatalf("expected exactly one quiz attempt record, got %d", len(records))
	}
	if records[0].Duration != nil {
		t.Fatalf("expected no duration on quiz attempts")
	}
	if !records[0].Date.Equal(time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected first attempt time kept, got %v", records[0].Date)
	}
}

func TestRecorderSwallowsStoreFailures(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	recorder := app.NewAttendanceRecorder(failingAttendanceStore{}, logger)
	ctx := context.Background()

	if recorder.RecordLessonView(ctx, "s1", "c1", "l1", 10) {
		t.Fatalf("expected lesson view failure to report false")
	}
	if recorder.RecordQuizAttempt(ctx, "s1", "c1", "quiz-1") {
		t.Fatalf("expected quiz attempt failure to report false")
	}
	if len(hook.AllEntries()) != 2 || hook.LastEntry().Level != logrus.ErrorLevel {
		t.Fatalf("expected two error log entries, got %d", len(hook.AllEntries()))
	}
}

func TestRecorderRejectsNegativeDuration(t *testing.T) {
	store := memory.NewAttendanceStore()
	recorder := newRecorder(store, &fakeClock{now: time.Now()})
	if recorder.RecordLessonView(context.Background(), "s1", "c1", "l1", -5) {
		t.Fatalf("expected negative duration to be rejected")
	}
	records, _ := recorder.ListAttendance(context.Background(), domain.AttendanceFilter{ClassroomID: "c1"})
	if len(records) != 0 {
		t.Fatalf("expected nothing written, got %d records", len(records))
	}
	if _, err := recorder.ListAttendance(context.Background(), domain.AttendanceFilter{}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected classroom to be required, got %v", err)
	}
}

type failingAttendanceStore struct{}

var errStoreDown = errors.New("store unavailable")

func (failingAttendanceStore) AddLessonView(context.Context, domain.Attendance) error {
	return errStoreDown
}

func (failingAttendanceStore) AddQuizAttempt(context.Context, domain.Attendance) (bool, error) {
	return false, errStoreDown
}

func (failingAttendanceStore) ListAttendance(context.Context, domain.AttendanceFilter) ([]domain.Attendance, error) {
	return nil, errStoreDown
}

func newRecorder(store app.AttendanceStore, clock *fakeClock) *app.AttendanceRecorder {
	return app.NewAttendanceRecorder(store, discardLogger(),
		app.WithRecorderClock(clock.Now),
		app.WithLocation(time.UTC),
	)
}

func discardLogger() logrus.FieldLogger {
	logger, _ := logtest.NewNullLogger()
	return logger
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) advance(d time.Duration) {
	c.now = c.now.Add(d)
}
