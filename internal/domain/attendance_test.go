package domain_test

import (
	"strings"
	"testing"
	"time"

	"classroom-quiz-service/internal/domain"
)

func TestAttendanceIDBucketsByLocalDay(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	morning := time.Date(2024, 3, 10, 0, 5, 0, 0, loc)
	night := time.Date(2024, 3, 10, 23, 55, 0, 0, loc)
	nextDay := time.Date(2024, 3, 11, 0, 1, 0, 0, loc)

	a := domain.AttendanceID("s1", "c1", domain.ActivityLessonView, "l1", morning)
	b := domain.AttendanceID("s1", "c1", domain.ActivityLessonView, "l1", night)
	c := domain.AttendanceID("s1", "c1", domain.ActivityLessonView, "l1", nextDay)

	if a != b {
		t.Fatalf("expected same-day ids to match: %s vs %s", a, b)
	}
	if a == c {
		t.Fatalf("expected next-day id to differ")
	}
	if !strings.HasPrefix(a, "20240310_") {
		t.Fatalf("expected id to start with the local day, got %s", a)
	}
	if quiz := domain.AttendanceID("s1", "c1", domain.ActivityQuizAttempt, "l1", morning); quiz == a {
		t.Fatalf("expected activity type to be part of the id")
	}
}

func TestAttendanceIDSeparatesUnderscoredIDs(t *testing.T) {
	day := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	a := domain.AttendanceID("a_b", "c", domain.ActivityLessonView, "l1", day)
	b := domain.AttendanceID("a", "b_c", domain.ActivityLessonView, "l1", day)
	if a == b {
		t.Fatalf("expected distinct ids for (a_b, c) and (a, b_c), both got %s", a)
	}
	c := domain.AttendanceID("s1", "c1_lesson_view", domain.ActivityLessonView, "l1", day)
	d := domain.AttendanceID("s1", "c1", domain.ActivityLessonView, "lesson_view_l1", day)
	if c == d {
		t.Fatalf("expected activity id boundaries to matter")
	}
}

func TestAttendanceFilter(t *testing.T) {
	day := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	rec := domain.Attendance{StudentID: "s1", ClassroomID: "c1", ActivityType: domain.ActivityQuizAttempt, Date: day}

	if !(domain.AttendanceFilter{ClassroomID: "c1"}).Match(rec) {
		t.Fatalf("expected classroom filter to match")
	}
	if (domain.AttendanceFilter{ClassroomID: "c2"}).Match(rec) {
		t.Fatalf("expected other classroom to be excluded")
	}
	if (domain.AttendanceFilter{ClassroomID: "c1", ActivityType: domain.ActivityLessonView}).Match(rec) {
		t.Fatalf("expected activity type to be filtered")
	}
	if (domain.AttendanceFilter{ClassroomID: "c1", Since: day.Add(time.Hour)}).Match(rec) {
		t.Fatalf("expected older record to be filtered")
	}
}
