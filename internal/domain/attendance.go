package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// ActivityType enumerates the engagement events tracked as attendance.
type ActivityType string

const (
	ActivityLessonView  ActivityType = "lesson_view"
	ActivityQuizAttempt ActivityType = "quiz_attempt"
)

// Valid reports whether the activity type is one of the known values.
func (a ActivityType) Valid() bool {
	return a == ActivityLessonView || a == ActivityQuizAttempt
}

// Attendance records a student's interaction with a lesson or quiz on one day.
type Attendance struct {
	ID           string       `json:"id"`
	StudentID    string       `json:"studentId"`
	ClassroomID  string       `json:"classId"`
	ActivityType ActivityType `json:"activityType"`
	ActivityID   string       `json:"activityId"`
	Date         time.Time    `json:"date"`
	// Duration in seconds, only set for lesson views.
	Duration *int `json:"duration,omitempty"`
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// AttendanceID is the per-day identity of an attendance record. Two events for
// the same student, classroom and activity on the same local day share it.
// The parts are length-prefixed before hashing so ids containing the
// separator cannot collide.
func AttendanceID(studentID, classroomID string, activity ActivityType, activityID string, day time.Time) string {
	h := sha256.New()
	for _, part := range []string{studentID, classroomID, string(activity), activityID} {
		fmt.Fprintf(h, "%d:%s", len(part), part)
	}
	return StartOfDay(day).Format("20060102") + "_" + hex.EncodeToString(h.Sum(nil))
}

// AttendanceFilter narrows attendance listings. ClassroomID is required.
type AttendanceFilter struct {
	ClassroomID  string
	StudentID    string
	ActivityType ActivityType
	Since        time.Time
}

// Match reports whether the record passes the filter.
func (f AttendanceFilter) Match(a Attendance) bool {
	if a.ClassroomID != f.ClassroomID {
		return false
	}
	if f.StudentID != "" && a.StudentID != f.StudentID {
		return false
	}
	if f.ActivityType != "" && a.ActivityType != f.ActivityType {
		return false
	}
	if !f.Since.IsZero() && a.Date.Before(f.Since) {
		return false
	}
	return true
}
