package memory

import (
	"context"
	"sort"
	"sync"

	"classroom-quiz-service/internal/domain"
)

// AttendanceStore keeps attendance records keyed by their per-day id.
type AttendanceStore struct {
	mu      sync.Mutex
	records map[string]domain.Attendance
}

func NewAttendanceStore() *AttendanceStore {
	return &AttendanceStore{records: make(map[string]domain.Attendance)}
}

func (s *AttendanceStore) AddLessonView(_ context.Context, record domain.Attendance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	add := 0
	if record.Duration != nil {
		add = *record.Duration
	}
	if existing, ok := s.records[record.ID]; ok {
		total := add
		if existing.Duration != nil {
			total += *existing.Duration
		}
		existing.Duration = &total
		s.records[record.ID] = existing
		return nil
	}
	record.Duration = &add
	s.records[record.ID] = record
	return nil
}

func (s *AttendanceStore) AddQuizAttempt(_ context.Context, record domain.Attendance) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[record.ID]; ok {
		return false, nil
	}
	record.Duration = nil
	s.records[record.ID] = record
	return true, nil
}

// ListAttendance returns matching records, newest first.
func (s *AttendanceStore) ListAttendance(_ context.Context, filter domain.AttendanceFilter) ([]domain.Attendance, error) {
	s.mu.Lock()
	out := make([]domain.Attendance, 0)
	for _, record := range s.records {
		if filter.Match(record) {
			out = append(out, cloneAttendance(record))
		}
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func cloneAttendance(record domain.Attendance) domain.Attendance {
	if record.Duration != nil {
		d := *record.Duration
		record.Duration = &d
	}
	return record
}
