package postgres

import (
	"context"
	"fmt"
	"time"

	"classroom-quiz-service/internal/domain"
	"github.com/uptrace/bun"
)

type attendanceRow struct {
	bun.BaseModel `bun:"table:attendances,alias:att"`

	ID              string    `bun:"id,pk"`
	StudentID       string    `bun:"student_id,notnull"`
	ClassroomID     string    `bun:"classroom_id,notnull"`
	ActivityType    string    `bun:"activity_type,notnull"`
	ActivityID      string    `bun:"activity_id,notnull"`
	Date            time.Time `bun:"date,notnull"`
	DurationSeconds *int      `bun:"duration_seconds"`
}

func (r attendanceRow) toDomain() domain.Attendance {
	return domain.Attendance{
		ID:           r.ID,
		StudentID:    r.StudentID,
		ClassroomID:  r.ClassroomID,
		ActivityType: domain.ActivityType(r.ActivityType),
		ActivityID:   r.ActivityID,
		Date:         r.Date,
		Duration:     r.DurationSeconds,
	}
}

func newAttendanceRow(a domain.Attendance) *attendanceRow {
	return &attendanceRow{
		ID:              a.ID,
		StudentID:       a.StudentID,
		ClassroomID:     a.ClassroomID,
		ActivityType:    string(a.ActivityType),
		ActivityID:      a.ActivityID,
		Date:            a.Date,
		DurationSeconds: a.Duration,
	}
}

// AttendanceStore upserts attendance rows on their per-day id.
type AttendanceStore struct {
	db bun.IDB
}

func NewAttendanceStore(db bun.IDB) *AttendanceStore {
	return &AttendanceStore{db: db}
}

// AddLessonView inserts the row or adds the duration to the existing one.
// The first view of the day keeps its date.
func (s *AttendanceStore) AddLessonView(ctx context.Context, record domain.Attendance) error {
	row := newAttendanceRow(record)
	if row.DurationSeconds == nil {
		zero := 0
		row.DurationSeconds = &zero
	}
	_, err := s.db.NewInsert().
		Model(row).
		On("CONFLICT (id) DO UPDATE").
		Set("duration_seconds = COALESCE(att.duration_seconds, 0) + EXCLUDED.duration_seconds").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("add lesson view: %w", err)
	}
	return nil
}

func (s *AttendanceStore) AddQuizAttempt(ctx context.Context, record domain.Attendance) (bool, error) {
	row := newAttendanceRow(record)
	row.DurationSeconds = nil
	res, err := s.db.NewInsert().
		Model(row).
		On("CONFLICT (id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("add quiz attempt: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("add quiz attempt: %w", err)
	}
	return n > 0, nil
}

// ListAttendance returns matching rows, newest first.
func (s *AttendanceStore) ListAttendance(ctx context.Context, filter domain.AttendanceFilter) ([]domain.Attendance, error) {
	var rows []attendanceRow
	q := s.db.NewSelect().
		Model(&rows).
		Where("classroom_id = ?", filter.ClassroomID)
	if filter.StudentID != "" {
		q = q.Where("student_id = ?", filter.StudentID)
	}
	if filter.ActivityType != "" {
		q = q.Where("activity_type = ?", string(filter.ActivityType))
	}
	if !filter.Since.IsZero() {
		q = q.Where("date >= ?", filter.Since)
	}
	if err := q.Order("date DESC", "id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	out := make([]domain.Attendance, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
