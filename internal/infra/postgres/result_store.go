package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"classroom-quiz-service/internal/domain"
	"github.com/uptrace/bun"
)

type resultRow struct {
	bun.BaseModel `bun:"table:quiz_results,alias:qr"`

	ID             string         `bun:"id,pk"`
	QuizID         string         `bun:"quiz_id,notnull"`
	StudentID      string         `bun:"student_id,notnull"`
	ClassroomID    string         `bun:"classroom_id,notnull"`
	Answers        domain.Answers `bun:"answers,type:jsonb,notnull"`
	Score          int            `bun:"score,notnull"`
	TotalQuestions int            `bun:"total_questions,notnull"`
	SubmittedAt    time.Time      `bun:"submitted_at,notnull"`
}

func newResultRow(r domain.QuizResult) *resultRow {
	answers := r.Answers
	if answers == nil {
		answers = domain.Answers{}
	}
	return &resultRow{
		ID:             r.ID,
		QuizID:         r.QuizID,
		StudentID:      r.StudentID,
		ClassroomID:    r.ClassroomID,
		Answers:        answers,
		Score:          r.Score,
		TotalQuestions: r.TotalQuestions,
		SubmittedAt:    r.SubmittedAt,
	}
}

func (r resultRow) toDomain() domain.QuizResult {
	return domain.QuizResult{
		ID:             r.ID,
		QuizID:         r.QuizID,
		StudentID:      r.StudentID,
		ClassroomID:    r.ClassroomID,
		Answers:        r.Answers,
		Score:          r.Score,
		TotalQuestions: r.TotalQuestions,
		SubmittedAt:    r.SubmittedAt,
	}
}

// ResultStore persists quiz results through bun.
type ResultStore struct {
	db bun.IDB
}

func NewResultStore(db bun.IDB) *ResultStore {
	return &ResultStore{db: db}
}

func (s *ResultStore) GetResult(ctx context.Context, resultID string) (domain.QuizResult, error) {
	var row resultRow
	err := s.db.NewSelect().Model(&row).Where("id = ?", resultID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.QuizResult{}, domain.ErrResultNotFound
	}
	if err != nil {
		return domain.QuizResult{}, fmt.Errorf("get result: %w", err)
	}
	return row.toDomain(), nil
}

// CreateResult inserts the result unless one with the same id exists.
func (s *ResultStore) CreateResult(ctx context.Context, result domain.QuizResult) (bool, error) {
	res, err := s.db.NewInsert().
		Model(newResultRow(result)).
		On("CONFLICT (id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("create result: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("create result: %w", err)
	}
	return n > 0, nil
}

func (s *ResultStore) PutResult(ctx context.Context, result domain.QuizResult) error {
	_, err := s.db.NewInsert().
		Model(newResultRow(result)).
		On("CONFLICT (id) DO UPDATE").
		Set("answers = EXCLUDED.answers").
		Set("score = EXCLUDED.score").
		Set("total_questions = EXCLUDED.total_questions").
		Set("classroom_id = EXCLUDED.classroom_id").
		Set("submitted_at = EXCLUDED.submitted_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("put result: %w", err)
	}
	return nil
}

// ListResults returns the quiz's results in submission order.
func (s *ResultStore) ListResults(ctx context.Context, quizID string) ([]domain.QuizResult, error) {
	var rows []resultRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("quiz_id = ?", quizID).
		Order("submitted_at ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	out := make([]domain.QuizResult, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (s *ResultStore) DeleteResults(ctx context.Context, quizID string) error {
	_, err := s.db.NewDelete().
		Model((*resultRow)(nil)).
		Where("quiz_id = ?", quizID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete results: %w", err)
	}
	return nil
}
