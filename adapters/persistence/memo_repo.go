package persistence

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khoahotran/careerfolio/internal/domain/memo"
	"github.com/khoahotran/careerfolio/pkg/apperror"
	"github.com/khoahotran/careerfolio/pkg/logger"
)

type postgresMemoRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresMemoRepo(db *pgxpool.Pool, logger logger.Logger) memo.Repository {
	return &postgresMemoRepo{db: db, logger: logger}
}

func (r *postgresMemoRepo) ListByLecture(ctx context.Context, enrollmentID, lectureID int64) ([]*memo.Memo, error) {
	query := `
		SELECT idx, enrollment_idx, lecture_idx, timestamp_seconds, content, created_at
		FROM lecture_memos
		WHERE enrollment_idx = $1 AND lecture_idx = $2
		ORDER BY timestamp_seconds, idx
	`
	rows, err := r.db.Query(ctx, query, enrollmentID, lectureID)
	if err != nil {
		return nil, apperror.NewInternal("failed to query memos", err)
	}
	memos, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*memo.Memo, error) {
		m := &memo.Memo{}
		err := row.Scan(&m.ID, &m.EnrollmentID, &m.LectureID, &m.TimestampSeconds, &m.Content, &m.CreatedAt)
		return m, err
	})
	if err != nil {
		return nil, apperror.NewInternal("failed to scan memos", err)
	}
	return memos, nil
}

func (r *postgresMemoRepo) Create(ctx context.Context, m *memo.Memo) error {
	query := `
		INSERT INTO lecture_memos (enrollment_idx, lecture_idx, timestamp_seconds, content)
		VALUES ($1, $2, $3, $4)
		RETURNING idx, created_at
	`
	err := r.db.QueryRow(ctx, query, m.EnrollmentID, m.LectureID, m.TimestampSeconds, m.Content).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return apperror.NewInternal("failed to create memo", err)
	}
	return nil
}

func (r *postgresMemoRepo) Delete(ctx context.Context, memoID, userID int64) error {
	query := `
		DELETE FROM lecture_memos m
		USING enrollments e
		WHERE m.enrollment_idx = e.idx AND m.idx = $1 AND e.user_idx = $2
	`
	cmdTag, err := r.db.Exec(ctx, query, memoID, userID)
	if err != nil {
		return apperror.NewInternal("failed to delete memo", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperror.NewNotFound("memo", strconv.FormatInt(memoID, 10))
	}
	return nil
}
