package persistence

import (
	"context"
	"strconv"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khoahotran/careerfolio/internal/domain/enrollment"
	"github.com/khoahotran/careerfolio/pkg/apperror"
	"github.com/khoahotran/careerfolio/pkg/logger"
)

type postgresEnrollmentRepo struct {
	pool   *pgxpool.Pool
	db     DBTX
	logger logger.Logger
}

func NewPostgresEnrollmentRepo(pool *pgxpool.Pool, logger logger.Logger) enrollment.Repository {
	return &postgresEnrollmentRepo{pool: pool, db: pool, logger: logger}
}

func (r *postgresEnrollmentRepo) InTx(ctx context.Context, fn func(ctx context.Context, repo enrollment.Repository) error) error {
	return runInTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &postgresEnrollmentRepo{db: tx, logger: r.logger})
	})
}

const enrollmentColumns = "idx, user_idx, course_idx, enrolled_at, progress_percent"

// Total lectures of the course, and completed progress rows of the enrollment
// whose lecture still belongs to that course.
const progressStatsQuery = `
	SELECT
		(SELECT COUNT(*)
		   FROM lectures l
		   JOIN sections s ON l.section_idx = s.idx
		  WHERE s.course_idx = $1) AS total_lectures,
		(SELECT COUNT(*)
		   FROM lecture_progress lp
		   JOIN lectures l ON lp.lecture_idx = l.idx
		   JOIN sections s ON l.section_idx = s.idx
		  WHERE lp.enrollment_idx = $2 AND s.course_idx = $1 AND lp.is_completed) AS completed_lectures
`

func scanEnrollment(row pgx.Row) (*enrollment.Enrollment, error) {
	e := &enrollment.Enrollment{}
	err := row.Scan(&e.ID, &e.UserID, &e.CourseID, &e.EnrolledAt, &e.ProgressPercent)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *postgresEnrollmentRepo) FindLecture(ctx context.Context, lectureID int64) (*enrollment.LectureRef, error) {
	query := `
		SELECT l.idx, s.course_idx, l.duration_seconds
		FROM lectures l
		JOIN sections s ON l.section_idx = s.idx
		WHERE l.idx = $1
	`
	ref := &enrollment.LectureRef{}
	err := r.db.QueryRow(ctx, query, lectureID).Scan(&ref.LectureID, &ref.CourseID, &ref.DurationSeconds)
	if err != nil {
		return nil, notFoundOr(err, "lecture", strconv.FormatInt(lectureID, 10), "failed to query lecture")
	}
	return ref, nil
}

func (r *postgresEnrollmentRepo) FindByUserAndCourse(ctx context.Context, userID, courseID int64) (*enrollment.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE user_idx = $1 AND course_idx = $2`
	e, err := scanEnrollment(r.db.QueryRow(ctx, query, userID, courseID))
	if err != nil {
		return nil, notFoundOr(err, "enrollment", strconv.FormatInt(courseID, 10), "failed to query enrollment")
	}
	return e, nil
}

func (r *postgresEnrollmentRepo) FindByUserAndLecture(ctx context.Context, userID, lectureID int64) (*enrollment.Enrollment, error) {
	query := `
		SELECT e.idx, e.user_idx, e.course_idx, e.enrolled_at, e.progress_percent
		FROM enrollments e
		JOIN sections s ON e.course_idx = s.course_idx
		JOIN lectures l ON s.idx = l.section_idx
		WHERE e.user_idx = $1 AND l.idx = $2
	`
	e, err := scanEnrollment(r.db.QueryRow(ctx, query, userID, lectureID))
	if err != nil {
		return nil, notFoundOr(err, "enrollment", strconv.FormatInt(lectureID, 10), "failed to query enrollment by lecture")
	}
	return e, nil
}

func (r *postgresEnrollmentRepo) UpsertLectureProgress(ctx context.Context, p enrollment.LectureProgress) error {
	query := `
		INSERT INTO lecture_progress (enrollment_idx, lecture_idx, watched_seconds, is_completed, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (enrollment_idx, lecture_idx) DO UPDATE SET
			watched_seconds = EXCLUDED.watched_seconds,
			is_completed = EXCLUDED.is_completed,
			updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, p.EnrollmentID, p.LectureID, p.WatchedSeconds, p.Completed)
	if err != nil {
		return apperror.NewInternal("failed to upsert lecture progress", err)
	}
	return nil
}

func (r *postgresEnrollmentRepo) CountStats(ctx context.Context, key enrollment.Key) (enrollment.Stats, error) {
	var s enrollment.Stats
	err := r.db.QueryRow(ctx, progressStatsQuery, key.CourseID, key.EnrollmentID).Scan(&s.TotalLectures, &s.CompletedLectures)
	if err != nil {
		return s, apperror.NewInternal("failed to count lecture progress", err)
	}
	return s, nil
}

// CountStatsBatch sends one stats query per enrollment in a single round trip.
func (r *postgresEnrollmentRepo) CountStatsBatch(ctx context.Context, keys []enrollment.Key) (map[int64]enrollment.Stats, error) {
	result := make(map[int64]enrollment.Stats, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	batch := &pgx.Batch{}
	for _, k := range keys {
		batch.Queue(progressStatsQuery, k.CourseID, k.EnrollmentID)
	}

	br := r.db.SendBatch(ctx, batch)
	defer br.Close()

	for _, k := range keys {
		var s enrollment.Stats
		if err := br.QueryRow().Scan(&s.TotalLectures, &s.CompletedLectures); err != nil {
			return nil, apperror.NewInternal("failed to count lecture progress for enrollment "+strconv.FormatInt(k.EnrollmentID, 10), err)
		}
		result[k.EnrollmentID] = s
	}

	if err := br.Close(); err != nil {
		return nil, apperror.NewInternal("failed to close stats batch", err)
	}
	return result, nil
}

func (r *postgresEnrollmentRepo) UpdateProgressPercent(ctx context.Context, enrollmentID int64, percent int) error {
	cmdTag, err := r.db.Exec(ctx, `UPDATE enrollments SET progress_percent = $1 WHERE idx = $2`, percent, enrollmentID)
	if err != nil {
		return apperror.NewInternal("failed to update progress percent", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperror.NewNotFound("enrollment", strconv.FormatInt(enrollmentID, 10))
	}
	return nil
}

func (r *postgresEnrollmentRepo) ListSummariesByUser(ctx context.Context, userID int64) ([]*enrollment.Summary, error) {
	builder := psql.Select("e.idx, c.idx, c.title, c.thumbnail_url, u.name, e.enrolled_at, e.progress_percent").
		From("enrollments e").
		Join("courses c ON e.course_idx = c.idx").
		Join("users u ON c.instructor_idx = u.idx").
		Where(sq.Eq{"e.user_idx": userID}).
		OrderBy("e.enrolled_at DESC", "e.idx DESC")

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build my enrollments query", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to query my enrollments", err)
	}
	defer rows.Close()

	summaries := make([]*enrollment.Summary, 0)
	for rows.Next() {
		s := &enrollment.Summary{}
		if err := rows.Scan(&s.EnrollmentID, &s.CourseID, &s.Title, &s.ThumbnailURL, &s.InstructorName, &s.EnrolledAt, &s.ProgressPercent); err != nil {
			return nil, apperror.NewInternal("failed to scan enrollment summary", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating enrollment rows", err)
	}
	return summaries, nil
}

func (r *postgresEnrollmentRepo) FindCoursePricing(ctx context.Context, courseID int64) (*enrollment.CoursePricing, error) {
	p := &enrollment.CoursePricing{}
	err := r.db.QueryRow(ctx, `SELECT idx, title, price, discount_price FROM courses WHERE idx = $1`, courseID).
		Scan(&p.CourseID, &p.Title, &p.Price, &p.DiscountPrice)
	if err != nil {
		return nil, notFoundOr(err, "course", strconv.FormatInt(courseID, 10), "failed to query course pricing")
	}
	return p, nil
}

func (r *postgresEnrollmentRepo) Create(ctx context.Context, userID, courseID int64) (*enrollment.Enrollment, error) {
	return insertEnrollment(ctx, r.db, userID, courseID)
}

func (r *postgresEnrollmentRepo) IncrementEnrollmentCount(ctx context.Context, courseID int64) error {
	return incrementEnrollmentCount(ctx, r.db, courseID)
}

func insertEnrollment(ctx context.Context, db DBTX, userID, courseID int64) (*enrollment.Enrollment, error) {
	query := `
		INSERT INTO enrollments (user_idx, course_idx)
		VALUES ($1, $2)
		RETURNING ` + enrollmentColumns
	e, err := scanEnrollment(db.QueryRow(ctx, query, userID, courseID))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperror.NewConflict("enrollment", "course", strconv.FormatInt(courseID, 10))
		}
		return nil, apperror.NewInternal("failed to create enrollment", err)
	}
	return e, nil
}

func incrementEnrollmentCount(ctx context.Context, db DBTX, courseID int64) error {
	cmdTag, err := db.Exec(ctx, `UPDATE courses SET enrollment_count = enrollment_count + 1 WHERE idx = $1`, courseID)
	if err != nil {
		return apperror.NewInternal("failed to increment enrollment count", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperror.NewNotFound("course", strconv.FormatInt(courseID, 10))
	}
	return nil
}
