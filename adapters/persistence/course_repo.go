package persistence

import (
	"context"
	"strconv"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khoahotran/careerfolio/internal/domain/course"
	"github.com/khoahotran/careerfolio/pkg/apperror"
	"github.com/khoahotran/careerfolio/pkg/logger"
)

type postgresCourseRepo struct {
	pool   *pgxpool.Pool
	db     DBTX
	logger logger.Logger
}

func NewPostgresCourseRepo(pool *pgxpool.Pool, logger logger.Logger) course.Repository {
	return &postgresCourseRepo{pool: pool, db: pool, logger: logger}
}

func (r *postgresCourseRepo) InTx(ctx context.Context, fn func(ctx context.Context, repo course.Repository) error) error {
	return runInTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &postgresCourseRepo{db: tx, logger: r.logger})
	})
}

func courseSelect() sq.SelectBuilder {
	return psql.Select(
		"c.idx", "c.instructor_idx", "u.name", "c.title", "c.description", "c.thumbnail_url",
		"c.price", "c.discount_price", "c.status", "c.avg_rating::float8", "c.review_count",
		"c.enrollment_count", "c.created_at",
	).From("courses c").Join("users u ON c.instructor_idx = u.idx")
}

func scanCourse(row pgx.Row) (*course.Course, error) {
	c := &course.Course{}
	var status string
	err := row.Scan(
		&c.ID,
		&c.InstructorID,
		&c.InstructorName,
		&c.Title,
		&c.Description,
		&c.ThumbnailURL,
		&c.Price,
		&c.DiscountPrice,
		&status,
		&c.AvgRating,
		&c.ReviewCount,
		&c.EnrollmentCount,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Status = course.Status(status)
	return c, nil
}

func (r *postgresCourseRepo) findOne(ctx context.Context, builder sq.SelectBuilder, courseID int64) (*course.Course, error) {
	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build course query", err)
	}
	c, err := scanCourse(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, notFoundOr(err, "course", strconv.FormatInt(courseID, 10), "failed to query course")
	}
	return c, nil
}

func (r *postgresCourseRepo) findMany(ctx context.Context, builder sq.SelectBuilder) ([]*course.Course, error) {
	sql, args, err := builder.OrderBy("c.created_at DESC", "c.idx DESC").ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build course list query", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to query courses", err)
	}
	defer rows.Close()

	courses := make([]*course.Course, 0)
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, apperror.NewInternal("failed to scan course row", err)
		}
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating course rows", err)
	}
	return courses, nil
}

func (r *postgresCourseRepo) Create(ctx context.Context, c *course.Course) error {
	query := `
		INSERT INTO courses (instructor_idx, title, description, price, discount_price, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING idx, created_at
	`
	if c.Status == "" {
		c.Status = course.StatusDraft
	}
	err := r.db.QueryRow(ctx, query,
		c.InstructorID, c.Title, c.Description, c.Price, c.DiscountPrice, string(c.Status),
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return apperror.NewInternal("failed to create course", err)
	}
	return nil
}

func (r *postgresCourseRepo) FindByID(ctx context.Context, courseID int64) (*course.Course, error) {
	return r.findOne(ctx, courseSelect().Where(sq.Eq{"c.idx": courseID}), courseID)
}

func (r *postgresCourseRepo) FindOwned(ctx context.Context, courseID, instructorID int64) (*course.Course, error) {
	return r.findOne(ctx, courseSelect().Where(sq.Eq{"c.idx": courseID, "c.instructor_idx": instructorID}), courseID)
}

func (r *postgresCourseRepo) FindPublished(ctx context.Context, courseID int64) (*course.Course, error) {
	return r.findOne(ctx, courseSelect().Where(sq.Eq{"c.idx": courseID, "c.status": string(course.StatusPublished)}), courseID)
}

func (r *postgresCourseRepo) ListByInstructor(ctx context.Context, instructorID int64) ([]*course.Course, error) {
	return r.findMany(ctx, courseSelect().Where(sq.Eq{"c.instructor_idx": instructorID}))
}

func (r *postgresCourseRepo) ListPublished(ctx context.Context) ([]*course.Course, error) {
	return r.findMany(ctx, courseSelect().Where(sq.Eq{"c.status": string(course.StatusPublished)}))
}

func (r *postgresCourseRepo) ListAll(ctx context.Context) ([]*course.Course, error) {
	return r.findMany(ctx, courseSelect())
}

func (r *postgresCourseRepo) execUpdate(ctx context.Context, builder sq.UpdateBuilder, resource string, id int64) error {
	sql, args, err := builder.ToSql()
	if err != nil {
		return apperror.NewInternal("failed to build "+resource+" update query", err)
	}
	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return apperror.NewInternal("failed to update "+resource, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperror.NewNotFound(resource, strconv.FormatInt(id, 10))
	}
	return nil
}

func (r *postgresCourseRepo) Update(ctx context.Context, courseID int64, p course.Patch) error {
	if p.Empty() {
		return apperror.NewInvalidInput("no fields to update", nil)
	}
	builder := psql.Update("courses").Where(sq.Eq{"idx": courseID})
	if p.Title.Set {
		builder = builder.Set("title", p.Title.Arg())
	}
	if p.Description.Set {
		builder = builder.Set("description", p.Description.Arg())
	}
	if p.Price.Set {
		builder = builder.Set("price", p.Price.Arg())
	}
	if p.DiscountPrice.Set {
		builder = builder.Set("discount_price", p.DiscountPrice.Arg())
	}
	return r.execUpdate(ctx, builder, "course", courseID)
}

func (r *postgresCourseRepo) SetThumbnail(ctx context.Context, courseID int64, url string) error {
	return r.execUpdate(ctx, psql.Update("courses").Set("thumbnail_url", url).Where(sq.Eq{"idx": courseID}), "course", courseID)
}

func (r *postgresCourseRepo) SetStatus(ctx context.Context, courseID int64, status course.Status) error {
	return r.execUpdate(ctx, psql.Update("courses").Set("status", string(status)).Where(sq.Eq{"idx": courseID}), "course", courseID)
}

func (r *postgresCourseRepo) SetPrice(ctx context.Context, courseID int64, price int64, discount *int64) error {
	builder := psql.Update("courses").
		Set("price", price).
		Set("discount_price", discount).
		Where(sq.Eq{"idx": courseID})
	return r.execUpdate(ctx, builder, "course", courseID)
}

func (r *postgresCourseRepo) ListSections(ctx context.Context, courseID int64) ([]*course.Section, error) {
	rows, err := r.db.Query(ctx,
		`SELECT idx, course_idx, title, "order" FROM sections WHERE course_idx = $1 ORDER BY "order", idx`, courseID)
	if err != nil {
		return nil, apperror.NewInternal("failed to query sections", err)
	}
	sections, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*course.Section, error) {
		s := &course.Section{}
		err := row.Scan(&s.ID, &s.CourseID, &s.Title, &s.Order)
		return s, err
	})
	if err != nil {
		return nil, apperror.NewInternal("failed to scan sections", err)
	}
	return sections, nil
}

func (r *postgresCourseRepo) ListLectures(ctx context.Context, courseID int64) ([]*course.Lecture, error) {
	query := `
		SELECT l.idx, l.section_idx, l.title, l.video_url, l.duration_seconds, l."order"
		FROM lectures l
		JOIN sections s ON l.section_idx = s.idx
		WHERE s.course_idx = $1
		ORDER BY s."order", s.idx, l."order", l.idx
	`
	rows, err := r.db.Query(ctx, query, courseID)
	if err != nil {
		return nil, apperror.NewInternal("failed to query lectures", err)
	}
	lectures, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*course.Lecture, error) {
		l := &course.Lecture{}
		err := row.Scan(&l.ID, &l.SectionID, &l.Title, &l.VideoURL, &l.DurationSeconds, &l.Order)
		return l, err
	})
	if err != nil {
		return nil, apperror.NewInternal("failed to scan lectures", err)
	}
	return lectures, nil
}

func (r *postgresCourseRepo) ListLecturesWithProgress(ctx context.Context, courseID, enrollmentID int64) ([]*course.Lecture, error) {
	query := `
		SELECT l.idx, l.section_idx, l.title, l.video_url, l.duration_seconds, l."order",
		       lp.watched_seconds, lp.is_completed
		FROM lectures l
		JOIN sections s ON l.section_idx = s.idx
		LEFT JOIN lecture_progress lp ON lp.lecture_idx = l.idx AND lp.enrollment_idx = $2
		WHERE s.course_idx = $1
		ORDER BY s."order", s.idx, l."order", l.idx
	`
	rows, err := r.db.Query(ctx, query, courseID, enrollmentID)
	if err != nil {
		return nil, apperror.NewInternal("failed to query lectures with progress", err)
	}
	lectures, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*course.Lecture, error) {
		l := &course.Lecture{}
		err := row.Scan(&l.ID, &l.SectionID, &l.Title, &l.VideoURL, &l.DurationSeconds, &l.Order,
			&l.WatchedSeconds, &l.IsCompleted)
		return l, err
	})
	if err != nil {
		return nil, apperror.NewInternal("failed to scan lectures with progress", err)
	}
	return lectures, nil
}

func (r *postgresCourseRepo) SectionOwner(ctx context.Context, sectionID int64) (int64, error) {
	var owner int64
	err := r.db.QueryRow(ctx,
		`SELECT c.instructor_idx FROM sections s JOIN courses c ON s.course_idx = c.idx WHERE s.idx = $1`,
		sectionID,
	).Scan(&owner)
	if err != nil {
		return 0, notFoundOr(err, "section", strconv.FormatInt(sectionID, 10), "failed to query section owner")
	}
	return owner, nil
}

func (r *postgresCourseRepo) LectureOwner(ctx context.Context, lectureID int64) (int64, error) {
	query := `
		SELECT c.instructor_idx
		FROM lectures l
		JOIN sections s ON l.section_idx = s.idx
		JOIN courses c ON s.course_idx = c.idx
		WHERE l.idx = $1
	`
	var owner int64
	if err := r.db.QueryRow(ctx, query, lectureID).Scan(&owner); err != nil {
		return 0, notFoundOr(err, "lecture", strconv.FormatInt(lectureID, 10), "failed to query lecture owner")
	}
	return owner, nil
}

func (r *postgresCourseRepo) CountOwnedSections(ctx context.Context, instructorID int64, sectionIDs []int64) (int, error) {
	query := `
		SELECT COUNT(DISTINCT s.idx)
		FROM sections s
		JOIN courses c ON s.course_idx = c.idx
		WHERE c.instructor_idx = $1 AND s.idx = ANY($2)
	`
	var n int
	if err := r.db.QueryRow(ctx, query, instructorID, sectionIDs).Scan(&n); err != nil {
		return 0, apperror.NewInternal("failed to count owned sections", err)
	}
	return n, nil
}

func (r *postgresCourseRepo) CountOwnedLectures(ctx context.Context, instructorID int64, lectureIDs []int64) (int, error) {
	query := `
		SELECT COUNT(DISTINCT l.idx)
		FROM lectures l
		JOIN sections s ON l.section_idx = s.idx
		JOIN courses c ON s.course_idx = c.idx
		WHERE c.instructor_idx = $1 AND l.idx = ANY($2)
	`
	var n int
	if err := r.db.QueryRow(ctx, query, instructorID, lectureIDs).Scan(&n); err != nil {
		return 0, apperror.NewInternal("failed to count owned lectures", err)
	}
	return n, nil
}

// CreateSection appends the section after the existing ones.
func (r *postgresCourseRepo) CreateSection(ctx context.Context, s *course.Section) error {
	query := `
		INSERT INTO sections (course_idx, title, "order")
		VALUES ($1, $2, (SELECT COUNT(*) + 1 FROM sections WHERE course_idx = $1))
		RETURNING idx, "order"
	`
	if err := r.db.QueryRow(ctx, query, s.CourseID, s.Title).Scan(&s.ID, &s.Order); err != nil {
		return apperror.NewInternal("failed to create section", err)
	}
	s.Lectures = make([]*course.Lecture, 0)
	return nil
}

func (r *postgresCourseRepo) RenameSection(ctx context.Context, sectionID int64, title string) error {
	return r.execUpdate(ctx, psql.Update("sections").Set("title", title).Where(sq.Eq{"idx": sectionID}), "section", sectionID)
}

func (r *postgresCourseRepo) DeleteSection(ctx context.Context, sectionID int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM sections WHERE idx = $1`, sectionID)
	if err != nil {
		return apperror.NewInternal("failed to delete section", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperror.NewNotFound("section", strconv.FormatInt(sectionID, 10))
	}
	return nil
}

func (r *postgresCourseRepo) SetSectionOrder(ctx context.Context, o course.SectionOrder) error {
	return r.execUpdate(ctx, psql.Update("sections").Set(`"order"`, o.Order).Where(sq.Eq{"idx": o.SectionID}), "section", o.SectionID)
}

// CreateLecture appends the lecture after the existing ones of its section.
func (r *postgresCourseRepo) CreateLecture(ctx context.Context, l *course.Lecture) error {
	query := `
		INSERT INTO lectures (section_idx, title, video_url, duration_seconds, "order")
		VALUES ($1, $2, $3, $4, (SELECT COUNT(*) + 1 FROM lectures WHERE section_idx = $1))
		RETURNING idx, "order"
	`
	err := r.db.QueryRow(ctx, query, l.SectionID, l.Title, l.VideoURL, l.DurationSeconds).Scan(&l.ID, &l.Order)
	if err != nil {
		return apperror.NewInternal("failed to create lecture", err)
	}
	return nil
}

func (r *postgresCourseRepo) UpdateLecture(ctx context.Context, lectureID int64, p course.LecturePatch) error {
	if p.Empty() {
		return apperror.NewInvalidInput("no fields to update", nil)
	}
	builder := psql.Update("lectures").Where(sq.Eq{"idx": lectureID})
	if p.Title.Set {
		builder = builder.Set("title", p.Title.Arg())
	}
	if p.DurationSeconds.Set {
		builder = builder.Set("duration_seconds", p.DurationSeconds.Arg())
	}
	if p.VideoURL.Set {
		builder = builder.Set("video_url", p.VideoURL.Arg())
	}
	return r.execUpdate(ctx, builder, "lecture", lectureID)
}

func (r *postgresCourseRepo) DeleteLecture(ctx context.Context, lectureID int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM lectures WHERE idx = $1`, lectureID)
	if err != nil {
		return apperror.NewInternal("failed to delete lecture", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperror.NewNotFound("lecture", strconv.FormatInt(lectureID, 10))
	}
	return nil
}

func (r *postgresCourseRepo) MoveLecture(ctx context.Context, o course.LectureOrder) error {
	builder := psql.Update("lectures").
		Set(`"order"`, o.Order).
		Set("section_idx", o.SectionID).
		Where(sq.Eq{"idx": o.LectureID})
	return r.execUpdate(ctx, builder, "lecture", o.LectureID)
}
