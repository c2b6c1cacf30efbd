package persistence

import (
	"context"
	"strconv"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/khoahotran/careerfolio/internal/domain/resume"
	"github.com/khoahotran/careerfolio/pkg/apperror"
	"github.com/khoahotran/careerfolio/pkg/logger"
)

type postgresResumeRepo struct {
	pool   *pgxpool.Pool
	db     DBTX
	logger logger.Logger
}

func NewPostgresResumeRepo(pool *pgxpool.Pool, logger logger.Logger) resume.Repository {
	return &postgresResumeRepo{pool: pool, db: pool, logger: logger}
}

func (r *postgresResumeRepo) InTx(ctx context.Context, fn func(ctx context.Context, repo resume.Repository) error) error {
	return runInTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &postgresResumeRepo{db: tx, logger: r.logger})
	})
}

// Only these tables may be addressed through a Collection.
var resumeTables = map[resume.Collection]string{
	resume.Experiences: "experiences",
	resume.Educations:  "educations",
	resume.Projects:    "projects",
	resume.Skills:      "skills",
}

func tableFor(c resume.Collection) (string, error) {
	t, ok := resumeTables[c]
	if !ok {
		return "", apperror.NewInvalidInput("unknown resume collection "+string(c), nil)
	}
	return t, nil
}

// OverwriteProfile creates the profile row when the account has none.
func (r *postgresResumeRepo) OverwriteProfile(ctx context.Context, userID int64, p resume.ProfilePatch) error {
	query := `
		INSERT INTO user_profile (user_idx, nickname, bio, resume_photo_url, resume_title, introduction, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (user_idx) DO UPDATE
		SET nickname = EXCLUDED.nickname,
			bio = EXCLUDED.bio,
			resume_photo_url = EXCLUDED.resume_photo_url,
			resume_title = EXCLUDED.resume_title,
			introduction = EXCLUDED.introduction,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := r.db.Exec(ctx, query, userID, p.Nickname, p.Bio, p.ResumePhotoURL, p.ResumeTitle, p.Introduction); err != nil {
		return apperror.NewPersistence("failed to overwrite profile", err)
	}
	return nil
}

func (r *postgresResumeRepo) ListIDs(ctx context.Context, c resume.Collection, userID int64) ([]int64, error) {
	table, err := tableFor(c)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `SELECT idx FROM `+table+` WHERE user_idx = $1 ORDER BY idx`, userID)
	if err != nil {
		return nil, apperror.NewPersistence("failed to list "+table+" ids", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, apperror.NewPersistence("failed to scan "+table+" ids", err)
	}
	return ids, nil
}

func (r *postgresResumeRepo) deleteIDs(ctx context.Context, table string, userID int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM `+table+` WHERE user_idx = $1 AND idx = ANY($2)`, userID, ids)
	if err != nil {
		return apperror.NewPersistence("failed to delete "+table, err)
	}
	r.logger.Debug("Deleted resume rows", zap.String("table", table), zap.Int64("rows", cmdTag.RowsAffected()))
	return nil
}

func (r *postgresResumeRepo) updateRow(ctx context.Context, table string, userID, id int64, values map[string]any) error {
	sql, args, err := psql.Update(table).
		SetMap(values).
		Where(sq.Eq{"idx": id, "user_idx": userID}).
		ToSql()
	if err != nil {
		return apperror.NewInternal("failed to build "+table+" update query", err)
	}
	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return apperror.NewPersistence("failed to update "+table, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperror.NewNotFound(table, strconv.FormatInt(id, 10))
	}
	return nil
}

func (r *postgresResumeRepo) copyRows(ctx context.Context, table string, columns []string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	_, err := r.db.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return apperror.NewPersistence("failed to insert "+table, err)
	}
	return nil
}

func (r *postgresResumeRepo) ApplyExperiences(ctx context.Context, userID int64, plan resume.Plan[resume.Experience]) error {
	if err := r.deleteIDs(ctx, "experiences", userID, plan.Delete); err != nil {
		return err
	}
	for _, e := range plan.Update {
		err := r.updateRow(ctx, "experiences", userID, *e.ID, map[string]any{
			"company_name": e.CompanyName,
			"position":     e.Position,
			"start_date":   e.StartDate,
			"end_date":     e.EndDate,
			"description":  e.Description,
		})
		if err != nil {
			return err
		}
	}
	rows := make([][]any, 0, len(plan.Insert))
	for _, e := range plan.Insert {
		rows = append(rows, []any{userID, e.CompanyName, e.Position, e.StartDate, e.EndDate, e.Description})
	}
	return r.copyRows(ctx, "experiences",
		[]string{"user_idx", "company_name", "position", "start_date", "end_date", "description"}, rows)
}

func (r *postgresResumeRepo) ApplyEducations(ctx context.Context, userID int64, plan resume.Plan[resume.Education]) error {
	if err := r.deleteIDs(ctx, "educations", userID, plan.Delete); err != nil {
		return err
	}
	for _, e := range plan.Update {
		err := r.updateRow(ctx, "educations", userID, *e.ID, map[string]any{
			"institution_name": e.InstitutionName,
			"degree":           e.Degree,
			"major":            e.Major,
			"start_date":       e.StartDate,
			"end_date":         e.EndDate,
		})
		if err != nil {
			return err
		}
	}
	rows := make([][]any, 0, len(plan.Insert))
	for _, e := range plan.Insert {
		rows = append(rows, []any{userID, e.InstitutionName, e.Degree, e.Major, e.StartDate, e.EndDate})
	}
	return r.copyRows(ctx, "educations",
		[]string{"user_idx", "institution_name", "degree", "major", "start_date", "end_date"}, rows)
}

func (r *postgresResumeRepo) ApplyProjects(ctx context.Context, userID int64, plan resume.Plan[resume.Project]) error {
	if err := r.deleteIDs(ctx, "projects", userID, plan.Delete); err != nil {
		return err
	}
	for _, p := range plan.Update {
		err := r.updateRow(ctx, "projects", userID, *p.ID, map[string]any{
			"project_name": p.ProjectName,
			"description":  p.Description,
			"start_date":   p.StartDate,
			"end_date":     p.EndDate,
			"project_url":  p.ProjectURL,
		})
		if err != nil {
			return err
		}
	}
	rows := make([][]any, 0, len(plan.Insert))
	for _, p := range plan.Insert {
		rows = append(rows, []any{userID, p.ProjectName, p.Description, p.StartDate, p.EndDate, p.ProjectURL})
	}
	return r.copyRows(ctx, "projects",
		[]string{"user_idx", "project_name", "description", "start_date", "end_date", "project_url"}, rows)
}

func (r *postgresResumeRepo) ApplySkills(ctx context.Context, userID int64, plan resume.Plan[resume.Skill]) error {
	if err := r.deleteIDs(ctx, "skills", userID, plan.Delete); err != nil {
		return err
	}
	for _, s := range plan.Update {
		err := r.updateRow(ctx, "skills", userID, *s.ID, map[string]any{
			"skill_name": s.SkillName,
			"category":   s.Category,
		})
		if err != nil {
			return err
		}
	}
	rows := make([][]any, 0, len(plan.Insert))
	for _, s := range plan.Insert {
		rows = append(rows, []any{userID, s.SkillName, s.Category})
	}
	return r.copyRows(ctx, "skills", []string{"user_idx", "skill_name", "category"}, rows)
}

func (r *postgresResumeRepo) ListExperiences(ctx context.Context, userID int64) ([]resume.Experience, error) {
	query := `
		SELECT idx, company_name, position, start_date, end_date, description
		FROM experiences WHERE user_idx = $1
		ORDER BY start_date DESC NULLS LAST, idx DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, apperror.NewInternal("failed to query experiences", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (resume.Experience, error) {
		var (
			e  resume.Experience
			id int64
		)
		err := row.Scan(&id, &e.CompanyName, &e.Position, &e.StartDate, &e.EndDate, &e.Description)
		e.ID = &id
		return e, err
	})
	if err != nil {
		return nil, apperror.NewInternal("failed to scan experiences", err)
	}
	return out, nil
}

func (r *postgresResumeRepo) ListEducations(ctx context.Context, userID int64) ([]resume.Education, error) {
	query := `
		SELECT idx, institution_name, degree, major, start_date, end_date
		FROM educations WHERE user_idx = $1
		ORDER BY start_date DESC NULLS LAST, idx DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, apperror.NewInternal("failed to query educations", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (resume.Education, error) {
		var (
			e  resume.Education
			id int64
		)
		err := row.Scan(&id, &e.InstitutionName, &e.Degree, &e.Major, &e.StartDate, &e.EndDate)
		e.ID = &id
		return e, err
	})
	if err != nil {
		return nil, apperror.NewInternal("failed to scan educations", err)
	}
	return out, nil
}

func (r *postgresResumeRepo) ListProjects(ctx context.Context, userID int64) ([]resume.Project, error) {
	query := `
		SELECT idx, project_name, description, start_date, end_date, project_url
		FROM projects WHERE user_idx = $1
		ORDER BY start_date DESC NULLS LAST, idx DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, apperror.NewInternal("failed to query projects", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (resume.Project, error) {
		var (
			p  resume.Project
			id int64
		)
		err := row.Scan(&id, &p.ProjectName, &p.Description, &p.StartDate, &p.EndDate, &p.ProjectURL)
		p.ID = &id
		return p, err
	})
	if err != nil {
		return nil, apperror.NewInternal("failed to scan projects", err)
	}
	return out, nil
}

func (r *postgresResumeRepo) ListSkills(ctx context.Context, userID int64) ([]resume.Skill, error) {
	query := `
		SELECT idx, skill_name, category
		FROM skills WHERE user_idx = $1
		ORDER BY category NULLS FIRST, skill_name, idx DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, apperror.NewInternal("failed to query skills", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (resume.Skill, error) {
		var (
			s  resume.Skill
			id int64
		)
		err := row.Scan(&id, &s.SkillName, &s.Category)
		s.ID = &id
		return s, err
	})
	if err != nil {
		return nil, apperror.NewInternal("failed to scan skills", err)
	}
	return out, nil
}

func (r *postgresResumeRepo) AddExperience(ctx context.Context, userID int64, e resume.Experience) (*resume.Experience, error) {
	query := `
		INSERT INTO experiences (user_idx, company_name, position, start_date, end_date, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING idx
	`
	var id int64
	if err := r.db.QueryRow(ctx, query, userID, e.CompanyName, e.Position, e.StartDate, e.EndDate, e.Description).Scan(&id); err != nil {
		return nil, apperror.NewPersistence("failed to add experience", err)
	}
	e.ID = &id
	return &e, nil
}

func (r *postgresResumeRepo) DeleteExperience(ctx context.Context, userID, experienceID int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM experiences WHERE idx = $1 AND user_idx = $2`, experienceID, userID)
	if err != nil {
		return apperror.NewPersistence("failed to delete experience", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperror.NewNotFound("experience", strconv.FormatInt(experienceID, 10))
	}
	return nil
}

