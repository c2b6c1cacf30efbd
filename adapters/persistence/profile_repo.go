package persistence

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/khoahotran/careerfolio/internal/domain/profile"
	"github.com/khoahotran/careerfolio/pkg/apperror"
	"github.com/khoahotran/careerfolio/pkg/logger"
)

type postgresProfileRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresProfileRepo(db *pgxpool.Pool, logger logger.Logger) profile.Repository {
	return &postgresProfileRepo{db: db, logger: logger}
}

func (r *postgresProfileRepo) FindByUserID(ctx context.Context, userID int64) (*profile.Profile, error) {
	query := `
		SELECT u.idx, u.name, u.email, u.phone_number,
		       p.nickname, p.bio, p.picture_url, p.resume_photo_url, p.resume_title, p.introduction, p.updated_at
		FROM user_profile p
		JOIN users u ON u.idx = p.user_idx
		WHERE p.user_idx = $1
	`
	p := &profile.Profile{}
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&p.UserID,
		&p.Name,
		&p.Email,
		&p.PhoneNumber,
		&p.Nickname,
		&p.Bio,
		&p.PictureURL,
		&p.ResumePhotoURL,
		&p.ResumeTitle,
		&p.Introduction,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, notFoundOr(err, "profile", strconv.FormatInt(userID, 10), "failed to query profile")
	}
	return p, nil
}

func (r *postgresProfileRepo) CreateDefault(ctx context.Context, userID int64) error {
	query := `
		INSERT INTO user_profile (user_idx, nickname)
		SELECT u.idx, c.login_id
		FROM users u
		LEFT JOIN user_credentials c ON c.user_idx = u.idx
		WHERE u.idx = $1
		ON CONFLICT (user_idx) DO NOTHING
	`
	cmdTag, err := r.db.Exec(ctx, query, userID)
	if err != nil {
		return apperror.NewInternal("failed to create default profile", err)
	}
	if cmdTag.RowsAffected() == 0 {
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE idx = $1)`, userID).Scan(&exists); err != nil {
			return apperror.NewInternal("failed to check user", err)
		}
		if !exists {
			return apperror.NewNotFound("user", strconv.FormatInt(userID, 10))
		}
		return nil
	}
	r.logger.Info("Default profile created", zap.Int64("user_id", userID))
	return nil
}

func (r *postgresProfileRepo) Update(ctx context.Context, userID int64, p profile.Patch) error {
	if p.Empty() {
		return nil
	}

	builder := psql.Update("user_profile").Set("updated_at", sqNow).Where("user_idx = ?", userID)
	if p.Nickname.Set {
		builder = builder.Set("nickname", p.Nickname.Arg())
	}
	if p.Bio.Set {
		builder = builder.Set("bio", p.Bio.Arg())
	}
	if p.PictureURL.Set {
		builder = builder.Set("picture_url", p.PictureURL.Arg())
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return apperror.NewInternal("failed to build profile update query", err)
	}
	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return apperror.NewInternal("failed to update profile", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperror.NewNotFound("profile", strconv.FormatInt(userID, 10))
	}
	return nil
}
