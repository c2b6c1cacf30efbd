package persistence

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/khoahotran/careerfolio/internal/domain/user"
	"github.com/khoahotran/careerfolio/pkg/apperror"
	"github.com/khoahotran/careerfolio/pkg/logger"
)

type postgresUserRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresUserRepo(db *pgxpool.Pool, logger logger.Logger) user.Repository {
	return &postgresUserRepo{db: db, logger: logger}
}

func (r *postgresUserRepo) LoginIDExists(ctx context.Context, loginID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM user_credentials WHERE login_id = $1)`, loginID).Scan(&exists)
	if err != nil {
		return false, apperror.NewInternal("failed to check login id", err)
	}
	return exists, nil
}

func (r *postgresUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, apperror.NewInternal("failed to check email", err)
	}
	return exists, nil
}

func (r *postgresUserRepo) FindCredentialByLoginID(ctx context.Context, loginID string) (*user.Credential, error) {
	c := &user.Credential{}
	err := r.db.QueryRow(ctx,
		`SELECT user_idx, login_id, password_hash FROM user_credentials WHERE login_id = $1`, loginID,
	).Scan(&c.UserID, &c.LoginID, &c.PasswordHash)
	if err != nil {
		return nil, notFoundOr(err, "user", loginID, "failed to query credential")
	}
	return c, nil
}

func (r *postgresUserRepo) FindAccountByID(ctx context.Context, userID int64) (*user.Account, error) {
	query := `
		SELECT u.idx, u.name, u.email, u.phone_number, u.role, u.created_at,
		       c.login_id, COALESCE(p.nickname, c.login_id)
		FROM users u
		JOIN user_credentials c ON c.user_idx = u.idx
		LEFT JOIN user_profile p ON p.user_idx = u.idx
		WHERE u.idx = $1
	`
	a := &user.Account{}
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&a.ID,
		&a.Name,
		&a.Email,
		&a.PhoneNumber,
		&a.Role,
		&a.CreatedAt,
		&a.LoginID,
		&a.Nickname,
	)
	if err != nil {
		return nil, notFoundOr(err, "user", strconv.FormatInt(userID, 10), "failed to query account")
	}
	return a, nil
}

func (r *postgresUserRepo) CreateAccount(ctx context.Context, a user.NewAccount) (int64, error) {
	var userID int64
	err := runInTx(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO users (name, email, phone_number, role) VALUES ($1, $2, $3, $4) RETURNING idx`,
			a.Name, a.Email, a.PhoneNumber, a.Role,
		).Scan(&userID)
		if err != nil {
			if isUniqueViolation(err) {
				return apperror.NewConflict("user", "email", a.Email)
			}
			return apperror.NewPersistence("failed to insert user", err)
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO user_credentials (user_idx, login_id, password_hash) VALUES ($1, $2, $3)`,
			userID, a.LoginID, a.PasswordHash,
		); err != nil {
			if isUniqueViolation(err) {
				return apperror.NewConflict("user", "id", a.LoginID)
			}
			return apperror.NewPersistence("failed to insert credential", err)
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO user_profile (user_idx, nickname) VALUES ($1, $2)`,
			userID, a.LoginID,
		); err != nil {
			return apperror.NewPersistence("failed to insert profile", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	r.logger.Info("Account created", zap.Int64("user_id", userID), zap.String("login_id", a.LoginID))
	return userID, nil
}
