package persistence

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khoahotran/careerfolio/internal/domain/cart"
	"github.com/khoahotran/careerfolio/pkg/apperror"
	"github.com/khoahotran/careerfolio/pkg/logger"
)

type postgresCartRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresCartRepo(db *pgxpool.Pool, logger logger.Logger) cart.Repository {
	return &postgresCartRepo{db: db, logger: logger}
}

func (r *postgresCartRepo) List(ctx context.Context, userID int64) ([]*cart.Item, error) {
	query := `
		SELECT c.idx, c.title, c.thumbnail_url, c.price, c.discount_price, u.name
		FROM carts ct
		JOIN courses c ON ct.course_idx = c.idx
		JOIN users u ON c.instructor_idx = u.idx
		WHERE ct.user_idx = $1
		ORDER BY ct.added_at DESC, ct.idx DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, apperror.NewInternal("failed to query cart", err)
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*cart.Item, error) {
		it := &cart.Item{}
		err := row.Scan(&it.CourseID, &it.Title, &it.ThumbnailURL, &it.Price, &it.DiscountPrice, &it.InstructorName)
		return it, err
	})
	if err != nil {
		return nil, apperror.NewInternal("failed to scan cart items", err)
	}
	return items, nil
}

func (r *postgresCartRepo) Contains(ctx context.Context, userID, courseID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM carts WHERE user_idx = $1 AND course_idx = $2)`, userID, courseID,
	).Scan(&exists)
	if err != nil {
		return false, apperror.NewInternal("failed to check cart", err)
	}
	return exists, nil
}

func (r *postgresCartRepo) Add(ctx context.Context, userID, courseID int64) error {
	_, err := r.db.Exec(ctx, `INSERT INTO carts (user_idx, course_idx) VALUES ($1, $2)`, userID, courseID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.NewConflict("cart item", "course", strconv.FormatInt(courseID, 10))
		}
		return apperror.NewInternal("failed to add to cart", err)
	}
	return nil
}

func (r *postgresCartRepo) Remove(ctx context.Context, userID, courseID int64) error {
	return removeFromCart(ctx, r.db, userID, courseID)
}

func removeFromCart(ctx context.Context, db DBTX, userID, courseID int64) error {
	if _, err := db.Exec(ctx, `DELETE FROM carts WHERE user_idx = $1 AND course_idx = $2`, userID, courseID); err != nil {
		return apperror.NewInternal("failed to remove from cart", err)
	}
	return nil
}
