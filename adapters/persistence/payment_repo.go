package persistence

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/khoahotran/careerfolio/internal/domain/enrollment"
	"github.com/khoahotran/careerfolio/internal/domain/payment"
	"github.com/khoahotran/careerfolio/pkg/apperror"
	"github.com/khoahotran/careerfolio/pkg/logger"
)

type postgresPaymentRepo struct {
	pool   *pgxpool.Pool
	db     DBTX
	logger logger.Logger
}

func NewPostgresPaymentRepo(pool *pgxpool.Pool, logger logger.Logger) payment.Repository {
	return &postgresPaymentRepo{pool: pool, db: pool, logger: logger}
}

func (r *postgresPaymentRepo) InTx(ctx context.Context, fn func(ctx context.Context, repo payment.Repository) error) error {
	return runInTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &postgresPaymentRepo{db: tx, logger: r.logger})
	})
}

// FindPricings returns the pricing of every requested course in request order.
func (r *postgresPaymentRepo) FindPricings(ctx context.Context, courseIDs []int64) ([]enrollment.CoursePricing, error) {
	rows, err := r.db.Query(ctx,
		`SELECT idx, title, price, discount_price FROM courses WHERE idx = ANY($1)`, courseIDs)
	if err != nil {
		return nil, apperror.NewInternal("failed to query course prices", err)
	}
	found, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (enrollment.CoursePricing, error) {
		var p enrollment.CoursePricing
		err := row.Scan(&p.CourseID, &p.Title, &p.Price, &p.DiscountPrice)
		return p, err
	})
	if err != nil {
		return nil, apperror.NewInternal("failed to scan course prices", err)
	}

	byID := make(map[int64]enrollment.CoursePricing, len(found))
	for _, p := range found {
		byID[p.CourseID] = p
	}
	out := make([]enrollment.CoursePricing, 0, len(courseIDs))
	for _, id := range courseIDs {
		p, ok := byID[id]
		if !ok {
			return nil, apperror.NewNotFound("course", strconv.FormatInt(id, 10))
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *postgresPaymentRepo) Create(ctx context.Context, p *payment.Payment) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO payments (user_idx, amount, status) VALUES ($1, $2, $3) RETURNING idx, created_at`,
		p.UserID, p.Amount, p.Status,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return apperror.NewInternal("failed to create payment", err)
	}
	return nil
}

func (r *postgresPaymentRepo) Fulfill(ctx context.Context, p *payment.Payment, item payment.Item) error {
	if _, err := r.db.Exec(ctx,
		`INSERT INTO payment_items (payment_idx, course_idx, price_at_purchase) VALUES ($1, $2, $3)`,
		p.ID, item.CourseID, item.PriceAtPurchase,
	); err != nil {
		return apperror.NewInternal("failed to create payment item", err)
	}
	if _, err := insertEnrollment(ctx, r.db, p.UserID, item.CourseID); err != nil {
		return err
	}
	if err := incrementEnrollmentCount(ctx, r.db, item.CourseID); err != nil {
		return err
	}
	if err := removeFromCart(ctx, r.db, p.UserID, item.CourseID); err != nil {
		return err
	}
	r.logger.Debug("Payment item fulfilled", zap.Int64("payment_id", p.ID), zap.Int64("course_id", item.CourseID))
	return nil
}
