package enrollment

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/careerfolio/internal/domain/enrollment"
	"github.com/khoahotran/careerfolio/pkg/logger"
	"github.com/khoahotran/careerfolio/pkg/metrics"
)

var tracer = otel.Tracer("enrollment_usecase")

type ListMyEnrollmentsUseCase struct {
	enrollmentRepo enrollment.Repository
	metrics        metrics.Recorder
	logger         logger.Logger
}

func NewListMyEnrollmentsUseCase(repo enrollment.Repository, m metrics.Recorder, log logger.Logger) *ListMyEnrollmentsUseCase {
	return &ListMyEnrollmentsUseCase{enrollmentRepo: repo, metrics: m, logger: log}
}

type ListMyEnrollmentsInput struct {
	UserID int64
}

// Execute lists the user's enrollments newest first. Every stored percentage
// is recomputed from the progress rows and repaired when it drifted.
func (uc *ListMyEnrollmentsUseCase) Execute(ctx context.Context, input ListMyEnrollmentsInput) ([]*enrollment.Summary, error) {
	ctx, span := tracer.Start(ctx, "ListMyEnrollments")
	defer span.End()
	span.SetAttributes(attribute.Int64("user_id", input.UserID))

	var (
		summaries []*enrollment.Summary
		corrected int
	)
	err := uc.enrollmentRepo.InTx(ctx, func(ctx context.Context, repo enrollment.Repository) error {
		list, err := repo.ListSummariesByUser(ctx, input.UserID)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			summaries = list
			return nil
		}

		keys := make([]enrollment.Key, len(list))
		for i, s := range list {
			keys[i] = s.Key()
		}
		stats, err := repo.CountStatsBatch(ctx, keys)
		if err != nil {
			return err
		}

		for _, s := range list {
			fresh := stats[s.EnrollmentID].Percentage()
			if fresh == s.ProgressPercent {
				continue
			}
			if err := repo.UpdateProgressPercent(ctx, s.EnrollmentID, fresh); err != nil {
				return err
			}
			uc.logger.Info("enrollment progress corrected",
				zap.Int64("enrollment_id", s.EnrollmentID),
				zap.Int("stored", s.ProgressPercent),
				zap.Int("recomputed", fresh),
			)
			s.ProgressPercent = fresh
			corrected++
		}
		summaries = list
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	for i := 0; i < corrected; i++ {
		uc.metrics.ProgressCorrected()
	}
	span.SetAttributes(attribute.Int("enrollments", len(summaries)), attribute.Int("corrected", corrected))
	return summaries, nil
}
