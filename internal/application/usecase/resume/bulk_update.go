package resume

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/careerfolio/internal/domain/resume"
	"github.com/khoahotran/careerfolio/pkg/apperror"
	"github.com/khoahotran/careerfolio/pkg/logger"
	"github.com/khoahotran/careerfolio/pkg/metrics"
)

var tracer = otel.Tracer("resume_usecase")

type BulkUpdateUseCase struct {
	resumeRepo resume.Repository
	metrics    metrics.Recorder
	logger     logger.Logger
}

func NewBulkUpdateUseCase(repo resume.Repository, m metrics.Recorder, log logger.Logger) *BulkUpdateUseCase {
	return &BulkUpdateUseCase{resumeRepo: repo, metrics: m, logger: log}
}

type BulkUpdateInput struct {
	UserID   int64
	Snapshot resume.Snapshot
}

// Execute makes the stored resume equal to the submitted snapshot. Either
// every collection is reconciled or nothing is written.
func (uc *BulkUpdateUseCase) Execute(ctx context.Context, input BulkUpdateInput) error {
	ctx, span := tracer.Start(ctx, "BulkUpdate")
	defer span.End()
	span.SetAttributes(attribute.Int64("user_id", input.UserID))

	l := uc.logger.With(zap.Int64("user_id", input.UserID))
	snap := input.Snapshot

	if missing := snap.Missing(); len(missing) > 0 {
		names := make([]string, len(missing))
		for i, c := range missing {
			names[i] = string(c)
		}
		err := apperror.NewInvalidInput("resume snapshot is missing "+strings.Join(names, ", "), nil)
		span.RecordError(err)
		return err
	}

	err := uc.resumeRepo.InTx(ctx, func(ctx context.Context, repo resume.Repository) error {
		if snap.Profile != nil {
			if err := repo.OverwriteProfile(ctx, input.UserID, *snap.Profile); err != nil {
				return err
			}
		}

		for _, c := range resume.SyncOrder {
			stored, err := repo.ListIDs(ctx, c, input.UserID)
			if err != nil {
				return err
			}

			var (
				deleted, updated, inserted int
				applyErr                   error
			)
			switch c {
			case resume.Experiences:
				plan := resume.Reconcile(stored, snap.Experiences)
				deleted, updated, inserted = len(plan.Delete), len(plan.Update), len(plan.Insert)
				applyErr = repo.ApplyExperiences(ctx, input.UserID, plan)
			case resume.Educations:
				plan := resume.Reconcile(stored, snap.Educations)
				deleted, updated, inserted = len(plan.Delete), len(plan.Update), len(plan.Insert)
				applyErr = repo.ApplyEducations(ctx, input.UserID, plan)
			case resume.Projects:
				plan := resume.Reconcile(stored, snap.Projects)
				deleted, updated, inserted = len(plan.Delete), len(plan.Update), len(plan.Insert)
				applyErr = repo.ApplyProjects(ctx, input.UserID, plan)
			case resume.Skills:
				plan := resume.Reconcile(stored, snap.Skills)
				deleted, updated, inserted = len(plan.Delete), len(plan.Update), len(plan.Insert)
				applyErr = repo.ApplySkills(ctx, input.UserID, plan)
			}
			if applyErr != nil {
				return applyErr
			}

			l.Debug("Resume collection reconciled",
				zap.String("collection", string(c)),
				zap.Int("deleted", deleted),
				zap.Int("updated", updated),
				zap.Int("inserted", inserted),
			)
		}
		return nil
	})

	uc.metrics.ResumeSynced(err)
	if err != nil {
		span.RecordError(err)
		l.Error("Resume bulk update rolled back", err)
		return apperror.NewPersistence("resume bulk update failed", err)
	}
	l.Info("Resume bulk update committed")
	return nil
}
