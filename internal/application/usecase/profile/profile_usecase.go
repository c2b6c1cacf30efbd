package profile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/khoahotran/careerfolio/internal/application/service"
	"github.com/khoahotran/careerfolio/internal/domain/profile"
	"github.com/khoahotran/careerfolio/internal/domain/resume"
	"github.com/khoahotran/careerfolio/pkg/apperror"
	"github.com/khoahotran/careerfolio/pkg/logger"
	"github.com/khoahotran/careerfolio/pkg/patch"
)

var tracer = otel.Tracer("profile_usecase")

type ProfileUseCase struct {
	profileRepo profile.Repository
	resumeRepo  resume.Repository
	uploader    service.Uploader
	logger      logger.Logger
}

func NewProfileUseCase(pRepo profile.Repository, rRepo resume.Repository, uploader service.Uploader, log logger.Logger) *ProfileUseCase {
	return &ProfileUseCase{
		profileRepo: pRepo,
		resumeRepo:  rRepo,
		uploader:    uploader,
		logger:      log,
	}
}

// ProfileData is the profile together with the full resume.
type ProfileData struct {
	Profile     *profile.Profile
	Experiences []resume.Experience
	Educations  []resume.Education
	Projects    []resume.Project
	Skills      []resume.Skill
}

type GetProfileInput struct {
	UserID int64
}

func (uc *ProfileUseCase) ExecuteGetProfile(ctx context.Context, input GetProfileInput) (*ProfileData, error) {
	ctx, span := tracer.Start(ctx, "GetMyProfile")
	defer span.End()
	span.SetAttributes(attribute.Int64("user_id", input.UserID))

	data, err := uc.fetchProfileData(ctx, input.UserID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return data, nil
}

func (uc *ProfileUseCase) fetchProfileData(ctx context.Context, userID int64) (*ProfileData, error) {
	data := &ProfileData{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		p, err := uc.loadOrCreateProfile(gctx, userID)
		data.Profile = p
		return err
	})
	g.Go(func() error {
		var err error
		data.Experiences, err = uc.resumeRepo.ListExperiences(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		data.Educations, err = uc.resumeRepo.ListEducations(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		data.Projects, err = uc.resumeRepo.ListProjects(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		data.Skills, err = uc.resumeRepo.ListSkills(gctx, userID)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return data, nil
}

// loadOrCreateProfile creates the profile row on first access.
func (uc *ProfileUseCase) loadOrCreateProfile(ctx context.Context, userID int64) (*profile.Profile, error) {
	p, err := uc.profileRepo.FindByUserID(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}

	uc.logger.Warn("User profile not found, creating one", zap.Int64("user_id", userID))
	if err := uc.profileRepo.CreateDefault(ctx, userID); err != nil {
		return nil, err
	}
	return uc.profileRepo.FindByUserID(ctx, userID)
}

type PictureAction int

const (
	PictureKeep PictureAction = iota
	PictureReplace
	PictureRemove
)

type UpdateProfileInput struct {
	UserID        int64
	Nickname      patch.Field[string]
	Bio           patch.Field[string]
	PictureAction PictureAction
	Picture       io.Reader
}

func (uc *ProfileUseCase) ExecuteUpdateProfile(ctx context.Context, input UpdateProfileInput) (*ProfileData, error) {
	ctx, span := tracer.Start(ctx, "UpdateMyProfile")
	defer span.End()
	span.SetAttributes(attribute.Int64("user_id", input.UserID))

	current, err := uc.loadOrCreateProfile(ctx, input.UserID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	p := profile.Patch{Nickname: input.Nickname, Bio: input.Bio}
	switch input.PictureAction {
	case PictureReplace:
		if input.Picture == nil {
			err := apperror.NewInvalidInput("picture file is required", nil)
			span.RecordError(err)
			return nil, err
		}
		url, err := uc.uploader.Upload(ctx, input.Picture, profileFolder(input.UserID), "picture-"+uuid.NewString())
		if err != nil {
			err = apperror.NewInternal("failed to upload profile picture", err)
			span.RecordError(err)
			return nil, err
		}
		p.PictureURL = patch.Value(url)
	case PictureRemove:
		p.PictureURL = patch.Null[string]()
	}

	if !p.Empty() {
		if err := uc.profileRepo.Update(ctx, input.UserID, p); err != nil {
			span.RecordError(err)
			return nil, err
		}
	}

	if p.PictureURL.Set && current.PictureURL != nil {
		uc.deleteImage(*current.PictureURL)
	}

	data, err := uc.fetchProfileData(ctx, input.UserID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return data, nil
}

// deleteImage removes an uploaded image in the background; failures are only logged.
func (uc *ProfileUseCase) deleteImage(url string) {
	publicID, ok := PublicIDFromURL(url)
	if !ok {
		return
	}
	go func() {
		if err := uc.uploader.Delete(context.Background(), publicID); err != nil {
			uc.logger.Warn("Failed to delete old image", zap.String("public_id", publicID), zap.Error(err))
		}
	}()
}

var versionSegment = regexp.MustCompile(`^v\d+/`)

// PublicIDFromURL extracts the Cloudinary public id from a delivery URL.
func PublicIDFromURL(url string) (string, bool) {
	_, rest, found := strings.Cut(url, "/upload/")
	if !found || rest == "" {
		return "", false
	}
	rest = versionSegment.ReplaceAllString(rest, "")
	rest = strings.TrimSuffix(rest, path.Ext(rest))
	return rest, rest != ""
}

func profileFolder(userID int64) string {
	return fmt.Sprintf("careerfolio/users/%d/profile", userID)
}

type AddExperienceInput struct {
	UserID     int64
	Experience resume.Experience
}

func (uc *ProfileUseCase) ExecuteAddExperience(ctx context.Context, input AddExperienceInput) (*resume.Experience, error) {
	ctx, span := tracer.Start(ctx, "AddExperience")
	defer span.End()

	e := input.Experience
	if strings.TrimSpace(e.CompanyName) == "" || strings.TrimSpace(e.Position) == "" || e.StartDate == nil {
		err := apperror.NewInvalidInput("company_name, position and start_date are required", nil)
		span.RecordError(err)
		return nil, err
	}
	e.ID = nil

	created, err := uc.resumeRepo.AddExperience(ctx, input.UserID, e)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return created, nil
}

type DeleteExperienceInput struct {
	UserID       int64
	ExperienceID int64
}

func (uc *ProfileUseCase) ExecuteDeleteExperience(ctx context.Context, input DeleteExperienceInput) error {
	ctx, span := tracer.Start(ctx, "DeleteExperience")
	defer span.End()

	if err := uc.resumeRepo.DeleteExperience(ctx, input.UserID, input.ExperienceID); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

type UploadResumePhotoInput struct {
	UserID int64
	File   io.Reader
}

// ExecuteUploadResumePhoto only stores the image; the URL is saved with the next bulk update.
func (uc *ProfileUseCase) ExecuteUploadResumePhoto(ctx context.Context, input UploadResumePhotoInput) (string, error) {
	ctx, span := tracer.Start(ctx, "UploadResumePhoto")
	defer span.End()

	if input.File == nil {
		err := apperror.NewInvalidInput("resume photo file is required", nil)
		span.RecordError(err)
		return "", err
	}
	folder := fmt.Sprintf("careerfolio/users/%d/resume", input.UserID)
	url, err := uc.uploader.Upload(ctx, input.File, folder, uuid.NewString())
	if err != nil {
		err = apperror.NewInternal("failed to upload resume photo", err)
		span.RecordError(err)
		return "", err
	}
	return url, nil
}
