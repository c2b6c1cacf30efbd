package course

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/careerfolio/internal/application/service"
	"github.com/khoahotran/careerfolio/internal/domain/course"
	"github.com/khoahotran/careerfolio/pkg/apperror"
	"github.com/khoahotran/careerfolio/pkg/logger"
)

var tracer = otel.Tracer("course_usecase")

const thumbnailTransformation = "c_fill,g_auto,w_640,h_360"

// CourseUseCase holds the instructor and catalog operations on courses.
type CourseUseCase struct {
	courseRepo course.Repository
	uploader   service.Uploader
	videos     service.VideoStore
	logger     logger.Logger
}

func NewCourseUseCase(repo course.Repository, uploader service.Uploader, videos service.VideoStore, log logger.Logger) *CourseUseCase {
	return &CourseUseCase{courseRepo: repo, uploader: uploader, videos: videos, logger: log}
}

type CreateCourseInput struct {
	InstructorID  int64
	Title         string
	Description   *string
	Price         int64
	DiscountPrice *int64
}

func (uc *CourseUseCase) CreateCourse(ctx context.Context, in CreateCourseInput) (*course.Course, error) {
	ctx, span := tracer.Start(ctx, "CreateCourse")
	defer span.End()

	if strings.TrimSpace(in.Title) == "" {
		err := apperror.NewInvalidInput("title is required", nil)
		span.RecordError(err)
		return nil, err
	}
	if err := validatePrice(in.Price, in.DiscountPrice); err != nil {
		span.RecordError(err)
		return nil, err
	}

	c := &course.Course{
		InstructorID:  in.InstructorID,
		Title:         strings.TrimSpace(in.Title),
		Description:   in.Description,
		Price:         in.Price,
		DiscountPrice: in.DiscountPrice,
		Status:        course.StatusDraft,
	}
	if err := uc.courseRepo.Create(ctx, c); err != nil {
		span.RecordError(err)
		return nil, err
	}
	uc.logger.Info("Course created", zap.Int64("course_id", c.ID), zap.Int64("instructor_id", c.InstructorID))
	return uc.courseRepo.FindByID(ctx, c.ID)
}

func (uc *CourseUseCase) ListMyCourses(ctx context.Context, instructorID int64) ([]*course.Course, error) {
	ctx, span := tracer.Start(ctx, "ListMyCourses")
	defer span.End()
	return uc.courseRepo.ListByInstructor(ctx, instructorID)
}

// GetMyCourse returns an owned course with its full curriculum.
func (uc *CourseUseCase) GetMyCourse(ctx context.Context, courseID, instructorID int64) (*course.Course, error) {
	ctx, span := tracer.Start(ctx, "GetMyCourse")
	defer span.End()
	span.SetAttributes(attribute.Int64("course_id", courseID))

	c, err := uc.courseRepo.FindOwned(ctx, courseID, instructorID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := uc.attachCurriculum(ctx, c, false); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return c, nil
}

type UpdateCourseInput struct {
	CourseID     int64
	InstructorID int64
	Patch        course.Patch
}

func (uc *CourseUseCase) UpdateCourse(ctx context.Context, in UpdateCourseInput) (*course.Course, error) {
	ctx, span := tracer.Start(ctx, "UpdateCourse")
	defer span.End()
	span.SetAttributes(attribute.Int64("course_id", in.CourseID))

	p := in.Patch
	if p.Empty() {
		err := apperror.NewInvalidInput("no fields to update", nil)
		span.RecordError(err)
		return nil, err
	}
	if p.Title.Set && (p.Title.IsNull() || strings.TrimSpace(*p.Title.Value) == "") {
		err := apperror.NewInvalidInput("title must not be empty", nil)
		span.RecordError(err)
		return nil, err
	}
	if p.Price.Set && (p.Price.IsNull() || *p.Price.Value < 0) {
		err := apperror.NewInvalidInput("price must be a non-negative number", nil)
		span.RecordError(err)
		return nil, err
	}
	if p.DiscountPrice.Set && !p.DiscountPrice.IsNull() && *p.DiscountPrice.Value < 0 {
		err := apperror.NewInvalidInput("discount_price must be a non-negative number", nil)
		span.RecordError(err)
		return nil, err
	}

	if err := uc.ensureCourseOwner(ctx, in.CourseID, in.InstructorID); err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := uc.courseRepo.Update(ctx, in.CourseID, p); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return uc.courseRepo.FindByID(ctx, in.CourseID)
}

type UploadThumbnailInput struct {
	CourseID     int64
	InstructorID int64
	File         io.Reader
}

func (uc *CourseUseCase) UploadThumbnail(ctx context.Context, in UploadThumbnailInput) (string, error) {
	ctx, span := tracer.Start(ctx, "UploadThumbnail")
	defer span.End()

	if in.File == nil {
		err := apperror.NewInvalidInput("thumbnail file is required", nil)
		span.RecordError(err)
		return "", err
	}
	if err := uc.ensureCourseOwner(ctx, in.CourseID, in.InstructorID); err != nil {
		span.RecordError(err)
		return "", err
	}

	folder := fmt.Sprintf("careerfolio/courses/%d", in.CourseID)
	url, err := uc.uploader.Upload(ctx, in.File, folder, "thumbnail")
	if err != nil {
		err = apperror.NewInternal("failed to upload thumbnail", err)
		span.RecordError(err)
		return "", err
	}
	url = uc.thumbnailURL(folder+"/thumbnail", url)

	if err := uc.courseRepo.SetThumbnail(ctx, in.CourseID, url); err != nil {
		span.RecordError(err)
		return "", err
	}
	return url, nil
}

// thumbnailURL derives the cropped delivery URL, falling back to the uploaded URL.
func (uc *CourseUseCase) thumbnailURL(publicID, original string) string {
	cld := uc.uploader.GetClient()
	if cld == nil {
		return original
	}
	img, err := cld.Image(publicID)
	if err != nil {
		uc.logger.Warn("Failed to build thumbnail asset", zap.String("public_id", publicID), zap.Error(err))
		return original
	}
	img.Transformation = thumbnailTransformation
	url, err := img.String()
	if err != nil {
		uc.logger.Warn("Failed to build thumbnail URL", zap.String("public_id", publicID), zap.Error(err))
		return original
	}
	return url
}

func (uc *CourseUseCase) ListPublished(ctx context.Context) ([]*course.Course, error) {
	ctx, span := tracer.Start(ctx, "ListPublished")
	defer span.End()
	return uc.courseRepo.ListPublished(ctx)
}

// GetPublicCourse returns a published course; lecture video URLs are withheld.
func (uc *CourseUseCase) GetPublicCourse(ctx context.Context, courseID int64) (*course.Course, error) {
	ctx, span := tracer.Start(ctx, "GetPublicCourse")
	defer span.End()
	span.SetAttributes(attribute.Int64("course_id", courseID))

	c, err := uc.courseRepo.FindPublished(ctx, courseID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := uc.attachCurriculum(ctx, c, true); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return c, nil
}

func (uc *CourseUseCase) attachCurriculum(ctx context.Context, c *course.Course, hideVideos bool) error {
	sections, err := uc.courseRepo.ListSections(ctx, c.ID)
	if err != nil {
		return err
	}
	lectures, err := uc.courseRepo.ListLectures(ctx, c.ID)
	if err != nil {
		return err
	}
	if hideVideos {
		for _, l := range lectures {
			l.VideoURL = nil
		}
	}
	c.Sections = course.AssembleCurriculum(sections, lectures)
	return nil
}

func (uc *CourseUseCase) ensureCourseOwner(ctx context.Context, courseID, instructorID int64) error {
	c, err := uc.courseRepo.FindByID(ctx, courseID)
	if err != nil {
		return err
	}
	if c.InstructorID != instructorID {
		return apperror.NewPermissionDenied("course is owned by another instructor")
	}
	return nil
}

func validatePrice(price int64, discount *int64) error {
	if price < 0 {
		return apperror.NewInvalidInput("price must be a non-negative number", nil)
	}
	if discount != nil && *discount < 0 {
		return apperror.NewInvalidInput("discount_price must be a non-negative number", nil)
	}
	return nil
}
