package course

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/careerfolio/internal/domain/course"
	"github.com/khoahotran/careerfolio/pkg/apperror"
	"github.com/khoahotran/careerfolio/pkg/patch"
)

// VideoStreamPrefix is the public path uploaded lecture videos are served from.
const VideoStreamPrefix = "/api/video/stream/"

const (
	UploadTypeFile = "upload"
	UploadTypeURL  = "url"
)

// VideoUpload is a lecture video received from the client.
type VideoUpload struct {
	File        io.Reader
	Size        int64
	Filename    string
	ContentType string
}

type AddSectionInput struct {
	InstructorID int64
	CourseID     int64
	Title        string
}

func (uc *CourseUseCase) AddSection(ctx context.Context, in AddSectionInput) (*course.Section, error) {
	ctx, span := tracer.Start(ctx, "AddSection")
	defer span.End()

	if strings.TrimSpace(in.Title) == "" {
		err := apperror.NewInvalidInput("section title is required", nil)
		span.RecordError(err)
		return nil, err
	}
	if err := uc.ensureCourseOwner(ctx, in.CourseID, in.InstructorID); err != nil {
		span.RecordError(err)
		return nil, err
	}

	s := &course.Section{CourseID: in.CourseID, Title: strings.TrimSpace(in.Title)}
	if err := uc.courseRepo.CreateSection(ctx, s); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return s, nil
}

type RenameSectionInput struct {
	InstructorID int64
	SectionID    int64
	Title        string
}

func (uc *CourseUseCase) RenameSection(ctx context.Context, in RenameSectionInput) error {
	ctx, span := tracer.Start(ctx, "RenameSection")
	defer span.End()

	if strings.TrimSpace(in.Title) == "" {
		err := apperror.NewInvalidInput("section title is required", nil)
		span.RecordError(err)
		return err
	}
	if err := uc.ensureSectionOwner(ctx, in.SectionID, in.InstructorID); err != nil {
		span.RecordError(err)
		return err
	}
	return uc.courseRepo.RenameSection(ctx, in.SectionID, strings.TrimSpace(in.Title))
}

// DeleteSection removes the section and, by cascade, its lectures.
func (uc *CourseUseCase) DeleteSection(ctx context.Context, sectionID, instructorID int64) error {
	ctx, span := tracer.Start(ctx, "DeleteSection")
	defer span.End()

	if err := uc.ensureSectionOwner(ctx, sectionID, instructorID); err != nil {
		span.RecordError(err)
		return err
	}
	return uc.courseRepo.DeleteSection(ctx, sectionID)
}

type ReorderSectionsInput struct {
	InstructorID int64
	Orders       []course.SectionOrder
}

func (uc *CourseUseCase) ReorderSections(ctx context.Context, in ReorderSectionsInput) error {
	ctx, span := tracer.Start(ctx, "ReorderSections")
	defer span.End()

	if len(in.Orders) == 0 {
		err := apperror.NewInvalidInput("at least one section order is required", nil)
		span.RecordError(err)
		return err
	}
	ids := make([]int64, 0, len(in.Orders))
	for _, o := range in.Orders {
		ids = append(ids, o.SectionID)
	}
	ids = distinct(ids)

	err := uc.courseRepo.InTx(ctx, func(ctx context.Context, repo course.Repository) error {
		owned, err := repo.CountOwnedSections(ctx, in.InstructorID, ids)
		if err != nil {
			return err
		}
		if owned != len(ids) {
			return apperror.NewPermissionDenied("some sections are not owned by the instructor")
		}
		for _, o := range in.Orders {
			if err := repo.SetSectionOrder(ctx, o); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

type AddLectureInput struct {
	InstructorID    int64
	SectionID       int64
	Title           string
	DurationSeconds int
	UploadType      string
	VideoURL        string
	Video           *VideoUpload
}

func (uc *CourseUseCase) AddLecture(ctx context.Context, in AddLectureInput) (*course.Lecture, error) {
	ctx, span := tracer.Start(ctx, "AddLecture")
	defer span.End()
	span.SetAttributes(attribute.Int64("section_id", in.SectionID), attribute.String("upload_type", in.UploadType))

	if strings.TrimSpace(in.Title) == "" || in.DurationSeconds <= 0 {
		err := apperror.NewInvalidInput("lecture title and duration are required", nil)
		span.RecordError(err)
		return nil, err
	}

	var url string
	switch in.UploadType {
	case UploadTypeFile:
		if in.Video == nil || in.Video.File == nil {
			err := apperror.NewInvalidInput("video file was not uploaded", nil)
			span.RecordError(err)
			return nil, err
		}
	case UploadTypeURL:
		url = strings.TrimSpace(in.VideoURL)
		if url == "" {
			err := apperror.NewInvalidInput("video url is required", nil)
			span.RecordError(err)
			return nil, err
		}
	default:
		err := apperror.NewInvalidInput("unknown upload type", nil)
		span.RecordError(err)
		return nil, err
	}

	if err := uc.ensureSectionOwner(ctx, in.SectionID, in.InstructorID); err != nil {
		span.RecordError(err)
		return nil, err
	}

	var objectName string
	if in.UploadType == UploadTypeFile {
		var err error
		objectName, err = uc.storeVideo(ctx, in.Video)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		url = VideoStreamPrefix + objectName
	}

	l := &course.Lecture{
		SectionID:       in.SectionID,
		Title:           strings.TrimSpace(in.Title),
		VideoURL:        &url,
		DurationSeconds: in.DurationSeconds,
	}
	if err := uc.courseRepo.CreateLecture(ctx, l); err != nil {
		if objectName != "" {
			uc.removeVideo(objectName)
		}
		span.RecordError(err)
		return nil, err
	}
	return l, nil
}

type UpdateLectureInput struct {
	InstructorID int64
	LectureID    int64
	Patch        course.LecturePatch
	Video        *VideoUpload
}

func (uc *CourseUseCase) UpdateLecture(ctx context.Context, in UpdateLectureInput) error {
	ctx, span := tracer.Start(ctx, "UpdateLecture")
	defer span.End()

	p := in.Patch
	if p.Title.Set && (p.Title.IsNull() || strings.TrimSpace(*p.Title.Value) == "") {
		err := apperror.NewInvalidInput("lecture title must not be empty", nil)
		span.RecordError(err)
		return err
	}
	if p.DurationSeconds.Set && (p.DurationSeconds.IsNull() || *p.DurationSeconds.Value < 0) {
		err := apperror.NewInvalidInput("duration_seconds must be a non-negative number", nil)
		span.RecordError(err)
		return err
	}
	if p.Empty() && in.Video == nil {
		err := apperror.NewInvalidInput("no fields to update", nil)
		span.RecordError(err)
		return err
	}

	if err := uc.ensureLectureOwner(ctx, in.LectureID, in.InstructorID); err != nil {
		span.RecordError(err)
		return err
	}

	var objectName string
	if in.Video != nil {
		var err error
		objectName, err = uc.storeVideo(ctx, in.Video)
		if err != nil {
			span.RecordError(err)
			return err
		}
		p.VideoURL = patch.Value(VideoStreamPrefix + objectName)
	}

	if err := uc.courseRepo.UpdateLecture(ctx, in.LectureID, p); err != nil {
		if objectName != "" {
			uc.removeVideo(objectName)
		}
		span.RecordError(err)
		return err
	}
	return nil
}

func (uc *CourseUseCase) DeleteLecture(ctx context.Context, lectureID, instructorID int64) error {
	ctx, span := tracer.Start(ctx, "DeleteLecture")
	defer span.End()

	if err := uc.ensureLectureOwner(ctx, lectureID, instructorID); err != nil {
		span.RecordError(err)
		return err
	}
	return uc.courseRepo.DeleteLecture(ctx, lectureID)
}

type ReorderLecturesInput struct {
	InstructorID int64
	Orders       []course.LectureOrder
}

// ReorderLectures applies new positions, possibly moving lectures to other sections.
func (uc *CourseUseCase) ReorderLectures(ctx context.Context, in ReorderLecturesInput) error {
	ctx, span := tracer.Start(ctx, "ReorderLectures")
	defer span.End()

	if len(in.Orders) == 0 {
		err := apperror.NewInvalidInput("at least one lecture order is required", nil)
		span.RecordError(err)
		return err
	}
	lectureIDs := make([]int64, 0, len(in.Orders))
	sectionIDs := make([]int64, 0, len(in.Orders))
	for _, o := range in.Orders {
		lectureIDs = append(lectureIDs, o.LectureID)
		sectionIDs = append(sectionIDs, o.SectionID)
	}
	lectureIDs, sectionIDs = distinct(lectureIDs), distinct(sectionIDs)

	err := uc.courseRepo.InTx(ctx, func(ctx context.Context, repo course.Repository) error {
		owned, err := repo.CountOwnedLectures(ctx, in.InstructorID, lectureIDs)
		if err != nil {
			return err
		}
		if owned != len(lectureIDs) {
			return apperror.NewPermissionDenied("some lectures are not owned by the instructor")
		}
		owned, err = repo.CountOwnedSections(ctx, in.InstructorID, sectionIDs)
		if err != nil {
			return err
		}
		if owned != len(sectionIDs) {
			return apperror.NewPermissionDenied("some target sections are not owned by the instructor")
		}
		for _, o := range in.Orders {
			if err := repo.MoveLecture(ctx, o); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

func (uc *CourseUseCase) storeVideo(ctx context.Context, v *VideoUpload) (string, error) {
	if v == nil || v.File == nil {
		return "", apperror.NewInvalidInput("video file was not uploaded", nil)
	}
	contentType := v.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	objectName := uuid.NewString() + strings.ToLower(path.Ext(v.Filename))
	if err := uc.videos.Put(ctx, objectName, v.File, v.Size, contentType); err != nil {
		return "", err
	}
	uc.logger.Info("Lecture video stored", zap.String("object", objectName), zap.Int64("size", v.Size))
	return objectName, nil
}

func (uc *CourseUseCase) removeVideo(objectName string) {
	go func() {
		if err := uc.videos.Remove(context.Background(), objectName); err != nil {
			uc.logger.Warn("Failed to remove orphaned video", zap.String("object", objectName), zap.Error(err))
		}
	}()
}

func (uc *CourseUseCase) ensureSectionOwner(ctx context.Context, sectionID, instructorID int64) error {
	owner, err := uc.courseRepo.SectionOwner(ctx, sectionID)
	if err != nil {
		return err
	}
	if owner != instructorID {
		return apperror.NewPermissionDenied("section is owned by another instructor")
	}
	return nil
}

func (uc *CourseUseCase) ensureLectureOwner(ctx context.Context, lectureID, instructorID int64) error {
	owner, err := uc.courseRepo.LectureOwner(ctx, lectureID)
	if err != nil {
		return err
	}
	if owner != instructorID {
		return apperror.NewPermissionDenied("lecture is owned by another instructor")
	}
	return nil
}

func distinct(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
