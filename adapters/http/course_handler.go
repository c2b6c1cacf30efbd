package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	courseUC "github.com/khoahotran/careerfolio/internal/application/usecase/course"
	"github.com/khoahotran/careerfolio/internal/domain/course"
	"github.com/khoahotran/careerfolio/pkg/apperror"
	"github.com/khoahotran/careerfolio/pkg/logger"
	"github.com/khoahotran/careerfolio/pkg/patch"
)

type CourseHandler struct {
	courseUseCase *courseUC.CourseUseCase
	logger        logger.Logger
}

func NewCourseHandler(uc *courseUC.CourseUseCase, log logger.Logger) *CourseHandler {
	return &CourseHandler{courseUseCase: uc, logger: log}
}

func (h *CourseHandler) CreateCourse(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("title is required and price must be non-negative", err))
		return
	}

	created, err := h.courseUseCase.CreateCourse(c.Request.Context(), courseUC.CreateCourseInput{
		InstructorID:  p.UserID,
		Title:         req.Title,
		Description:   req.Description,
		Price:         req.Price,
		DiscountPrice: req.DiscountPrice,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, ToCourseDTO(created))
}

func (h *CourseHandler) ListMyCourses(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	courses, err := h.courseUseCase.ListMyCourses(c.Request.Context(), p.UserID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToCourseDTOs(courses))
}

func (h *CourseHandler) GetMyCourse(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	courseID, ok := paramID(c, "courseId")
	if !ok {
		return
	}
	cs, err := h.courseUseCase.GetMyCourse(c.Request.Context(), courseID, p.UserID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToCourseDTO(cs))
}

func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	courseID, ok := paramID(c, "courseId")
	if !ok {
		return
	}
	var req UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for course update", err))
		return
	}

	updated, err := h.courseUseCase.UpdateCourse(c.Request.Context(), courseUC.UpdateCourseInput{
		CourseID:     courseID,
		InstructorID: p.UserID,
		Patch:        req.ToPatch(),
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToCourseDTO(updated))
}

func (h *CourseHandler) UploadThumbnail(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	courseID, ok := paramID(c, "courseId")
	if !ok {
		return
	}
	fileHeader, err := c.FormFile("thumbnail")
	if err != nil {
		c.Error(apperror.NewInvalidInput("'thumbnail' is required", err))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.Error(apperror.NewInternal("file cannot open", err))
		return
	}
	defer file.Close()

	url, err := h.courseUseCase.UploadThumbnail(c.Request.Context(), courseUC.UploadThumbnailInput{
		CourseID:     courseID,
		InstructorID: p.UserID,
		File:         file,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"thumbnail_url": url})
}

func (h *CourseHandler) ListPublished(c *gin.Context) {
	courses, err := h.courseUseCase.ListPublished(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToCourseDTOs(courses))
}

func (h *CourseHandler) GetPublicCourse(c *gin.Context) {
	courseID, ok := paramID(c, "courseId")
	if !ok {
		return
	}
	cs, err := h.courseUseCase.GetPublicCourse(c.Request.Context(), courseID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToCourseDTO(cs))
}

func (h *CourseHandler) AddSection(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	courseID, ok := paramID(c, "courseId")
	if !ok {
		return
	}
	var req SectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("section title is required", err))
		return
	}
	s, err := h.courseUseCase.AddSection(c.Request.Context(), courseUC.AddSectionInput{
		InstructorID: p.UserID,
		CourseID:     courseID,
		Title:        req.Title,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, ToSectionDTO(s))
}

func (h *CourseHandler) RenameSection(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	sectionID, ok := paramID(c, "sectionId")
	if !ok {
		return
	}
	var req SectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("section title is required", err))
		return
	}
	err := h.courseUseCase.RenameSection(c.Request.Context(), courseUC.RenameSectionInput{
		InstructorID: p.UserID,
		SectionID:    sectionID,
		Title:        req.Title,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "section updated"})
}

func (h *CourseHandler) DeleteSection(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	sectionID, ok := paramID(c, "sectionId")
	if !ok {
		return
	}
	if err := h.courseUseCase.DeleteSection(c.Request.Context(), sectionID, p.UserID); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "section deleted"})
}

func (h *CourseHandler) ReorderSections(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req SectionOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("section order list is invalid", err))
		return
	}
	orders := make([]course.SectionOrder, len(req.Sections))
	for i, s := range req.Sections {
		orders[i] = course.SectionOrder{SectionID: s.ID, Order: s.Order}
	}
	err := h.courseUseCase.ReorderSections(c.Request.Context(), courseUC.ReorderSectionsInput{
		InstructorID: p.UserID,
		Orders:       orders,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "section order updated"})
}

func (h *CourseHandler) AddLecture(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	sectionID, ok := paramID(c, "sectionId")
	if !ok {
		return
	}

	duration, err := strconv.Atoi(strings.TrimSpace(c.PostForm("duration_seconds")))
	if err != nil {
		c.Error(apperror.NewInvalidInput("lecture title and duration are required", err))
		return
	}

	input := courseUC.AddLectureInput{
		InstructorID:    p.UserID,
		SectionID:       sectionID,
		Title:           c.PostForm("title"),
		DurationSeconds: duration,
		UploadType:      c.PostForm("uploadType"),
		VideoURL:        c.PostForm("video_url"),
	}

	fh, file, err := optionalFile(c, "video")
	if err != nil {
		c.Error(err)
		return
	}
	if file != nil {
		defer file.Close()
		input.Video = &courseUC.VideoUpload{
			File:        file,
			Size:        fh.Size,
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
		}
	}

	l, err := h.courseUseCase.AddLecture(c.Request.Context(), input)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, ToLectureDTO(l))
}

// UpdateLecture accepts a JSON patch, or a multipart form when a new video is uploaded.
func (h *CourseHandler) UpdateLecture(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	lectureID, ok := paramID(c, "lectureId")
	if !ok {
		return
	}

	input := courseUC.UpdateLectureInput{InstructorID: p.UserID, LectureID: lectureID}

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if title, ok := c.GetPostForm("title"); ok {
			input.Patch.Title = patch.Value(title)
		}
		if raw, ok := c.GetPostForm("duration_seconds"); ok {
			d, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil {
				c.Error(apperror.NewInvalidInput("duration_seconds must be a number", err))
				return
			}
			input.Patch.DurationSeconds = patch.Value(d)
		}
		fh, file, err := optionalFile(c, "video")
		if err != nil {
			c.Error(err)
			return
		}
		if file != nil {
			defer file.Close()
			input.Video = &courseUC.VideoUpload{
				File:        file,
				Size:        fh.Size,
				Filename:    fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
			}
		}
	} else {
		var req UpdateLectureRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(apperror.NewInvalidInput("invalid JSON body for lecture update", err))
			return
		}
		input.Patch = course.LecturePatch{
			Title:           req.Title,
			DurationSeconds: req.DurationSeconds,
			VideoURL:        req.VideoURL,
		}
	}

	if err := h.courseUseCase.UpdateLecture(c.Request.Context(), input); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "lecture updated"})
}

func (h *CourseHandler) DeleteLecture(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	lectureID, ok := paramID(c, "lectureId")
	if !ok {
		return
	}
	if err := h.courseUseCase.DeleteLecture(c.Request.Context(), lectureID, p.UserID); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "lecture deleted"})
}

func (h *CourseHandler) ReorderLectures(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req LectureOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("lecture order list is invalid", err))
		return
	}
	orders := make([]course.LectureOrder, len(req.Lectures))
	for i, l := range req.Lectures {
		orders[i] = course.LectureOrder{LectureID: l.ID, SectionID: l.SectionID, Order: l.Order}
	}
	err := h.courseUseCase.ReorderLectures(c.Request.Context(), courseUC.ReorderLecturesInput{
		InstructorID: p.UserID,
		Orders:       orders,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "lecture order updated"})
}
