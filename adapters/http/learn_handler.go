package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	learnUC "github.com/khoahotran/careerfolio/internal/application/usecase/learn"
	memoUC "github.com/khoahotran/careerfolio/internal/application/usecase/memo"
	"github.com/khoahotran/careerfolio/pkg/apperror"
	"github.com/khoahotran/careerfolio/pkg/logger"
)

// LearnHandler serves the learner's course view, progress and memos.
type LearnHandler struct {
	getCourseUseCase      *learnUC.GetCourseForLearnerUseCase
	recordProgressUseCase *learnUC.RecordProgressUseCase
	memoUseCase           *memoUC.MemoUseCase
	logger                logger.Logger
}

func NewLearnHandler(
	getCourseUC *learnUC.GetCourseForLearnerUseCase,
	recordProgressUC *learnUC.RecordProgressUseCase,
	memoUseCase *memoUC.MemoUseCase,
	log logger.Logger,
) *LearnHandler {
	return &LearnHandler{
		getCourseUseCase:      getCourseUC,
		recordProgressUseCase: recordProgressUC,
		memoUseCase:           memoUseCase,
		logger:                log,
	}
}

func (h *LearnHandler) GetCourse(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	courseID, ok := paramID(c, "courseId")
	if !ok {
		return
	}
	out, err := h.getCourseUseCase.Execute(c.Request.Context(), learnUC.GetCourseForLearnerInput{UserID: p.UserID, CourseID: courseID})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"enrollment_idx":   out.EnrollmentID,
		"progress_percent": out.ProgressPercent,
		"course":           ToCourseDTO(out.Course),
	})
}

func (h *LearnHandler) RecordProgress(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req RecordProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("lectureId and a non-negative watchedSeconds are required", err))
		return
	}
	out, err := h.recordProgressUseCase.Execute(c.Request.Context(), learnUC.RecordProgressInput{
		UserID:         p.UserID,
		LectureID:      req.LectureID,
		WatchedSeconds: *req.WatchedSeconds,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":            "progress saved",
		"newProgressPercent": out.NewPercentage,
		"isCompleted":        out.Completed,
	})
}

func (h *LearnHandler) ListMemos(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	lectureID, ok := paramID(c, "lectureId")
	if !ok {
		return
	}
	memos, err := h.memoUseCase.ExecuteList(c.Request.Context(), memoUC.ListMemosInput{UserID: p.UserID, LectureID: lectureID})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToMemoDTOs(memos))
}

func (h *LearnHandler) CreateMemo(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req CreateMemoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("lectureId, timestampSeconds and content are required", err))
		return
	}
	m, err := h.memoUseCase.ExecuteCreate(c.Request.Context(), memoUC.CreateMemoInput{
		UserID:           p.UserID,
		LectureID:        req.LectureID,
		TimestampSeconds: *req.TimestampSeconds,
		Content:          req.Content,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, ToMemoDTO(m))
}

func (h *LearnHandler) DeleteMemo(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	memoID, ok := paramID(c, "memoId")
	if !ok {
		return
	}
	if err := h.memoUseCase.ExecuteDelete(c.Request.Context(), memoUC.DeleteMemoInput{UserID: p.UserID, MemoID: memoID}); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "memo deleted"})
}
