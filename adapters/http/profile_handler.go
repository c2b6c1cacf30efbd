package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	profileUC "github.com/khoahotran/careerfolio/internal/application/usecase/profile"
	resumeUC "github.com/khoahotran/careerfolio/internal/application/usecase/resume"
	"github.com/khoahotran/careerfolio/pkg/apperror"
	"github.com/khoahotran/careerfolio/pkg/logger"
	"github.com/khoahotran/careerfolio/pkg/patch"
)

type ProfileHandler struct {
	profileUseCase    *profileUC.ProfileUseCase
	bulkUpdateUseCase *resumeUC.BulkUpdateUseCase
	logger            logger.Logger
}

func NewProfileHandler(uc *profileUC.ProfileUseCase, bulkUC *resumeUC.BulkUpdateUseCase, log logger.Logger) *ProfileHandler {
	return &ProfileHandler{
		profileUseCase:    uc,
		bulkUpdateUseCase: bulkUC,
		logger:            log,
	}
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	output, err := h.profileUseCase.ExecuteGetProfile(c.Request.Context(), profileUC.GetProfileInput{UserID: p.UserID})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToProfileDataDTO(output))
}

// UpdateProfile takes a multipart form: nickname, bio, an optional
// profile_picture file and deleteProfilePicture=true to remove the picture.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	input := profileUC.UpdateProfileInput{UserID: p.UserID}
	if v, ok := c.GetPostForm("nickname"); ok {
		input.Nickname = patch.Value(v)
	}
	if v, ok := c.GetPostForm("bio"); ok {
		input.Bio = patch.Value(v)
	}

	_, file, err := optionalFile(c, "profile_picture")
	if err != nil {
		c.Error(err)
		return
	}
	switch {
	case file != nil:
		defer file.Close()
		input.PictureAction = profileUC.PictureReplace
		input.Picture = file
	case c.PostForm("deleteProfilePicture") == "true":
		input.PictureAction = profileUC.PictureRemove
	}

	output, err := h.profileUseCase.ExecuteUpdateProfile(c.Request.Context(), input)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToProfileDataDTO(output))
}

func (h *ProfileHandler) AddExperience(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req ExperienceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("company_name, position and start_date are required", err))
		return
	}
	created, err := h.profileUseCase.ExecuteAddExperience(c.Request.Context(), profileUC.AddExperienceInput{
		UserID:     p.UserID,
		Experience: req.ToDomain(),
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, ToExperienceDTO(*created))
}

func (h *ProfileHandler) DeleteExperience(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	expID, ok := paramID(c, "expId")
	if !ok {
		return
	}
	err := h.profileUseCase.ExecuteDeleteExperience(c.Request.Context(), profileUC.DeleteExperienceInput{
		UserID:       p.UserID,
		ExperienceID: expID,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "experience deleted"})
}

func (h *ProfileHandler) UploadResumePhoto(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	fileHeader, err := c.FormFile("resume_photo")
	if err != nil {
		c.Error(apperror.NewInvalidInput("'resume_photo' is required", err))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.Error(apperror.NewInternal("file cannot open", err))
		return
	}
	defer file.Close()

	url, err := h.profileUseCase.ExecuteUploadResumePhoto(c.Request.Context(), profileUC.UploadResumePhotoInput{
		UserID: p.UserID,
		File:   file,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"resume_photo_url": url})
}

// BulkUpdateResume replaces the whole resume. On failure it answers 500 with
// the state that is actually stored, so the client can resynchronize.
func (h *ProfileHandler) BulkUpdateResume(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req BulkUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for resume update", err))
		return
	}

	ctx := c.Request.Context()
	syncErr := h.bulkUpdateUseCase.Execute(ctx, resumeUC.BulkUpdateInput{UserID: p.UserID, Snapshot: req.ToSnapshot()})
	if errors.Is(syncErr, apperror.ErrInvalidInput) {
		c.Error(syncErr)
		return
	}

	current, err := h.profileUseCase.ExecuteGetProfile(ctx, profileUC.GetProfileInput{UserID: p.UserID})
	if syncErr != nil {
		h.logger.Error("Resume bulk update failed", syncErr, zap.Int64("user_id", p.UserID))
		if err != nil {
			c.Error(syncErr)
			return
		}
		body := ToProfileDataDTO(current)
		c.JSON(http.StatusInternalServerError, gin.H{
			"message":     "failed to save resume, nothing was changed",
			"profile":     body.Profile,
			"experiences": body.Experiences,
			"educations":  body.Educations,
			"projects":    body.Projects,
			"skills":      body.Skills,
		})
		return
	}
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToProfileDataDTO(current))
}
