package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	adminUC "github.com/khoahotran/careerfolio/internal/application/usecase/admin"
	"github.com/khoahotran/careerfolio/pkg/apperror"
	"github.com/khoahotran/careerfolio/pkg/logger"
)

type AdminHandler struct {
	adminUseCase *adminUC.AdminUseCase
	logger       logger.Logger
}

func NewAdminHandler(uc *adminUC.AdminUseCase, log logger.Logger) *AdminHandler {
	return &AdminHandler{adminUseCase: uc, logger: log}
}

func (h *AdminHandler) ListCourses(c *gin.Context) {
	courses, err := h.adminUseCase.ExecuteListCourses(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToCourseDTOs(courses))
}

func (h *AdminHandler) SetStatus(c *gin.Context) {
	courseID, ok := paramID(c, "courseId")
	if !ok {
		return
	}
	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("status is required", err))
		return
	}
	err := h.adminUseCase.ExecuteSetStatus(c.Request.Context(), adminUC.SetStatusInput{CourseID: courseID, Status: req.Status})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "course status changed to '" + req.Status + "'"})
}

func (h *AdminHandler) SetPrice(c *gin.Context) {
	courseID, ok := paramID(c, "courseId")
	if !ok {
		return
	}
	var req SetPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("price is required", err))
		return
	}
	err := h.adminUseCase.ExecuteSetPrice(c.Request.Context(), adminUC.SetPriceInput{
		CourseID:      courseID,
		Price:         *req.Price,
		DiscountPrice: req.DiscountPrice,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "course price changed"})
}
