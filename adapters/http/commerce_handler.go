package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	cartUC "github.com/khoahotran/careerfolio/internal/application/usecase/cart"
	enrollmentUC "github.com/khoahotran/careerfolio/internal/application/usecase/enrollment"
	paymentUC "github.com/khoahotran/careerfolio/internal/application/usecase/payment"
	"github.com/khoahotran/careerfolio/pkg/apperror"
	"github.com/khoahotran/careerfolio/pkg/logger"
)

// CommerceHandler serves the cart, checkout and enrollment routes.
type CommerceHandler struct {
	cartUseCase            *cartUC.CartUseCase
	checkoutUseCase        *paymentUC.CheckoutUseCase
	enrollFreeUseCase      *enrollmentUC.EnrollFreeUseCase
	listEnrollmentsUseCase *enrollmentUC.ListMyEnrollmentsUseCase
	logger                 logger.Logger
}

func NewCommerceHandler(
	cartUseCase *cartUC.CartUseCase,
	checkoutUseCase *paymentUC.CheckoutUseCase,
	enrollFreeUseCase *enrollmentUC.EnrollFreeUseCase,
	listEnrollmentsUseCase *enrollmentUC.ListMyEnrollmentsUseCase,
	log logger.Logger,
) *CommerceHandler {
	return &CommerceHandler{
		cartUseCase:            cartUseCase,
		checkoutUseCase:        checkoutUseCase,
		enrollFreeUseCase:      enrollFreeUseCase,
		listEnrollmentsUseCase: listEnrollmentsUseCase,
		logger:                 log,
	}
}

func (h *CommerceHandler) ListCart(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	items, err := h.cartUseCase.ExecuteList(c.Request.Context(), p.UserID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToCartItemDTOs(items))
}

func (h *CommerceHandler) AddToCart(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req CourseIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("courseId is required", err))
		return
	}
	if err := h.cartUseCase.ExecuteAdd(c.Request.Context(), cartUC.CartItemInput{UserID: p.UserID, CourseID: req.CourseID}); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "added to cart"})
}

func (h *CommerceHandler) RemoveFromCart(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	courseID, ok := paramID(c, "courseId")
	if !ok {
		return
	}
	if err := h.cartUseCase.ExecuteRemove(c.Request.Context(), cartUC.CartItemInput{UserID: p.UserID, CourseID: courseID}); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "removed from cart"})
}

func (h *CommerceHandler) Checkout(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("courseIds must be a non-empty list", err))
		return
	}
	pay, err := h.checkoutUseCase.Execute(c.Request.Context(), paymentUC.CheckoutInput{UserID: p.UserID, CourseIDs: req.CourseIDs})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":     "payment completed",
		"payment_idx": pay.ID,
		"amount":      pay.Amount,
	})
}

func (h *CommerceHandler) ListMyEnrollments(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	summaries, err := h.listEnrollmentsUseCase.Execute(c.Request.Context(), enrollmentUC.ListMyEnrollmentsInput{UserID: p.UserID})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToEnrollmentSummaryDTOs(summaries))
}

func (h *CommerceHandler) EnrollFree(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req CourseIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("courseId is required", err))
		return
	}
	e, err := h.enrollFreeUseCase.Execute(c.Request.Context(), enrollmentUC.EnrollFreeInput{UserID: p.UserID, CourseID: req.CourseID})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "enrolled", "enrollment": e})
}
