package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/khoahotran/careerfolio/internal/application/usecase/auth"
	"github.com/khoahotran/careerfolio/pkg/apperror"
	"github.com/khoahotran/careerfolio/pkg/logger"
)

type AuthHandler struct {
	loginUseCase    *auth.LoginUseCase
	registerUseCase *auth.RegisterUseCase
	logger          logger.Logger
}

func NewAuthHandler(loginUC *auth.LoginUseCase, registerUC *auth.RegisterUseCase, log logger.Logger) *AuthHandler {
	return &AuthHandler{
		loginUseCase:    loginUC,
		registerUseCase: registerUC,
		logger:          log,
	}
}

func (h *AuthHandler) CheckDuplicate(c *gin.Context) {
	input := auth.CheckDuplicateInput{Type: c.Query("type"), Value: c.Query("value")}
	exists, err := h.registerUseCase.ExecuteCheckDuplicate(c.Request.Context(), input)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exists": exists})
}

func (h *AuthHandler) SendCode(c *gin.Context) {
	var req SendCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("a valid email is required", err))
		return
	}
	if err := h.registerUseCase.ExecuteSendCode(c.Request.Context(), auth.SendCodeInput{Email: req.Email}); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "verification code was sent"})
}

func (h *AuthHandler) VerifyCode(c *gin.Context) {
	var req VerifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("email and code are required", err))
		return
	}
	input := auth.VerifyCodeInput{Email: req.Email, Code: req.Code}
	if err := h.registerUseCase.ExecuteVerifyCode(c.Request.Context(), input); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"verified": true, "message": "email verified"})
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("name, email, id and password are required", err))
		return
	}
	input := auth.SignupInput{
		Name:        req.Name,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		LoginID:     req.LoginID,
		Password:    req.Password,
	}
	userID, err := h.registerUseCase.ExecuteSignup(c.Request.Context(), input)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "signed up", "user_idx": userID})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("id and password are required", err))
		return
	}

	output, err := h.loginUseCase.Execute(c.Request.Context(), auth.LoginInput{
		LoginID:  req.LoginID,
		Password: req.Password,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": output.AccessToken,
		"user":         ToUserDTO(output.Account),
	})
}
