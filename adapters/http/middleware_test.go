package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/careerfolio/pkg/apperror"
	"github.com/khoahotran/careerfolio/pkg/auth"
	"github.com/khoahotran/careerfolio/pkg/logger"
	"github.com/khoahotran/careerfolio/pkg/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestAuthAndAdminMiddleware(t *testing.T) {
	jwtSvc := auth.NewJWTService("middleware-test-secret", time.Hour)
	log := logger.NewNopLogger()

	r := gin.New()
	private := r.Group("/", AuthMiddleware(jwtSvc, log))
	private.GET("/me", func(c *gin.Context) {
		p, ok := GetPrincipalFromContext(c.Request.Context())
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"user_id": p.UserID})
	})
	private.GET("/admin", AdminMiddleware(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	userToken, err := jwtSvc.GenerateToken(auth.Principal{UserID: 4, Role: auth.RoleUser})
	require.NoError(t, err)
	adminToken, err := jwtSvc.GenerateToken(auth.Principal{UserID: 1, Role: auth.RoleAdmin})
	require.NoError(t, err)

	tests := []struct {
		name   string
		path   string
		header string
		status int
	}{
		{"missing header", "/me", "", http.StatusUnauthorized},
		{"not a bearer token", "/me", userToken, http.StatusUnauthorized},
		{"garbage token", "/me", "Bearer abc.def.ghi", http.StatusUnauthorized},
		{"valid token", "/me", "Bearer " + userToken, http.StatusOK},
		{"user on admin route", "/admin", "Bearer " + userToken, http.StatusForbidden},
		{"admin on admin route", "/admin", "Bearer " + adminToken, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.status, serve(r, req).Code)
		})
	}
}

func TestErrorMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(ErrorMiddleware(logger.NewNopLogger()))
	r.GET("/not-enrolled", func(c *gin.Context) { c.Error(apperror.NewNotEnrolled(3)) })
	r.GET("/conflict", func(c *gin.Context) { c.Error(apperror.NewConflict("cart item", "course", "3")) })
	r.GET("/raw", func(c *gin.Context) { c.Error(errors.New("driver: bad connection")) })

	rr := serve(r, httptest.NewRequest(http.MethodGet, "/not-enrolled", nil))
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.JSONEq(t, `{"error":"not enrolled","message":"Not enrolled in this course"}`, rr.Body.String())

	rr = serve(r, httptest.NewRequest(http.MethodGet, "/conflict", nil))
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = serve(r, httptest.NewRequest(http.MethodGet, "/raw", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "bad connection")
}

func TestRequestLogger_SetsRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(logger.NewNopLogger(), metrics.NewNopRecorder()))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	rr := serve(r, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.NotEmpty(t, rr.Header().Get(HeaderRequestID))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderRequestID, "given-id")
	assert.Equal(t, "given-id", serve(r, req).Header().Get(HeaderRequestID))
}

func TestIPRateLimiter(t *testing.T) {
	limiter := NewIPRateLimiter(1, 2)
	r := gin.New()
	r.POST("/send-code", limiter.Middleware(logger.NewNopLogger()), func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/send-code", nil)
		req.RemoteAddr = ip + ":5555"
		return serve(r, req).Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.2"), "buckets are per IP")
}
