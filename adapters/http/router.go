package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/khoahotran/careerfolio/pkg/auth"
	"github.com/khoahotran/careerfolio/pkg/logger"
	"github.com/khoahotran/careerfolio/pkg/metrics"
)

type Handlers struct {
	Auth     *AuthHandler
	Course   *CourseHandler
	Admin    *AdminHandler
	Commerce *CommerceHandler
	Learn    *LearnHandler
	Profile  *ProfileHandler
	Video    *VideoHandler
}

type RouterDeps struct {
	JWT             *auth.JWTService
	Metrics         metrics.Recorder
	MetricsHandler  http.Handler
	SendCodeLimiter *IPRateLimiter
	Logger          logger.Logger
}

func NewRouter(h Handlers, deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(deps.Logger, deps.Metrics))
	router.Use(ErrorMiddleware(deps.Logger))

	router.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "UP"}) })
	if deps.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(deps.MetricsHandler))
	}

	authMiddleware := AuthMiddleware(deps.JWT, deps.Logger)

	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.GET("/check-duplicate", h.Auth.CheckDuplicate)
			if deps.SendCodeLimiter != nil {
				authGroup.POST("/send-code", deps.SendCodeLimiter.Middleware(deps.Logger), h.Auth.SendCode)
			} else {
				authGroup.POST("/send-code", h.Auth.SendCode)
			}
			authGroup.POST("/verify-code", h.Auth.VerifyCode)
			authGroup.POST("/signup", h.Auth.Signup)
			authGroup.POST("/login", h.Auth.Login)
		}

		api.GET("/courses", h.Course.ListPublished)
		api.GET("/courses/public/:courseId", h.Course.GetPublicCourse)
		api.GET("/video/stream/:object", h.Video.Stream)

		private := api.Group("/")
		private.Use(authMiddleware)
		{
			courses := private.Group("/courses")
			{
				courses.POST("", h.Course.CreateCourse)
				courses.GET("/my-courses", h.Course.ListMyCourses)
				courses.PATCH("/sections/reorder", h.Course.ReorderSections)
				courses.PUT("/sections/:sectionId", h.Course.RenameSection)
				courses.DELETE("/sections/:sectionId", h.Course.DeleteSection)
				courses.POST("/sections/:sectionId/lectures", h.Course.AddLecture)
				courses.PATCH("/lectures/reorder", h.Course.ReorderLectures)
				courses.PUT("/lectures/:lectureId", h.Course.UpdateLecture)
				courses.DELETE("/lectures/:lectureId", h.Course.DeleteLecture)
				courses.GET("/:courseId", h.Course.GetMyCourse)
				courses.PUT("/:courseId", h.Course.UpdateCourse)
				courses.POST("/:courseId/thumbnail", h.Course.UploadThumbnail)
				courses.POST("/:courseId/sections", h.Course.AddSection)
			}

			admin := private.Group("/admin")
			admin.Use(AdminMiddleware())
			{
				admin.GET("/courses", h.Admin.ListCourses)
				admin.PUT("/courses/:courseId/status", h.Admin.SetStatus)
				admin.PUT("/courses/:courseId/price", h.Admin.SetPrice)
			}

			private.GET("/cart", h.Commerce.ListCart)
			private.POST("/cart", h.Commerce.AddToCart)
			private.DELETE("/cart/:courseId", h.Commerce.RemoveFromCart)
			private.POST("/payments/checkout", h.Commerce.Checkout)
			private.GET("/enrollments/my", h.Commerce.ListMyEnrollments)
			private.POST("/enrollments/free", h.Commerce.EnrollFree)

			private.GET("/learn/course/:courseId", h.Learn.GetCourse)
			private.POST("/learn/progress", h.Learn.RecordProgress)
			private.GET("/memos/lecture/:lectureId", h.Learn.ListMemos)
			private.POST("/memos", h.Learn.CreateMemo)
			private.DELETE("/memos/:memoId", h.Learn.DeleteMemo)

			profile := private.Group("/profile")
			{
				profile.GET("/me", h.Profile.GetProfile)
				profile.PUT("/me", h.Profile.UpdateProfile)
				profile.POST("/experiences", h.Profile.AddExperience)
				profile.DELETE("/experiences/:expId", h.Profile.DeleteExperience)
				profile.POST("/resume-photo", h.Profile.UploadResumePhoto)
			}

			private.PUT("/resume/bulk-update", h.Profile.BulkUpdateResume)
		}
	}

	return router
}
