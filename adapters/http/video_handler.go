package http

import (
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/khoahotran/careerfolio/internal/application/service"
	"github.com/khoahotran/careerfolio/pkg/apperror"
	"github.com/khoahotran/careerfolio/pkg/logger"
)

type VideoHandler struct {
	videos service.VideoStore
	logger logger.Logger
}

func NewVideoHandler(videos service.VideoStore, log logger.Logger) *VideoHandler {
	return &VideoHandler{videos: videos, logger: log}
}

// Stream serves a lecture video, honoring Range requests.
func (h *VideoHandler) Stream(c *gin.Context) {
	name := path.Base(strings.TrimSpace(c.Param("object")))
	if name == "." || name == "/" || name == "" || strings.HasPrefix(name, "..") {
		c.Error(apperror.NewInvalidInput("invalid video name", nil))
		return
	}

	obj, err := h.videos.Open(c.Request.Context(), name)
	if err != nil {
		c.Error(err)
		return
	}
	defer func() {
		if cerr := obj.Close(); cerr != nil {
			h.logger.Warn("Failed to close video object", zap.String("object", name), zap.Error(cerr))
		}
	}()

	contentType := obj.ContentType()
	if contentType == "" {
		contentType = "video/mp4"
	}
	c.Header("Content-Type", contentType)
	c.Header("Accept-Ranges", "bytes")
	http.ServeContent(c.Writer, c.Request, name, obj.ModTime(), obj)
}
