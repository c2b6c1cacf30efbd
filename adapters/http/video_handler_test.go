package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/khoahotran/careerfolio/internal/application/service/mocks"
	"github.com/khoahotran/careerfolio/pkg/apperror"
	"github.com/khoahotran/careerfolio/pkg/logger"
)

type memVideo struct {
	*bytes.Reader
	size int64
}

func (v memVideo) Close() error        { return nil }
func (v memVideo) Size() int64         { return v.size }
func (v memVideo) ContentType() string { return "video/mp4" }
func (v memVideo) ModTime() time.Time  { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }

func newVideo(data string) memVideo {
	return memVideo{Reader: bytes.NewReader([]byte(data)), size: int64(len(data))}
}

func videoRouter(store *mocks.VideoStore) *gin.Engine {
	r := gin.New()
	r.Use(ErrorMiddleware(logger.NewNopLogger()))
	r.GET("/api/video/stream/:object", NewVideoHandler(store, logger.NewNopLogger()).Stream)
	return r
}

func TestVideoStream(t *testing.T) {
	const payload = "0123456789abcdefghij"

	t.Run("full body", func(t *testing.T) {
		store := new(mocks.VideoStore)
		store.On("Open", mock.Anything, "clip.mp4").Return(newVideo(payload), nil)

		rr := serve(videoRouter(store), httptest.NewRequest(http.MethodGet, "/api/video/stream/clip.mp4", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, payload, rr.Body.String())
		assert.Equal(t, "video/mp4", rr.Header().Get("Content-Type"))
		assert.Equal(t, "bytes", rr.Header().Get("Accept-Ranges"))
	})

	t.Run("range request", func(t *testing.T) {
		store := new(mocks.VideoStore)
		store.On("Open", mock.Anything, "clip.mp4").Return(newVideo(payload), nil)

		req := httptest.NewRequest(http.MethodGet, "/api/video/stream/clip.mp4", nil)
		req.Header.Set("Range", "bytes=10-14")
		rr := serve(videoRouter(store), req)
		assert.Equal(t, http.StatusPartialContent, rr.Code)
		assert.Equal(t, "abcde", rr.Body.String())
		assert.Equal(t, "bytes 10-14/20", rr.Header().Get("Content-Range"))
	})

	t.Run("unsatisfiable range", func(t *testing.T) {
		store := new(mocks.VideoStore)
		store.On("Open", mock.Anything, "clip.mp4").Return(newVideo(payload), nil)

		req := httptest.NewRequest(http.MethodGet, "/api/video/stream/clip.mp4", nil)
		req.Header.Set("Range", "bytes=100-200")
		assert.Equal(t, http.StatusRequestedRangeNotSatisfiable, serve(videoRouter(store), req).Code)
	})

	t.Run("missing object", func(t *testing.T) {
		store := new(mocks.VideoStore)
		store.On("Open", mock.Anything, "gone.mp4").Return(nil, apperror.NewNotFound("video", "gone.mp4"))

		rr := serve(videoRouter(store), httptest.NewRequest(http.MethodGet, "/api/video/stream/gone.mp4", nil))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
