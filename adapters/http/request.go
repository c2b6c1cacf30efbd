package http

import (
	"fmt"
	"mime/multipart"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/khoahotran/careerfolio/pkg/apperror"
	"github.com/khoahotran/careerfolio/pkg/auth"
)

// requirePrincipal attaches an error and returns false when the request carries no identity.
func requirePrincipal(c *gin.Context) (auth.Principal, bool) {
	p, ok := GetPrincipalFromGinContext(c)
	if !ok {
		c.Error(apperror.NewUnauthorized("principal not found in context", nil))
		return auth.Principal{}, false
	}
	return p, true
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.Error(apperror.NewInvalidInput(fmt.Sprintf("'%s' must be a positive integer", name), err))
		return 0, false
	}
	return id, true
}

// optionalFile returns nil when the form has no such file.
func optionalFile(c *gin.Context, field string) (*multipart.FileHeader, multipart.File, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, nil, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, nil, apperror.NewInternal("file cannot open", err)
	}
	return fh, f, nil
}
