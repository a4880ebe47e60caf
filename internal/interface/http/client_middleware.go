package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/weather-dashboard/pkg/clientid"
	apperrors "github.com/yanqian/weather-dashboard/pkg/errors"
)

// clientMiddleware requires the anonymous client identifier that partitions favorites.
func clientMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(clientid.Header))
		if id == "" {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, apperrors.CodeInvalidClient, "missing "+clientid.Header+" header", nil))
			return
		}
		if !clientid.Valid(id) {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, apperrors.CodeInvalidClient, "malformed "+clientid.Header+" header", nil))
			return
		}
		setClientID(c, id)
		c.Next()
	}
}
