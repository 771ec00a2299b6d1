package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/speakerkit/errors"
)

// RespondWithError renders err as an error response. AppErrors carry their
// own status and body; anything else becomes a generic 500.
func RespondWithError(c *gin.Context, err error) {
	if appErr, ok := apperrors.AsAppError(err); ok {
		c.JSON(appErr.HTTPStatus, appErr.ToResponse())
		return
	}
	c.JSON(http.StatusInternalServerError, apperrors.Internal(err).ToResponse())
}

// AbortWithError is RespondWithError for middleware: the remaining handlers
// are skipped.
func AbortWithError(c *gin.Context, err error) {
	RespondWithError(c, err)
	c.Abort()
}

// RespondOK sends data as a 200 JSON body.
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// RespondCreated sends data as a 201 JSON body.
func RespondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}
