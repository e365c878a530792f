package httputil

import (
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/tally-bridge/backend/internal/httperror"
)

// ErrorHandler logs an upstream error with its request ID and answers with
// HTTP 500 and a JSON error body. All Tally and Supabase failures surface
// like this, the API has no finer-grained error codes.
func ErrorHandler(c *gin.Context, err error) {
	log.Error().Str("request-id", requestid.Get(c)).Msgf("%T: %v", err, err.Error())
	c.JSON(http.StatusInternalServerError, httperror.New(err))
}

// BadRequest answers with HTTP 400 and a JSON error body.
func BadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, httperror.New(err))
}
