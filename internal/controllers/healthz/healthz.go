package healthz

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tally-bridge/backend/internal/httputil"
)

// Pinger reports whether the upstream Tally instance answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Response is the health check body.
type Response struct {
	Status          string `json:"status" example:"healthy"`
	TallyConnection string `json:"tally_connection" example:"connected"`
	Error           string `json:"error,omitempty"`
}

func RegisterRoutes(r *gin.RouterGroup, p Pinger) {
	r.OPTIONS("", httputil.OptionsGet)
	r.GET("", Get(p))
}

// @Summary		Get health
// @Description	Returns the application health, including whether Tally is reachable
// @Tags			General
// @Produce		json
// @Success		200	{object}	Response
// @Failure		500	{object}	Response
// @Router			/healthz [get]
func Get(p Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := p.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, Response{
				Status:          "unhealthy",
				TallyConnection: "disconnected",
				Error:           err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, Response{
			Status:          "healthy",
			TallyConnection: "connected",
		})
	}
}
