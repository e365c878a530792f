package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tally-bridge/backend/internal/httputil"
)

// @Summary		Run a synchronization
// @Description	Runs a one-shot Tally to Supabase synchronization and returns the per-entity outcome. Entities that fail are reported in the outcome, the run itself still answers 200 unless Tally was unreachable.
// @Tags			Sync
// @Produce		json
// @Success		200	{object}	sync.Outcome
// @Failure		500	{object}	httperror.Error
// @Router			/v1/sync [post]
func (co Controller) PostSync(c *gin.Context) {
	outcome, err := co.Syncer.Run(c.Request.Context())
	if err != nil {
		httputil.ErrorHandler(c, err)
		return
	}

	c.JSON(http.StatusOK, outcome)
}
