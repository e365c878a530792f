// Package controllers re-exposes the flattened Tally data as a JSON API and
// offers a one-shot sync trigger.
package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tally-bridge/backend/internal/httputil"
	"github.com/tally-bridge/backend/internal/sync"
	"github.com/tally-bridge/backend/internal/tally"
)

// Controller bundles the collaborators the handlers need. It is constructed
// once at startup, there is no global state.
type Controller struct {
	Tally  *tally.Client
	Syncer *sync.Syncer

	// From and To bound voucher exports when the request does not carry
	// its own window.
	From, To time.Time
}

// RegisterRoutes attaches the Tally data endpoints to the router group.
func (co Controller) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/companies", co.GetCompanies)
	r.OPTIONS("/companies", httputil.OptionsGet)

	r.GET("/divisions/:company", co.GetDivisions)
	r.OPTIONS("/divisions/:company", httputil.OptionsGet)

	r.GET("/ledgers/:company", co.GetLedgers)
	r.OPTIONS("/ledgers/:company", httputil.OptionsGet)

	r.GET("/groups/:company", co.GetGroups)
	r.OPTIONS("/groups/:company", httputil.OptionsGet)

	r.GET("/vouchers/:company", co.GetVouchers)
	r.OPTIONS("/vouchers/:company", httputil.OptionsGet)

	r.GET("/voucher-entries/:company", co.GetVoucherEntries)
	r.OPTIONS("/voucher-entries/:company", httputil.OptionsGet)

	r.POST("/sync", co.PostSync)
	r.OPTIONS("/sync", httputil.OptionsPost)
}

// @Summary		List companies
// @Description	Returns the companies known to the Tally instance
// @Tags			Tally
// @Produce		json
// @Success		200	{array}		map[string]any
// @Failure		500	{object}	httperror.Error
// @Router			/v1/companies [get]
func (co Controller) GetCompanies(c *gin.Context) {
	records, err := co.Tally.Companies(c.Request.Context())
	if err != nil {
		httputil.ErrorHandler(c, err)
		return
	}

	c.JSON(http.StatusOK, records)
}

// @Summary		List divisions
// @Description	Returns the cost centres of a company
// @Tags			Tally
// @Produce		json
// @Param			company	path		string	true	"Company name"
// @Success		200		{array}		map[string]any
// @Failure		500		{object}	httperror.Error
// @Router			/v1/divisions/{company} [get]
func (co Controller) GetDivisions(c *gin.Context) {
	records, err := co.Tally.Divisions(c.Request.Context(), c.Param("company"))
	if err != nil {
		httputil.ErrorHandler(c, err)
		return
	}

	c.JSON(http.StatusOK, records)
}

// @Summary		List ledgers
// @Description	Returns the ledgers of a company
// @Tags			Tally
// @Produce		json
// @Param			company	path		string	true	"Company name"
// @Success		200		{array}		map[string]any
// @Failure		500		{object}	httperror.Error
// @Router			/v1/ledgers/{company} [get]
func (co Controller) GetLedgers(c *gin.Context) {
	records, err := co.Tally.Ledgers(c.Request.Context(), c.Param("company"))
	if err != nil {
		httputil.ErrorHandler(c, err)
		return
	}

	c.JSON(http.StatusOK, records)
}

// @Summary		List groups
// @Description	Returns the account groups of a company
// @Tags			Tally
// @Produce		json
// @Param			company	path		string	true	"Company name"
// @Success		200		{array}		map[string]any
// @Failure		500		{object}	httperror.Error
// @Router			/v1/groups/{company} [get]
func (co Controller) GetGroups(c *gin.Context) {
	records, err := co.Tally.Groups(c.Request.Context(), c.Param("company"))
	if err != nil {
		httputil.ErrorHandler(c, err)
		return
	}

	c.JSON(http.StatusOK, records)
}

// @Summary		List vouchers
// @Description	Returns the vouchers of a company. The date window can be set with the from and to query parameters in D-Mon-YYYY format.
// @Tags			Tally
// @Produce		json
// @Param			company	path		string	true	"Company name"
// @Param			from	query		string	false	"Window start, e.g. 1-Apr-2023"
// @Param			to		query		string	false	"Window end, e.g. 31-Mar-2025"
// @Success		200		{array}		map[string]any
// @Failure		400		{object}	httperror.Error
// @Failure		500		{object}	httperror.Error
// @Router			/v1/vouchers/{company} [get]
func (co Controller) GetVouchers(c *gin.Context) {
	from, to, err := co.window(c)
	if err != nil {
		return
	}

	records, err := co.Tally.Vouchers(c.Request.Context(), c.Param("company"), from, to)
	if err != nil {
		httputil.ErrorHandler(c, err)
		return
	}

	c.JSON(http.StatusOK, records)
}

// @Summary		List voucher entries
// @Description	Returns the ledger entries nested in the vouchers of a company
// @Tags			Tally
// @Produce		json
// @Param			company	path		string	true	"Company name"
// @Param			from	query		string	false	"Window start, e.g. 1-Apr-2023"
// @Param			to		query		string	false	"Window end, e.g. 31-Mar-2025"
// @Success		200		{array}		map[string]any
// @Failure		400		{object}	httperror.Error
// @Failure		500		{object}	httperror.Error
// @Router			/v1/voucher-entries/{company} [get]
func (co Controller) GetVoucherEntries(c *gin.Context) {
	from, to, err := co.window(c)
	if err != nil {
		return
	}

	records, err := co.Tally.VoucherEntries(c.Request.Context(), c.Param("company"), from, to)
	if err != nil {
		httputil.ErrorHandler(c, err)
		return
	}

	c.JSON(http.StatusOK, records)
}

// window reads the voucher date window from the query string, falling back to
// the configured defaults. On a malformed date it writes a 400 response and
// returns a non-nil error.
func (co Controller) window(c *gin.Context) (from, to time.Time, err error) {
	from, to = co.From, co.To

	if v := c.Query("from"); v != "" {
		from, err = time.Parse(tally.DateFormat, v)
	}

	if v := c.Query("to"); v != "" && err == nil {
		to, err = time.Parse(tally.DateFormat, v)
	}

	if err != nil {
		httputil.BadRequest(c, err)
		return time.Time{}, time.Time{}, err
	}

	return from, to, nil
}
