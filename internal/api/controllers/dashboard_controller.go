package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"mibe/internal/models/request_models"
	"mibe/internal/models/response_models"
	"mibe/internal/services"
	"mibe/pkg/utils"
)

type DashboardController struct {
	dashboardService services.DashboardService
	now              func() time.Time
}

func NewDashboardController(dashboardService services.DashboardService) *DashboardController {
	return &DashboardController{
		dashboardService: dashboardService,
		now:              time.Now,
	}
}

// GetDashboard godoc
// @Summary Get dashboard report
// @Description Billing KPIs, revenue series, plan mix, excess summary and recent payments
// @Tags Dashboard
// @Produce json
// @Param start     query string false "RFC3339 start (e.g. 2025-10-01T00:00:00Z)"
// @Param end       query string false "RFC3339 end (e.g. 2025-10-19T23:59:59Z)"
// @Param last_days query int    false "Lookback in days, exclusive with start/end. Default 30"
// @Param interval  query string false "day | week | month (default: day)"
// @Param tz        query string false "IANA timezone for bucketing (default: America/Sao_Paulo)"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 500 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/dashboard/stats [get]
func (p *DashboardController) GetDashboard(c *gin.Context) {
	var q request_models.DashboardQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.RespondError(c, http.StatusBadRequest, utils.FormatBindingError(err))
		return
	}

	rng, err := dashboardRange(q, p.now())
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	report, err := p.dashboardService.BuildDashboard(c.Request.Context(), rng)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, report, "Dashboard data fetched successfully")
}

// dashboardRange leaves open bounds zero; the service fills them in. Relative
// windows end on the current minute so repeated polls hit the report cache.
func dashboardRange(q request_models.DashboardQuery, now time.Time) (response_models.TimeRange, error) {
	rng := response_models.TimeRange{Interval: q.Interval, Timezone: q.Timezone}
	if rng.Interval == "" {
		rng.Interval = "day"
	}
	if rng.Timezone == "" {
		rng.Timezone = utils.DefaultTimezone
	}
	if _, err := time.LoadLocation(rng.Timezone); err != nil {
		return rng, errors.New("tz must be an IANA timezone name")
	}

	if q.LastDays > 0 {
		if q.Start != "" || q.End != "" {
			return rng, errors.New("provide either last_days or start/end (not both)")
		}
		rng.End = now.UTC().Truncate(time.Minute)
		rng.Start = rng.End.AddDate(0, 0, -q.LastDays)
		return rng, nil
	}

	var err error
	if q.Start != "" {
		if rng.Start, err = time.Parse(time.RFC3339, q.Start); err != nil {
			return rng, errors.New("start must be RFC3339 (e.g. 2025-10-01T00:00:00Z)")
		}
	}
	if q.End != "" {
		if rng.End, err = time.Parse(time.RFC3339, q.End); err != nil {
			return rng, errors.New("end must be RFC3339 (e.g. 2025-10-19T23:59:59Z)")
		}
	}
	return rng, nil
}
