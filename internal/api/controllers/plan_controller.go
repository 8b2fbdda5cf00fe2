package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"mibe/internal/models/request_models"
	"mibe/internal/services"
	"mibe/pkg/utils"
)

type PlanController struct {
	planService services.PlanServiceInterface
}

func NewPlanController(planService services.PlanServiceInterface) *PlanController {
	return &PlanController{
		planService: planService,
	}
}

// ListPlans godoc
// @Summary List plans
// @Tags Plans
// @Produce json
// @Param active query bool false "Only active plans, cheapest first"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/plans [get]
func (p *PlanController) ListPlans(c *gin.Context) {
	var (
		plans interface{}
		err   error
	)
	if c.Query("active") == "true" {
		plans, err = p.planService.GetActivePlans(c.Request.Context())
	} else {
		plans, err = p.planService.GetPlans(c.Request.Context())
	}
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, plans, "Plans fetched successfully")
}

// GetPlan godoc
// @Summary Get a plan
// @Tags Plans
// @Produce json
// @Param id path string true "Plan id"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/plans/{id} [get]
func (p *PlanController) GetPlan(c *gin.Context) {
	plan, err := p.planService.GetPlanInfoById(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, plan, "Plan fetched successfully")
}

// CreatePlan godoc
// @Summary Create a plan
// @Tags Plans
// @Accept json
// @Produce json
// @Param request body request_models.CreatePlanRequest true "Plan payload"
// @Success 201 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/plans [post]
func (p *PlanController) CreatePlan(c *gin.Context) {
	var req request_models.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, utils.FormatBindingError(err))
		return
	}

	plan, err := p.planService.CreatePlan(c.Request.Context(), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondWithStatus(c, http.StatusCreated, plan, "Plan created successfully")
}

// UpdatePlan godoc
// @Summary Update a plan
// @Tags Plans
// @Accept json
// @Produce json
// @Param id path string true "Plan id"
// @Param request body request_models.UpdatePlanRequest true "Fields to change"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/plans/{id} [patch]
func (p *PlanController) UpdatePlan(c *gin.Context) {
	var req request_models.UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, utils.FormatBindingError(err))
		return
	}

	plan, err := p.planService.UpdatePlan(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, plan, "Plan updated successfully")
}

// TogglePlan godoc
// @Summary Activate or deactivate a plan
// @Tags Plans
// @Accept json
// @Produce json
// @Param id path string true "Plan id"
// @Param request body request_models.TogglePlanRequest true "Active flag"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/plans/{id}/status [put]
func (p *PlanController) TogglePlan(c *gin.Context) {
	var req request_models.TogglePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, utils.FormatBindingError(err))
		return
	}

	plan, err := p.planService.TogglePlan(c.Request.Context(), c.Param("id"), *req.IsActive)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, plan, "Plan status updated successfully")
}

// LinkedSubscriptions godoc
// @Summary Whether any subscription uses the plan
// @Tags Plans
// @Produce json
// @Param id path string true "Plan id"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/plans/{id}/linked [get]
func (p *PlanController) LinkedSubscriptions(c *gin.Context) {
	linked, err := p.planService.HasLinkedSubscriptions(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, gin.H{"has_linked_subscriptions": linked}, "Plan links checked")
}
