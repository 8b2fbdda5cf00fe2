package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"mibe/internal/models/request_models"
	"mibe/internal/services"
	"mibe/pkg/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type SubscriptionController struct {
	subscriptionService services.SubscriptionServiceInterface
}

func NewSubscriptionController(subscriptionService services.SubscriptionServiceInterface) *SubscriptionController {
	return &SubscriptionController{
		subscriptionService: subscriptionService,
	}
}

// ListSubscriptions godoc
// @Summary List subscriptions
// @Tags Subscriptions
// @Produce json
// @Param status  query string false "active | overdue | cancelled"
// @Param plan_id query string false "Plan id"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/subscriptions [get]
func (s *SubscriptionController) ListSubscriptions(c *gin.Context) {
	var filter request_models.SubscriptionFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		utils.RespondError(c, http.StatusBadRequest, utils.FormatBindingError(err))
		return
	}

	subs, err := s.subscriptionService.List(c.Request.Context(), filter)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, subs, "Subscriptions fetched successfully")
}

// GetSubscription godoc
// @Summary Get a subscription by id
// @Tags Subscriptions
// @Produce json
// @Param id path string true "Subscription id"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/subscriptions/{id} [get]
func (s *SubscriptionController) GetSubscription(c *gin.Context) {
	sub, err := s.subscriptionService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, sub, "Subscription fetched successfully")
}

// GetCompanySubscription godoc
// @Summary Get the subscription of a company
// @Tags Subscriptions
// @Produce json
// @Param companyId path string true "Company id"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/companies/{companyId}/subscription [get]
func (s *SubscriptionController) GetCompanySubscription(c *gin.Context) {
	sub, err := s.subscriptionService.GetByCompanyID(c.Request.Context(), c.Param("companyId"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, sub, "Subscription fetched successfully")
}

// CreateSubscription godoc
// @Summary Bind a company to a plan
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param request body request_models.CreateSubscriptionRequest true "Subscription payload"
// @Success 201 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/subscriptions [post]
func (s *SubscriptionController) CreateSubscription(c *gin.Context) {
	var req request_models.CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, utils.FormatBindingError(err))
		return
	}

	sub, err := s.subscriptionService.Create(c.Request.Context(), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondWithStatus(c, http.StatusCreated, sub, "Subscription created successfully")
}

// UpdateSubscription godoc
// @Summary Change the plan or status of a subscription
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param id path string true "Subscription id"
// @Param request body request_models.UpdateSubscriptionRequest true "Fields to change"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/subscriptions/{id} [patch]
func (s *SubscriptionController) UpdateSubscription(c *gin.Context) {
	var req request_models.UpdateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, utils.FormatBindingError(err))
		return
	}

	sub, err := s.subscriptionService.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, sub, "Subscription updated successfully")
}

// ListExcess godoc
// @Summary Subscriptions above their plan's user limit
// @Tags Subscriptions
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/subscriptions/excess [get]
func (s *SubscriptionController) ListExcess(c *gin.Context) {
	subs, err := s.subscriptionService.ListWithExcess(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, subs, "Excess subscriptions fetched successfully")
}

// ExportExcess godoc
// @Summary Download the excess report as a spreadsheet
// @Tags Subscriptions
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Security BearerAuth
// @Router /admin/subscriptions/excess/export [get]
func (s *SubscriptionController) ExportExcess(c *gin.Context) {
	data, err := s.subscriptionService.ExportExcess(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="excedentes.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}

// ExcessSummary godoc
// @Summary Excess totals and the top establishment
// @Tags Subscriptions
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/subscriptions/excess/summary [get]
func (s *SubscriptionController) ExcessSummary(c *gin.Context) {
	summary, err := s.subscriptionService.ExcessSummary(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, summary, "Excess summary fetched successfully")
}

// CompaniesWithoutSubscription godoc
// @Summary Companies that have no subscription yet
// @Tags Subscriptions
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/companies/unsubscribed [get]
func (s *SubscriptionController) CompaniesWithoutSubscription(c *gin.Context) {
	companies, err := s.subscriptionService.CompaniesWithoutSubscription(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, companies, "Companies fetched successfully")
}

// PaymentHistory godoc
// @Summary Payment history of a subscription
// @Tags Subscriptions
// @Produce json
// @Param id path string true "Subscription id"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/subscriptions/{id}/payments [get]
func (s *SubscriptionController) PaymentHistory(c *gin.Context) {
	history, err := s.subscriptionService.PaymentHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, history, "Payment history fetched successfully")
}
