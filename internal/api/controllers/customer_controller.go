package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"mibe/internal/models/request_models"
	"mibe/internal/services"
	"mibe/pkg/utils"
)

type CustomerController struct {
	customerService services.CustomerService
}

func NewCustomerController(customerService services.CustomerService) *CustomerController {
	return &CustomerController{
		customerService: customerService,
	}
}

// CreateCustomer godoc
// @Summary Create an Asaas customer
// @Description Registers a store with the payment gateway. externalReference is the company id.
// @Tags Asaas
// @Accept json
// @Produce json
// @Param request body request_models.CreateCustomerRequest true "Customer payload"
// @Success 201 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 502 {object} utils.APIResponse
// @Security BearerAuth
// @Router /asaas/customers [post]
func (cc *CustomerController) CreateCustomer(c *gin.Context) {
	var req request_models.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, utils.FormatBindingError(err))
		return
	}

	customer, err := cc.customerService.CreateCustomer(c.Request.Context(), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondWithStatus(c, http.StatusCreated, customer, "Customer created successfully")
}

// RegisterCompany godoc
// @Summary Create the Asaas customer for a stored company
// @Tags Asaas
// @Produce json
// @Param companyId path string true "Company id"
// @Success 201 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/companies/{companyId}/asaas-customer [post]
func (cc *CustomerController) RegisterCompany(c *gin.Context) {
	customer, err := cc.customerService.RegisterCompany(c.Request.Context(), c.Param("companyId"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondWithStatus(c, http.StatusCreated, customer, "Customer created successfully")
}
