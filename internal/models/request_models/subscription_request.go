package request_models

type CreateSubscriptionRequest struct {
	CompanyID string `json:"company_id" binding:"required"`
	PlanID    string `json:"plan_id" binding:"required"`
}

type UpdateSubscriptionRequest struct {
	PlanID *string `json:"plan_id"`
	Status *string `json:"status" binding:"omitempty,oneof=active overdue cancelled"`
}

type SubscriptionFilter struct {
	Status string `form:"status" binding:"omitempty,oneof=active overdue cancelled"`
	PlanID string `form:"plan_id"`
}
