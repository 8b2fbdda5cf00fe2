package request_models

// DashboardQuery selects the reporting window. last_days excludes start/end.
type DashboardQuery struct {
	Start    string `form:"start"`
	End      string `form:"end"`
	LastDays int    `form:"last_days" binding:"omitempty,min=1,max=3660"`
	Interval string `form:"interval" binding:"omitempty,oneof=day week month"`
	Timezone string `form:"tz"`
}
