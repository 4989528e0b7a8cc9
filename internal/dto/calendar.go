package dto

// ── 日历模块 DTO ──

// WeekGradYearResponse 周-毕业届坐标响应
type WeekGradYearResponse struct {
	WeekID     string `json:"week_id"`
	GradYear   int    `json:"grad_year"`
	WeekNumber int    `json:"week_number"`
}

// WeekResponse 日历周响应
type WeekResponse struct {
	ID               string                 `json:"id"`
	StartDate        string                 `json:"start_date"` // YYYY-MM-DD
	EndDate          string                 `json:"end_date"`
	TermCode         string                 `json:"term_code"`
	ExtendedRotation bool                   `json:"extended_rotation"`
	StartWeek        bool                   `json:"start_week"`
	GradYears        []WeekGradYearResponse `json:"grad_years,omitempty"`
}

// WeekListRequest 按学期列出日历周
type WeekListRequest struct {
	TermCode string `form:"term_code" binding:"required,len=6"`
}
