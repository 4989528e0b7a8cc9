package dto

// ── 周容量策略模块 DTO ──

// PreferenceResponse 轮转周容量策略响应
// Explicit 为 false 表示返回的是缺省策略（库中无显式行）
type PreferenceResponse struct {
	RotationID  string `json:"rotation_id"`
	WeekID      string `json:"week_id"`
	MinStudents *int   `json:"min_students,omitempty"`
	MaxStudents *int   `json:"max_students,omitempty"`
	Closed      bool   `json:"closed"`
	Virtual     bool   `json:"virtual"`
	GradingMode string `json:"grading_mode,omitempty"`
	Explicit    bool   `json:"explicit"`
}

// SetPreferenceRequest 管理员设置周容量策略请求（upsert 语义）
type SetPreferenceRequest struct {
	MinStudents *int    `json:"min_students" binding:"omitempty,min=0,max=500"`
	MaxStudents *int    `json:"max_students" binding:"omitempty,min=0,max=500"`
	Closed      *bool   `json:"closed"`
	Virtual     *bool   `json:"virtual"`
	GradingMode *string `json:"grading_mode" binding:"omitempty,max=20"`
}
