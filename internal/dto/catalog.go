package dto

// ── 轮转目录模块 DTO ──

// ServiceResponse 科室服务响应
type ServiceResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	ShortName      string `json:"short_name"`
	EditPermission string `json:"edit_permission,omitempty"`
	WeekSize       *int   `json:"week_size,omitempty"`
}

// RotationResponse 轮转响应
type RotationResponse struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Abbreviation string        `json:"abbreviation"`
	SubjectCode  string        `json:"subject_code,omitempty"`
	CourseNumber string        `json:"course_number,omitempty"`
	IsActive     bool          `json:"is_active"`
	Service      *ServiceBrief `json:"service,omitempty"`
}

// CreateRotationRequest 新建轮转请求
type CreateRotationRequest struct {
	Name         string  `json:"name"         binding:"required,min=2,max=100"`
	Abbreviation string  `json:"abbreviation" binding:"required,min=1,max=20"`
	ServiceID    string  `json:"service_id"   binding:"required,uuid"`
	SubjectCode  *string `json:"subject_code"  binding:"omitempty,max=20"`
	CourseNumber *string `json:"course_number" binding:"omitempty,max=20"`
}

// UpdateRotationRequest 更新轮转请求
type UpdateRotationRequest struct {
	Name         *string `json:"name"          binding:"omitempty,min=2,max=100"`
	Abbreviation *string `json:"abbreviation"  binding:"omitempty,min=1,max=20"`
	SubjectCode  *string `json:"subject_code"  binding:"omitempty,max=20"`
	CourseNumber *string `json:"course_number" binding:"omitempty,max=20"`
	IsActive     *bool   `json:"is_active"`
}

// ServiceSummaryResponse 按科室分组的轮转数统计
type ServiceSummaryResponse struct {
	ServiceID     string `json:"service_id"`
	ServiceName   string `json:"service_name"`
	RotationCount int64  `json:"rotation_count"`
}
