package dto

// ── 排班引擎模块 DTO ──

// AddInstructorRequest 添加教师到轮转周请求
// Force 为 true 时跨轮转冲突不阻断（显式覆盖，引擎不自动消解）
type AddInstructorRequest struct {
	MothraID  string  `json:"mothra_id" binding:"required,min=2,max=8"`
	IsPrimary bool    `json:"is_primary"`
	Force     bool    `json:"force"`
	Role      *string `json:"role" binding:"omitempty,max=50"`
}

// SetPrimaryRequest 设置/取消主评估人请求
type SetPrimaryRequest struct {
	IsPrimary *bool `json:"is_primary" binding:"required"`
}

// AssignmentResponse 排班记录响应
// CanRemove 为 false 表示该记录是要求主评估人的周上唯一的主评估人，不可直接移除
type AssignmentResponse struct {
	ID         string       `json:"id"`
	RotationID string       `json:"rotation_id"`
	WeekID     string       `json:"week_id"`
	MothraID   string       `json:"mothra_id"`
	Evaluator  bool         `json:"evaluator"`
	Role       string       `json:"role,omitempty"`
	Person     *PersonBrief `json:"person,omitempty"`
	CanRemove  bool         `json:"can_remove"`
	UpdatedAt  string       `json:"updated_at"`
}

// ConflictBrief 单条跨轮转冲突明细
type ConflictBrief struct {
	InstructorScheduleID string `json:"instructor_schedule_id"`
	RotationID           string `json:"rotation_id"`
	RotationName         string `json:"rotation_name,omitempty"`
	WeekID               string `json:"week_id"`
	MothraID             string `json:"mothra_id"`
}

// ConflictPayload 409 冲突响应负载（可被 Force 覆盖）
type ConflictPayload struct {
	Conflicts []ConflictBrief `json:"conflicts"`
	Message   string          `json:"message"`
}

// WeekScheduleResponse 轮转周排班面响应
// RequiresPrimary 由主评估人节奏规则推导，只读
type WeekScheduleResponse struct {
	RotationID      string               `json:"rotation_id"`
	WeekID          string               `json:"week_id"`
	RequiresPrimary bool                 `json:"requires_primary"`
	Assignments     []AssignmentResponse `json:"assignments"`
}

// AuditListRequest 审计列表查询参数
type AuditListRequest struct {
	RotationID string `form:"rotation_id" binding:"omitempty,uuid"`
	WeekID     string `form:"week_id"     binding:"omitempty,uuid"`
	MothraID   string `form:"mothra_id"   binding:"omitempty,max=8"`
	PaginationRequest
}

// AuditResponse 审计记录响应
type AuditResponse struct {
	ID                   string `json:"id"`
	Action               string `json:"action"`
	Detail               string `json:"detail"`
	ActorID              string `json:"actor_id"`
	AuditTime            string `json:"audit_time"`
	InstructorScheduleID string `json:"instructor_schedule_id,omitempty"`
	RotationID           string `json:"rotation_id,omitempty"`
	WeekID               string `json:"week_id,omitempty"`
	MothraID             string `json:"mothra_id,omitempty"`
}
