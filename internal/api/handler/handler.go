package handler

import (
	"clinsched/backend/internal/service"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Calendar   *CalendarHandler
	Catalog    *CatalogHandler
	Preference *PreferenceHandler
	Assignment *AssignmentHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Calendar:   NewCalendarHandler(svc.Calendar),
		Catalog:    NewCatalogHandler(svc.Catalog, svc.Access),
		Preference: NewPreferenceHandler(svc.Preference, svc.Access),
		Assignment: NewAssignmentHandler(svc.Assignment, svc.Access),
	}
}
