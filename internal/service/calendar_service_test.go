package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"clinsched/backend/internal/dto"
	"clinsched/backend/internal/model"
)

func setupTestCalendarService() (CalendarService, *testRepos) {
	repos := newTestRepos()
	seedScheduleData(repos)
	return NewCalendarService(repos.toRepository(), zap.NewNop()), repos
}

func TestCalendarService_ResolveDate(t *testing.T) {
	svc, _ := setupTestCalendarService()

	resp, err := svc.ResolveDate(context.Background(), testDay("2025-09-10"))
	if err != nil {
		t.Fatalf("ResolveDate 应成功: %v", err)
	}
	if resp.ID != "week-2" {
		t.Errorf("期望 week-2，实际=%s", resp.ID)
	}
	if len(resp.GradYears) != 1 || resp.GradYears[0].WeekNumber != 11 {
		t.Errorf("周坐标不完整: %+v", resp.GradYears)
	}
}

func TestCalendarService_ResolveDate_NotFound(t *testing.T) {
	svc, _ := setupTestCalendarService()

	_, err := svc.ResolveDate(context.Background(), testDay("2030-01-01"))
	if !errors.Is(err, ErrWeekNotFound) {
		t.Errorf("期望 ErrWeekNotFound，实际=%v", err)
	}
}

func TestCalendarService_ResolveCoord(t *testing.T) {
	svc, _ := setupTestCalendarService()

	resp, err := svc.ResolveCoord(context.Background(), 2027, 11)
	if err != nil {
		t.Fatalf("ResolveCoord 应成功: %v", err)
	}
	if resp.ID != "week-2" {
		t.Errorf("期望 week-2，实际=%s", resp.ID)
	}

	_, err = svc.ResolveCoord(context.Background(), 2027, 99)
	if !errors.Is(err, ErrWeekCoordNotFound) {
		t.Errorf("期望 ErrWeekCoordNotFound，实际=%v", err)
	}
}

// 同一物理周可同时属于多个毕业届坐标
func TestCalendarService_MultipleGradYears(t *testing.T) {
	svc, repos := setupTestCalendarService()
	repos.weekGradYear.coords = append(repos.weekGradYear.coords,
		model.WeekGradYear{WeekGradYearID: "wgy-x", WeekID: "week-2", GradYear: 2026, WeekNumber: 41})

	resp, err := svc.GetWeek(context.Background(), "week-2")
	if err != nil {
		t.Fatalf("GetWeek 应成功: %v", err)
	}
	if len(resp.GradYears) != 2 {
		t.Fatalf("期望 2 个坐标，实际=%d", len(resp.GradYears))
	}
	// 坐标按毕业届升序
	if resp.GradYears[0].GradYear != 2026 || resp.GradYears[1].GradYear != 2027 {
		t.Errorf("坐标顺序错误: %+v", resp.GradYears)
	}
}

func TestCalendarService_ResolveWeek(t *testing.T) {
	svc, repos := setupTestCalendarService()
	ctx := context.Background()

	coords, err := svc.ResolveWeek(ctx, "week-1")
	if err != nil {
		t.Fatalf("ResolveWeek 应成功: %v", err)
	}
	if len(coords) != 1 || coords[0].WeekNumber != 10 {
		t.Errorf("坐标不完整: %+v", coords)
	}

	// 无任何坐标的周视为坐标缺失
	repos.week.weeks["week-bare"] = &model.Week{
		WeekID: "week-bare", StartDate: testDay("2025-10-06"), EndDate: testDay("2025-10-12"),
		TermCode: "202510",
	}
	if _, err := svc.ResolveWeek(ctx, "week-bare"); !errors.Is(err, ErrWeekCoordNotFound) {
		t.Errorf("期望 ErrWeekCoordNotFound，实际=%v", err)
	}

	if _, err := svc.ResolveWeek(ctx, "nonexistent"); !errors.Is(err, ErrWeekNotFound) {
		t.Errorf("期望 ErrWeekNotFound，实际=%v", err)
	}
}

func TestCalendarService_ListWeeks(t *testing.T) {
	svc, _ := setupTestCalendarService()

	result, err := svc.ListWeeks(context.Background(), &dto.WeekListRequest{TermCode: "202509"})
	if err != nil {
		t.Fatalf("ListWeeks 应成功: %v", err)
	}
	if len(result) != 3 {
		t.Fatalf("期望 3 周，实际=%d", len(result))
	}
	// 按起始日期升序
	if result[0].ID != "week-1" || result[2].ID != "week-3" {
		t.Errorf("周顺序错误: %s..%s", result[0].ID, result[2].ID)
	}
	if !result[0].StartWeek {
		t.Error("week-1 应为块起始周")
	}
}
