package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"clinsched/backend/config"
	"clinsched/backend/internal/dto"
	"clinsched/backend/internal/model"
	"clinsched/backend/internal/repository"
)

// ── 测试辅助 ──

// testRepos 聚合所有 mock repo 便于 seed 数据
type testRepos struct {
	service      *mockServiceRepo
	rotation     *mockRotationRepo
	week         *mockWeekRepo
	weekGradYear *mockWeekGradYearRepo
	preference   *mockPreferenceRepo
	assignment   *mockAssignmentRepo
	audit        *mockAuditRepo
	person       *mockPersonRepo
}

func newTestRepos() *testRepos {
	r := &testRepos{
		service:      newMockServiceRepo(),
		rotation:     newMockRotationRepo(),
		week:         newMockWeekRepo(),
		weekGradYear: newMockWeekGradYearRepo(),
		preference:   newMockPreferenceRepo(),
		assignment:   newMockAssignmentRepo(),
		audit:        newMockAuditRepo(),
		person:       newMockPersonRepo(),
	}
	r.service.rotations = r.rotation
	r.rotation.services = r.service
	r.weekGradYear.weeks = r.week
	return r
}

func (r *testRepos) toRepository() *repository.Repository {
	return &repository.Repository{
		Service:      r.service,
		Rotation:     r.rotation,
		Week:         r.week,
		WeekGradYear: r.weekGradYear,
		Preference:   r.preference,
		Assignment:   r.assignment,
		Audit:        r.audit,
		Person:       r.person,
	}
}

func testScheduleConfig() *config.ScheduleConfig {
	return &config.ScheduleConfig{
		ExcludedRotations:  []string{"vacation"},
		DefaultBlockWeeks:  2,
		EnforceClosedWeeks: true,
		CatalogCacheTTL:    time.Minute,
	}
}

func testDay(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

// seedScheduleData 种子数据：
//   - svc-1（WeekSize 为空，块长 2：week-2 要求主评估人，week-1 不要求）
//   - svc-2（WeekSize=1：每周都要求主评估人）
//   - rot-vac 在排除名单内
func seedScheduleData(repos *testRepos) {
	imPerm := "SVMSecure.ClnSched.IM"
	repos.service.services["svc-1"] = &model.Service{
		ServiceID: "svc-1", Name: "Internal Medicine", ShortName: "IM", EditPermission: &imPerm,
	}
	weekly := 1
	repos.service.services["svc-2"] = &model.Service{
		ServiceID: "svc-2", Name: "Emergency", ShortName: "ER", WeekSize: &weekly,
	}

	repos.rotation.rotations["rot-1"] = &model.Rotation{
		RotationID: "rot-1", Name: "Cardiology", Abbreviation: "CARD", ServiceID: "svc-1", IsActive: true,
	}
	repos.rotation.rotations["rot-2"] = &model.Rotation{
		RotationID: "rot-2", Name: "Dermatology", Abbreviation: "DERM", ServiceID: "svc-1", IsActive: true,
	}
	repos.rotation.rotations["rot-3"] = &model.Rotation{
		RotationID: "rot-3", Name: "Emergency", Abbreviation: "ER", ServiceID: "svc-2", IsActive: true,
	}
	repos.rotation.rotations["rot-vac"] = &model.Rotation{
		RotationID: "rot-vac", Name: "Vacation", Abbreviation: "VAC", ServiceID: "svc-1", IsActive: true,
	}

	// week-1 与 week-3 是块锚点，块长 2
	repos.week.weeks["week-1"] = &model.Week{
		WeekID: "week-1", StartDate: testDay("2025-09-01"), EndDate: testDay("2025-09-07"),
		TermCode: "202509", StartWeek: true,
	}
	repos.week.weeks["week-2"] = &model.Week{
		WeekID: "week-2", StartDate: testDay("2025-09-08"), EndDate: testDay("2025-09-14"),
		TermCode: "202509",
	}
	repos.week.weeks["week-3"] = &model.Week{
		WeekID: "week-3", StartDate: testDay("2025-09-15"), EndDate: testDay("2025-09-21"),
		TermCode: "202509", StartWeek: true,
	}

	repos.weekGradYear.coords = []model.WeekGradYear{
		{WeekGradYearID: "wgy-1", WeekID: "week-1", GradYear: 2027, WeekNumber: 10},
		{WeekGradYearID: "wgy-2", WeekID: "week-2", GradYear: 2027, WeekNumber: 11},
		{WeekGradYearID: "wgy-3", WeekID: "week-3", GradYear: 2027, WeekNumber: 12},
	}

	repos.person.people["abc123"] = &model.Person{MothraID: "abc123", DisplayName: "Alice Chen"}
	repos.person.people["xyz789"] = &model.Person{MothraID: "xyz789", DisplayName: "Yusuf Khan"}
}

func setupTestAssignmentService() (AssignmentService, *testRepos) {
	repos := newTestRepos()
	seedScheduleData(repos)
	repoAgg := repos.toRepository()
	logger := zap.NewNop()
	cfg := testScheduleConfig()
	catalog := NewCatalogService(repoAgg, nil, cfg, logger)
	svc := NewAssignmentService(repoAgg, &mockTxManager{repos: repoAgg}, catalog, cfg, logger)
	return svc, repos
}

// ════════════════════════════════════════════════════════════
// AddInstructor 测试
// ════════════════════════════════════════════════════════════

func TestAssignmentService_AddInstructor_Success(t *testing.T) {
	svc, repos := setupTestAssignmentService()

	req := &dto.AddInstructorRequest{MothraID: "abc123", IsPrimary: true}
	resp, err := svc.AddInstructor(context.Background(), "rot-1", "week-1", req, "admin01")
	if err != nil {
		t.Fatalf("AddInstructor 应成功: %v", err)
	}

	if !resp.Evaluator {
		t.Error("期望 Evaluator=true")
	}
	// week-1 不要求主评估人 → 可移除
	if !resp.CanRemove {
		t.Error("非必保周的主评估人应可移除")
	}
	if resp.Person == nil || resp.Person.DisplayName != "Alice Chen" {
		t.Error("响应应拼接人员信息")
	}
	if len(repos.audit.audits) != 1 {
		t.Fatalf("期望恰好 1 条审计记录，实际=%d", len(repos.audit.audits))
	}
	audit := repos.audit.audits[0]
	if audit.Action != model.AuditActionAddInstructor {
		t.Errorf("期望 action=%s，实际=%s", model.AuditActionAddInstructor, audit.Action)
	}
	if audit.MothraID == nil || *audit.MothraID != "abc123" {
		t.Error("审计记录应引用被排班人员")
	}
}

func TestAssignmentService_AddInstructor_Duplicate(t *testing.T) {
	svc, _ := setupTestAssignmentService()

	req := &dto.AddInstructorRequest{MothraID: "abc123"}
	if _, err := svc.AddInstructor(context.Background(), "rot-1", "week-1", req, "admin01"); err != nil {
		t.Fatalf("首次添加应成功: %v", err)
	}

	_, err := svc.AddInstructor(context.Background(), "rot-1", "week-1", req, "admin01")
	if !errors.Is(err, ErrDuplicateAssignment) {
		t.Errorf("期望 ErrDuplicateAssignment，实际=%v", err)
	}
}

func TestAssignmentService_AddInstructor_NotFound(t *testing.T) {
	svc, _ := setupTestAssignmentService()
	ctx := context.Background()
	req := &dto.AddInstructorRequest{MothraID: "abc123"}

	if _, err := svc.AddInstructor(ctx, "nonexistent", "week-1", req, "admin01"); !errors.Is(err, ErrRotationNotFound) {
		t.Errorf("期望 ErrRotationNotFound，实际=%v", err)
	}
	if _, err := svc.AddInstructor(ctx, "rot-1", "nonexistent", req, "admin01"); !errors.Is(err, ErrWeekNotFound) {
		t.Errorf("期望 ErrWeekNotFound，实际=%v", err)
	}
	badPerson := &dto.AddInstructorRequest{MothraID: "nobody"}
	if _, err := svc.AddInstructor(ctx, "rot-1", "week-1", badPerson, "admin01"); !errors.Is(err, ErrPersonNotFound) {
		t.Errorf("期望 ErrPersonNotFound，实际=%v", err)
	}
}

func TestAssignmentService_AddInstructor_ExcludedRotation(t *testing.T) {
	svc, _ := setupTestAssignmentService()

	req := &dto.AddInstructorRequest{MothraID: "abc123"}
	_, err := svc.AddInstructor(context.Background(), "rot-vac", "week-1", req, "admin01")
	if !errors.Is(err, ErrRotationExcluded) {
		t.Errorf("期望 ErrRotationExcluded，实际=%v", err)
	}
}

func TestAssignmentService_AddInstructor_ClosedWeek(t *testing.T) {
	svc, repos := setupTestAssignmentService()
	repos.preference.prefs[prefKey("rot-1", "week-1")] = &model.RotationWeeklyPref{
		PrefID: "pref-1", RotationID: "rot-1", WeekID: "week-1", Closed: true,
	}

	req := &dto.AddInstructorRequest{MothraID: "abc123"}
	_, err := svc.AddInstructor(context.Background(), "rot-1", "week-1", req, "admin01")
	if !errors.Is(err, ErrRotationClosed) {
		t.Errorf("期望 ErrRotationClosed，实际=%v", err)
	}
	if len(repos.audit.audits) != 0 {
		t.Error("被拒绝的添加不应产生审计记录")
	}
}

// 查重先于关闭周校验：关闭周上的重复添加仍须报重复
func TestAssignmentService_AddInstructor_DuplicateOnClosedWeek(t *testing.T) {
	svc, repos := setupTestAssignmentService()
	ctx := context.Background()

	req := &dto.AddInstructorRequest{MothraID: "abc123"}
	if _, err := svc.AddInstructor(ctx, "rot-1", "week-1", req, "admin01"); err != nil {
		t.Fatalf("首次添加应成功: %v", err)
	}

	// 添加后关闭该轮转周，再次添加同一人
	repos.preference.prefs[prefKey("rot-1", "week-1")] = &model.RotationWeeklyPref{
		PrefID: "pref-1", RotationID: "rot-1", WeekID: "week-1", Closed: true,
	}
	_, err := svc.AddInstructor(ctx, "rot-1", "week-1", req, "admin01")
	if !errors.Is(err, ErrDuplicateAssignment) {
		t.Errorf("期望 ErrDuplicateAssignment，实际=%v", err)
	}
}

// 冲突枚举先于关闭周校验：调用方须先拿到冲突明细才能决定是否 Force
func TestAssignmentService_AddInstructor_ConflictOnClosedWeek(t *testing.T) {
	svc, repos := setupTestAssignmentService()
	ctx := context.Background()

	if _, err := svc.AddInstructor(ctx, "rot-2", "week-1", &dto.AddInstructorRequest{MothraID: "abc123"}, "admin01"); err != nil {
		t.Fatalf("首次添加应成功: %v", err)
	}

	repos.preference.prefs[prefKey("rot-1", "week-1")] = &model.RotationWeeklyPref{
		PrefID: "pref-1", RotationID: "rot-1", WeekID: "week-1", Closed: true,
	}
	_, err := svc.AddInstructor(ctx, "rot-1", "week-1", &dto.AddInstructorRequest{MothraID: "abc123"}, "admin01")
	var conflictErr *ConflictError
	if !errors.As(err, &conflictErr) {
		t.Fatalf("期望 ConflictError，实际=%v", err)
	}
	if len(conflictErr.Conflicts) != 1 || conflictErr.Conflicts[0].RotationID != "rot-2" {
		t.Errorf("冲突明细不完整: %+v", conflictErr.Conflicts)
	}

	// Force 覆盖冲突后仍应被关闭周拦下
	_, err = svc.AddInstructor(ctx, "rot-1", "week-1", &dto.AddInstructorRequest{MothraID: "abc123", Force: true}, "admin01")
	if !errors.Is(err, ErrRotationClosed) {
		t.Errorf("期望 ErrRotationClosed，实际=%v", err)
	}
}

func TestAssignmentService_AddInstructor_Conflict(t *testing.T) {
	svc, _ := setupTestAssignmentService()
	ctx := context.Background()

	if _, err := svc.AddInstructor(ctx, "rot-1", "week-1", &dto.AddInstructorRequest{MothraID: "abc123"}, "admin01"); err != nil {
		t.Fatalf("首次添加应成功: %v", err)
	}

	// 同人同周排入另一轮转 → 冲突需完整枚举
	_, err := svc.AddInstructor(ctx, "rot-2", "week-1", &dto.AddInstructorRequest{MothraID: "abc123"}, "admin01")
	var conflictErr *ConflictError
	if !errors.As(err, &conflictErr) {
		t.Fatalf("期望 ConflictError，实际=%v", err)
	}
	if len(conflictErr.Conflicts) != 1 {
		t.Fatalf("期望 1 条冲突，实际=%d", len(conflictErr.Conflicts))
	}
	c := conflictErr.Conflicts[0]
	if c.RotationID != "rot-1" || c.WeekID != "week-1" || c.MothraID != "abc123" {
		t.Errorf("冲突明细不完整: %+v", c)
	}
	if c.RotationName != "Cardiology" {
		t.Errorf("冲突应补全轮转名，实际=%s", c.RotationName)
	}
}

func TestAssignmentService_AddInstructor_ForceOverridesConflict(t *testing.T) {
	svc, repos := setupTestAssignmentService()
	ctx := context.Background()

	if _, err := svc.AddInstructor(ctx, "rot-1", "week-1", &dto.AddInstructorRequest{MothraID: "abc123"}, "admin01"); err != nil {
		t.Fatalf("首次添加应成功: %v", err)
	}

	resp, err := svc.AddInstructor(ctx, "rot-2", "week-1", &dto.AddInstructorRequest{MothraID: "abc123", Force: true}, "admin01")
	if err != nil {
		t.Fatalf("Force 添加应成功: %v", err)
	}
	if resp.RotationID != "rot-2" {
		t.Errorf("期望 rotation_id=rot-2，实际=%s", resp.RotationID)
	}
	if len(repos.audit.audits) != 2 {
		t.Errorf("期望 2 条审计记录，实际=%d", len(repos.audit.audits))
	}
}

// 场景：空周添加主评估人后再添加第二个主评估人 → 前者翻转为 false，独占性保持
func TestAssignmentService_AddInstructor_PrimaryExclusivity(t *testing.T) {
	svc, repos := setupTestAssignmentService()
	ctx := context.Background()

	first, err := svc.AddInstructor(ctx, "rot-1", "week-1", &dto.AddInstructorRequest{MothraID: "abc123", IsPrimary: true}, "admin01")
	if err != nil {
		t.Fatalf("首次添加应成功: %v", err)
	}
	second, err := svc.AddInstructor(ctx, "rot-1", "week-1", &dto.AddInstructorRequest{MothraID: "xyz789", IsPrimary: true}, "admin01")
	if err != nil {
		t.Fatalf("二次添加应成功: %v", err)
	}

	if !second.Evaluator {
		t.Error("新添加的主评估人 Evaluator 应为 true")
	}
	flipped, _ := repos.assignment.GetByID(ctx, first.ID)
	if flipped.Evaluator {
		t.Error("原主评估人应被翻转为 false")
	}
	if n := repos.assignment.primaryCount("rot-1", "week-1"); n != 1 {
		t.Errorf("主评估人独占被破坏：数量=%d", n)
	}
	if len(repos.audit.audits) != 2 {
		t.Errorf("期望 2 条审计记录，实际=%d", len(repos.audit.audits))
	}
}

// ════════════════════════════════════════════════════════════
// RemoveInstructor 测试
// ════════════════════════════════════════════════════════════

func TestAssignmentService_RemoveInstructor_Success(t *testing.T) {
	svc, repos := setupTestAssignmentService()
	ctx := context.Background()

	created, err := svc.AddInstructor(ctx, "rot-1", "week-1", &dto.AddInstructorRequest{MothraID: "abc123"}, "admin01")
	if err != nil {
		t.Fatalf("添加应成功: %v", err)
	}

	if err := svc.RemoveInstructor(ctx, created.ID, "admin01"); err != nil {
		t.Fatalf("移除应成功: %v", err)
	}
	if _, err := repos.assignment.GetByID(ctx, created.ID); err == nil {
		t.Error("记录应已被删除")
	}
	if len(repos.audit.audits) != 2 {
		t.Fatalf("期望 2 条审计记录，实际=%d", len(repos.audit.audits))
	}
	if repos.audit.audits[1].Action != model.AuditActionRemoveInstructor {
		t.Errorf("期望 action=%s，实际=%s", model.AuditActionRemoveInstructor, repos.audit.audits[1].Action)
	}
}

// 场景：移除必保周上唯一排班 → 拒绝，记录保留
func TestAssignmentService_RemoveInstructor_PrimaryRequired(t *testing.T) {
	svc, repos := setupTestAssignmentService()
	ctx := context.Background()

	// rot-3 属于 WeekSize=1 的科室：每周都要求主评估人
	created, err := svc.AddInstructor(ctx, "rot-3", "week-1", &dto.AddInstructorRequest{MothraID: "abc123", IsPrimary: true}, "admin01")
	if err != nil {
		t.Fatalf("添加应成功: %v", err)
	}
	if created.CanRemove {
		t.Error("必保周唯一主评估人 CanRemove 应为 false")
	}

	err = svc.RemoveInstructor(ctx, created.ID, "admin01")
	if !errors.Is(err, ErrPrimaryEvaluatorRequired) {
		t.Fatalf("期望 ErrPrimaryEvaluatorRequired，实际=%v", err)
	}
	if _, err := repos.assignment.GetByID(ctx, created.ID); err != nil {
		t.Error("被拒绝的移除不应删除记录")
	}
	if len(repos.audit.audits) != 1 {
		t.Error("被拒绝的移除不应产生审计记录")
	}
}

// 主评估人之外还有其他排班时允许移除主评估人
func TestAssignmentService_RemoveInstructor_PrimaryWithOthers(t *testing.T) {
	svc, _ := setupTestAssignmentService()
	ctx := context.Background()

	primary, err := svc.AddInstructor(ctx, "rot-3", "week-1", &dto.AddInstructorRequest{MothraID: "abc123", IsPrimary: true}, "admin01")
	if err != nil {
		t.Fatalf("添加应成功: %v", err)
	}
	if _, err := svc.AddInstructor(ctx, "rot-3", "week-1", &dto.AddInstructorRequest{MothraID: "xyz789"}, "admin01"); err != nil {
		t.Fatalf("添加应成功: %v", err)
	}

	if err := svc.RemoveInstructor(ctx, primary.ID, "admin01"); err != nil {
		t.Errorf("还有其他排班时应允许移除主评估人: %v", err)
	}
}

func TestAssignmentService_RemoveInstructor_NotFound(t *testing.T) {
	svc, _ := setupTestAssignmentService()

	err := svc.RemoveInstructor(context.Background(), "nonexistent", "admin01")
	if !errors.Is(err, ErrAssignmentNotFound) {
		t.Errorf("期望 ErrAssignmentNotFound，实际=%v", err)
	}
}

// ════════════════════════════════════════════════════════════
// SetPrimary 测试
// ════════════════════════════════════════════════════════════

func TestAssignmentService_SetPrimary_ClearThenSet(t *testing.T) {
	svc, repos := setupTestAssignmentService()
	ctx := context.Background()

	first, _ := svc.AddInstructor(ctx, "rot-1", "week-1", &dto.AddInstructorRequest{MothraID: "abc123", IsPrimary: true}, "admin01")
	second, _ := svc.AddInstructor(ctx, "rot-1", "week-1", &dto.AddInstructorRequest{MothraID: "xyz789"}, "admin01")

	isPrimary := true
	resp, err := svc.SetPrimary(ctx, second.ID, &dto.SetPrimaryRequest{IsPrimary: &isPrimary}, "admin01")
	if err != nil {
		t.Fatalf("SetPrimary 应成功: %v", err)
	}

	if !resp.Evaluator {
		t.Error("目标记录 Evaluator 应为 true")
	}
	old, _ := repos.assignment.GetByID(ctx, first.ID)
	if old.Evaluator {
		t.Error("原主评估人应被清除")
	}
	if n := repos.assignment.primaryCount("rot-1", "week-1"); n != 1 {
		t.Errorf("主评估人独占被破坏：数量=%d", n)
	}
	if len(repos.audit.audits) != 3 {
		t.Errorf("期望 3 条审计记录，实际=%d", len(repos.audit.audits))
	}
}

// 场景：取消必保周上唯一排班的主评估人标记 → 拒绝
func TestAssignmentService_SetPrimary_UnsetGuard(t *testing.T) {
	svc, repos := setupTestAssignmentService()
	ctx := context.Background()

	created, _ := svc.AddInstructor(ctx, "rot-3", "week-1", &dto.AddInstructorRequest{MothraID: "abc123", IsPrimary: true}, "admin01")

	notPrimary := false
	_, err := svc.SetPrimary(ctx, created.ID, &dto.SetPrimaryRequest{IsPrimary: &notPrimary}, "admin01")
	if !errors.Is(err, ErrPrimaryEvaluatorRequired) {
		t.Fatalf("期望 ErrPrimaryEvaluatorRequired，实际=%v", err)
	}
	row, _ := repos.assignment.GetByID(ctx, created.ID)
	if !row.Evaluator {
		t.Error("被拒绝的取消不应改变 Evaluator")
	}
}

func TestAssignmentService_SetPrimary_UnsetOnOptionalWeek(t *testing.T) {
	svc, repos := setupTestAssignmentService()
	ctx := context.Background()

	// week-1 对 svc-1 不要求主评估人
	created, _ := svc.AddInstructor(ctx, "rot-1", "week-1", &dto.AddInstructorRequest{MothraID: "abc123", IsPrimary: true}, "admin01")

	notPrimary := false
	resp, err := svc.SetPrimary(ctx, created.ID, &dto.SetPrimaryRequest{IsPrimary: &notPrimary}, "admin01")
	if err != nil {
		t.Fatalf("非必保周应允许取消主评估人: %v", err)
	}
	if resp.Evaluator {
		t.Error("Evaluator 应为 false")
	}
	if n := repos.assignment.primaryCount("rot-1", "week-1"); n != 0 {
		t.Errorf("期望主评估人数量=0，实际=%d", n)
	}
}

func TestAssignmentService_SetPrimary_NotFound(t *testing.T) {
	svc, _ := setupTestAssignmentService()

	isPrimary := true
	_, err := svc.SetPrimary(context.Background(), "nonexistent", &dto.SetPrimaryRequest{IsPrimary: &isPrimary}, "admin01")
	if !errors.Is(err, ErrAssignmentNotFound) {
		t.Errorf("期望 ErrAssignmentNotFound，实际=%v", err)
	}
}

// ════════════════════════════════════════════════════════════
// GetWeekSchedule / ListInstructorWeek 测试
// ════════════════════════════════════════════════════════════

func TestAssignmentService_GetWeekSchedule(t *testing.T) {
	svc, _ := setupTestAssignmentService()
	ctx := context.Background()

	if _, err := svc.AddInstructor(ctx, "rot-1", "week-2", &dto.AddInstructorRequest{MothraID: "abc123", IsPrimary: true}, "admin01"); err != nil {
		t.Fatalf("添加应成功: %v", err)
	}

	resp, err := svc.GetWeekSchedule(ctx, "rot-1", "week-2")
	if err != nil {
		t.Fatalf("GetWeekSchedule 应成功: %v", err)
	}

	// week-2 是块的最后一周（块长 2）→ 要求主评估人
	if !resp.RequiresPrimary {
		t.Error("块末周应要求主评估人")
	}
	if len(resp.Assignments) != 1 {
		t.Fatalf("期望 1 条排班，实际=%d", len(resp.Assignments))
	}
	a := resp.Assignments[0]
	if !a.Evaluator {
		t.Error("Evaluator 应为 true")
	}
	// 必保周唯一主评估人 → 不可移除
	if a.CanRemove {
		t.Error("必保周唯一主评估人 CanRemove 应为 false")
	}
	if a.Person == nil || a.Person.DisplayName != "Alice Chen" {
		t.Error("排班应拼接人员信息")
	}
}

func TestAssignmentService_GetWeekSchedule_BlockFirstWeekOptional(t *testing.T) {
	svc, _ := setupTestAssignmentService()

	resp, err := svc.GetWeekSchedule(context.Background(), "rot-1", "week-1")
	if err != nil {
		t.Fatalf("GetWeekSchedule 应成功: %v", err)
	}
	if resp.RequiresPrimary {
		t.Error("块首周不应要求主评估人")
	}
}

func TestAssignmentService_ListInstructorWeek(t *testing.T) {
	svc, _ := setupTestAssignmentService()
	ctx := context.Background()

	if _, err := svc.AddInstructor(ctx, "rot-1", "week-1", &dto.AddInstructorRequest{MothraID: "abc123"}, "admin01"); err != nil {
		t.Fatalf("添加应成功: %v", err)
	}
	if _, err := svc.AddInstructor(ctx, "rot-2", "week-1", &dto.AddInstructorRequest{MothraID: "abc123", Force: true}, "admin01"); err != nil {
		t.Fatalf("添加应成功: %v", err)
	}

	result, err := svc.ListInstructorWeek(ctx, "abc123", "week-1")
	if err != nil {
		t.Fatalf("ListInstructorWeek 应成功: %v", err)
	}
	if len(result) != 2 {
		t.Errorf("期望 2 条排班，实际=%d", len(result))
	}
}

// ════════════════════════════════════════════════════════════
// ListAudits 测试
// ════════════════════════════════════════════════════════════

func TestAssignmentService_ListAudits_Filter(t *testing.T) {
	svc, _ := setupTestAssignmentService()
	ctx := context.Background()

	created, _ := svc.AddInstructor(ctx, "rot-1", "week-1", &dto.AddInstructorRequest{MothraID: "abc123"}, "admin01")
	_, _ = svc.AddInstructor(ctx, "rot-2", "week-1", &dto.AddInstructorRequest{MothraID: "xyz789"}, "admin01")
	_ = svc.RemoveInstructor(ctx, created.ID, "admin01")

	result, total, err := svc.ListAudits(ctx, &dto.AuditListRequest{MothraID: "abc123"})
	if err != nil {
		t.Fatalf("ListAudits 应成功: %v", err)
	}
	if total != 2 {
		t.Errorf("期望 total=2，实际=%d", total)
	}
	for _, a := range result {
		if a.MothraID != "abc123" {
			t.Errorf("过滤失效：返回了 %s 的记录", a.MothraID)
		}
		if a.ActorID != "admin01" {
			t.Errorf("审计应记录操作者，实际=%s", a.ActorID)
		}
	}
}
