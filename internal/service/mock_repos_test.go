package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"clinsched/backend/internal/model"
	"clinsched/backend/internal/repository"
	pkgerrors "clinsched/backend/pkg/errors"
)

// ── Mock TxManager ──

// mockTxManager 直接在同一仓库上执行回调，不做真实事务
type mockTxManager struct {
	repos *repository.Repository
}

func (m *mockTxManager) WithTx(_ context.Context, fn func(repos *repository.Repository) error) error {
	return fn(m.repos)
}

// ── Mock ServiceRepository ──

type mockServiceRepo struct {
	services  map[string]*model.Service
	rotations *mockRotationRepo
}

func newMockServiceRepo() *mockServiceRepo {
	return &mockServiceRepo{services: make(map[string]*model.Service)}
}

func (m *mockServiceRepo) List(_ context.Context) ([]model.Service, error) {
	var result []model.Service
	for _, s := range m.services {
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockServiceRepo) GetByID(_ context.Context, id string) (*model.Service, error) {
	if s, ok := m.services[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockServiceRepo) GetByRotation(_ context.Context, rotationID string) (*model.Service, error) {
	if m.rotations == nil {
		return nil, gorm.ErrRecordNotFound
	}
	r, ok := m.rotations.rotations[rotationID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if s, ok := m.services[r.ServiceID]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock RotationRepository ──

type mockRotationRepo struct {
	rotations map[string]*model.Rotation
	services  *mockServiceRepo
	idCounter int
}

func newMockRotationRepo() *mockRotationRepo {
	return &mockRotationRepo{rotations: make(map[string]*model.Rotation)}
}

func (m *mockRotationRepo) Create(_ context.Context, rotation *model.Rotation) error {
	if rotation.RotationID == "" {
		m.idCounter++
		rotation.RotationID = fmt.Sprintf("rot-%d", m.idCounter)
	}
	m.rotations[rotation.RotationID] = rotation
	return nil
}

func (m *mockRotationRepo) GetByID(_ context.Context, id string) (*model.Rotation, error) {
	r, ok := m.rotations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *r
	if m.services != nil {
		if s, ok := m.services.services[r.ServiceID]; ok {
			cp.Service = s
		}
	}
	return &cp, nil
}

func (m *mockRotationRepo) List(_ context.Context, serviceID string) ([]model.Rotation, error) {
	var result []model.Rotation
	for _, r := range m.rotations {
		if !r.IsActive {
			continue
		}
		if serviceID != "" && r.ServiceID != serviceID {
			continue
		}
		cp := *r
		if m.services != nil {
			if s, ok := m.services.services[r.ServiceID]; ok {
				cp.Service = s
			}
		}
		result = append(result, cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockRotationRepo) Update(_ context.Context, rotation *model.Rotation) error {
	existing, ok := m.rotations[rotation.RotationID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if existing.Version != rotation.Version {
		return pkgerrors.ErrOptimisticLock
	}
	rotation.Version++
	m.rotations[rotation.RotationID] = rotation
	return nil
}

func (m *mockRotationRepo) CountByService(_ context.Context) ([]repository.ServiceRotationCount, error) {
	counts := make(map[string]int64)
	for _, r := range m.rotations {
		if r.IsActive {
			counts[r.ServiceID]++
		}
	}
	var result []repository.ServiceRotationCount
	for sid, n := range counts {
		name := sid
		if m.services != nil {
			if s, ok := m.services.services[sid]; ok {
				name = s.Name
			}
		}
		result = append(result, repository.ServiceRotationCount{ServiceID: sid, ServiceName: name, Count: n})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ServiceName < result[j].ServiceName })
	return result, nil
}

// ── Mock WeekRepository ──

type mockWeekRepo struct {
	weeks map[string]*model.Week
}

func newMockWeekRepo() *mockWeekRepo {
	return &mockWeekRepo{weeks: make(map[string]*model.Week)}
}

func (m *mockWeekRepo) GetByID(_ context.Context, id string) (*model.Week, error) {
	if w, ok := m.weeks[id]; ok {
		return w, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockWeekRepo) GetByDate(_ context.Context, date time.Time) (*model.Week, error) {
	for _, w := range m.weeks {
		if !date.Before(w.StartDate) && !date.After(w.EndDate) {
			return w, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockWeekRepo) ListByTerm(_ context.Context, termCode string) ([]model.Week, error) {
	var result []model.Week
	for _, w := range m.weeks {
		if w.TermCode == termCode {
			result = append(result, *w)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartDate.Before(result[j].StartDate) })
	return result, nil
}

func (m *mockWeekRepo) BlockAnchor(_ context.Context, week *model.Week) (*model.Week, error) {
	var anchor *model.Week
	for _, w := range m.weeks {
		if !w.StartWeek || w.ExtendedRotation != week.ExtendedRotation || w.StartDate.After(week.StartDate) {
			continue
		}
		if anchor == nil || w.StartDate.After(anchor.StartDate) {
			anchor = w
		}
	}
	if anchor == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return anchor, nil
}

func (m *mockWeekRepo) NextAnchor(_ context.Context, week *model.Week) (*model.Week, error) {
	var anchor *model.Week
	for _, w := range m.weeks {
		if !w.StartWeek || w.ExtendedRotation != week.ExtendedRotation || !w.StartDate.After(week.StartDate) {
			continue
		}
		if anchor == nil || w.StartDate.Before(anchor.StartDate) {
			anchor = w
		}
	}
	if anchor == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return anchor, nil
}

// ── Mock WeekGradYearRepository ──

type mockWeekGradYearRepo struct {
	coords []model.WeekGradYear
	weeks  *mockWeekRepo
}

func newMockWeekGradYearRepo() *mockWeekGradYearRepo {
	return &mockWeekGradYearRepo{}
}

func (m *mockWeekGradYearRepo) ListByWeek(_ context.Context, weekID string) ([]model.WeekGradYear, error) {
	var result []model.WeekGradYear
	for _, c := range m.coords {
		if c.WeekID == weekID {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].GradYear < result[j].GradYear })
	return result, nil
}

func (m *mockWeekGradYearRepo) GetByCoord(_ context.Context, gradYear, weekNumber int) (*model.WeekGradYear, error) {
	for i, c := range m.coords {
		if c.GradYear == gradYear && c.WeekNumber == weekNumber {
			cp := m.coords[i]
			if m.weeks != nil {
				if w, ok := m.weeks.weeks[c.WeekID]; ok {
					cp.Week = w
				}
			}
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockWeekGradYearRepo) GetByWeekAndGradYear(_ context.Context, weekID string, gradYear int) (*model.WeekGradYear, error) {
	for i, c := range m.coords {
		if c.WeekID == weekID && c.GradYear == gradYear {
			return &m.coords[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock PreferenceRepository ──

type mockPreferenceRepo struct {
	prefs     map[string]*model.RotationWeeklyPref // key: rotationID:weekID
	idCounter int
}

func newMockPreferenceRepo() *mockPreferenceRepo {
	return &mockPreferenceRepo{prefs: make(map[string]*model.RotationWeeklyPref)}
}

func prefKey(rotationID, weekID string) string {
	return rotationID + ":" + weekID
}

func (m *mockPreferenceRepo) Get(_ context.Context, rotationID, weekID string) (*model.RotationWeeklyPref, error) {
	if p, ok := m.prefs[prefKey(rotationID, weekID)]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPreferenceRepo) ListByWeek(_ context.Context, weekID string) ([]model.RotationWeeklyPref, error) {
	var result []model.RotationWeeklyPref
	for _, p := range m.prefs {
		if p.WeekID == weekID {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (m *mockPreferenceRepo) Create(_ context.Context, pref *model.RotationWeeklyPref) error {
	if pref.PrefID == "" {
		m.idCounter++
		pref.PrefID = fmt.Sprintf("pref-%d", m.idCounter)
	}
	m.prefs[prefKey(pref.RotationID, pref.WeekID)] = pref
	return nil
}

func (m *mockPreferenceRepo) Update(_ context.Context, pref *model.RotationWeeklyPref) error {
	existing, ok := m.prefs[prefKey(pref.RotationID, pref.WeekID)]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if existing.Version != pref.Version {
		return pkgerrors.ErrOptimisticLock
	}
	pref.Version++
	m.prefs[prefKey(pref.RotationID, pref.WeekID)] = pref
	return nil
}

// ── Mock AssignmentRepository ──

type mockAssignmentRepo struct {
	rows      map[string]*model.InstructorSchedule
	idCounter int
}

func newMockAssignmentRepo() *mockAssignmentRepo {
	return &mockAssignmentRepo{rows: make(map[string]*model.InstructorSchedule)}
}

func (m *mockAssignmentRepo) Create(_ context.Context, assignment *model.InstructorSchedule) error {
	if assignment.InstructorScheduleID == "" {
		m.idCounter++
		assignment.InstructorScheduleID = fmt.Sprintf("is-%d", m.idCounter)
	}
	assignment.CreatedAt = time.Now()
	assignment.UpdatedAt = time.Now()
	m.rows[assignment.InstructorScheduleID] = assignment
	return nil
}

func (m *mockAssignmentRepo) GetByID(_ context.Context, id string) (*model.InstructorSchedule, error) {
	if r, ok := m.rows[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAssignmentRepo) GetByTuple(_ context.Context, rotationID, weekID, mothraID string) (*model.InstructorSchedule, error) {
	for _, r := range m.rows {
		if r.RotationID == rotationID && r.WeekID == weekID && r.MothraID == mothraID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAssignmentRepo) ListByRotationWeek(_ context.Context, rotationID, weekID string) ([]model.InstructorSchedule, error) {
	var result []model.InstructorSchedule
	for _, r := range m.rows {
		if r.RotationID == rotationID && r.WeekID == weekID {
			result = append(result, *r)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Evaluator != result[j].Evaluator {
			return result[i].Evaluator
		}
		return result[i].MothraID < result[j].MothraID
	})
	return result, nil
}

func (m *mockAssignmentRepo) ListByRotationWeekForUpdate(ctx context.Context, rotationID, weekID string) ([]model.InstructorSchedule, error) {
	return m.ListByRotationWeek(ctx, rotationID, weekID)
}

func (m *mockAssignmentRepo) ListByMothraWeek(_ context.Context, mothraID, weekID, excludeRotationID string) ([]model.InstructorSchedule, error) {
	var result []model.InstructorSchedule
	for _, r := range m.rows {
		if r.MothraID != mothraID || r.WeekID != weekID {
			continue
		}
		if excludeRotationID != "" && r.RotationID == excludeRotationID {
			continue
		}
		result = append(result, *r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].RotationID < result[j].RotationID })
	return result, nil
}

func (m *mockAssignmentRepo) ClearPrimary(_ context.Context, rotationID, weekID, exceptID, updatedBy string) error {
	for _, r := range m.rows {
		if r.RotationID == rotationID && r.WeekID == weekID && r.Evaluator && r.InstructorScheduleID != exceptID {
			r.Evaluator = false
			by := updatedBy
			r.UpdatedBy = &by
			r.UpdatedAt = time.Now()
		}
	}
	return nil
}

func (m *mockAssignmentRepo) SetEvaluator(_ context.Context, id string, evaluator bool, updatedBy string) error {
	r, ok := m.rows[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	r.Evaluator = evaluator
	by := updatedBy
	r.UpdatedBy = &by
	r.UpdatedAt = time.Now()
	return nil
}

func (m *mockAssignmentRepo) Delete(_ context.Context, id string) error {
	delete(m.rows, id)
	return nil
}

// primaryCount 统计轮转周内主评估人数量（不变量断言用）
func (m *mockAssignmentRepo) primaryCount(rotationID, weekID string) int {
	count := 0
	for _, r := range m.rows {
		if r.RotationID == rotationID && r.WeekID == weekID && r.Evaluator {
			count++
		}
	}
	return count
}

// ── Mock AuditRepository ──

type mockAuditRepo struct {
	audits    []model.ScheduleAudit
	idCounter int
}

func newMockAuditRepo() *mockAuditRepo {
	return &mockAuditRepo{}
}

func (m *mockAuditRepo) Create(_ context.Context, audit *model.ScheduleAudit) error {
	m.idCounter++
	if audit.AuditID == "" {
		audit.AuditID = fmt.Sprintf("audit-%d", m.idCounter)
	}
	if audit.AuditTime.IsZero() {
		audit.AuditTime = time.Now()
	}
	m.audits = append(m.audits, *audit)
	return nil
}

func (m *mockAuditRepo) List(_ context.Context, filter repository.AuditFilter, offset, limit int) ([]model.ScheduleAudit, int64, error) {
	var filtered []model.ScheduleAudit
	for _, a := range m.audits {
		if filter.RotationID != "" && (a.RotationID == nil || *a.RotationID != filter.RotationID) {
			continue
		}
		if filter.WeekID != "" && (a.WeekID == nil || *a.WeekID != filter.WeekID) {
			continue
		}
		if filter.MothraID != "" && (a.MothraID == nil || !strings.EqualFold(*a.MothraID, filter.MothraID)) {
			continue
		}
		filtered = append(filtered, a)
	}
	total := int64(len(filtered))
	if offset >= len(filtered) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[offset:end], total, nil
}

// ── Mock PersonRepository ──

type mockPersonRepo struct {
	people map[string]*model.Person
}

func newMockPersonRepo() *mockPersonRepo {
	return &mockPersonRepo{people: make(map[string]*model.Person)}
}

func (m *mockPersonRepo) GetByMothraID(_ context.Context, mothraID string) (*model.Person, error) {
	if p, ok := m.people[mothraID]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPersonRepo) ListByMothraIDs(_ context.Context, mothraIDs []string) ([]model.Person, error) {
	var result []model.Person
	for _, id := range mothraIDs {
		if p, ok := m.people[id]; ok {
			result = append(result, *p)
		}
	}
	return result, nil
}
