package model

// Person 人员只读投影 — 对应 people
// 由上游身份系统同步，本服务只用于展示拼接，不拥有其生命周期
type Person struct {
	MothraID    string  `gorm:"type:varchar(8);primaryKey" json:"mothra_id"`
	DisplayName string  `gorm:"type:varchar(100);not null" json:"display_name"`
	MailID      *string `gorm:"type:varchar(50)"           json:"mail_id,omitempty"`
}

func (Person) TableName() string { return "people" }
