package model

// Section 班级目录表 — 对应 sections（外部系统维护，只读）
type Section struct {
	SectionID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"section_id"`
	Name      string `gorm:"type:varchar(50);not null;uniqueIndex"          json:"name"`
	BaseModel
}

// TableName 指定表名
func (Section) TableName() string { return "sections" }
