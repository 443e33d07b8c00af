package model

// Student 学生目录表 — 对应 students（外部系统维护，只读）
type Student struct {
	StudentID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"student_id"`
	IDNumber  string  `gorm:"type:varchar(30);not null;uniqueIndex"          json:"id_number"`
	FullName  string  `gorm:"type:varchar(100);not null"                     json:"full_name"`
	RFIDUID   *string `gorm:"type:varchar(50);uniqueIndex"                   json:"rfid_uid,omitempty"` // 绑定的卡片 UID
	BaseModel
}

// TableName 指定表名
func (Student) TableName() string { return "students" }
