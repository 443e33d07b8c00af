package model

// Schedule 课表参考数据 — 对应 schedules（外部系统维护，只读）
// 每条对应某 section 在某星期几的一节课
type Schedule struct {
	ScheduleID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"schedule_id"`
	SectionID  string `gorm:"type:uuid;not null;index:idx_schedules_section_day" json:"section_id"`
	SubjectID  string `gorm:"type:uuid;not null"                             json:"subject_id"`
	RoomID     string `gorm:"type:uuid;not null"                             json:"room_id"`
	DayOfWeek  int    `gorm:"type:smallint;not null;index:idx_schedules_section_day" json:"day_of_week"` // 0=周日 ... 6=周六
	StartTime  string `gorm:"type:time;not null"                             json:"start_time"`          // HH:MM
	EndTime    string `gorm:"type:time;not null"                             json:"end_time"`            // HH:MM
	BaseModel

	// 关联
	Section *Section `gorm:"foreignKey:SectionID;references:SectionID" json:"section,omitempty"`
	Subject *Subject `gorm:"foreignKey:SubjectID;references:SubjectID" json:"subject,omitempty"`
	Room    *Room    `gorm:"foreignKey:RoomID;references:RoomID"       json:"room,omitempty"`
}

// TableName 指定表名
func (Schedule) TableName() string { return "schedules" }
