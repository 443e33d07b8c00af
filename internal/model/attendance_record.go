package model

import "time"

// AttendanceRecord 考勤记录 — 对应 attendance_records
// 键为 (student_id, section_id, date)，每键最多一条；新信号只更新已有记录，
// 由数据库唯一约束 uq_attendance_key 兜底
//
// 不变量：confirmed == rfid_authenticated && weight_authenticated
type AttendanceRecord struct {
	RecordID            string           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"record_id"`
	StudentID           string           `gorm:"type:uuid;not null;uniqueIndex:uq_attendance_key" json:"student_id"`
	SectionID           string           `gorm:"type:uuid;not null;uniqueIndex:uq_attendance_key" json:"section_id"`
	Date                time.Time        `gorm:"type:date;not null;uniqueIndex:uq_attendance_key" json:"date"`
	SubjectID           *string          `gorm:"type:uuid"                                      json:"subject_id,omitempty"`
	RoomID              *string          `gorm:"type:uuid"                                      json:"room_id,omitempty"`
	Status              AttendanceStatus `gorm:"type:varchar(10);not null;default:'absent'"     json:"status"`
	RFIDAuthenticated   bool             `gorm:"column:rfid_authenticated;not null;default:false" json:"rfid_authenticated"`
	WeightAuthenticated bool             `gorm:"not null;default:false"                         json:"weight_authenticated"`
	Confirmed           bool             `gorm:"not null;default:false"                         json:"confirmed"`
	Timestamp           *time.Time       `gorm:"type:timestamptz"                               json:"timestamp,omitempty"` // 首个信号时间
	SubmittedBy         *string          `gorm:"type:uuid"                                      json:"submitted_by,omitempty"`
	BaseModel

	// 关联
	Student *Student `gorm:"foreignKey:StudentID;references:StudentID" json:"student,omitempty"`
	Section *Section `gorm:"foreignKey:SectionID;references:SectionID" json:"section,omitempty"`
	Subject *Subject `gorm:"foreignKey:SubjectID;references:SubjectID" json:"subject,omitempty"`
}

// TableName 指定表名
func (AttendanceRecord) TableName() string { return "attendance_records" }
