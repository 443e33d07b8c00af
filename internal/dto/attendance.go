package dto

import "time"

// AttendanceListRequest 考勤记录列表查询
// GET /api/v1/attendance?section_id=&date=
type AttendanceListRequest struct {
	SectionID string `form:"section_id" binding:"required,uuid"`
	Date      string `form:"date"       binding:"omitempty,datetime=2006-01-02"`
}

// EditAttendanceRequest 手动补签/改判
// PUT /api/v1/attendance/:id
type EditAttendanceRequest struct {
	Status string `json:"status" binding:"required,oneof=present late absent"`
}

// CreateAttendanceRequest 操作员手动建档
// POST /api/v1/attendance
type CreateAttendanceRequest struct {
	StudentID string `json:"student_id" binding:"required,uuid"`
	SectionID string `json:"section_id" binding:"required,uuid"`
	Date      string `json:"date"       binding:"required,datetime=2006-01-02"`
	Status    string `json:"status"     binding:"required,oneof=present late absent"`
}

// AttendanceRecordResponse 考勤记录响应
type AttendanceRecordResponse struct {
	RecordID            string     `json:"record_id"`
	StudentID           string     `json:"student_id"`
	StudentName         string     `json:"student_name,omitempty"`
	SectionID           string     `json:"section_id"`
	Date                string     `json:"date"`
	SubjectID           *string    `json:"subject_id,omitempty"`
	RoomID              *string    `json:"room_id,omitempty"`
	Status              string     `json:"status"`
	RFIDAuthenticated   bool       `json:"rfid_authenticated"`
	WeightAuthenticated bool       `json:"weight_authenticated"`
	Confirmed           bool       `json:"confirmed"`
	Timestamp           *time.Time `json:"timestamp,omitempty"`
	SubmittedBy         *string    `json:"submitted_by,omitempty"`
}
