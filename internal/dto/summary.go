package dto

// SummaryRequest 按学生+班级汇总
// GET /api/v1/summary?student_id=&section_id=
type SummaryRequest struct {
	StudentID string `form:"student_id" binding:"required,uuid"`
	SectionID string `form:"section_id" binding:"required,uuid"`
}

// StatusCounts 按状态计数
type StatusCounts struct {
	Present int `json:"present"`
	Late    int `json:"late"`
	Absent  int `json:"absent"`
}

// AttendanceSummaryResponse 周/月考勤汇总
// 只统计课程已结束的记录；未结课的记录两个窗口都不计入
type AttendanceSummaryResponse struct {
	StudentID string       `json:"student_id"`
	SectionID string       `json:"section_id"`
	Weekly    StatusCounts `json:"weekly"`
	Monthly   StatusCounts `json:"monthly"`
}
