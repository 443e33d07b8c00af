package dto

// ScheduleImportResponse ICS 课表导入结果
// POST /api/v1/schedules/import
type ScheduleImportResponse struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Warnings []string `json:"warnings,omitempty"`
}

// ScheduleResponse 课表条目响应
type ScheduleResponse struct {
	ScheduleID  string `json:"schedule_id"`
	SectionID   string `json:"section_id"`
	SubjectID   string `json:"subject_id"`
	SubjectCode string `json:"subject_code,omitempty"`
	RoomID      string `json:"room_id"`
	RoomName    string `json:"room_name,omitempty"`
	DayOfWeek   int    `json:"day_of_week"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
}
