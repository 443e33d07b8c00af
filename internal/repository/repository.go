package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Student    StudentRepository
	Section    SectionRepository
	Subject    SubjectRepository
	Room       RoomRepository
	Schedule   ScheduleRepository
	Attendance AttendanceRepository
	Seat       SeatRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Student:    NewStudentRepo(db),
		Section:    NewSectionRepo(db),
		Subject:    NewSubjectRepo(db),
		Room:       NewRoomRepo(db),
		Schedule:   NewScheduleRepo(db),
		Attendance: NewAttendanceRepo(db),
		Seat:       NewSeatRepo(db),
	}
}
