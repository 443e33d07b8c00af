package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/Markishime/smart-ecolock-sub003/internal/model"
)

// ── Mock StudentRepository ──

type mockStudentRepo struct {
	students map[string]*model.Student
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{students: make(map[string]*model.Student)}
}

func (m *mockStudentRepo) GetByID(_ context.Context, id string) (*model.Student, error) {
	if s, ok := m.students[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) GetByRFIDUID(_ context.Context, uid string) (*model.Student, error) {
	for _, s := range m.students {
		if s.RFIDUID != nil && *s.RFIDUID == uid {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) List(_ context.Context) ([]model.Student, error) {
	var result []model.Student
	for _, s := range m.students {
		result = append(result, *s)
	}
	return result, nil
}

// ── Mock SectionRepository ──

type mockSectionRepo struct {
	sections map[string]*model.Section
}

func newMockSectionRepo() *mockSectionRepo {
	return &mockSectionRepo{sections: make(map[string]*model.Section)}
}

func (m *mockSectionRepo) GetByID(_ context.Context, id string) (*model.Section, error) {
	if s, ok := m.sections[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSectionRepo) GetByName(_ context.Context, name string) (*model.Section, error) {
	for _, s := range m.sections {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSectionRepo) List(_ context.Context) ([]model.Section, error) {
	var result []model.Section
	for _, s := range m.sections {
		result = append(result, *s)
	}
	return result, nil
}

// ── Mock SubjectRepository ──

type mockSubjectRepo struct {
	subjects map[string]*model.Subject
}

func newMockSubjectRepo() *mockSubjectRepo {
	return &mockSubjectRepo{subjects: make(map[string]*model.Subject)}
}

func (m *mockSubjectRepo) GetByID(_ context.Context, id string) (*model.Subject, error) {
	if s, ok := m.subjects[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubjectRepo) GetByCode(_ context.Context, code string) (*model.Subject, error) {
	for _, s := range m.subjects {
		if s.Code == code {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubjectRepo) List(_ context.Context) ([]model.Subject, error) {
	var result []model.Subject
	for _, s := range m.subjects {
		result = append(result, *s)
	}
	return result, nil
}

// ── Mock RoomRepository ──

type mockRoomRepo struct {
	rooms map[string]*model.Room
}

func newMockRoomRepo() *mockRoomRepo {
	return &mockRoomRepo{rooms: make(map[string]*model.Room)}
}

func (m *mockRoomRepo) GetByID(_ context.Context, id string) (*model.Room, error) {
	if r, ok := m.rooms[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRoomRepo) GetByName(_ context.Context, name string) (*model.Room, error) {
	for _, r := range m.rooms {
		if r.Name == name {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRoomRepo) List(_ context.Context) ([]model.Room, error) {
	var result []model.Room
	for _, r := range m.rooms {
		result = append(result, *r)
	}
	return result, nil
}

// ── Mock ScheduleRepository ──

type mockScheduleRepo struct {
	schedules []model.Schedule
	seq       int
}

func newMockScheduleRepo() *mockScheduleRepo {
	return &mockScheduleRepo{}
}

func (m *mockScheduleRepo) GetByID(_ context.Context, id string) (*model.Schedule, error) {
	for i := range m.schedules {
		if m.schedules[i].ScheduleID == id {
			return &m.schedules[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockScheduleRepo) ListBySection(_ context.Context, sectionID string) ([]model.Schedule, error) {
	var result []model.Schedule
	for i := range m.schedules {
		if m.schedules[i].SectionID == sectionID {
			result = append(result, m.schedules[i])
		}
	}
	return result, nil
}

func (m *mockScheduleRepo) ListBySectionAndDay(_ context.Context, sectionID string, dayOfWeek int) ([]model.Schedule, error) {
	var result []model.Schedule
	for i := range m.schedules {
		if m.schedules[i].SectionID == sectionID && m.schedules[i].DayOfWeek == dayOfWeek {
			result = append(result, m.schedules[i])
		}
	}
	return result, nil
}

func (m *mockScheduleRepo) ListByRoomAndDay(_ context.Context, roomID string, dayOfWeek int) ([]model.Schedule, error) {
	var result []model.Schedule
	for i := range m.schedules {
		if m.schedules[i].RoomID == roomID && m.schedules[i].DayOfWeek == dayOfWeek {
			result = append(result, m.schedules[i])
		}
	}
	return result, nil
}

func (m *mockScheduleRepo) BatchCreate(_ context.Context, schedules []model.Schedule) error {
	for i := range schedules {
		m.seq++
		schedules[i].ScheduleID = fmt.Sprintf("sch-%03d", m.seq)
		m.schedules = append(m.schedules, schedules[i])
	}
	return nil
}

// ── Mock AttendanceRepository ──

// mockAttendanceRepo 以 (student, section, date) 为键存储，
// 三个 Upsert 与 SQL ON CONFLICT 补丁语义一致
type mockAttendanceRepo struct {
	records map[string]*model.AttendanceRecord
	seq     int
}

func newMockAttendanceRepo() *mockAttendanceRepo {
	return &mockAttendanceRepo{records: make(map[string]*model.AttendanceRecord)}
}

func attKey(studentID, sectionID string, date time.Time) string {
	return fmt.Sprintf("%s|%s|%s", studentID, sectionID, date.Format("2006-01-02"))
}

func (m *mockAttendanceRepo) insert(rec *model.AttendanceRecord) *model.AttendanceRecord {
	clone := *rec
	if clone.RecordID == "" {
		m.seq++
		clone.RecordID = fmt.Sprintf("rec-%03d", m.seq)
	}
	m.records[attKey(clone.StudentID, clone.SectionID, clone.Date)] = &clone
	return &clone
}

func (m *mockAttendanceRepo) GetByID(_ context.Context, id string) (*model.AttendanceRecord, error) {
	for _, rec := range m.records {
		if rec.RecordID == id {
			return rec, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAttendanceRepo) GetByKey(_ context.Context, studentID, sectionID string, date time.Time) (*model.AttendanceRecord, error) {
	if rec, ok := m.records[attKey(studentID, sectionID, date)]; ok {
		return rec, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAttendanceRepo) UpsertRFIDTap(_ context.Context, rec *model.AttendanceRecord) error {
	ex, ok := m.records[attKey(rec.StudentID, rec.SectionID, rec.Date)]
	if !ok {
		m.insert(rec)
		return nil
	}
	// status/timestamp 只认首个 RFID 信号
	if !ex.RFIDAuthenticated {
		ex.Status = rec.Status
	}
	if ex.Timestamp == nil {
		ex.Timestamp = rec.Timestamp
	}
	if ex.SubjectID == nil {
		ex.SubjectID = rec.SubjectID
	}
	if ex.RoomID == nil {
		ex.RoomID = rec.RoomID
	}
	ex.RFIDAuthenticated = true
	ex.Confirmed = ex.WeightAuthenticated
	return nil
}

func (m *mockAttendanceRepo) UpsertWeight(_ context.Context, rec *model.AttendanceRecord) error {
	ex, ok := m.records[attKey(rec.StudentID, rec.SectionID, rec.Date)]
	if !ok {
		m.insert(rec)
		return nil
	}
	if ex.Timestamp == nil {
		ex.Timestamp = rec.Timestamp
	}
	if ex.SubjectID == nil {
		ex.SubjectID = rec.SubjectID
	}
	if ex.RoomID == nil {
		ex.RoomID = rec.RoomID
	}
	ex.WeightAuthenticated = true
	ex.Confirmed = ex.RFIDAuthenticated
	return nil
}

func (m *mockAttendanceRepo) UpsertManual(_ context.Context, rec *model.AttendanceRecord) error {
	ex, ok := m.records[attKey(rec.StudentID, rec.SectionID, rec.Date)]
	if !ok {
		m.insert(rec)
		return nil
	}
	ex.Status = rec.Status
	ex.SubmittedBy = rec.SubmittedBy
	return nil
}

func (m *mockAttendanceRepo) UpdateStatus(_ context.Context, id string, status model.AttendanceStatus, operatorID string) error {
	for _, rec := range m.records {
		if rec.RecordID == id {
			rec.Status = status
			op := operatorID
			rec.SubmittedBy = &op
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockAttendanceRepo) MarkAbsent(_ context.Context, id string) error {
	for _, rec := range m.records {
		if rec.RecordID == id {
			rec.Status = model.StatusAbsent
			rec.Confirmed = false
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockAttendanceRepo) Delete(_ context.Context, id string) error {
	for k, rec := range m.records {
		if rec.RecordID == id {
			delete(m.records, k)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockAttendanceRepo) ListBySection(_ context.Context, sectionID string) ([]model.AttendanceRecord, error) {
	var result []model.AttendanceRecord
	for _, rec := range m.records {
		if rec.SectionID == sectionID {
			result = append(result, *rec)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		ti, tj := result[i].Timestamp, result[j].Timestamp
		if ti == nil {
			return false
		}
		if tj == nil {
			return true
		}
		return ti.After(*tj)
	})
	return result, nil
}

func (m *mockAttendanceRepo) ListBySectionAndDate(_ context.Context, sectionID string, date time.Time) ([]model.AttendanceRecord, error) {
	day := date.Format("2006-01-02")
	var result []model.AttendanceRecord
	for _, rec := range m.records {
		if rec.SectionID == sectionID && rec.Date.Format("2006-01-02") == day {
			result = append(result, *rec)
		}
	}
	return result, nil
}

func (m *mockAttendanceRepo) ListByStudentAndSection(_ context.Context, studentID, sectionID string) ([]model.AttendanceRecord, error) {
	var result []model.AttendanceRecord
	for _, rec := range m.records {
		if rec.StudentID == studentID && rec.SectionID == sectionID {
			result = append(result, *rec)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

func (m *mockAttendanceRepo) ListNeverTappedBefore(_ context.Context, cutoffDate time.Time) ([]model.AttendanceRecord, error) {
	cutoff := cutoffDate.Format("2006-01-02")
	var result []model.AttendanceRecord
	for _, rec := range m.records {
		if !rec.RFIDAuthenticated && rec.Status != model.StatusAbsent && rec.Date.Format("2006-01-02") <= cutoff {
			result = append(result, *rec)
		}
	}
	return result, nil
}

// ── Mock SeatRepository ──

type mockSeatRepo struct {
	seats map[string]*model.Seat
}

func newMockSeatRepo() *mockSeatRepo {
	return &mockSeatRepo{seats: make(map[string]*model.Seat)}
}

func (m *mockSeatRepo) GetByID(_ context.Context, id string) (*model.Seat, error) {
	if s, ok := m.seats[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSeatRepo) GetByPosition(_ context.Context, roomID string, row, col int) (*model.Seat, error) {
	for _, s := range m.seats {
		if s.RoomID == roomID && s.Row == row && s.Col == col {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSeatRepo) GetByRoomAndStudent(_ context.Context, roomID, studentID string) (*model.Seat, error) {
	for _, s := range m.seats {
		if s.RoomID == roomID && s.StudentID != nil && *s.StudentID == studentID {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSeatRepo) ListByRoom(_ context.Context, roomID string) ([]model.Seat, error) {
	var result []model.Seat
	for _, s := range m.seats {
		if s.RoomID == roomID {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Row != result[j].Row {
			return result[i].Row < result[j].Row
		}
		return result[i].Col < result[j].Col
	})
	return result, nil
}

func (m *mockSeatRepo) Assign(_ context.Context, id string, studentID *string, at time.Time) error {
	s, ok := m.seats[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.StudentID = studentID
	s.WeightSensorStatus = false
	s.RFIDConfirmed = false
	s.LastUpdated = &at
	return nil
}

func (m *mockSeatRepo) PatchWeight(_ context.Context, id string, present bool, at time.Time) error {
	s, ok := m.seats[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.WeightSensorStatus = present
	s.LastUpdated = &at
	return nil
}

func (m *mockSeatRepo) PatchRFID(_ context.Context, id string, confirmed bool, at time.Time) error {
	s, ok := m.seats[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.RFIDConfirmed = confirmed
	s.LastUpdated = &at
	return nil
}

func (m *mockSeatRepo) ResetRoom(_ context.Context, roomID string, at time.Time) error {
	for _, s := range m.seats {
		if s.RoomID == roomID {
			s.WeightSensorStatus = false
			s.RFIDConfirmed = false
			s.LastUpdated = &at
		}
	}
	return nil
}
