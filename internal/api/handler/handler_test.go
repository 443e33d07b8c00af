package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Markishime/smart-ecolock-sub003/internal/dto"
	"github.com/Markishime/smart-ecolock-sub003/internal/model"
	"github.com/Markishime/smart-ecolock-sub003/internal/service"
	"github.com/Markishime/smart-ecolock-sub003/internal/stream"
	"github.com/Markishime/smart-ecolock-sub003/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock ReconcilerService ──

type mockReconcilerService struct {
	record    *dto.AttendanceRecordResponse
	list      []dto.AttendanceRecordResponse
	finalized int
	err       error
}

func (m *mockReconcilerService) HandleRFIDTap(_ context.Context, _ *dto.RFIDTapRequest) (*dto.AttendanceRecordResponse, error) {
	return m.record, m.err
}
func (m *mockReconcilerService) AttributeWeight(_ context.Context, _ *model.Seat, _ time.Time) (*dto.AttendanceRecordResponse, error) {
	return m.record, m.err
}
func (m *mockReconcilerService) CreateManual(_ context.Context, _ *dto.CreateAttendanceRequest, _ string) (*dto.AttendanceRecordResponse, error) {
	return m.record, m.err
}
func (m *mockReconcilerService) EditStatus(_ context.Context, _ string, _ model.AttendanceStatus, _ string) (*dto.AttendanceRecordResponse, error) {
	return m.record, m.err
}
func (m *mockReconcilerService) Delete(_ context.Context, _ string, _ string) error {
	return m.err
}
func (m *mockReconcilerService) List(_ context.Context, _ *dto.AttendanceListRequest) ([]dto.AttendanceRecordResponse, error) {
	return m.list, m.err
}
func (m *mockReconcilerService) Snapshot(_ context.Context, _ string) ([]dto.AttendanceRecordResponse, error) {
	return m.list, m.err
}
func (m *mockReconcilerService) FinalizeEnded(_ context.Context, _ time.Time) (int, error) {
	return m.finalized, m.err
}

// ── Mock SeatGridService ──

type mockSeatGridService struct {
	seats      []dto.SeatResponse
	seatResult *dto.SeatResponse
	seat       *model.Seat
	err        error
}

func (m *mockSeatGridService) List(_ context.Context, _ *dto.SeatListRequest) ([]dto.SeatResponse, error) {
	return m.seats, m.err
}
func (m *mockSeatGridService) Snapshot(_ context.Context, _ string) ([]dto.SeatResponse, error) {
	return m.seats, m.err
}
func (m *mockSeatGridService) Assign(_ context.Context, _ string, _ *string, _ string) (*dto.SeatResponse, error) {
	return m.seatResult, m.err
}
func (m *mockSeatGridService) OnWeightSignal(_ context.Context, _ *dto.WeightSignalRequest) (*model.Seat, error) {
	return m.seat, m.err
}
func (m *mockSeatGridService) ConfirmStudentSeat(_ context.Context, _, _ string, _ bool, _ time.Time) error {
	return m.err
}
func (m *mockSeatGridService) ResetRoom(_ context.Context, _ string, _ time.Time) error {
	return m.err
}

// ── Mock SummaryService ──

type mockSummaryService struct {
	summary *dto.AttendanceSummaryResponse
	err     error
}

func (m *mockSummaryService) Summarize(_ context.Context, _, _ string, _ time.Time) (*dto.AttendanceSummaryResponse, error) {
	return m.summary, m.err
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportSectionSummary(_ context.Context, _ string, _ time.Time) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ── Mock ScheduleLoaderService ──

type mockLoaderService struct {
	resp *dto.ScheduleImportResponse
	err  error
}

func (m *mockLoaderService) ImportICS(_ context.Context, _ io.Reader) (*dto.ScheduleImportResponse, error) {
	return m.resp, m.err
}

// ── Mock DirectoryService ──

type mockDirectoryService struct {
	students []model.Student
	sections []model.Section
	subjects []model.Subject
	rooms    []model.Room
	err      error
}

func (m *mockDirectoryService) ListStudents(_ context.Context) ([]model.Student, error) {
	return m.students, m.err
}
func (m *mockDirectoryService) ListSections(_ context.Context) ([]model.Section, error) {
	return m.sections, m.err
}
func (m *mockDirectoryService) ListSubjects(_ context.Context) ([]model.Subject, error) {
	return m.subjects, m.err
}
func (m *mockDirectoryService) ListRooms(_ context.Context) ([]model.Room, error) {
	return m.rooms, m.err
}
func (m *mockDirectoryService) GetStudent(_ context.Context, _ string) (*model.Student, error) {
	return nil, m.err
}
func (m *mockDirectoryService) GetRoom(_ context.Context, _ string) (*model.Room, error) {
	return nil, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

// setOperator 模拟认证中间件注入操作员信息
func setOperator(c *gin.Context) {
	c.Set("operator_id", "op-001")
	c.Set("role", "admin")
}

func sampleRecord() *dto.AttendanceRecordResponse {
	return &dto.AttendanceRecordResponse{
		RecordID:          "rec-001",
		StudentID:         "8b9e6d7a-1111-4222-8333-444455556666",
		SectionID:         "8b9e6d7a-7777-4888-8999-000011112222",
		Date:              "2026-09-07",
		Status:            "present",
		RFIDAuthenticated: true,
	}
}

// ═══════════════════════════════════════════════════════════
// SignalHandler Tests
// ═══════════════════════════════════════════════════════════

func TestSignalHandler_RFIDTap_Success(t *testing.T) {
	mock := &mockReconcilerService{record: sampleRecord()}
	h := NewSignalHandler(mock, &mockSeatGridService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/signals/rfid", jsonBody(dto.RFIDTapRequest{
		StudentID: "8b9e6d7a-1111-4222-8333-444455556666",
		SectionID: "8b9e6d7a-7777-4888-8999-000011112222",
		Date:      "2026-09-07",
		Time:      time.Date(2026, 9, 7, 8, 5, 0, 0, time.UTC),
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/signals/rfid", h.IngestRFIDTap)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestSignalHandler_RFIDTap_BadJSON(t *testing.T) {
	h := NewSignalHandler(&mockReconcilerService{}, &mockSeatGridService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/signals/rfid", bytes.NewReader([]byte("invalid json")))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/signals/rfid", h.IngestRFIDTap)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestSignalHandler_RFIDTap_UnknownStudent(t *testing.T) {
	mock := &mockReconcilerService{err: service.ErrStudentNotFound}
	h := NewSignalHandler(mock, &mockSeatGridService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/signals/rfid", jsonBody(dto.RFIDTapRequest{
		StudentID: "8b9e6d7a-1111-4222-8333-444455556666",
		SectionID: "8b9e6d7a-7777-4888-8999-000011112222",
		Date:      "2026-09-07",
		Time:      time.Date(2026, 9, 7, 8, 5, 0, 0, time.UTC),
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/signals/rfid", h.IngestRFIDTap)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 12001 {
		t.Errorf("expected error code 12001, got %d", resp.Code)
	}
}

func TestSignalHandler_WeightSignal_Success(t *testing.T) {
	seatGrid := &mockSeatGridService{
		seat: &model.Seat{SeatID: "8b9e6d7a-aaaa-4bbb-8ccc-dddd11112222", RoomID: "room-001"},
	}
	h := NewSignalHandler(&mockReconcilerService{record: sampleRecord()}, seatGrid)

	present := true
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/signals/weight", jsonBody(dto.WeightSignalRequest{
		SeatID:  "8b9e6d7a-aaaa-4bbb-8ccc-dddd11112222",
		Present: &present,
		Time:    time.Date(2026, 9, 7, 8, 5, 0, 0, time.UTC),
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/signals/weight", h.IngestWeightSignal)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestSignalHandler_WeightSignal_MissingPresent(t *testing.T) {
	h := NewSignalHandler(&mockReconcilerService{}, &mockSeatGridService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/signals/weight", bytes.NewReader([]byte(
		`{"seat_id":"8b9e6d7a-aaaa-4bbb-8ccc-dddd11112222","time":"2026-09-07T08:05:00Z"}`)))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/signals/weight", h.IngestWeightSignal)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// AttendanceHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAttendanceHandler_List_Success(t *testing.T) {
	mock := &mockReconcilerService{list: []dto.AttendanceRecordResponse{*sampleRecord()}}
	h := NewAttendanceHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/attendance?section_id=8b9e6d7a-7777-4888-8999-000011112222", nil)

	r := gin.New()
	r.GET("/attendance", h.ListAttendance)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestAttendanceHandler_List_MissingSectionID(t *testing.T) {
	h := NewAttendanceHandler(&mockReconcilerService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/attendance", nil)

	r := gin.New()
	r.GET("/attendance", h.ListAttendance)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAttendanceHandler_Create_RequiresOperator(t *testing.T) {
	h := NewAttendanceHandler(&mockReconcilerService{record: sampleRecord()})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/attendance", jsonBody(dto.CreateAttendanceRequest{
		StudentID: "8b9e6d7a-1111-4222-8333-444455556666",
		SectionID: "8b9e6d7a-7777-4888-8999-000011112222",
		Date:      "2026-09-07",
		Status:    "absent",
	}))
	req.Header.Set("Content-Type", "application/json")

	// 未注入 operator_id：模拟认证中间件缺位
	r := gin.New()
	r.POST("/attendance", h.CreateAttendance)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAttendanceHandler_Create_Success(t *testing.T) {
	h := NewAttendanceHandler(&mockReconcilerService{record: sampleRecord()})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/attendance", jsonBody(dto.CreateAttendanceRequest{
		StudentID: "8b9e6d7a-1111-4222-8333-444455556666",
		SectionID: "8b9e6d7a-7777-4888-8999-000011112222",
		Date:      "2026-09-07",
		Status:    "absent",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.Use(setOperator)
	r.POST("/attendance", h.CreateAttendance)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
}

func TestAttendanceHandler_Edit_InvalidStatus(t *testing.T) {
	h := NewAttendanceHandler(&mockReconcilerService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/attendance/rec-001", bytes.NewReader([]byte(`{"status":"excused"}`)))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.Use(setOperator)
	r.PUT("/attendance/:id", h.EditAttendance)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAttendanceHandler_Edit_NotFound(t *testing.T) {
	h := NewAttendanceHandler(&mockReconcilerService{err: service.ErrRecordNotFound})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/attendance/rec-999", jsonBody(dto.EditAttendanceRequest{Status: "present"}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.Use(setOperator)
	r.PUT("/attendance/:id", h.EditAttendance)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 13001 {
		t.Errorf("expected error code 13001, got %d", resp.Code)
	}
}

func TestAttendanceHandler_Delete_Success(t *testing.T) {
	h := NewAttendanceHandler(&mockReconcilerService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("DELETE", "/attendance/rec-001", nil)

	r := gin.New()
	r.Use(setOperator)
	r.DELETE("/attendance/:id", h.DeleteAttendance)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestAttendanceHandler_Finalize_Success(t *testing.T) {
	h := NewAttendanceHandler(&mockReconcilerService{finalized: 3})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/attendance/finalize", nil)

	r := gin.New()
	r.Use(setOperator)
	r.POST("/attendance/finalize", h.FinalizeAttendance)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"finalized":3`) {
		t.Errorf("expected finalized count in body, got %s", w.Body.String())
	}
}

// ═══════════════════════════════════════════════════════════
// SeatHandler Tests
// ═══════════════════════════════════════════════════════════

func TestSeatHandler_List_Success(t *testing.T) {
	mock := &mockSeatGridService{seats: []dto.SeatResponse{{SeatID: "seat-001", Row: 1, Col: 1}}}
	h := NewSeatHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/seats?room_id=8b9e6d7a-aaaa-4bbb-8ccc-dddd11112222", nil)

	r := gin.New()
	r.GET("/seats", h.ListSeats)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestSeatHandler_Assign_Success(t *testing.T) {
	mock := &mockSeatGridService{seatResult: &dto.SeatResponse{SeatID: "seat-001"}}
	h := NewSeatHandler(mock)

	w := httptest.NewRecorder()
	studentID := "8b9e6d7a-1111-4222-8333-444455556666"
	req := httptest.NewRequest("PUT", "/seats/seat-001/assign", jsonBody(dto.AssignSeatRequest{StudentID: &studentID}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.Use(setOperator)
	r.PUT("/seats/:id/assign", h.AssignSeat)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestSeatHandler_Assign_SeatNotFound(t *testing.T) {
	h := NewSeatHandler(&mockSeatGridService{err: service.ErrSeatNotFound})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/seats/seat-999/assign", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.Use(setOperator)
	r.PUT("/seats/:id/assign", h.AssignSeat)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 12002 {
		t.Errorf("expected error code 12002, got %d", resp.Code)
	}
}

func TestSeatHandler_ResetRoom_Success(t *testing.T) {
	h := NewSeatHandler(&mockSeatGridService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/seats/reset", jsonBody(dto.ResetRoomRequest{
		RoomID: "8b9e6d7a-aaaa-4bbb-8ccc-dddd11112222",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.Use(setOperator)
	r.POST("/seats/reset", h.ResetRoom)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// SummaryHandler Tests
// ═══════════════════════════════════════════════════════════

func TestSummaryHandler_Get_Success(t *testing.T) {
	mock := &mockSummaryService{summary: &dto.AttendanceSummaryResponse{
		StudentID: "stu-001",
		SectionID: "sec-001",
		Weekly:    dto.StatusCounts{Present: 2},
	}}
	h := NewSummaryHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET",
		"/summary?student_id=8b9e6d7a-1111-4222-8333-444455556666&section_id=8b9e6d7a-7777-4888-8999-000011112222", nil)

	r := gin.New()
	r.GET("/summary", h.GetSummary)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"present":2`) {
		t.Errorf("expected weekly counts in body, got %s", w.Body.String())
	}
}

func TestSummaryHandler_Get_UnknownStudent(t *testing.T) {
	h := NewSummaryHandler(&mockSummaryService{err: service.ErrStudentNotFound})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET",
		"/summary?student_id=8b9e6d7a-1111-4222-8333-444455556666&section_id=8b9e6d7a-7777-4888-8999-000011112222", nil)

	r := gin.New()
	r.GET("/summary", h.GetSummary)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_Success(t *testing.T) {
	mock := &mockExportService{
		buf:      bytes.NewBufferString("xlsx-bytes"),
		filename: "attendance_BSIT-3A_20260909.xlsx",
	}
	h := NewExportHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/export/summary?section_id=sec-001", nil)

	r := gin.New()
	r.Use(setOperator)
	r.GET("/export/summary", h.ExportSummary)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	disposition := w.Header().Get("Content-Disposition")
	if !strings.Contains(disposition, "attendance_BSIT-3A_20260909.xlsx") {
		t.Errorf("expected filename in Content-Disposition, got %s", disposition)
	}
}

func TestExportHandler_MissingSectionID(t *testing.T) {
	h := NewExportHandler(&mockExportService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/export/summary", nil)

	r := gin.New()
	r.Use(setOperator)
	r.GET("/export/summary", h.ExportSummary)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ScheduleHandler Tests
// ═══════════════════════════════════════════════════════════

func TestScheduleHandler_Import_MissingFile(t *testing.T) {
	h := NewScheduleHandler(&mockLoaderService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/schedules/import", nil)

	r := gin.New()
	r.Use(setOperator)
	r.POST("/schedules/import", h.ImportSchedules)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// DirectoryHandler Tests
// ═══════════════════════════════════════════════════════════

func TestDirectoryHandler_ListStudents(t *testing.T) {
	mock := &mockDirectoryService{students: []model.Student{
		{StudentID: "stu-001", IDNumber: "2022-00123", FullName: "Ana Reyes"},
	}}
	h := NewDirectoryHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/students", nil)

	r := gin.New()
	r.GET("/students", h.ListStudents)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Ana Reyes") {
		t.Errorf("expected student in body, got %s", w.Body.String())
	}
}

// ═══════════════════════════════════════════════════════════
// StreamHandler Tests
// ═══════════════════════════════════════════════════════════

func newTestHub() *stream.Hub {
	return stream.NewHub(zap.NewNop())
}

func TestStreamHandler_Attendance_MissingSectionID(t *testing.T) {
	h := NewStreamHandler(&mockReconcilerService{}, &mockSeatGridService{}, newTestHub())

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/attendance/stream", nil)

	r := gin.New()
	r.GET("/attendance/stream", h.StreamAttendance)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestStreamHandler_Seats_UnknownRoom(t *testing.T) {
	h := NewStreamHandler(&mockReconcilerService{}, &mockSeatGridService{err: service.ErrRoomNotFound}, newTestHub())

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/seats/stream?room_id=room-999", nil)

	r := gin.New()
	r.GET("/seats/stream", h.StreamSeats)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

// snapshotRacingReconciler 在快照查询期间向主题发布一条增量，
// 模拟快照与首条推送之间落库的变更
type snapshotRacingReconciler struct {
	mockReconcilerService
	hub   *stream.Hub
	topic string
}

func (m *snapshotRacingReconciler) Snapshot(_ context.Context, _ string) ([]dto.AttendanceRecordResponse, error) {
	m.hub.Publish(m.topic, stream.Event{Kind: "upsert", Payload: sampleRecord()})
	return m.list, nil
}

func TestStreamHandler_Attendance_EventDuringSnapshotDelivered(t *testing.T) {
	hub := newTestHub()
	sectionID := "8b9e6d7a-7777-4888-8999-000011112222"
	mock := &snapshotRacingReconciler{hub: hub, topic: service.SectionTopic(sectionID)}
	mock.list = []dto.AttendanceRecordResponse{*sampleRecord()}
	h := NewStreamHandler(mock, &mockSeatGridService{}, hub)

	r := gin.New()
	r.GET("/attendance/stream", h.StreamAttendance)
	srv := httptest.NewServer(r)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/attendance/stream?section_id=" + sectionID
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.CloseNow()

	var first stream.Event
	if err := wsjson.Read(ctx, conn, &first); err != nil {
		t.Fatalf("read snapshot failed: %v", err)
	}
	if first.Kind != "snapshot" {
		t.Errorf("expected snapshot first, got %s", first.Kind)
	}

	var second stream.Event
	if err := wsjson.Read(ctx, conn, &second); err != nil {
		t.Fatalf("event published during snapshot fetch was not delivered: %v", err)
	}
	if second.Kind != "upsert" {
		t.Errorf("expected upsert after snapshot, got %s", second.Kind)
	}
}
