package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Markishime/smart-ecolock-sub003/config"
	"github.com/Markishime/smart-ecolock-sub003/internal/dto"
	"github.com/Markishime/smart-ecolock-sub003/internal/model"
	"github.com/Markishime/smart-ecolock-sub003/internal/repository"
	"github.com/Markishime/smart-ecolock-sub003/internal/stream"
	"github.com/Markishime/smart-ecolock-sub003/pkg/redis"
)

// ── 考勤对账模块业务错误 ──

var (
	ErrRecordNotFound = errors.New("考勤记录不存在")
	ErrInvalidStatus  = errors.New("考勤状态无效")
)

// ReconcilerService 信号对账业务接口
//
// 把两路异步到达的物理信号（RFID 刷卡、座位重量）对到 (student, section, date)
// 键上：RFID 负责 present/late 判定，重量只参与双因子确认；两路信号的补丁
// 各自幂等，confirmed 的最终值与到达顺序无关
type ReconcilerService interface {
	HandleRFIDTap(ctx context.Context, req *dto.RFIDTapRequest) (*dto.AttendanceRecordResponse, error)
	// AttributeWeight 把座位重量信号归因到该座位分配学生的考勤记录
	// 座位未分配或当下没有排课时只更新网格，不产生记录
	AttributeWeight(ctx context.Context, seat *model.Seat, at time.Time) (*dto.AttendanceRecordResponse, error)
	// CreateManual 操作员手动建档
	CreateManual(ctx context.Context, req *dto.CreateAttendanceRequest, operatorID string) (*dto.AttendanceRecordResponse, error)
	// EditStatus 手动改判：直接覆盖 status，不触碰认证标志；对传感器后写同样后写覆盖
	EditStatus(ctx context.Context, id string, status model.AttendanceStatus, operatorID string) (*dto.AttendanceRecordResponse, error)
	Delete(ctx context.Context, id string, operatorID string) error
	List(ctx context.Context, req *dto.AttendanceListRequest) ([]dto.AttendanceRecordResponse, error)
	// Snapshot 订阅接入时的全量快照（按首信号时间倒序）
	Snapshot(ctx context.Context, sectionID string) ([]dto.AttendanceRecordResponse, error)
	// FinalizeEnded 结课清扫：已结课且从未刷卡的记录置 absent
	FinalizeEnded(ctx context.Context, now time.Time) (int, error)
}

type reconcilerService struct {
	cfg      *config.AttendanceConfig
	repo     *repository.Repository
	resolver ScheduleResolver
	seatGrid SeatGridService
	hub      *stream.Hub
	rdb      *redis.Client
	logger   *zap.Logger
}

// NewReconcilerService 创建 ReconcilerService 实例
func NewReconcilerService(
	cfg *config.AttendanceConfig,
	repo *repository.Repository,
	resolver ScheduleResolver,
	seatGrid SeatGridService,
	hub *stream.Hub,
	rdb *redis.Client,
	logger *zap.Logger,
) ReconcilerService {
	return &reconcilerService{
		cfg:      cfg,
		repo:     repo,
		resolver: resolver,
		seatGrid: seatGrid,
		hub:      hub,
		rdb:      rdb,
		logger:   logger,
	}
}

// ────────────────────── HandleRFIDTap ──────────────────────

func (s *reconcilerService) HandleRFIDTap(ctx context.Context, req *dto.RFIDTapRequest) (*dto.AttendanceRecordResponse, error) {
	date, err := time.ParseInLocation("2006-01-02", req.Date, time.Local)
	if err != nil {
		return nil, fmt.Errorf("日期格式无效: %w", err)
	}

	// 去重短路：通道是 at-least-once，重复投递直接返回现状
	// Redis 不可用时跳过（补丁本身幂等，去重只是省一次写）
	dedupKey := fmt.Sprintf("rfid:%s:%s:%s:%d", req.StudentID, req.SectionID, req.Date, req.Time.Unix())
	if !s.markFirstSeen(ctx, dedupKey) {
		rec, err := s.repo.Attendance.GetByKey(ctx, req.StudentID, req.SectionID, date)
		if err == nil {
			return toAttendanceResponse(rec), nil
		}
	}

	if _, err := s.repo.Student.GetByID(ctx, req.StudentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	// 判定归 RFID：宽限期内 present，否则 late
	schedule, err := s.resolver.Resolve(ctx, req.SectionID, date)
	if err != nil {
		return nil, err
	}

	status := model.StatusPresent
	if s.resolver.IsLate(schedule, req.Time) {
		status = model.StatusLate
	}

	tapTime := req.Time
	rec := &model.AttendanceRecord{
		StudentID:         req.StudentID,
		SectionID:         req.SectionID,
		Date:              date,
		SubjectID:         &schedule.SubjectID,
		RoomID:            &schedule.RoomID,
		Status:            status,
		RFIDAuthenticated: true,
		Timestamp:         &tapTime,
	}

	if err := s.repo.Attendance.UpsertRFIDTap(ctx, rec); err != nil {
		s.logger.Error("RFID 信号落库失败",
			zap.String("student_id", req.StudentID),
			zap.String("section_id", req.SectionID),
			zap.Error(err),
		)
		return nil, err
	}

	// 点亮座位网格的 RFID 位（没有分配座位则静默跳过）
	if err := s.seatGrid.ConfirmStudentSeat(ctx, schedule.RoomID, req.StudentID, true, req.Time); err != nil {
		s.logger.Warn("座位 RFID 确认失败",
			zap.String("student_id", req.StudentID),
			zap.String("room_id", schedule.RoomID),
			zap.Error(err),
		)
	}

	return s.reloadAndPublish(ctx, req.StudentID, req.SectionID, date)
}

// ────────────────────── AttributeWeight ──────────────────────

func (s *reconcilerService) AttributeWeight(ctx context.Context, seat *model.Seat, at time.Time) (*dto.AttendanceRecordResponse, error) {
	if seat.StudentID == nil {
		return nil, nil
	}

	schedule, err := s.resolver.ResolveByRoom(ctx, seat.RoomID, at)
	if err != nil {
		if errors.Is(err, ErrScheduleNotFound) {
			// 当下没有排课：信号只影响网格
			return nil, nil
		}
		return nil, err
	}

	date := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, at.Location())

	dedupKey := fmt.Sprintf("weight:%s:%s:%s:%d", *seat.StudentID, schedule.SectionID, date.Format("2006-01-02"), at.Unix())
	if !s.markFirstSeen(ctx, dedupKey) {
		rec, err := s.repo.Attendance.GetByKey(ctx, *seat.StudentID, schedule.SectionID, date)
		if err == nil {
			return toAttendanceResponse(rec), nil
		}
	}

	sigTime := at
	rec := &model.AttendanceRecord{
		StudentID:           *seat.StudentID,
		SectionID:           schedule.SectionID,
		Date:                date,
		SubjectID:           &schedule.SubjectID,
		RoomID:              &schedule.RoomID,
		Status:              model.StatusAbsent, // 重量不判定状态，仅在建档时落默认值
		WeightAuthenticated: true,
		Timestamp:           &sigTime,
	}

	if err := s.repo.Attendance.UpsertWeight(ctx, rec); err != nil {
		s.logger.Error("重量信号落库失败",
			zap.String("student_id", *seat.StudentID),
			zap.String("section_id", schedule.SectionID),
			zap.Error(err),
		)
		return nil, err
	}

	return s.reloadAndPublish(ctx, *seat.StudentID, schedule.SectionID, date)
}

// ────────────────────── CreateManual ──────────────────────

func (s *reconcilerService) CreateManual(ctx context.Context, req *dto.CreateAttendanceRequest, operatorID string) (*dto.AttendanceRecordResponse, error) {
	status := model.AttendanceStatus(req.Status)
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	date, err := time.ParseInLocation("2006-01-02", req.Date, time.Local)
	if err != nil {
		return nil, fmt.Errorf("日期格式无效: %w", err)
	}

	if _, err := s.repo.Student.GetByID(ctx, req.StudentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	rec := &model.AttendanceRecord{
		StudentID:   req.StudentID,
		SectionID:   req.SectionID,
		Date:        date,
		Status:      status,
		SubmittedBy: &operatorID,
	}
	if schedule, err := s.resolver.Resolve(ctx, req.SectionID, date); err == nil {
		rec.SubjectID = &schedule.SubjectID
		rec.RoomID = &schedule.RoomID
	}

	// 同键已有记录时退化为改判，维持"每键最多一条"
	if err := s.repo.Attendance.UpsertManual(ctx, rec); err != nil {
		s.logger.Error("手动建档失败", zap.Error(err))
		return nil, err
	}

	return s.reloadAndPublish(ctx, req.StudentID, req.SectionID, date)
}

// ────────────────────── EditStatus ──────────────────────

func (s *reconcilerService) EditStatus(ctx context.Context, id string, status model.AttendanceStatus, operatorID string) (*dto.AttendanceRecordResponse, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	existing, err := s.repo.Attendance.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	// 手动改判覆盖传感器判定时留痕（后写覆盖先写，不做冲突检测）
	if existing.RFIDAuthenticated && existing.Status != status {
		s.logger.Warn("手动改判覆盖传感器判定",
			zap.String("record_id", id),
			zap.String("old_status", string(existing.Status)),
			zap.String("new_status", string(status)),
			zap.String("operator_id", operatorID),
		)
	}

	if err := s.repo.Attendance.UpdateStatus(ctx, id, status, operatorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		s.logger.Error("手动改判失败", zap.String("record_id", id), zap.Error(err))
		return nil, err
	}

	return s.reloadAndPublish(ctx, existing.StudentID, existing.SectionID, existing.Date)
}

// ────────────────────── Delete ──────────────────────

func (s *reconcilerService) Delete(ctx context.Context, id string, operatorID string) error {
	existing, err := s.repo.Attendance.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRecordNotFound
		}
		return err
	}

	if err := s.repo.Attendance.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRecordNotFound
		}
		s.logger.Error("删除考勤记录失败", zap.String("record_id", id), zap.Error(err))
		return err
	}

	s.logger.Info("考勤记录已删除",
		zap.String("record_id", id),
		zap.String("operator_id", operatorID),
	)

	s.hub.Publish(SectionTopic(existing.SectionID), stream.Event{
		Kind:    "delete",
		Payload: toAttendanceResponse(existing),
	})
	return nil
}

// ────────────────────── List / Snapshot ──────────────────────

func (s *reconcilerService) List(ctx context.Context, req *dto.AttendanceListRequest) ([]dto.AttendanceRecordResponse, error) {
	var (
		recs []model.AttendanceRecord
		err  error
	)
	if req.Date != "" {
		var date time.Time
		date, err = time.ParseInLocation("2006-01-02", req.Date, time.Local)
		if err != nil {
			return nil, fmt.Errorf("日期格式无效: %w", err)
		}
		recs, err = s.repo.Attendance.ListBySectionAndDate(ctx, req.SectionID, date)
	} else {
		recs, err = s.repo.Attendance.ListBySection(ctx, req.SectionID)
	}
	if err != nil {
		s.logger.Error("查询考勤记录失败", zap.String("section_id", req.SectionID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.AttendanceRecordResponse, 0, len(recs))
	for i := range recs {
		result = append(result, *toAttendanceResponse(&recs[i]))
	}
	return result, nil
}

func (s *reconcilerService) Snapshot(ctx context.Context, sectionID string) ([]dto.AttendanceRecordResponse, error) {
	return s.List(ctx, &dto.AttendanceListRequest{SectionID: sectionID})
}

// ────────────────────── FinalizeEnded ──────────────────────

func (s *reconcilerService) FinalizeEnded(ctx context.Context, now time.Time) (int, error) {
	candidates, err := s.repo.Attendance.ListNeverTappedBefore(ctx, now)
	if err != nil {
		return 0, err
	}

	finalized := 0
	for i := range candidates {
		rec := &candidates[i]
		// 手动判定优先于清扫
		if rec.SubmittedBy != nil {
			continue
		}
		if !s.resolver.HasEnded(ctx, rec, now) {
			continue
		}
		if err := s.repo.Attendance.MarkAbsent(ctx, rec.RecordID); err != nil {
			// 单条失败只影响该 key，继续处理其余记录
			s.logger.Warn("结课清扫单条失败",
				zap.String("record_id", rec.RecordID),
				zap.Error(err),
			)
			continue
		}
		finalized++
		if _, err := s.reloadAndPublish(ctx, rec.StudentID, rec.SectionID, rec.Date); err != nil {
			s.logger.Warn("结课清扫推送失败", zap.String("record_id", rec.RecordID), zap.Error(err))
		}
	}

	if finalized > 0 {
		s.logger.Info("结课清扫完成", zap.Int("finalized", finalized))
	}
	return finalized, nil
}

// ── 内部辅助方法 ──

// markFirstSeen 返回 true 表示该事件键首次出现；Redis 不可用时放行
func (s *reconcilerService) markFirstSeen(ctx context.Context, key string) bool {
	if s.rdb == nil {
		return true
	}
	first, err := s.rdb.MarkSeen(ctx, key, s.cfg.DedupTTL)
	if err != nil {
		s.logger.Warn("信号去重检查失败，按首次处理", zap.Error(err))
		return true
	}
	return first
}

func (s *reconcilerService) reloadAndPublish(ctx context.Context, studentID, sectionID string, date time.Time) (*dto.AttendanceRecordResponse, error) {
	rec, err := s.repo.Attendance.GetByKey(ctx, studentID, sectionID, date)
	if err != nil {
		return nil, err
	}
	resp := toAttendanceResponse(rec)
	s.hub.Publish(SectionTopic(sectionID), stream.Event{Kind: "upsert", Payload: resp})
	return resp, nil
}

func toAttendanceResponse(rec *model.AttendanceRecord) *dto.AttendanceRecordResponse {
	resp := &dto.AttendanceRecordResponse{
		RecordID:            rec.RecordID,
		StudentID:           rec.StudentID,
		SectionID:           rec.SectionID,
		Date:                rec.Date.Format("2006-01-02"),
		SubjectID:           rec.SubjectID,
		RoomID:              rec.RoomID,
		Status:              string(rec.Status),
		RFIDAuthenticated:   rec.RFIDAuthenticated,
		WeightAuthenticated: rec.WeightAuthenticated,
		Confirmed:           rec.Confirmed,
		Timestamp:           rec.Timestamp,
		SubmittedBy:         rec.SubmittedBy,
	}
	if rec.Student != nil {
		resp.StudentName = rec.Student.FullName
	}
	return resp
}
