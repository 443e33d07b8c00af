package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Markishime/smart-ecolock-sub003/internal/dto"
	"github.com/Markishime/smart-ecolock-sub003/internal/model"
	"github.com/Markishime/smart-ecolock-sub003/internal/repository"
	"github.com/Markishime/smart-ecolock-sub003/internal/stream"
)

// ── 座位模块业务错误 ──

var (
	ErrSeatNotFound = errors.New("座位不存在")
)

// SeatGridService 座位实时占用业务接口
//
// 座位网格只是实时物理视图：不判定 present/late/absent，也不进入汇总；
// 每次变更都推送到 room:<id> 主题
type SeatGridService interface {
	List(ctx context.Context, req *dto.SeatListRequest) ([]dto.SeatResponse, error)
	// Snapshot 订阅接入时的全量快照，与 List 同源
	Snapshot(ctx context.Context, roomID string) ([]dto.SeatResponse, error)
	// Assign 变更座位静态分配；两个实时布尔位清零
	Assign(ctx context.Context, seatID string, studentID *string, operatorID string) (*dto.SeatResponse, error)
	// OnWeightSignal 重量传感器信号；返回座位实体供考勤归因使用
	OnWeightSignal(ctx context.Context, req *dto.WeightSignalRequest) (*model.Seat, error)
	// ConfirmStudentSeat 学生刷卡后点亮其在该教室座位的 RFID 位
	ConfirmStudentSeat(ctx context.Context, roomID, studentID string, confirmed bool, at time.Time) error
	// ResetRoom 新课次开始，整间教室实时布尔位清零
	ResetRoom(ctx context.Context, roomID string, at time.Time) error
}

type seatGridService struct {
	repo   *repository.Repository
	hub    *stream.Hub
	logger *zap.Logger
}

// NewSeatGridService 创建 SeatGridService 实例
func NewSeatGridService(repo *repository.Repository, hub *stream.Hub, logger *zap.Logger) SeatGridService {
	return &seatGridService{repo: repo, hub: hub, logger: logger}
}

// ────────────────────── List / Snapshot ──────────────────────

func (s *seatGridService) List(ctx context.Context, req *dto.SeatListRequest) ([]dto.SeatResponse, error) {
	return s.Snapshot(ctx, req.RoomID)
}

func (s *seatGridService) Snapshot(ctx context.Context, roomID string) ([]dto.SeatResponse, error) {
	if _, err := s.repo.Room.GetByID(ctx, roomID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		s.logger.Error("查询教室失败", zap.String("room_id", roomID), zap.Error(err))
		return nil, err
	}

	seats, err := s.repo.Seat.ListByRoom(ctx, roomID)
	if err != nil {
		s.logger.Error("查询座位失败", zap.String("room_id", roomID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.SeatResponse, 0, len(seats))
	for i := range seats {
		result = append(result, *toSeatResponse(&seats[i]))
	}
	return result, nil
}

// ────────────────────── Assign ──────────────────────

func (s *seatGridService) Assign(ctx context.Context, seatID string, studentID *string, operatorID string) (*dto.SeatResponse, error) {
	if studentID != nil {
		if _, err := s.repo.Student.GetByID(ctx, *studentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrStudentNotFound
			}
			return nil, err
		}
	}

	if err := s.repo.Seat.Assign(ctx, seatID, studentID, time.Now()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSeatNotFound
		}
		s.logger.Error("座位分配失败", zap.String("seat_id", seatID), zap.Error(err))
		return nil, err
	}

	seat, err := s.repo.Seat.GetByID(ctx, seatID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("座位分配已变更",
		zap.String("seat_id", seatID),
		zap.String("operator_id", operatorID),
	)

	resp := toSeatResponse(seat)
	s.publish(seat.RoomID, resp)
	return resp, nil
}

// ────────────────────── OnWeightSignal ──────────────────────

func (s *seatGridService) OnWeightSignal(ctx context.Context, req *dto.WeightSignalRequest) (*model.Seat, error) {
	if err := s.repo.Seat.PatchWeight(ctx, req.SeatID, *req.Present, req.Time); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSeatNotFound
		}
		s.logger.Error("座位重量状态更新失败", zap.String("seat_id", req.SeatID), zap.Error(err))
		return nil, err
	}

	seat, err := s.repo.Seat.GetByID(ctx, req.SeatID)
	if err != nil {
		return nil, err
	}

	s.publish(seat.RoomID, toSeatResponse(seat))
	return seat, nil
}

// ────────────────────── ConfirmStudentSeat ──────────────────────

func (s *seatGridService) ConfirmStudentSeat(ctx context.Context, roomID, studentID string, confirmed bool, at time.Time) error {
	seat, err := s.repo.Seat.GetByRoomAndStudent(ctx, roomID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 学生在该教室没有分配座位，网格无需变化
			return nil
		}
		return err
	}

	if err := s.repo.Seat.PatchRFID(ctx, seat.SeatID, confirmed, at); err != nil {
		return err
	}

	updated, err := s.repo.Seat.GetByID(ctx, seat.SeatID)
	if err != nil {
		return err
	}

	s.publish(updated.RoomID, toSeatResponse(updated))
	return nil
}

// ────────────────────── ResetRoom ──────────────────────

func (s *seatGridService) ResetRoom(ctx context.Context, roomID string, at time.Time) error {
	if _, err := s.repo.Room.GetByID(ctx, roomID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRoomNotFound
		}
		return err
	}

	if err := s.repo.Seat.ResetRoom(ctx, roomID, at); err != nil {
		s.logger.Error("教室座位状态清零失败", zap.String("room_id", roomID), zap.Error(err))
		return err
	}

	// 清零后推送整间教室的最新状态
	seats, err := s.repo.Seat.ListByRoom(ctx, roomID)
	if err != nil {
		return err
	}
	for i := range seats {
		s.publish(roomID, toSeatResponse(&seats[i]))
	}

	return nil
}

// ── 内部辅助方法 ──

func (s *seatGridService) publish(roomID string, resp *dto.SeatResponse) {
	s.hub.Publish(RoomTopic(roomID), stream.Event{Kind: "upsert", Payload: resp})
}

func toSeatResponse(seat *model.Seat) *dto.SeatResponse {
	resp := &dto.SeatResponse{
		SeatID:             seat.SeatID,
		RoomID:             seat.RoomID,
		Row:                seat.Row,
		Col:                seat.Col,
		StudentID:          seat.StudentID,
		WeightSensorStatus: seat.WeightSensorStatus,
		RFIDConfirmed:      seat.RFIDConfirmed,
		LastUpdated:        seat.LastUpdated,
	}
	if seat.Student != nil {
		resp.StudentName = seat.Student.FullName
	}
	return resp
}
