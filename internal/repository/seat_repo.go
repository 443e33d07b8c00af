package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Markishime/smart-ecolock-sub003/internal/model"
)

// SeatRepository 座位实时状态数据访问接口
// 传感器补丁只触碰自己的列，同一座位并发 RFID/重量 更新互不丢失
type SeatRepository interface {
	GetByID(ctx context.Context, id string) (*model.Seat, error)
	GetByPosition(ctx context.Context, roomID string, row, col int) (*model.Seat, error)
	GetByRoomAndStudent(ctx context.Context, roomID, studentID string) (*model.Seat, error)
	ListByRoom(ctx context.Context, roomID string) ([]model.Seat, error)
	// Assign 变更静态分配并清零两个实时布尔位（避免把前任占用者的状态记到新人头上）
	Assign(ctx context.Context, id string, studentID *string, at time.Time) error
	PatchWeight(ctx context.Context, id string, present bool, at time.Time) error
	PatchRFID(ctx context.Context, id string, confirmed bool, at time.Time) error
	// ResetRoom 新课次开始时清零整间教室的实时布尔位
	ResetRoom(ctx context.Context, roomID string, at time.Time) error
}

type seatRepo struct {
	db *gorm.DB
}

func NewSeatRepo(db *gorm.DB) SeatRepository {
	return &seatRepo{db: db}
}

func (r *seatRepo) GetByID(ctx context.Context, id string) (*model.Seat, error) {
	var seat model.Seat
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("seat_id = ?", id).
		First(&seat).Error
	if err != nil {
		return nil, err
	}
	return &seat, nil
}

func (r *seatRepo) GetByPosition(ctx context.Context, roomID string, row, col int) (*model.Seat, error) {
	var seat model.Seat
	err := r.db.WithContext(ctx).
		Where(`room_id = ? AND "row" = ? AND col = ?`, roomID, row, col).
		First(&seat).Error
	if err != nil {
		return nil, err
	}
	return &seat, nil
}

func (r *seatRepo) GetByRoomAndStudent(ctx context.Context, roomID, studentID string) (*model.Seat, error) {
	var seat model.Seat
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND student_id = ?", roomID, studentID).
		First(&seat).Error
	if err != nil {
		return nil, err
	}
	return &seat, nil
}

func (r *seatRepo) ListByRoom(ctx context.Context, roomID string) ([]model.Seat, error) {
	var seats []model.Seat
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("room_id = ?", roomID).
		Order(`"row" ASC, col ASC`).
		Find(&seats).Error
	return seats, err
}

func (r *seatRepo) Assign(ctx context.Context, id string, studentID *string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&model.Seat{}).
		Where("seat_id = ?", id).
		Updates(map[string]interface{}{
			"student_id":           studentID,
			"weight_sensor_status": false,
			"rfid_confirmed":       false,
			"last_updated":         at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *seatRepo) PatchWeight(ctx context.Context, id string, present bool, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&model.Seat{}).
		Where("seat_id = ?", id).
		Updates(map[string]interface{}{
			"weight_sensor_status": present,
			"last_updated":         at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *seatRepo) PatchRFID(ctx context.Context, id string, confirmed bool, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&model.Seat{}).
		Where("seat_id = ?", id).
		Updates(map[string]interface{}{
			"rfid_confirmed": confirmed,
			"last_updated":   at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *seatRepo) ResetRoom(ctx context.Context, roomID string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.Seat{}).
		Where("room_id = ?", roomID).
		Updates(map[string]interface{}{
			"weight_sensor_status": false,
			"rfid_confirmed":       false,
			"last_updated":         at,
		}).Error
}
