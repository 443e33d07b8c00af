package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Markishime/smart-ecolock-sub003/internal/model"
)

// ScheduleRepository 课表参考数据访问接口
// 查询只读；BatchCreate 仅供 ICS 课表导入（外部目录的初始化通道）使用
type ScheduleRepository interface {
	GetByID(ctx context.Context, id string) (*model.Schedule, error)
	ListBySection(ctx context.Context, sectionID string) ([]model.Schedule, error)
	ListBySectionAndDay(ctx context.Context, sectionID string, dayOfWeek int) ([]model.Schedule, error)
	ListByRoomAndDay(ctx context.Context, roomID string, dayOfWeek int) ([]model.Schedule, error)
	BatchCreate(ctx context.Context, schedules []model.Schedule) error
}

type scheduleRepo struct {
	db *gorm.DB
}

func NewScheduleRepo(db *gorm.DB) ScheduleRepository {
	return &scheduleRepo{db: db}
}

func (r *scheduleRepo) GetByID(ctx context.Context, id string) (*model.Schedule, error) {
	var schedule model.Schedule
	err := r.db.WithContext(ctx).
		Preload("Section").
		Preload("Subject").
		Preload("Room").
		Where("schedule_id = ?", id).
		First(&schedule).Error
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (r *scheduleRepo) ListBySection(ctx context.Context, sectionID string) ([]model.Schedule, error) {
	var schedules []model.Schedule
	err := r.db.WithContext(ctx).
		Where("section_id = ?", sectionID).
		Order("day_of_week ASC, start_time ASC").
		Find(&schedules).Error
	return schedules, err
}

func (r *scheduleRepo) ListBySectionAndDay(ctx context.Context, sectionID string, dayOfWeek int) ([]model.Schedule, error) {
	var schedules []model.Schedule
	err := r.db.WithContext(ctx).
		Preload("Subject").
		Preload("Room").
		Where("section_id = ? AND day_of_week = ?", sectionID, dayOfWeek).
		Order("created_at ASC").
		Find(&schedules).Error
	return schedules, err
}

func (r *scheduleRepo) ListByRoomAndDay(ctx context.Context, roomID string, dayOfWeek int) ([]model.Schedule, error) {
	var schedules []model.Schedule
	err := r.db.WithContext(ctx).
		Preload("Subject").
		Preload("Section").
		Where("room_id = ? AND day_of_week = ?", roomID, dayOfWeek).
		Order("start_time ASC").
		Find(&schedules).Error
	return schedules, err
}

func (r *scheduleRepo) BatchCreate(ctx context.Context, schedules []model.Schedule) error {
	if len(schedules) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&schedules).Error
}
