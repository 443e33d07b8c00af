package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Markishime/smart-ecolock-sub003/config"
	"github.com/Markishime/smart-ecolock-sub003/internal/model"
	"github.com/Markishime/smart-ecolock-sub003/internal/repository"
)

// ── 课表解析模块业务错误 ──

var (
	ErrScheduleNotFound  = errors.New("未找到匹配的课表条目")
	ErrDuplicateSchedule = errors.New("同一班级/星期存在多条课表条目")
)

// ScheduleResolver 课表解析业务接口（纯查询，无状态）
type ScheduleResolver interface {
	// Resolve 按班级与日历日期解析当天课表条目
	// 命中多条时按 duplicate_schedule_policy 处理，并一律记录数据质量告警
	Resolve(ctx context.Context, sectionID string, date time.Time) (*model.Schedule, error)
	// ResolveByRoom 按教室与时刻解析正在进行（含宽限提前量）的课表条目
	ResolveByRoom(ctx context.Context, roomID string, at time.Time) (*model.Schedule, error)
	// HasEnded 判断记录对应课次是否已结束；无课表匹配时返回 false（无法结课）
	HasEnded(ctx context.Context, rec *model.AttendanceRecord, now time.Time) bool
	// IsLate 刷卡时间超出开课宽限期则为迟到
	IsLate(schedule *model.Schedule, signalTime time.Time) bool
}

type scheduleResolver struct {
	repo   *repository.Repository
	cfg    *config.AttendanceConfig
	logger *zap.Logger
}

// NewScheduleResolver 创建 ScheduleResolver 实例
func NewScheduleResolver(cfg *config.AttendanceConfig, repo *repository.Repository, logger *zap.Logger) ScheduleResolver {
	return &scheduleResolver{repo: repo, cfg: cfg, logger: logger}
}

// ────────────────────── Resolve ──────────────────────

func (s *scheduleResolver) Resolve(ctx context.Context, sectionID string, date time.Time) (*model.Schedule, error) {
	day := int(date.Weekday())

	schedules, err := s.repo.Schedule.ListBySectionAndDay(ctx, sectionID, day)
	if err != nil {
		return nil, err
	}
	if len(schedules) == 0 {
		return nil, ErrScheduleNotFound
	}

	if len(schedules) > 1 {
		// 数据质量问题：课表目录中存在重复条目，无论采用哪种策略都要留痕
		s.logger.Warn("课表目录存在重复条目",
			zap.String("section_id", sectionID),
			zap.Int("day_of_week", day),
			zap.Int("count", len(schedules)),
			zap.String("policy", s.cfg.DuplicateSchedulePolicy),
		)
		if s.cfg.DuplicateSchedulePolicy == "reject" {
			return nil, ErrDuplicateSchedule
		}
	}

	return &schedules[0], nil
}

// ────────────────────── ResolveByRoom ──────────────────────

func (s *scheduleResolver) ResolveByRoom(ctx context.Context, roomID string, at time.Time) (*model.Schedule, error) {
	day := int(at.Weekday())

	schedules, err := s.repo.Schedule.ListByRoomAndDay(ctx, roomID, day)
	if err != nil {
		return nil, err
	}

	// 学生可能提前落座，开课前一个宽限期内的重量信号也归入当节课
	grace := s.cfg.GraceWindow()
	for i := range schedules {
		start, end, err := sessionWindow(&schedules[i], at)
		if err != nil {
			s.logger.Warn("课表时间格式无效",
				zap.String("schedule_id", schedules[i].ScheduleID),
				zap.Error(err),
			)
			continue
		}
		if !at.Before(start.Add(-grace)) && at.Before(end) {
			return &schedules[i], nil
		}
	}

	return nil, ErrScheduleNotFound
}

// ────────────────────── HasEnded ──────────────────────

func (s *scheduleResolver) HasEnded(ctx context.Context, rec *model.AttendanceRecord, now time.Time) bool {
	schedule, err := s.Resolve(ctx, rec.SectionID, rec.Date)
	if err != nil {
		// 无课表的记录永远无法结课，留在当前状态
		return false
	}

	_, end, err := sessionWindow(schedule, rec.Date)
	if err != nil {
		s.logger.Warn("课表时间格式无效",
			zap.String("schedule_id", schedule.ScheduleID),
			zap.Error(err),
		)
		return false
	}

	return !now.Before(end)
}

// ────────────────────── IsLate ──────────────────────

func (s *scheduleResolver) IsLate(schedule *model.Schedule, signalTime time.Time) bool {
	start, _, err := sessionWindow(schedule, signalTime)
	if err != nil {
		return false
	}
	return signalTime.After(start.Add(s.cfg.GraceWindow()))
}

// ── 内部辅助方法 ──

// sessionWindow 把课表的 HH:MM 起止时间套到 day 所在日历日上
func sessionWindow(schedule *model.Schedule, day time.Time) (time.Time, time.Time, error) {
	start, err := applyClock(day, schedule.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := applyClock(day, schedule.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// applyClock 将 HH:MM（或数据库 TIME 的 HH:MM:SS）套到指定日期
func applyClock(day time.Time, clock string) (time.Time, error) {
	t, err := time.Parse("15:04:05", clock)
	if err != nil {
		t, err = time.Parse("15:04", clock)
		if err != nil {
			return time.Time{}, fmt.Errorf("时间格式无效 %q: %w", clock, err)
		}
	}
	return time.Date(day.Year(), day.Month(), day.Day(),
		t.Hour(), t.Minute(), t.Second(), 0, day.Location()), nil
}
