package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Markishime/smart-ecolock-sub003/internal/dto"
	"github.com/Markishime/smart-ecolock-sub003/internal/model"
	"github.com/Markishime/smart-ecolock-sub003/internal/repository"
)

// ── 课表导入模块业务错误 ──

var (
	ErrICSInvalid = errors.New("ICS 格式解析失败")
	ErrICSEmpty   = errors.New("ICS 中没有可导入的课表条目")
)

// ScheduleLoaderService 课表 ICS 导入业务接口
//
// 课表归外部目录系统所有；导入只是它的初始化通道，解析标准 iCalendar
// (RFC 5545) 并落成 schedules 参考数据。约定：
//   - SUMMARY     → 科目代码
//   - DESCRIPTION → 班级名称
//   - LOCATION    → 教室名称
//   - DTSTART/DTEND → 星期几与起止时间
//
// 引用了目录中不存在的科目/班级/教室的事件跳过并记入 warnings
type ScheduleLoaderService interface {
	ImportICS(ctx context.Context, reader io.Reader) (*dto.ScheduleImportResponse, error)
}

type scheduleLoaderService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewScheduleLoaderService 创建 ScheduleLoaderService 实例
func NewScheduleLoaderService(repo *repository.Repository, logger *zap.Logger) ScheduleLoaderService {
	return &scheduleLoaderService{repo: repo, logger: logger}
}

// ────────────────────── ImportICS ──────────────────────

func (s *scheduleLoaderService) ImportICS(ctx context.Context, reader io.Reader) (*dto.ScheduleImportResponse, error) {
	cal, err := ics.ParseCalendar(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrICSInvalid, err)
	}

	resp := &dto.ScheduleImportResponse{}
	var schedules []model.Schedule

	for _, evt := range cal.Events() {
		schedule, warn := s.parseVEvent(ctx, evt)
		if warn != "" {
			resp.Skipped++
			resp.Warnings = append(resp.Warnings, warn)
			continue
		}
		schedules = append(schedules, *schedule)
	}

	if len(schedules) == 0 {
		return nil, ErrICSEmpty
	}

	if err := s.repo.Schedule.BatchCreate(ctx, schedules); err != nil {
		s.logger.Error("课表导入落库失败", zap.Error(err))
		return nil, err
	}

	resp.Imported = len(schedules)
	s.logger.Info("课表导入完成",
		zap.Int("imported", resp.Imported),
		zap.Int("skipped", resp.Skipped),
	)
	return resp, nil
}

// ── 内部辅助方法 ──

// parseVEvent 解析单个 VEVENT；返回非空 warn 表示该条目被跳过
func (s *scheduleLoaderService) parseVEvent(ctx context.Context, evt *ics.VEvent) (*model.Schedule, string) {
	summary := evt.GetProperty(ics.ComponentPropertySummary)
	if summary == nil || strings.TrimSpace(summary.Value) == "" {
		return nil, "事件缺少 SUMMARY（科目代码）"
	}
	subjectCode := strings.TrimSpace(summary.Value)

	description := evt.GetProperty(ics.ComponentPropertyDescription)
	if description == nil || strings.TrimSpace(description.Value) == "" {
		return nil, fmt.Sprintf("%s: 事件缺少 DESCRIPTION（班级名称）", subjectCode)
	}
	sectionName := strings.TrimSpace(description.Value)

	location := evt.GetProperty(ics.ComponentPropertyLocation)
	if location == nil || strings.TrimSpace(location.Value) == "" {
		return nil, fmt.Sprintf("%s: 事件缺少 LOCATION（教室名称）", subjectCode)
	}
	roomName := strings.TrimSpace(location.Value)

	dtStart, err := evt.GetStartAt()
	if err != nil {
		return nil, fmt.Sprintf("%s: DTSTART 无效", subjectCode)
	}
	dtEnd, err := evt.GetEndAt()
	if err != nil {
		// 无 DTEND 时按一节课 1 小时处理
		dtEnd = dtStart.Add(time.Hour)
	}

	subject, err := s.repo.Subject.GetByCode(ctx, subjectCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Sprintf("科目 %q 不在目录中", subjectCode)
		}
		return nil, fmt.Sprintf("科目 %q 查询失败", subjectCode)
	}

	section, err := s.repo.Section.GetByName(ctx, sectionName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Sprintf("班级 %q 不在目录中", sectionName)
		}
		return nil, fmt.Sprintf("班级 %q 查询失败", sectionName)
	}

	room, err := s.repo.Room.GetByName(ctx, roomName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Sprintf("教室 %q 不在目录中", roomName)
		}
		return nil, fmt.Sprintf("教室 %q 查询失败", roomName)
	}

	return &model.Schedule{
		SectionID: section.SectionID,
		SubjectID: subject.SubjectID,
		RoomID:    room.RoomID,
		DayOfWeek: int(dtStart.Weekday()),
		StartTime: dtStart.Format("15:04"),
		EndTime:   dtEnd.Format("15:04"),
	}, ""
}
