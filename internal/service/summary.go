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
)

// SummaryService 考勤汇总业务接口
//
// 读取已结课记录并按周/月窗口计数；结果只依赖记录快照与 now，
// 与遍历顺序无关。未结课的记录两个窗口都不计入（既不算 absent 也不算待定）。
// 从未收到任何信号的上课日没有记录行，按课表周期推算补记缺勤
type SummaryService interface {
	Summarize(ctx context.Context, studentID, sectionID string, now time.Time) (*dto.AttendanceSummaryResponse, error)
}

type summaryService struct {
	repo     *repository.Repository
	resolver ScheduleResolver
	logger   *zap.Logger
}

// NewSummaryService 创建 SummaryService 实例
func NewSummaryService(repo *repository.Repository, resolver ScheduleResolver, logger *zap.Logger) SummaryService {
	return &summaryService{repo: repo, resolver: resolver, logger: logger}
}

// ────────────────────── Summarize ──────────────────────

func (s *summaryService) Summarize(ctx context.Context, studentID, sectionID string, now time.Time) (*dto.AttendanceSummaryResponse, error) {
	if _, err := s.repo.Student.GetByID(ctx, studentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	recs, err := s.repo.Attendance.ListByStudentAndSection(ctx, studentID, sectionID)
	if err != nil {
		s.logger.Error("查询考勤记录失败",
			zap.String("student_id", studentID),
			zap.String("section_id", sectionID),
			zap.Error(err),
		)
		return nil, err
	}

	weekStart := WeekStart(now)
	monthStart := MonthStart(now)

	summary := &dto.AttendanceSummaryResponse{
		StudentID: studentID,
		SectionID: sectionID,
	}

	recorded := make(map[string]struct{}, len(recs))
	for i := range recs {
		rec := &recs[i]
		recorded[rec.Date.Format("2006-01-02")] = struct{}{}

		// 硬性门槛：未结课的记录完全排除
		if !s.resolver.HasEnded(ctx, rec, now) {
			continue
		}

		status := effectiveStatus(rec)

		if !rec.Date.Before(weekStart) {
			count(&summary.Weekly, status)
		}
		if !rec.Date.Before(monthStart) {
			count(&summary.Monthly, status)
		}
	}

	if err := s.countMissedSessions(ctx, sectionID, recorded, weekStart, monthStart, now, summary); err != nil {
		return nil, err
	}

	return summary, nil
}

// countMissedSessions 补记从未收到任何信号的上课日。
// 该键没有记录行，按课表周期推算窗口内的上课日，已结课且无记录的计为缺勤
func (s *summaryService) countMissedSessions(ctx context.Context, sectionID string, recorded map[string]struct{}, weekStart, monthStart, now time.Time, summary *dto.AttendanceSummaryResponse) error {
	schedules, err := s.repo.Schedule.ListBySection(ctx, sectionID)
	if err != nil {
		s.logger.Error("查询班级课表失败",
			zap.String("section_id", sectionID),
			zap.Error(err),
		)
		return err
	}
	if len(schedules) == 0 {
		return nil
	}

	byDay := make(map[int][]*model.Schedule)
	for i := range schedules {
		byDay[schedules[i].DayOfWeek] = append(byDay[schedules[i].DayOfWeek], &schedules[i])
	}

	// 周起点（最近周日）可能早于月初，扫描取两者中更早的
	scanStart := monthStart
	if weekStart.Before(scanStart) {
		scanStart = weekStart
	}

	for d := scanStart; !d.After(now); d = d.AddDate(0, 0, 1) {
		if _, ok := recorded[d.Format("2006-01-02")]; ok {
			continue
		}

		ended := false
		for _, sch := range byDay[int(d.Weekday())] {
			_, end, err := sessionWindow(sch, d)
			if err != nil {
				continue
			}
			if !now.Before(end) {
				ended = true
				break
			}
		}
		if !ended {
			continue
		}

		if !d.Before(weekStart) {
			count(&summary.Weekly, model.StatusAbsent)
		}
		if !d.Before(monthStart) {
			count(&summary.Monthly, model.StatusAbsent)
		}
	}

	return nil
}

// ── 内部辅助方法 ──

// effectiveStatus 懒结课判定：结课前从未刷卡且无手动判定的记录视为缺勤，
// 即便收到过重量信号（状态归 RFID，重量只参与确认）
func effectiveStatus(rec *model.AttendanceRecord) model.AttendanceStatus {
	if !rec.RFIDAuthenticated && rec.SubmittedBy == nil {
		return model.StatusAbsent
	}
	return rec.Status
}

func count(c *dto.StatusCounts, status model.AttendanceStatus) {
	switch status {
	case model.StatusPresent:
		c.Present++
	case model.StatusLate:
		c.Late++
	case model.StatusAbsent:
		c.Absent++
	}
}

// WeekStart 本周起点：最近一个周日 00:00
func WeekStart(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day()-int(now.Weekday()), 0, 0, 0, 0, now.Location())
}

// MonthStart 本月起点：当月 1 日 00:00
func MonthStart(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
}
