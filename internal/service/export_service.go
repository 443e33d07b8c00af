package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Markishime/smart-ecolock-sub003/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoRecords    = errors.New("该班级暂无考勤记录")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 考勤汇总导出业务接口
//
// 设计说明：
//   - 以班级为单位导出周/月汇总表 (.xlsx)
//   - 行 = 学生，列 = 姓名 / 学号 / 班级 / 科目 / 周 present-late-absent / 月 present-late-absent
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportSectionSummary 导出某班级全体学生的考勤汇总
	ExportSectionSummary(ctx context.Context, sectionID string, now time.Time) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo    *repository.Repository
	summary SummaryService
	logger  *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, summary SummaryService, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, summary: summary, logger: logger}
}

// ────────────────────── ExportSectionSummary ──────────────────────

func (s *exportService) ExportSectionSummary(ctx context.Context, sectionID string, now time.Time) (*bytes.Buffer, string, error) {
	section, err := s.repo.Section.GetByID(ctx, sectionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrSectionNotFound
		}
		return nil, "", err
	}

	recs, err := s.repo.Attendance.ListBySection(ctx, sectionID)
	if err != nil {
		s.logger.Error("查询考勤记录失败", zap.String("section_id", sectionID), zap.Error(err))
		return nil, "", err
	}
	if len(recs) == 0 {
		return nil, "", ErrExportNoRecords
	}

	// 去重出现过的学生与科目
	studentIDs := make(map[string]struct{})
	subjectID := ""
	for i := range recs {
		studentIDs[recs[i].StudentID] = struct{}{}
		if subjectID == "" && recs[i].SubjectID != nil {
			subjectID = *recs[i].SubjectID
		}
	}

	subjectCode := ""
	if subjectID != "" {
		if subject, err := s.repo.Subject.GetByID(ctx, subjectID); err == nil {
			subjectCode = subject.Code
		}
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	headers := []string{
		"Student Name", "ID Number", "Section", "Subject",
		"Weekly Present", "Weekly Late", "Weekly Absent",
		"Monthly Present", "Monthly Late", "Monthly Absent",
	}
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, "", ErrExportGenerateFail
		}
	}

	ids := make([]string, 0, len(studentIDs))
	for id := range studentIDs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	row := 2
	for _, studentID := range ids {
		student, err := s.repo.Student.GetByID(ctx, studentID)
		if err != nil {
			// 目录里查不到的学生跳过该行，不中断整表导出
			s.logger.Warn("导出时学生目录缺失", zap.String("student_id", studentID))
			continue
		}

		sum, err := s.summary.Summarize(ctx, studentID, sectionID, now)
		if err != nil {
			s.logger.Warn("导出时汇总失败", zap.String("student_id", studentID), zap.Error(err))
			continue
		}

		values := []interface{}{
			student.FullName, student.IDNumber, section.Name, subjectCode,
			sum.Weekly.Present, sum.Weekly.Late, sum.Weekly.Absent,
			sum.Monthly.Present, sum.Monthly.Late, sum.Monthly.Absent,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, "", ErrExportGenerateFail
			}
		}
		row++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.logger.Error("写出 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("attendance_%s_%s.xlsx", section.Name, now.Format("20060102"))
	return buf, filename, nil
}
