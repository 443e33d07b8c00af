package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Markishime/smart-ecolock-sub003/internal/model"
)

// AttendanceRepository 考勤记录数据访问接口
//
// 同一 key 的读改写不假设应用层原子性：RFID 补丁与重量补丁各自只触碰
// 自己的列（ON CONFLICT 单语句完成），并发到达也不会互相丢更新
type AttendanceRepository interface {
	GetByID(ctx context.Context, id string) (*model.AttendanceRecord, error)
	GetByKey(ctx context.Context, studentID, sectionID string, date time.Time) (*model.AttendanceRecord, error)
	// UpsertRFIDTap 落记录并打 RFID 标志；status 仅在 RFID 尚未认证时生效
	UpsertRFIDTap(ctx context.Context, rec *model.AttendanceRecord) error
	// UpsertWeight 落记录并打重量标志；不触碰 status（状态归 RFID 判定）
	UpsertWeight(ctx context.Context, rec *model.AttendanceRecord) error
	// UpsertManual 手动建档：只写 status 与 submitted_by，不触碰认证标志
	UpsertManual(ctx context.Context, rec *model.AttendanceRecord) error
	// UpdateStatus 手动补签：只改 status 与 submitted_by，后写覆盖先写
	UpdateStatus(ctx context.Context, id string, status model.AttendanceStatus, operatorID string) error
	// MarkAbsent 结课清扫置缺勤：不触碰 submitted_by，保留手动归属为空
	MarkAbsent(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	ListBySection(ctx context.Context, sectionID string) ([]model.AttendanceRecord, error)
	ListBySectionAndDate(ctx context.Context, sectionID string, date time.Time) ([]model.AttendanceRecord, error)
	ListByStudentAndSection(ctx context.Context, studentID, sectionID string) ([]model.AttendanceRecord, error)
	ListNeverTappedBefore(ctx context.Context, cutoffDate time.Time) ([]model.AttendanceRecord, error)
}

type attendanceRepo struct {
	db *gorm.DB
}

func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

var attendanceKeyColumns = []clause.Column{
	{Name: "student_id"}, {Name: "section_id"}, {Name: "date"},
}

func (r *attendanceRepo) GetByID(ctx context.Context, id string) (*model.AttendanceRecord, error) {
	var rec model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Section").
		Where("record_id = ?", id).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *attendanceRepo) GetByKey(ctx context.Context, studentID, sectionID string, date time.Time) (*model.AttendanceRecord, error) {
	var rec model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND section_id = ? AND date = ?", studentID, sectionID, date.Format("2006-01-02")).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *attendanceRepo) UpsertRFIDTap(ctx context.Context, rec *model.AttendanceRecord) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: attendanceKeyColumns,
		DoUpdates: clause.Assignments(map[string]interface{}{
			"rfid_authenticated": true,
			// 重复投递或乱序到达时保持既有判定：status/timestamp 只认首个 RFID 信号
			"status":     gorm.Expr("CASE WHEN attendance_records.rfid_authenticated THEN attendance_records.status ELSE excluded.status END"),
			"timestamp":  gorm.Expr("COALESCE(attendance_records.timestamp, excluded.timestamp)"),
			"confirmed":  gorm.Expr("attendance_records.weight_authenticated"),
			"subject_id": gorm.Expr("COALESCE(attendance_records.subject_id, excluded.subject_id)"),
			"room_id":    gorm.Expr("COALESCE(attendance_records.room_id, excluded.room_id)"),
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(rec).Error
}

func (r *attendanceRepo) UpsertWeight(ctx context.Context, rec *model.AttendanceRecord) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: attendanceKeyColumns,
		DoUpdates: clause.Assignments(map[string]interface{}{
			"weight_authenticated": true,
			"timestamp":            gorm.Expr("COALESCE(attendance_records.timestamp, excluded.timestamp)"),
			"confirmed":            gorm.Expr("attendance_records.rfid_authenticated"),
			"subject_id":           gorm.Expr("COALESCE(attendance_records.subject_id, excluded.subject_id)"),
			"room_id":              gorm.Expr("COALESCE(attendance_records.room_id, excluded.room_id)"),
			"updated_at":           gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(rec).Error
}

func (r *attendanceRepo) UpsertManual(ctx context.Context, rec *model.AttendanceRecord) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: attendanceKeyColumns,
		DoUpdates: clause.Assignments(map[string]interface{}{
			"status":       gorm.Expr("excluded.status"),
			"submitted_by": gorm.Expr("excluded.submitted_by"),
			"updated_at":   gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(rec).Error
}

func (r *attendanceRepo) UpdateStatus(ctx context.Context, id string, status model.AttendanceStatus, operatorID string) error {
	result := r.db.WithContext(ctx).
		Model(&model.AttendanceRecord{}).
		Where("record_id = ?", id).
		Updates(map[string]interface{}{
			"status":       status,
			"submitted_by": operatorID,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *attendanceRepo) MarkAbsent(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Model(&model.AttendanceRecord{}).
		Where("record_id = ?", id).
		Updates(map[string]interface{}{
			"status":    model.StatusAbsent,
			"confirmed": false,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *attendanceRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Where("record_id = ?", id).
		Delete(&model.AttendanceRecord{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *attendanceRepo) ListBySection(ctx context.Context, sectionID string) ([]model.AttendanceRecord, error) {
	var recs []model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("section_id = ?", sectionID).
		Order("timestamp DESC NULLS LAST").
		Find(&recs).Error
	return recs, err
}

func (r *attendanceRepo) ListBySectionAndDate(ctx context.Context, sectionID string, date time.Time) ([]model.AttendanceRecord, error) {
	var recs []model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("section_id = ? AND date = ?", sectionID, date.Format("2006-01-02")).
		Order("timestamp DESC NULLS LAST").
		Find(&recs).Error
	return recs, err
}

func (r *attendanceRepo) ListByStudentAndSection(ctx context.Context, studentID, sectionID string) ([]model.AttendanceRecord, error) {
	var recs []model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND section_id = ?", studentID, sectionID).
		Order("date ASC").
		Find(&recs).Error
	return recs, err
}

// ListNeverTappedBefore 列出指定日期（含）之前从未收到 RFID 信号的记录，供结课清扫
func (r *attendanceRepo) ListNeverTappedBefore(ctx context.Context, cutoffDate time.Time) ([]model.AttendanceRecord, error) {
	var recs []model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("rfid_authenticated = FALSE AND status != ? AND date <= ?", model.StatusAbsent, cutoffDate.Format("2006-01-02")).
		Find(&recs).Error
	return recs, err
}
