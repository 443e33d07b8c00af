package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Markishime/smart-ecolock-sub003/internal/model"
)

// 参考目录（学生/班级/科目/教室）由外部系统维护，这里只提供只读查询

// StudentRepository 学生目录只读访问接口
type StudentRepository interface {
	GetByID(ctx context.Context, id string) (*model.Student, error)
	GetByRFIDUID(ctx context.Context, uid string) (*model.Student, error)
	List(ctx context.Context) ([]model.Student, error)
}

// SectionRepository 班级目录只读访问接口
type SectionRepository interface {
	GetByID(ctx context.Context, id string) (*model.Section, error)
	GetByName(ctx context.Context, name string) (*model.Section, error)
	List(ctx context.Context) ([]model.Section, error)
}

// SubjectRepository 科目目录只读访问接口
type SubjectRepository interface {
	GetByID(ctx context.Context, id string) (*model.Subject, error)
	GetByCode(ctx context.Context, code string) (*model.Subject, error)
	List(ctx context.Context) ([]model.Subject, error)
}

// RoomRepository 教室目录只读访问接口
type RoomRepository interface {
	GetByID(ctx context.Context, id string) (*model.Room, error)
	GetByName(ctx context.Context, name string) (*model.Room, error)
	List(ctx context.Context) ([]model.Room, error)
}

// ── Student Repository 实现 ──

type studentRepo struct {
	db *gorm.DB
}

func NewStudentRepo(db *gorm.DB) StudentRepository {
	return &studentRepo{db: db}
}

func (r *studentRepo) GetByID(ctx context.Context, id string) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).
		Where("student_id = ?", id).
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepo) GetByRFIDUID(ctx context.Context, uid string) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).
		Where("rfid_uid = ?", uid).
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepo) List(ctx context.Context) ([]model.Student, error) {
	var students []model.Student
	err := r.db.WithContext(ctx).
		Order("id_number ASC").
		Find(&students).Error
	return students, err
}

// ── Section Repository 实现 ──

type sectionRepo struct {
	db *gorm.DB
}

func NewSectionRepo(db *gorm.DB) SectionRepository {
	return &sectionRepo{db: db}
}

func (r *sectionRepo) GetByID(ctx context.Context, id string) (*model.Section, error) {
	var section model.Section
	err := r.db.WithContext(ctx).
		Where("section_id = ?", id).
		First(&section).Error
	if err != nil {
		return nil, err
	}
	return &section, nil
}

func (r *sectionRepo) GetByName(ctx context.Context, name string) (*model.Section, error) {
	var section model.Section
	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&section).Error
	if err != nil {
		return nil, err
	}
	return &section, nil
}

func (r *sectionRepo) List(ctx context.Context) ([]model.Section, error) {
	var sections []model.Section
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&sections).Error
	return sections, err
}

// ── Subject Repository 实现 ──

type subjectRepo struct {
	db *gorm.DB
}

func NewSubjectRepo(db *gorm.DB) SubjectRepository {
	return &subjectRepo{db: db}
}

func (r *subjectRepo) GetByID(ctx context.Context, id string) (*model.Subject, error) {
	var subject model.Subject
	err := r.db.WithContext(ctx).
		Where("subject_id = ?", id).
		First(&subject).Error
	if err != nil {
		return nil, err
	}
	return &subject, nil
}

func (r *subjectRepo) GetByCode(ctx context.Context, code string) (*model.Subject, error) {
	var subject model.Subject
	err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&subject).Error
	if err != nil {
		return nil, err
	}
	return &subject, nil
}

func (r *subjectRepo) List(ctx context.Context) ([]model.Subject, error) {
	var subjects []model.Subject
	err := r.db.WithContext(ctx).
		Order("code ASC").
		Find(&subjects).Error
	return subjects, err
}

// ── Room Repository 实现 ──

type roomRepo struct {
	db *gorm.DB
}

func NewRoomRepo(db *gorm.DB) RoomRepository {
	return &roomRepo{db: db}
}

func (r *roomRepo) GetByID(ctx context.Context, id string) (*model.Room, error) {
	var room model.Room
	err := r.db.WithContext(ctx).
		Where("room_id = ?", id).
		First(&room).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *roomRepo) GetByName(ctx context.Context, name string) (*model.Room, error) {
	var room model.Room
	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&room).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *roomRepo) List(ctx context.Context) ([]model.Room, error) {
	var rooms []model.Room
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&rooms).Error
	return rooms, err
}
