package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Markishime/smart-ecolock-sub003/internal/model"
	"github.com/Markishime/smart-ecolock-sub003/internal/repository"
)

// ── 参考目录模块业务错误（跨模块共用）──

var (
	ErrStudentNotFound = errors.New("学生不存在")
	ErrSectionNotFound = errors.New("班级不存在")
	ErrSubjectNotFound = errors.New("科目不存在")
	ErrRoomNotFound    = errors.New("教室不存在")
)

// DirectoryService 参考目录只读业务接口
// 学生/班级/科目/教室归外部系统维护，这里仅暴露只读查询
type DirectoryService interface {
	ListStudents(ctx context.Context) ([]model.Student, error)
	ListSections(ctx context.Context) ([]model.Section, error)
	ListSubjects(ctx context.Context) ([]model.Subject, error)
	ListRooms(ctx context.Context) ([]model.Room, error)
	GetStudent(ctx context.Context, id string) (*model.Student, error)
	GetRoom(ctx context.Context, id string) (*model.Room, error)
}

type directoryService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewDirectoryService 创建 DirectoryService 实例
func NewDirectoryService(repo *repository.Repository, logger *zap.Logger) DirectoryService {
	return &directoryService{repo: repo, logger: logger}
}

func (s *directoryService) ListStudents(ctx context.Context) ([]model.Student, error) {
	students, err := s.repo.Student.List(ctx)
	if err != nil {
		s.logger.Error("查询学生目录失败", zap.Error(err))
	}
	return students, err
}

func (s *directoryService) ListSections(ctx context.Context) ([]model.Section, error) {
	sections, err := s.repo.Section.List(ctx)
	if err != nil {
		s.logger.Error("查询班级目录失败", zap.Error(err))
	}
	return sections, err
}

func (s *directoryService) ListSubjects(ctx context.Context) ([]model.Subject, error) {
	subjects, err := s.repo.Subject.List(ctx)
	if err != nil {
		s.logger.Error("查询科目目录失败", zap.Error(err))
	}
	return subjects, err
}

func (s *directoryService) ListRooms(ctx context.Context) ([]model.Room, error) {
	rooms, err := s.repo.Room.List(ctx)
	if err != nil {
		s.logger.Error("查询教室目录失败", zap.Error(err))
	}
	return rooms, err
}

func (s *directoryService) GetStudent(ctx context.Context, id string) (*model.Student, error) {
	student, err := s.repo.Student.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return student, nil
}

func (s *directoryService) GetRoom(ctx context.Context, id string) (*model.Room, error) {
	room, err := s.repo.Room.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return room, nil
}
