package service

import (
	"go.uber.org/zap"

	"github.com/Markishime/smart-ecolock-sub003/config"
	"github.com/Markishime/smart-ecolock-sub003/internal/repository"
	"github.com/Markishime/smart-ecolock-sub003/internal/stream"
	"github.com/Markishime/smart-ecolock-sub003/pkg/redis"
)

// ── 实时推送主题 ──

// SectionTopic 某 section 的考勤记录变更主题
func SectionTopic(sectionID string) string { return "attendance:" + sectionID }

// RoomTopic 某教室的座位状态变更主题
func RoomTopic(roomID string) string { return "seats:" + roomID }

// Service 所有 Service 的聚合入口
type Service struct {
	Resolver   ScheduleResolver
	Reconciler ReconcilerService
	SeatGrid   SeatGridService
	Summary    SummaryService
	Export     ExportService
	Loader     ScheduleLoaderService
	Directory  DirectoryService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	hub *stream.Hub,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	resolver := NewScheduleResolver(&cfg.Attendance, repo, logger)
	seatGrid := NewSeatGridService(repo, hub, logger)
	summary := NewSummaryService(repo, resolver, logger)

	return &Service{
		Resolver:   resolver,
		Reconciler: NewReconcilerService(&cfg.Attendance, repo, resolver, seatGrid, hub, rdb, logger),
		SeatGrid:   seatGrid,
		Summary:    summary,
		Export:     NewExportService(repo, summary, logger),
		Loader:     NewScheduleLoaderService(repo, logger),
		Directory:  NewDirectoryService(repo, logger),
	}
}
