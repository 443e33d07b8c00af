package handler

import (
	"github.com/Markishime/smart-ecolock-sub003/internal/service"
	"github.com/Markishime/smart-ecolock-sub003/internal/stream"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Signal     *SignalHandler
	Attendance *AttendanceHandler
	Seat       *SeatHandler
	Summary    *SummaryHandler
	Export     *ExportHandler
	Schedule   *ScheduleHandler
	Directory  *DirectoryHandler
	Stream     *StreamHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service, hub *stream.Hub) *Handler {
	return &Handler{
		Signal:     NewSignalHandler(svc.Reconciler, svc.SeatGrid),
		Attendance: NewAttendanceHandler(svc.Reconciler),
		Seat:       NewSeatHandler(svc.SeatGrid),
		Summary:    NewSummaryHandler(svc.Summary),
		Export:     NewExportHandler(svc.Export),
		Schedule:   NewScheduleHandler(svc.Loader),
		Directory:  NewDirectoryHandler(svc.Directory),
		Stream:     NewStreamHandler(svc.Reconciler, svc.SeatGrid, hub),
	}
}
