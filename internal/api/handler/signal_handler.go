package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Markishime/smart-ecolock-sub003/internal/dto"
	"github.com/Markishime/smart-ecolock-sub003/internal/service"
	"github.com/Markishime/smart-ecolock-sub003/pkg/response"
)

// SignalHandler 设备信号入口 HTTP 处理器
// 接收 RFID 刷卡与座位重量两路物理信号，入口只做结构校验，
// 判定与归因全部在 Service 层
type SignalHandler struct {
	reconcilerSvc service.ReconcilerService
	seatGridSvc   service.SeatGridService
}

// NewSignalHandler 创建 SignalHandler
func NewSignalHandler(reconcilerSvc service.ReconcilerService, seatGridSvc service.SeatGridService) *SignalHandler {
	return &SignalHandler{reconcilerSvc: reconcilerSvc, seatGridSvc: seatGridSvc}
}

// IngestRFIDTap 接收 RFID 刷卡信号
// POST /api/v1/signals/rfid
func (h *SignalHandler) IngestRFIDTap(c *gin.Context) {
	var req dto.RFIDTapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	record, err := h.reconcilerSvc.HandleRFIDTap(c.Request.Context(), &req)
	if err != nil {
		h.handleSignalError(c, err)
		return
	}

	response.OK(c, record)
}

// IngestWeightSignal 接收座位重量信号
// POST /api/v1/signals/weight
// 先更新座位网格，再尝试归因到考勤记录；归因不到（座位未分配、
// 无排课）不是错误，只返回座位状态
func (h *SignalHandler) IngestWeightSignal(c *gin.Context) {
	var req dto.WeightSignalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	seat, err := h.seatGridSvc.OnWeightSignal(c.Request.Context(), &req)
	if err != nil {
		h.handleSignalError(c, err)
		return
	}

	var record *dto.AttendanceRecordResponse
	// 只有落座信号参与考勤归因；起身不撤销已记的确认
	if *req.Present {
		record, err = h.reconcilerSvc.AttributeWeight(c.Request.Context(), seat, req.Time)
		if err != nil {
			h.handleSignalError(c, err)
			return
		}
	}

	response.OK(c, gin.H{"seat_id": seat.SeatID, "record": record})
}

func (h *SignalHandler) handleSignalError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 12001, "学生不存在")
	case errors.Is(err, service.ErrSeatNotFound):
		response.NotFound(c, 12002, "座位不存在")
	case errors.Is(err, service.ErrScheduleNotFound):
		response.NotFound(c, 12003, "当前时段没有匹配的课表条目")
	case errors.Is(err, service.ErrDuplicateSchedule):
		response.BadRequest(c, 12004, "课表目录存在重复条目")
	default:
		response.InternalError(c)
	}
}
