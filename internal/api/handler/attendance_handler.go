package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Markishime/smart-ecolock-sub003/internal/dto"
	"github.com/Markishime/smart-ecolock-sub003/internal/model"
	"github.com/Markishime/smart-ecolock-sub003/internal/service"
	"github.com/Markishime/smart-ecolock-sub003/pkg/response"
)

// AttendanceHandler 考勤记录 HTTP 处理器
type AttendanceHandler struct {
	reconcilerSvc service.ReconcilerService
}

// NewAttendanceHandler 创建 AttendanceHandler
func NewAttendanceHandler(reconcilerSvc service.ReconcilerService) *AttendanceHandler {
	return &AttendanceHandler{reconcilerSvc: reconcilerSvc}
}

// ListAttendance 查询班级考勤记录
// GET /api/v1/attendance?section_id=&date=
func (h *AttendanceHandler) ListAttendance(c *gin.Context) {
	var req dto.AttendanceListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	records, err := h.reconcilerSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": records})
}

// CreateAttendance 操作员手动建档
// POST /api/v1/attendance
func (h *AttendanceHandler) CreateAttendance(c *gin.Context) {
	var req dto.CreateAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	operatorID, ok := MustGetOperatorID(c)
	if !ok {
		return
	}

	record, err := h.reconcilerSvc.CreateManual(c.Request.Context(), &req, operatorID)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.Created(c, record)
}

// EditAttendance 手动补签/改判
// PUT /api/v1/attendance/:id
func (h *AttendanceHandler) EditAttendance(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "记录ID不能为空")
		return
	}

	var req dto.EditAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	operatorID, ok := MustGetOperatorID(c)
	if !ok {
		return
	}

	record, err := h.reconcilerSvc.EditStatus(c.Request.Context(), id, model.AttendanceStatus(req.Status), operatorID)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, record)
}

// DeleteAttendance 删除考勤记录
// DELETE /api/v1/attendance/:id
func (h *AttendanceHandler) DeleteAttendance(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "记录ID不能为空")
		return
	}

	operatorID, ok := MustGetOperatorID(c)
	if !ok {
		return
	}

	if err := h.reconcilerSvc.Delete(c.Request.Context(), id, operatorID); err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, nil)
}

// FinalizeAttendance 结课清扫：已结课且从未刷卡的记录置缺勤
// POST /api/v1/attendance/finalize
func (h *AttendanceHandler) FinalizeAttendance(c *gin.Context) {
	finalized, err := h.reconcilerSvc.FinalizeEnded(c.Request.Context(), time.Now())
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, gin.H{"finalized": finalized})
}

// handleAttendanceError 统一处理考勤模块业务错误
func (h *AttendanceHandler) handleAttendanceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRecordNotFound):
		response.NotFound(c, 13001, "考勤记录不存在")
	case errors.Is(err, service.ErrInvalidStatus):
		response.BadRequest(c, 13002, "考勤状态无效")
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 12001, "学生不存在")
	case errors.Is(err, service.ErrScheduleNotFound):
		response.NotFound(c, 12003, "当前时段没有匹配的课表条目")
	case errors.Is(err, service.ErrDuplicateSchedule):
		response.BadRequest(c, 12004, "课表目录存在重复条目")
	default:
		response.InternalError(c)
	}
}
