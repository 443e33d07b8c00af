package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Markishime/smart-ecolock-sub003/internal/dto"
	"github.com/Markishime/smart-ecolock-sub003/internal/service"
	"github.com/Markishime/smart-ecolock-sub003/pkg/response"
)

// SeatHandler 座位网格 HTTP 处理器
type SeatHandler struct {
	seatGridSvc service.SeatGridService
}

// NewSeatHandler 创建 SeatHandler
func NewSeatHandler(seatGridSvc service.SeatGridService) *SeatHandler {
	return &SeatHandler{seatGridSvc: seatGridSvc}
}

// ListSeats 查询教室座位网格
// GET /api/v1/seats?room_id=
func (h *SeatHandler) ListSeats(c *gin.Context) {
	var req dto.SeatListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	seats, err := h.seatGridSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleSeatError(c, err)
		return
	}

	response.OK(c, gin.H{"list": seats})
}

// AssignSeat 变更座位静态分配（student_id 为空表示取消分配）
// PUT /api/v1/seats/:id/assign
func (h *SeatHandler) AssignSeat(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "座位ID不能为空")
		return
	}

	var req dto.AssignSeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	operatorID, ok := MustGetOperatorID(c)
	if !ok {
		return
	}

	seat, err := h.seatGridSvc.Assign(c.Request.Context(), id, req.StudentID, operatorID)
	if err != nil {
		h.handleSeatError(c, err)
		return
	}

	response.OK(c, seat)
}

// ResetRoom 新课次开始，整间教室实时状态清零
// POST /api/v1/seats/reset
func (h *SeatHandler) ResetRoom(c *gin.Context) {
	var req dto.ResetRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.seatGridSvc.ResetRoom(c.Request.Context(), req.RoomID, time.Now()); err != nil {
		h.handleSeatError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleSeatError 统一处理座位模块业务错误
func (h *SeatHandler) handleSeatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSeatNotFound):
		response.NotFound(c, 12002, "座位不存在")
	case errors.Is(err, service.ErrRoomNotFound):
		response.NotFound(c, 12005, "教室不存在")
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 12001, "学生不存在")
	default:
		response.InternalError(c)
	}
}
