package handler

import (
	"context"
	"errors"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"

	"github.com/Markishime/smart-ecolock-sub003/internal/service"
	"github.com/Markishime/smart-ecolock-sub003/internal/stream"
	"github.com/Markishime/smart-ecolock-sub003/pkg/response"
)

// StreamHandler 实时推送 WebSocket 处理器
//
// 订阅协议：连接后先收到一条 snapshot 事件（全量现状），
// 之后持续收到 upsert / delete 增量事件；连接是只读的，
// 客户端消息一律忽略
type StreamHandler struct {
	reconcilerSvc service.ReconcilerService
	seatGridSvc   service.SeatGridService
	hub           *stream.Hub
}

// NewStreamHandler 创建 StreamHandler
func NewStreamHandler(reconcilerSvc service.ReconcilerService, seatGridSvc service.SeatGridService, hub *stream.Hub) *StreamHandler {
	return &StreamHandler{reconcilerSvc: reconcilerSvc, seatGridSvc: seatGridSvc, hub: hub}
}

// StreamAttendance 订阅班级考勤记录流
// GET /api/v1/attendance/stream?section_id=
func (h *StreamHandler) StreamAttendance(c *gin.Context) {
	sectionID := c.Query("section_id")
	if sectionID == "" {
		response.BadRequest(c, 10001, "section_id 不能为空")
		return
	}

	h.serve(c, service.SectionTopic(sectionID),
		func(ctx context.Context) (interface{}, error) {
			return h.reconcilerSvc.Snapshot(ctx, sectionID)
		},
		func(c *gin.Context, err error) {
			response.InternalError(c)
		})
}

// StreamSeats 订阅教室座位网格流
// GET /api/v1/seats/stream?room_id=
func (h *StreamHandler) StreamSeats(c *gin.Context) {
	roomID := c.Query("room_id")
	if roomID == "" {
		response.BadRequest(c, 10001, "room_id 不能为空")
		return
	}

	h.serve(c, service.RoomTopic(roomID),
		func(ctx context.Context) (interface{}, error) {
			return h.seatGridSvc.Snapshot(ctx, roomID)
		},
		func(c *gin.Context, err error) {
			if errors.Is(err, service.ErrRoomNotFound) {
				response.NotFound(c, 12005, "教室不存在")
				return
			}
			response.InternalError(c)
		})
}

// serve 先订阅再取快照，快照查询期间落库的变更会进入订阅队列，
// 不会出现快照与首条增量之间的空窗；重放的增量与快照重叠时
// 客户端按 upsert 幂等覆盖即可
func (h *StreamHandler) serve(c *gin.Context, topic string, fetch func(context.Context) (interface{}, error), fail func(*gin.Context, error)) {
	sub := h.hub.Subscribe(topic)
	defer h.hub.Unsubscribe(sub)

	// 升级前取快照，失败还能走普通 HTTP 错误响应
	snapshot, err := fetch(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	conn, err := websocket.Accept(c.Writer, c.Request, nil)
	if err != nil {
		// Accept 已写入 HTTP 错误响应
		return
	}
	defer conn.CloseNow()

	// CloseRead 丢弃客户端消息，并在对端断开时取消 ctx
	ctx := conn.CloseRead(c.Request.Context())

	if err := wsjson.Write(ctx, conn, stream.Event{Kind: "snapshot", Payload: snapshot}); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.C():
			if !ok {
				return
			}
			if err := wsjson.Write(ctx, conn, ev); err != nil {
				return
			}
		}
	}
}
