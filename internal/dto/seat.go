package dto

import "time"

// SeatListRequest 教室座位查询
// GET /api/v1/seats?room_id=
type SeatListRequest struct {
	RoomID string `form:"room_id" binding:"required,uuid"`
}

// AssignSeatRequest 座位分配（student_id 为空表示取消分配）
// PUT /api/v1/seats/:id/assign
type AssignSeatRequest struct {
	StudentID *string `json:"student_id" binding:"omitempty,uuid"`
}

// ResetRoomRequest 新课次开始，整间教室实时状态清零
// POST /api/v1/seats/reset
type ResetRoomRequest struct {
	RoomID string `json:"room_id" binding:"required,uuid"`
}

// SeatResponse 座位响应
type SeatResponse struct {
	SeatID             string     `json:"seat_id"`
	RoomID             string     `json:"room_id"`
	Row                int        `json:"row"`
	Col                int        `json:"col"`
	StudentID          *string    `json:"student_id,omitempty"`
	StudentName        string     `json:"student_name,omitempty"`
	WeightSensorStatus bool       `json:"weight_sensor_status"`
	RFIDConfirmed      bool       `json:"rfid_confirmed"`
	LastUpdated        *time.Time `json:"last_updated,omitempty"`
}
