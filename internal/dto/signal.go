package dto

import "time"

// 信号事件 DTO：显式带标签的事件类型，缺字段在入口校验失败，
// 不允许半成品 payload 流进核心

// RFIDTapRequest 刷卡信号
// POST /api/v1/signals/rfid
type RFIDTapRequest struct {
	StudentID string    `json:"student_id" binding:"required,uuid"`
	SectionID string    `json:"section_id" binding:"required,uuid"`
	Date      string    `json:"date"       binding:"required,datetime=2006-01-02"`
	Time      time.Time `json:"time"       binding:"required"`
}

// WeightSignalRequest 座位重量信号
// POST /api/v1/signals/weight
// present 用指针区分 false 与缺失
type WeightSignalRequest struct {
	SeatID  string    `json:"seat_id" binding:"required,uuid"`
	Present *bool     `json:"present" binding:"required"`
	Time    time.Time `json:"time"    binding:"required"`
}
