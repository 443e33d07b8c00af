package model

import "time"

// Seat 座位实时占用 — 对应 seats
// 键为 (room_id, row, col)，反映座位当前物理状态；与考勤记录生命周期无关，
// 换人或开始新课次时实时布尔位清零，不参与汇总
type Seat struct {
	SeatID             string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"seat_id"`
	RoomID             string     `gorm:"type:uuid;not null;uniqueIndex:uq_seat_position;index" json:"room_id"`
	Row                int        `gorm:"column:row;type:smallint;not null;uniqueIndex:uq_seat_position" json:"row"`
	Col                int        `gorm:"type:smallint;not null;uniqueIndex:uq_seat_position" json:"col"`
	StudentID          *string    `gorm:"type:uuid"                                      json:"student_id,omitempty"` // 静态分配，换人才变
	WeightSensorStatus bool       `gorm:"not null;default:false"                         json:"weight_sensor_status"`
	RFIDConfirmed      bool       `gorm:"column:rfid_confirmed;not null;default:false"   json:"rfid_confirmed"`
	LastUpdated        *time.Time `gorm:"type:timestamptz"                               json:"last_updated,omitempty"`
	BaseModel

	// 关联
	Student *Student `gorm:"foreignKey:StudentID;references:StudentID" json:"student,omitempty"`
	Room    *Room    `gorm:"foreignKey:RoomID;references:RoomID"       json:"room,omitempty"`
}

// TableName 指定表名
func (Seat) TableName() string { return "seats" }
