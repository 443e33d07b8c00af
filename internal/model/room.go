package model

// Room 教室目录表 — 对应 rooms（外部系统维护，只读）
type Room struct {
	RoomID   string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"room_id"`
	Name     string `gorm:"type:varchar(50);not null;uniqueIndex"          json:"name"`
	Building string `gorm:"type:varchar(50)"                               json:"building,omitempty"`
	Rows     int    `gorm:"type:smallint;not null;default:6"               json:"rows"`
	Cols     int    `gorm:"type:smallint;not null;default:8"               json:"cols"`
	BaseModel
}

// TableName 指定表名
func (Room) TableName() string { return "rooms" }
