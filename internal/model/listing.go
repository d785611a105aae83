package model

// 地点、车辆与评价由其他模块维护；本服务只按归属用户统计数量

// Place 地点表，对应 places
type Place struct {
	PlaceID   string `gorm:"type:varchar(36);primaryKey"      bson:"_id"      json:"place_id"`
	Name      string `gorm:"type:varchar(200);not null"       bson:"name"     json:"name"`
	Category  string `gorm:"type:varchar(50)"                 bson:"category" json:"category"`
	AddedBy   string `gorm:"type:varchar(36);not null;index"  bson:"added_by" json:"added_by"`
	BaseModel `bson:",inline"`
}

// TableName 指定表名
func (Place) TableName() string { return "places" }

// Vehicle 车辆租赁表，对应 vehicles
type Vehicle struct {
	VehicleID string `gorm:"type:varchar(36);primaryKey"      bson:"_id"   json:"vehicle_id"`
	Name      string `gorm:"type:varchar(200);not null"       bson:"name"  json:"name"`
	Type      string `gorm:"type:varchar(30)"                 bson:"type"  json:"type"`
	Owner     string `gorm:"type:varchar(36);not null;index"  bson:"owner" json:"owner"`
	BaseModel `bson:",inline"`
}

// TableName 指定表名
func (Vehicle) TableName() string { return "vehicles" }

// Review 评价表，对应 reviews
type Review struct {
	ReviewID  string `gorm:"type:varchar(36);primaryKey"      bson:"_id"    json:"review_id"`
	UserID    string `gorm:"type:varchar(36);not null;index"  bson:"user"   json:"user_id"`
	Rating    int    `gorm:"not null"                         bson:"rating" json:"rating"`
	Comment   string `gorm:"type:text"                        bson:"comment" json:"comment"`
	BaseModel `bson:",inline"`
}

// TableName 指定表名
func (Review) TableName() string { return "reviews" }
