package domain

import "time"

// Purchase 对应线上的 buying 集合；(service_name, email) 唯一
type Purchase struct {
	ID          string    `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	ServiceName string    `gorm:"uniqueIndex:uq_buying_service_email;size:191;not null" bson:"service_name" json:"service_name"`
	ServiceID   string    `gorm:"size:64;index" bson:"service_id" json:"service_id"`
	Email       string    `gorm:"uniqueIndex:uq_buying_service_email;size:191;not null" bson:"email" json:"email"`
	Name        string    `gorm:"size:64" bson:"name" json:"name"`
	Price       float64   `bson:"price" json:"price"`
	Image       string    `gorm:"size:512" bson:"image" json:"image"`
	Quantity    int       `bson:"quantity" json:"quantity"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
}

func (Purchase) TableName() string { return "buying" }
