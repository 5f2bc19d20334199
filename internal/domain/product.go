package domain

import "time"

// Section 商品所属分区（原来每个分区一个集合，这里合并成一张表）
type Section string

const (
	SectionFurniture Section = "furniture"
	SectionAll       Section = "all"
	SectionTrending  Section = "trending"
	SectionNewDesign Section = "new_design"
	SectionSeller    Section = "seller"
)

type Product struct {
	ID          string    `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	Section     Section   `gorm:"size:32;index;not null" bson:"section" json:"section"`
	ServiceID   string    `gorm:"size:64;index" bson:"service_id" json:"service_id"`
	Name        string    `gorm:"size:128" bson:"name" json:"name"`
	Image       string    `gorm:"size:512" bson:"image" json:"image"`
	Price       float64   `bson:"price" json:"price"`
	Description string    `gorm:"type:text" bson:"description" json:"description"`
	Category    string    `gorm:"size:64" bson:"category" json:"category"`
	Rating      float64   `bson:"rating" json:"rating"`
	SellerEmail string    `gorm:"size:191;index" bson:"seller_email" json:"seller_email,omitempty"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
}

func (Product) TableName() string { return "products" }
