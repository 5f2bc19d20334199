package domain

import (
	"fmt"
	"strings"
	"time"
)

// Role 仅区分 admin 与未设置
type Role string

const (
	RoleNone  Role = ""
	RoleAdmin Role = "admin"
)

// Category 卖家 / 买家（取值沿用线上数据："Seller" / "User"）
type Category string

const (
	CategoryNone   Category = ""
	CategorySeller Category = "Seller"
	CategoryBuyer  Category = "User"
)

func ParseRole(s string) (Role, error) {
	switch Role(strings.TrimSpace(s)) {
	case RoleNone:
		return RoleNone, nil
	case RoleAdmin:
		return RoleAdmin, nil
	}
	return RoleNone, fmt.Errorf("unknown role %q", s)
}

func ParseCategory(s string) (Category, error) {
	switch Category(strings.TrimSpace(s)) {
	case CategoryNone:
		return CategoryNone, nil
	case CategorySeller:
		return CategorySeller, nil
	case CategoryBuyer:
		return CategoryBuyer, nil
	}
	return CategoryNone, fmt.Errorf("unknown category %q", s)
}

type User struct {
	ID        string    `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	Email     string    `gorm:"uniqueIndex;size:191;default:null" bson:"email" json:"email"`
	Name      string    `gorm:"size:64" bson:"name" json:"name"`
	Photo     string    `gorm:"size:512" bson:"photo" json:"photo"`
	Role      Role      `gorm:"size:16" bson:"role" json:"role"`
	Category  Category  `gorm:"size:16" bson:"category" json:"category"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

func (User) TableName() string { return "users" }

func (u *User) IsAdmin() bool  { return u != nil && u.Role == RoleAdmin }
func (u *User) IsSeller() bool { return u != nil && u.Category == CategorySeller }
func (u *User) IsBuyer() bool  { return u != nil && u.Category == CategoryBuyer }
