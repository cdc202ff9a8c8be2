package model

import (
	"time"
)

const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

type User struct {
	ID                    int64     `gorm:"primaryKey" json:"id"`
	Username              string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email                 *string   `gorm:"size:100;uniqueIndex" json:"email,omitempty"`
	PasswordHash          *string   `gorm:"size:255" json:"-"`
	FullName              string    `gorm:"size:100" json:"full_name"`
	Phone                 string    `gorm:"size:30" json:"phone"`
	Role                  string    `gorm:"size:20;default:member" json:"role"` // member, admin
	FirstTimeDiscountUsed bool      `gorm:"default:false" json:"first_time_discount_used"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
