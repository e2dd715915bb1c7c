package models

import (
	"time"
)

type User struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Email     string    `gorm:"uniqueIndex;not null;size:320"`
	Password  string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"`
	Orders    []Order   `gorm:"constraint:OnDelete:RESTRICT"`
}

type Product struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"`
	Name        string    `gorm:"not null"`
	Description string    `gorm:"not null"`
	Price       int64     `gorm:"not null"`
	ImageURL    string    `gorm:"not null"`
	Stock       int64     `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime"`
	Reviews     []Review
}

type Review struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	ProductID uint      `gorm:"index;not null"`
	Rating    int       `gorm:"not null"`
	Comment   *string
	CreatedAt time.Time `gorm:"not null;autoCreateTime"`
}

type Order struct {
	ID         uint        `gorm:"primaryKey;autoIncrement"`
	UserID     uint        `gorm:"index;not null"`
	CreatedAt  time.Time   `gorm:"not null;autoCreateTime"`
	UpdatedAt  time.Time   `gorm:"not null;autoUpdateTime"`
	OrderItems []OrderItem `gorm:"constraint:OnDelete:CASCADE"`
}

type OrderItem struct {
	ID        uint    `gorm:"primaryKey;autoIncrement"`
	OrderID   uint    `gorm:"index;not null"`
	ProductID uint    `gorm:"index;not null"`
	Product   Product `gorm:"constraint:OnDelete:RESTRICT"`
	Quantity  int     `gorm:"not null"`
}

// All lists every persisted model in migration order.
func All() []any {
	return []any{&User{}, &Product{}, &Review{}, &Order{}, &OrderItem{}}
}
