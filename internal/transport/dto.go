package transport

import "time"

type UserCreate struct {
	Email    string `json:"email"    valid:"required,email"`
	Password string `json:"password"`
}

type User struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type LoginRequest struct {
	Email    string `json:"email"    valid:"required,email"`
	Password string `json:"password" valid:"required"`
}

type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// ProductCreate uses pointers so an absent or null field can be told apart
// from a zero value.
type ProductCreate struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Price       *int64  `json:"price"`
	ImageURL    *string `json:"image_url"`
	Stock       *int64  `json:"stock"`
}

type Product struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	ImageURL    string    `json:"image_url"`
	Stock       int64     `json:"stock"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type SearchResponse struct {
	Total    int64     `json:"total"`
	Products []Product `json:"products"`
}

type ReviewCreate struct {
	ProductID uint   `json:"product_id" valid:"required"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

type Review struct {
	ID        uint      `json:"id"`
	ProductID uint      `json:"product_id"`
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// OrderCreate carries untyped line items; nothing maps it into rows yet.
type OrderCreate struct {
	UserID     uint             `json:"user_id"`
	OrderItems []map[string]any `json:"order_items"`
}

type Order struct {
	ID         uint        `json:"id"`
	UserID     uint        `json:"user_id"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
	OrderItems []OrderItem `json:"order_items"`
}

type OrderItem struct {
	ID        uint `json:"id"`
	OrderID   uint `json:"order_id"`
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}
