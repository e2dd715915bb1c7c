package transport

import "github.com/Skotchmaster/modern_shop/internal/models"

func ToUser(u *models.User) User {
	return User{
		ID:        u.ID,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func ToProduct(p *models.Product) Product {
	return Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		Stock:       p.Stock,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ToProducts never returns nil so an empty table encodes as [].
func ToProducts(ps []models.Product) []Product {
	out := make([]Product, 0, len(ps))
	for i := range ps {
		out = append(out, ToProduct(&ps[i]))
	}
	return out
}

func ToReview(r *models.Review) Review {
	return Review{
		ID:        r.ID,
		ProductID: r.ProductID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
}

func ToOrderItem(i *models.OrderItem) OrderItem {
	return OrderItem{
		ID:        i.ID,
		OrderID:   i.OrderID,
		ProductID: i.ProductID,
		Quantity:  i.Quantity,
	}
}

func ToOrder(o *models.Order) Order {
	items := make([]OrderItem, 0, len(o.OrderItems))
	for i := range o.OrderItems {
		items = append(items, ToOrderItem(&o.OrderItems[i]))
	}
	return Order{
		ID:         o.ID,
		UserID:     o.UserID,
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
		OrderItems: items,
	}
}

// NewProductModel expects a validated ProductCreate; absent fields become zero values.
func NewProductModel(in ProductCreate) *models.Product {
	return &models.Product{
		Name:        deref(in.Name),
		Description: deref(in.Description),
		Price:       deref(in.Price),
		ImageURL:    deref(in.ImageURL),
		Stock:       deref(in.Stock),
	}
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
