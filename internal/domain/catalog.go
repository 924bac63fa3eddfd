package domain

import "time"

// Website is a storefront managed by the marketplace.
type Website struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Domain    string     `json:"domain"`
	Status    string     `json:"status,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// Seller is a merchant selling through one website.
type Seller struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	WebsiteID string `json:"websiteId,omitempty"`
	Status    string `json:"status,omitempty"`
}

// Category groups products; ParentID is empty for root categories.
type Category struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug,omitempty"`
	ParentID  string `json:"parentId,omitempty"`
	WebsiteID string `json:"websiteId,omitempty"`
}

// Product is a sellable item.
type Product struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	SKU        string  `json:"sku,omitempty"`
	Price      float64 `json:"price"`
	Stock      int64   `json:"stock"`
	CategoryID string  `json:"categoryId,omitempty"`
	SellerID   string  `json:"sellerId,omitempty"`
	Status     string  `json:"status,omitempty"`
	ImageURL   string  `json:"img,omitempty"`
}

// List is the canonical collection envelope every screen consumes.
type List[T any] struct {
	List  []T `json:"list"`
	Total int `json:"total"`
}
