package normalize

import (
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/spec-kit/backoffice-console/internal/domain"
)

// first returns the first present, non-null value among paths.
func first(r gjson.Result, paths ...string) gjson.Result {
	for _, p := range paths {
		if v := r.Get(p); v.Exists() && v.Type != gjson.Null {
			return v
		}
	}
	return gjson.Result{}
}

func str(r gjson.Result, paths ...string) string {
	return strings.TrimSpace(first(r, paths...).String())
}

// Roles reads role, roles or authority as either a string or an array.
func Roles(r gjson.Result) []string {
	v := first(r, "authority", "roles", "role")
	if !v.Exists() {
		return []string{}
	}
	if !v.IsArray() {
		if s := strings.TrimSpace(v.String()); s != "" {
			return []string{s}
		}
		return []string{}
	}
	out := make([]string, 0, len(v.Array()))
	for _, role := range v.Array() {
		if s := strings.TrimSpace(role.String()); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// User decodes a backend user or profile.
func User(r gjson.Result) domain.User {
	return domain.User{
		ID:        str(r, "id", "_id", "uuid"),
		UserName:  str(r, "userName", "name", "username"),
		Email:     str(r, "email"),
		Authority: Roles(r),
		Avatar:    str(r, "avatar", "img", "avatarUrl"),
	}
}

// Website decodes a backend website.
func Website(r gjson.Result) domain.Website {
	w := domain.Website{
		ID:     str(r, "id", "_id"),
		Name:   str(r, "name", "title"),
		Domain: str(r, "domain", "url", "host"),
		Status: str(r, "status"),
	}
	if created := str(r, "createdAt", "created_at"); created != "" {
		if ts, err := time.Parse(time.RFC3339, created); err == nil {
			w.CreatedAt = &ts
		}
	}
	return w
}

// Seller decodes a backend seller.
func Seller(r gjson.Result) domain.Seller {
	return domain.Seller{
		ID:        str(r, "id", "_id"),
		Name:      str(r, "name", "storeName", "title"),
		Email:     str(r, "email"),
		Phone:     str(r, "phone", "phoneNumber"),
		WebsiteID: str(r, "websiteId", "website_id", "website.id"),
		Status:    str(r, "status"),
	}
}

// Category decodes a backend category.
func Category(r gjson.Result) domain.Category {
	return domain.Category{
		ID:        str(r, "id", "_id"),
		Name:      str(r, "name", "title"),
		Slug:      str(r, "slug"),
		ParentID:  str(r, "parentId", "parent_id", "parent.id"),
		WebsiteID: str(r, "websiteId", "website_id"),
	}
}

// Product decodes a backend product. Numbers may arrive as strings.
func Product(r gjson.Result) domain.Product {
	return domain.Product{
		ID:         str(r, "id", "_id"),
		Name:       str(r, "name", "title"),
		SKU:        str(r, "sku", "productCode"),
		Price:      first(r, "price", "amount").Float(),
		Stock:      first(r, "stock", "quantity").Int(),
		CategoryID: str(r, "categoryId", "category_id", "category.id"),
		SellerID:   str(r, "sellerId", "seller_id", "seller.id"),
		Status:     str(r, "status"),
		ImageURL:   str(r, "img", "image", "imageUrl"),
	}
}
