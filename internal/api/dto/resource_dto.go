package dto

import (
	"errors"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/spec-kit/backoffice-console/internal/domain"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

var statuses = []interface{}{"", "active", "inactive", "draft", "archived", "pending"}

// WebsiteRequest creates or replaces a website.
type WebsiteRequest struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
	Status string `json:"status,omitempty"`
}

// Validate will validate the payload
func (r WebsiteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Domain, validation.Required, is.DNSName),
		validation.Field(&r.Status, validation.In(statuses...)),
	)
}

// SellerRequest creates or replaces a seller.
type SellerRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	WebsiteID string `json:"websiteId,omitempty"`
	Status    string `json:"status,omitempty"`
}

// Validate will validate the payload
func (r SellerRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, is.Email),
		validation.Field(&r.Phone, validation.Length(6, 20)),
		validation.Field(&r.Status, validation.In(statuses...)),
	)
}

// CategoryRequest creates or replaces a category.
type CategoryRequest struct {
	Name      string `json:"name"`
	Slug      string `json:"slug,omitempty"`
	ParentID  string `json:"parentId,omitempty"`
	WebsiteID string `json:"websiteId,omitempty"`
}

// Validate will validate the payload
func (r CategoryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Slug, validation.Match(slugPattern)),
	)
}

// ProductRequest creates or replaces a product.
type ProductRequest struct {
	Name       string  `json:"name"`
	SKU        string  `json:"sku,omitempty"`
	Price      float64 `json:"price"`
	Stock      int64   `json:"stock"`
	CategoryID string  `json:"categoryId,omitempty"`
	SellerID   string  `json:"sellerId,omitempty"`
	Status     string  `json:"status,omitempty"`
	ImageURL   string  `json:"img,omitempty"`
}

// Validate will validate the payload
func (r ProductRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Price, validation.Min(0.0)),
		validation.Field(&r.Stock, validation.Min(int64(0))),
		validation.Field(&r.Status, validation.In(statuses...)),
		validation.Field(&r.ImageURL, is.URL),
	)
}

// UserRequest creates or replaces a console user.
type UserRequest struct {
	UserName  string   `json:"userName"`
	Email     string   `json:"email"`
	Authority []string `json:"authority"`
}

// Validate will validate the payload
func (r UserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UserName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Authority, validation.Required, validation.By(knownRoles)),
	)
}

var assignableRoles = map[string]struct{}{
	domain.RoleSuperAdmin:       {},
	domain.RoleAdmin:            {},
	domain.RoleOperator:         {},
	domain.RoleSeller:           {},
	domain.RoleUser:             {},
	domain.TagUserManagement:    {},
	domain.TagContentManagement: {},
	domain.TagProductManagement: {},
	domain.TagWebsiteManagement: {},
	domain.TagSellerManagement:  {},
	domain.TagPublic:            {},
}

func knownRoles(value interface{}) error {
	roles, _ := value.([]string)
	for _, role := range roles {
		if _, ok := assignableRoles[role]; !ok {
			return errors.New("unknown role " + role)
		}
	}
	return nil
}
