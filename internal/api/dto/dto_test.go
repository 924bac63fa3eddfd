package dto

import (
	"testing"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldErrors(t *testing.T, err error) validation.Errors {
	t.Helper()
	require.Error(t, err)
	errs, ok := err.(validation.Errors)
	require.True(t, ok, "want field errors, got %T", err)
	return errs
}

func TestSignInRequestValidate(t *testing.T) {
	assert.NoError(t, SignInRequest{UserName: "admin", Password: "123Qwe"}.Validate())

	errs := fieldErrors(t, SignInRequest{}.Validate())
	assert.Contains(t, errs, "userName")
	assert.Contains(t, errs, "password")
}

func TestSignUpRequestRequiresMatchingPasswords(t *testing.T) {
	valid := SignUpRequest{UserName: "ann", Email: "ann@example.com", Password: "secret1", ConfirmPassword: "secret1"}
	assert.NoError(t, valid.Validate())

	mismatch := valid
	mismatch.ConfirmPassword = "secret2"
	errs := fieldErrors(t, mismatch.Validate())
	assert.Contains(t, errs, "confirmPassword")
	assert.Len(t, errs, 1)

	badEmail := valid
	badEmail.Email = "not-an-email"
	assert.Contains(t, fieldErrors(t, badEmail.Validate()), "email")
}

func TestResetPasswordRequestValidate(t *testing.T) {
	assert.NoError(t, ResetPasswordRequest{Password: "secret1", ConfirmPassword: "secret1", Token: "t"}.Validate())
	errs := fieldErrors(t, ResetPasswordRequest{Password: "secret1", ConfirmPassword: "secret1"}.Validate())
	assert.Contains(t, errs, "token")
}

func TestResourceRequests(t *testing.T) {
	tests := []struct {
		name  string
		req   validation.Validatable
		field string
	}{
		{"website domain", WebsiteRequest{Name: "Shop", Domain: "not a host"}, "domain"},
		{"website status", WebsiteRequest{Name: "Shop", Domain: "shop.example.com", Status: "gone"}, "status"},
		{"seller name", SellerRequest{Email: "s@example.com"}, "name"},
		{"category slug", CategoryRequest{Name: "Desks", Slug: "Desks & Chairs"}, "slug"},
		{"product price", ProductRequest{Name: "Desk", Price: -1}, "price"},
		{"product stock", ProductRequest{Name: "Desk", Stock: -3}, "stock"},
		{"user role", UserRequest{UserName: "ann", Email: "ann@example.com", Authority: []string{"root"}}, "authority"},
		{"user without roles", UserRequest{UserName: "ann", Email: "ann@example.com"}, "authority"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, fieldErrors(t, tt.req.Validate()), tt.field)
		})
	}
}

func TestResourceRequestsAccepted(t *testing.T) {
	for _, req := range []validation.Validatable{
		WebsiteRequest{Name: "Shop", Domain: "shop.example.com", Status: "active"},
		SellerRequest{Name: "Acme", Email: "sales@acme.example", Phone: "+155501234"},
		CategoryRequest{Name: "Desks", Slug: "office-desks"},
		ProductRequest{Name: "Desk", Price: 99.5, Stock: 4, ImageURL: "https://cdn.example.com/desk.png"},
		UserRequest{UserName: "ann", Email: "ann@example.com", Authority: []string{"seller", "content-management"}},
	} {
		assert.NoError(t, req.Validate(), "%T", req)
	}
}
