package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouteAuthority(t *testing.T) {
	roles, ok := RouteAuthority("/users")
	assert.True(t, ok)
	assert.Equal(t, []string{TagUserManagement}, roles)

	roles, ok = RouteAuthority("/products")
	assert.True(t, ok)
	assert.Equal(t, []string{TagProductManagement}, roles)

	roles, ok = RouteAuthority("/home")
	assert.True(t, ok)
	assert.Empty(t, roles)

	_, ok = RouteAuthority("/reports")
	assert.False(t, ok)
}

func TestRouteAuthorityReturnsCopy(t *testing.T) {
	roles, _ := RouteAuthority("/sellers")
	roles[0] = RoleAdmin

	again, _ := RouteAuthority("/sellers")
	assert.Equal(t, []string{TagSellerManagement}, again)
}
