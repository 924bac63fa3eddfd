package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/backoffice-console/internal/domain"
)

func TestListShapes(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		shape Shape
		total int
		ids   []string
	}{
		{"list and total", `{"list":[{"id":1},{"id":2}],"total":40}`, ShapeListTotal, 40, []string{"1", "2"}},
		{"data array", `{"data":[{"id":"a"}],"count":7}`, ShapeData, 7, []string{"a"}},
		{"nested data list", `{"data":{"list":[{"_id":"x"}],"total":3}}`, ShapeDataList, 3, []string{"x"}},
		{"bare array", `[{"id":1},{"id":2},{"id":3}]`, ShapeArray, 3, []string{"1", "2", "3"}},
		{"entities", `{"entities":[{"id":9}]}`, ShapeEntities, 1, []string{"9"}},
		{"items", `{"items":[{"id":9}],"meta":{"total":12}}`, ShapeItems, 12, []string{"9"}},
		{"named key", `{"sellers":[{"id":5}],"total":"n/a"}`, ShapeNamed, 1, []string{"5"}},
		{"unknown object", `{"rows":[{"id":1}]}`, ShapeNone, 0, []string{}},
		{"not json", `<html>`, ShapeNone, 0, []string{}},
		{"empty list", `{"list":[],"total":0}`, ShapeListTotal, 0, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, shape := List([]byte(tt.body), "sellers", Seller)
			assert.Equal(t, tt.shape, shape)
			assert.Equal(t, tt.total, got.Total)
			ids := []string{}
			for _, s := range got.List {
				ids = append(ids, s.ID)
			}
			assert.Equal(t, tt.ids, ids)
			assert.NotNil(t, got.List)
		})
	}
}

func TestListPrefersEarlierShapes(t *testing.T) {
	got, shape := List([]byte(`{"list":[{"id":1}],"data":[{"id":2},{"id":3}]}`), "", Website)
	assert.Equal(t, ShapeListTotal, shape)
	assert.Len(t, got.List, 1)
}

func TestDetailShapes(t *testing.T) {
	p, shape := Detail([]byte(`{"data":{"id":"p1","name":"Lamp","price":"12.5","stock":"3"}}`), "product", Product)
	assert.Equal(t, ShapeDataObject, shape)
	assert.Equal(t, domain.Product{ID: "p1", Name: "Lamp", Price: 12.5, Stock: 3}, p)

	p, shape = Detail([]byte(`{"product":{"id":2,"title":"Desk","category":{"id":"c1"}}}`), "product", Product)
	assert.Equal(t, ShapeNamed, shape)
	assert.Equal(t, "2", p.ID)
	assert.Equal(t, "Desk", p.Name)
	assert.Equal(t, "c1", p.CategoryID)

	c, shape := Detail([]byte(`{"id":"c1","name":"Home","parent_id":"root"}`), "category", Category)
	assert.Equal(t, ShapeObject, shape)
	assert.Equal(t, "root", c.ParentID)

	_, shape = Detail([]byte(`[1,2]`), "category", Category)
	assert.Equal(t, ShapeNone, shape)
}

func TestUserRoles(t *testing.T) {
	u, _ := Detail([]byte(`{"id":"1","name":"Admin","email":"a@a.com","role":"admin"}`), "user", User)
	assert.Equal(t, domain.User{ID: "1", UserName: "Admin", Email: "a@a.com", Authority: []string{"admin"}}, u)

	u, _ = Detail([]byte(`{"id":"2","userName":"op","roles":["operator"," ","seller"]}`), "user", User)
	assert.Equal(t, []string{"operator", "seller"}, u.Authority)

	u, _ = Detail([]byte(`{"id":"3","authority":[]}`), "user", User)
	assert.Equal(t, []string{}, u.Authority)

	u, _ = Detail([]byte(`{"id":"4"}`), "user", User)
	assert.Equal(t, []string{}, u.Authority)
}

func TestWebsiteCreatedAt(t *testing.T) {
	w, _ := Detail([]byte(`{"id":"w","name":"Shop","url":"shop.example","createdAt":"2024-03-01T10:00:00Z"}`), "website", Website)
	assert.Equal(t, "shop.example", w.Domain)
	if assert.NotNil(t, w.CreatedAt) {
		assert.Equal(t, 2024, w.CreatedAt.Year())
	}

	w, _ = Detail([]byte(`{"id":"w","createdAt":"yesterday"}`), "website", Website)
	assert.Nil(t, w.CreatedAt)
}
