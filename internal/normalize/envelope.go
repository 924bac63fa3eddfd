// Package normalize coerces the backend's inconsistent payload shapes into the
// canonical list and detail shapes the console works with.
package normalize

import (
	"github.com/tidwall/gjson"

	"github.com/spec-kit/backoffice-console/internal/domain"
)

// Shape names the envelope a payload was recognised as.
type Shape string

const (
	ShapeListTotal  Shape = "list_total"
	ShapeData       Shape = "data"
	ShapeDataList   Shape = "data_list"
	ShapeArray      Shape = "array"
	ShapeEntities   Shape = "entities"
	ShapeItems      Shape = "items"
	ShapeNamed      Shape = "named"
	ShapeDataObject Shape = "data_object"
	ShapeObject     Shape = "object"
	ShapeNone       Shape = "none"
)

// Decoder maps one JSON element to an entity.
type Decoder[T any] func(gjson.Result) T

type listShape struct {
	shape Shape
	match func(root gjson.Result, named string) (items, meta gjson.Result, ok bool)
}

func arrayAt(path string) func(gjson.Result, string) (gjson.Result, gjson.Result, bool) {
	return func(root gjson.Result, _ string) (gjson.Result, gjson.Result, bool) {
		items := root.Get(path)
		return items, root, items.IsArray()
	}
}

// listShapes is tried in order; the first match wins.
var listShapes = []listShape{
	{ShapeListTotal, arrayAt("list")},
	{ShapeData, arrayAt("data")},
	{ShapeDataList, func(root gjson.Result, _ string) (gjson.Result, gjson.Result, bool) {
		items := root.Get("data.list")
		return items, root.Get("data"), items.IsArray()
	}},
	{ShapeArray, func(root gjson.Result, _ string) (gjson.Result, gjson.Result, bool) {
		return root, gjson.Result{}, root.IsArray()
	}},
	{ShapeEntities, arrayAt("entities")},
	{ShapeItems, arrayAt("items")},
	{ShapeNamed, func(root gjson.Result, named string) (gjson.Result, gjson.Result, bool) {
		if named == "" {
			return gjson.Result{}, gjson.Result{}, false
		}
		items := root.Get(named)
		return items, root, items.IsArray()
	}},
}

// List decodes a collection payload. named is the entity's plural key, e.g.
// "sellers". A payload matching no known shape yields an empty list and
// ShapeNone.
func List[T any](body []byte, named string, decode Decoder[T]) (domain.List[T], Shape) {
	out := domain.List[T]{List: []T{}}
	if !gjson.ValidBytes(body) {
		return out, ShapeNone
	}
	root := gjson.ParseBytes(body)
	for _, candidate := range listShapes {
		items, meta, ok := candidate.match(root, named)
		if !ok {
			continue
		}
		for _, item := range items.Array() {
			out.List = append(out.List, decode(item))
		}
		out.Total = total(meta, len(out.List))
		return out, candidate.shape
	}
	return out, ShapeNone
}

// Detail decodes a single-entity payload: {data:{...}}, {<singular>:{...}}
// or a bare object.
func Detail[T any](body []byte, singular string, decode Decoder[T]) (T, Shape) {
	var zero T
	if !gjson.ValidBytes(body) {
		return zero, ShapeNone
	}
	root := gjson.ParseBytes(body)
	if data := root.Get("data"); data.IsObject() {
		return decode(data), ShapeDataObject
	}
	if singular != "" {
		if named := root.Get(singular); named.IsObject() {
			return decode(named), ShapeNamed
		}
	}
	if root.IsObject() {
		return decode(root), ShapeObject
	}
	return zero, ShapeNone
}

func total(meta gjson.Result, fallback int) int {
	if !meta.IsObject() {
		return fallback
	}
	for _, path := range []string{"total", "count", "totalCount", "meta.total", "pagination.total"} {
		if v := meta.Get(path); v.Exists() && v.Type == gjson.Number {
			return int(v.Int())
		}
	}
	return fallback
}
