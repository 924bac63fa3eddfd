package handlers

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/backoffice-console/internal/service"
	apperrors "github.com/spec-kit/backoffice-console/pkg/util"
)

const idempotencyKeyHeader = "Idempotency-Key"

// ResourceHandler serves the CRUD screens of one resource. P is the write
// payload, validated before it is sent to the backend.
type ResourceHandler[T any, P any] struct {
	resources   *service.ResourceService[T]
	redirectKey string
}

// NewResourceHandler constructs handler.
func NewResourceHandler[T any, P any](resources *service.ResourceService[T], redirectKey string) *ResourceHandler[T, P] {
	return &ResourceHandler[T, P]{resources: resources, redirectKey: redirectKey}
}

// List handles GET /{resource}.
func (h *ResourceHandler[T, P]) List(c *fiber.Ctx) error {
	flow, _, err := flowFor(c, h.redirectKey)
	if err != nil {
		return err
	}
	list, err := h.resources.List(c.UserContext(), flow, queryValues(c))
	if err != nil {
		return err
	}
	return c.JSON(list)
}

// Get handles GET /{resource}/:id.
func (h *ResourceHandler[T, P]) Get(c *fiber.Ctx) error {
	flow, _, err := flowFor(c, h.redirectKey)
	if err != nil {
		return err
	}
	item, err := h.resources.Get(c.UserContext(), flow, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": item})
}

// Create handles POST /{resource}.
func (h *ResourceHandler[T, P]) Create(c *fiber.Ctx) error {
	payload, err := h.payload(c)
	if err != nil {
		return err
	}
	flow, _, err := flowFor(c, h.redirectKey)
	if err != nil {
		return err
	}
	item, err := h.resources.Create(c.UserContext(), flow, payload, c.Get(idempotencyKeyHeader))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": item})
}

// Update handles PUT /{resource}/:id.
func (h *ResourceHandler[T, P]) Update(c *fiber.Ctx) error {
	payload, err := h.payload(c)
	if err != nil {
		return err
	}
	flow, _, err := flowFor(c, h.redirectKey)
	if err != nil {
		return err
	}
	item, err := h.resources.Update(c.UserContext(), flow, c.Params("id"), payload, c.Get(idempotencyKeyHeader))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": item})
}

// Delete handles DELETE /{resource}/:id.
func (h *ResourceHandler[T, P]) Delete(c *fiber.Ctx) error {
	flow, _, err := flowFor(c, h.redirectKey)
	if err != nil {
		return err
	}
	if err := h.resources.Delete(c.UserContext(), flow, c.Params("id"), c.Get(idempotencyKeyHeader)); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func (h *ResourceHandler[T, P]) payload(c *fiber.Ctx) (*P, error) {
	payload := new(P)
	if v, ok := any(payload).(validation.Validatable); ok {
		if err := bind(c, v); err != nil {
			return nil, err
		}
		return payload, nil
	}
	if err := c.BodyParser(payload); err != nil {
		return nil, apperrors.NewValidationError("invalid payload", nil)
	}
	return payload, nil
}
