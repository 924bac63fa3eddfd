package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/backoffice-console/internal/api/dto"
	"github.com/spec-kit/backoffice-console/internal/auth"
	"github.com/spec-kit/backoffice-console/internal/domain"
	"github.com/spec-kit/backoffice-console/internal/service"
	"github.com/spec-kit/backoffice-console/internal/session"
	apperrors "github.com/spec-kit/backoffice-console/pkg/util"
)

// flowFor binds the request's session to a navigation recorder. The
// redirect target is read from the query or the form under redirectKey.
func flowFor(c *fiber.Ctx, redirectKey string) (service.Flow, *session.Recorder, error) {
	sess, ok := auth.SessionFromContext(c)
	if !ok {
		return service.Flow{}, nil, apperrors.NewInternalError(errors.New("request has no session"))
	}
	rec := &session.Recorder{}
	redirect := c.Query(redirectKey)
	if redirect == "" {
		redirect = c.FormValue(redirectKey)
	}
	return service.Flow{Session: sess, Navigator: rec, RedirectURL: strings.Clone(redirect)}, rec, nil
}

// wantsJSON reports whether the caller is a script rather than a form post.
func wantsJSON(c *fiber.Ctx) bool {
	if strings.Contains(c.Get(fiber.HeaderAccept), fiber.MIMEApplicationJSON) {
		return true
	}
	return strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON)
}

// respondAuth answers an auth flow. JSON callers get the result and the
// navigation target; browsers are redirected, back to formPath on failure.
func respondAuth(c *fiber.Ctx, res service.Result, rec *session.Recorder, failureStatus int, formPath string) error {
	if wantsJSON(c) {
		status := http.StatusOK
		if res.Status != domain.AuthStatusSuccess {
			status = failureStatus
		}
		return c.Status(status).JSON(dto.AuthResult{
			Status:   string(res.Status),
			Message:  res.Message,
			Redirect: rec.Target,
		})
	}
	if res.Status == domain.AuthStatusSuccess && rec.Target != "" {
		return c.Redirect(rec.Target, fiber.StatusSeeOther)
	}
	q := url.Values{}
	if res.Message != "" {
		q.Set("error", res.Message)
	}
	target := formPath
	if len(q) > 0 {
		target += "?" + q.Encode()
	}
	return c.Redirect(target, fiber.StatusSeeOther)
}

// bind parses the body into v and validates it.
func bind(c *fiber.Ctx, v validation.Validatable) error {
	if err := c.BodyParser(v); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := v.Validate(); err != nil {
		details := map[string]any{}
		var fieldErrs validation.Errors
		if errors.As(err, &fieldErrs) {
			for field, fieldErr := range fieldErrs {
				details[field] = fieldErr.Error()
			}
		}
		return apperrors.NewValidationError("validation failed", details)
	}
	return nil
}

func queryValues(c *fiber.Ctx) url.Values {
	values := url.Values{}
	c.Request().URI().QueryArgs().VisitAll(func(key, value []byte) {
		values.Add(string(key), string(value))
	})
	return values
}
