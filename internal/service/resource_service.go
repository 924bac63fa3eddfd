package service

import (
	"context"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/spec-kit/backoffice-console/internal/backend"
	"github.com/spec-kit/backoffice-console/internal/domain"
	"github.com/spec-kit/backoffice-console/internal/normalize"
	"github.com/spec-kit/backoffice-console/internal/observability"
	apperrors "github.com/spec-kit/backoffice-console/pkg/util"
)

// ResourceBackend is the part of the backend API the CRUD screens need.
type ResourceBackend interface {
	Fetch(ctx context.Context, token, path string, query url.Values) ([]byte, error)
	Send(ctx context.Context, method, token, path string, body any, idempotencyKey string) ([]byte, error)
}

// SessionExpirer ends a session whose token the backend no longer accepts.
type SessionExpirer interface {
	Expire(ctx context.Context, flow Flow)
}

// Resource describes one backend collection.
type Resource[T any] struct {
	// Name is the collection path segment and the entity-named list key.
	Name string
	// Singular is the entity-named key of a detail payload.
	Singular string
	Decode   normalize.Decoder[T]
}

// Catalog resources served by the console.
var (
	Websites   = Resource[domain.Website]{Name: "websites", Singular: "website", Decode: normalize.Website}
	Sellers    = Resource[domain.Seller]{Name: "sellers", Singular: "seller", Decode: normalize.Seller}
	Categories = Resource[domain.Category]{Name: "categories", Singular: "category", Decode: normalize.Category}
	Products   = Resource[domain.Product]{Name: "products", Singular: "product", Decode: normalize.Product}
	Users      = Resource[domain.User]{Name: "users", Singular: "user", Decode: normalize.User}
)

// ResourceService proxies CRUD calls for one resource and normalizes what
// the backend returns.
type ResourceService[T any] struct {
	resource Resource[T]
	backend  ResourceBackend
	sessions SessionExpirer
	logger   *zap.Logger
	metrics  *observability.Metrics
}

// NewResourceService constructs the service for res.
func NewResourceService[T any](res Resource[T], be ResourceBackend, sessions SessionExpirer, logger *zap.Logger, metrics *observability.Metrics) *ResourceService[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResourceService[T]{
		resource: res,
		backend:  be,
		sessions: sessions,
		logger:   logger.With(zap.String("resource", res.Name)),
		metrics:  metrics,
	}
}

// Name returns the resource's collection name.
func (s *ResourceService[T]) Name() string {
	return s.resource.Name
}

// List fetches a page of the collection. Unrecognised payloads yield an
// empty list.
func (s *ResourceService[T]) List(ctx context.Context, flow Flow, query url.Values) (domain.List[T], error) {
	token, err := s.token(ctx, flow)
	if err != nil {
		return domain.List[T]{}, err
	}
	body, err := s.backend.Fetch(ctx, token, s.collectionPath(), query)
	if err != nil {
		return domain.List[T]{}, s.backendError(ctx, flow, err)
	}

	list, shape := normalize.List(body, s.resource.Name, s.resource.Decode)
	s.recordShape(shape)
	return list, nil
}

// Get fetches one entity.
func (s *ResourceService[T]) Get(ctx context.Context, flow Flow, id string) (T, error) {
	var zero T
	token, err := s.token(ctx, flow)
	if err != nil {
		return zero, err
	}
	body, err := s.backend.Fetch(ctx, token, s.itemPath(id), nil)
	if err != nil {
		return zero, s.backendError(ctx, flow, err)
	}

	item, shape := normalize.Detail(body, s.resource.Singular, s.resource.Decode)
	s.recordShape(shape)
	if shape == normalize.ShapeNone {
		return zero, apperrors.NewBadGateway("unexpected backend payload", nil)
	}
	return item, nil
}

// Create posts a new entity and returns what the backend echoed back.
func (s *ResourceService[T]) Create(ctx context.Context, flow Flow, payload any, idempotencyKey string) (T, error) {
	return s.write(ctx, flow, http.MethodPost, s.collectionPath(), payload, idempotencyKey)
}

// Update replaces entity id.
func (s *ResourceService[T]) Update(ctx context.Context, flow Flow, id string, payload any, idempotencyKey string) (T, error) {
	return s.write(ctx, flow, http.MethodPut, s.itemPath(id), payload, idempotencyKey)
}

// Delete removes entity id.
func (s *ResourceService[T]) Delete(ctx context.Context, flow Flow, id, idempotencyKey string) error {
	token, err := s.token(ctx, flow)
	if err != nil {
		return err
	}
	if _, err := s.backend.Send(ctx, http.MethodDelete, token, s.itemPath(id), nil, idempotencyKey); err != nil {
		return s.backendError(ctx, flow, err)
	}
	return nil
}

func (s *ResourceService[T]) write(ctx context.Context, flow Flow, method, path string, payload any, idempotencyKey string) (T, error) {
	var zero T
	token, err := s.token(ctx, flow)
	if err != nil {
		return zero, err
	}
	body, err := s.backend.Send(ctx, method, token, path, payload, idempotencyKey)
	if err != nil {
		return zero, s.backendError(ctx, flow, err)
	}
	if len(body) == 0 {
		return zero, nil
	}
	item, shape := normalize.Detail(body, s.resource.Singular, s.resource.Decode)
	s.recordShape(shape)
	return item, nil
}

func (s *ResourceService[T]) token(ctx context.Context, flow Flow) (string, error) {
	token, err := flow.Session.Token(ctx)
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}
	return token, nil
}

// backendError expires the session on 401 and maps transport failures.
// Other backend answers keep their status for the error middleware.
func (s *ResourceService[T]) backendError(ctx context.Context, flow Flow, err error) error {
	switch {
	case backend.IsUnauthorized(err):
		s.logger.Info("backend rejected token, expiring session", zap.String("session_id", flow.Session.ID()))
		if s.sessions != nil {
			s.sessions.Expire(ctx, flow)
		}
		return apperrors.NewUnauthorized("session expired")
	case backend.IsNetwork(err):
		s.logger.Warn("backend unreachable", zap.Error(err))
		return apperrors.NewBadGateway(NetworkErrorMessage, err)
	default:
		return err
	}
}

func (s *ResourceService[T]) recordShape(shape normalize.Shape) {
	if shape == normalize.ShapeNone {
		s.logger.Warn("unrecognised backend payload")
	} else {
		s.logger.Debug("backend payload normalized", zap.String("shape", string(shape)))
	}
	s.metrics.RecordShape(s.resource.Name, string(shape))
}

func (s *ResourceService[T]) collectionPath() string {
	return "/" + s.resource.Name
}

func (s *ResourceService[T]) itemPath(id string) string {
	return "/" + s.resource.Name + "/" + url.PathEscape(id)
}
