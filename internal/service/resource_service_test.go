package service

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/backoffice-console/internal/backend"
	"github.com/spec-kit/backoffice-console/internal/domain"
	"github.com/spec-kit/backoffice-console/internal/session"
	apperrors "github.com/spec-kit/backoffice-console/pkg/util"
)

type call struct {
	method, token, path, key string
	query                    url.Values
	body                     any
}

type fakeResourceBackend struct {
	calls    []call
	response []byte
	err      error
}

func (f *fakeResourceBackend) Fetch(_ context.Context, token, path string, query url.Values) ([]byte, error) {
	f.calls = append(f.calls, call{method: http.MethodGet, token: token, path: path, query: query})
	return f.response, f.err
}

func (f *fakeResourceBackend) Send(_ context.Context, method, token, path string, body any, key string) ([]byte, error) {
	f.calls = append(f.calls, call{method: method, token: token, path: path, body: body, key: key})
	return f.response, f.err
}

type expirerSpy struct {
	expired int
}

func (e *expirerSpy) Expire(context.Context, Flow) {
	e.expired++
}

func resourceFlow(t *testing.T) Flow {
	t.Helper()
	store := newMemoryStore()
	sess, err := session.Load(context.Background(), "sid-r", store, session.NewMemoryStateRepository())
	require.NoError(t, err)
	require.NoError(t, sess.Establish(context.Background(), domain.Token{AccessToken: "abc"}, domain.User{UserName: "admin"}))
	return Flow{Session: sess, Navigator: &session.Recorder{}}
}

func TestResourceListNormalizesAndAttachesToken(t *testing.T) {
	be := &fakeResourceBackend{response: []byte(`{"data":{"list":[{"id":1,"title":"Shop","url":"shop.example.com"}],"total":9}}`)}
	svc := NewResourceService(Websites, be, &expirerSpy{}, nil, nil)

	list, err := svc.List(context.Background(), resourceFlow(t), url.Values{"page": {"2"}})
	require.NoError(t, err)
	assert.Equal(t, 9, list.Total)
	require.Len(t, list.List, 1)
	assert.Equal(t, domain.Website{ID: "1", Name: "Shop", Domain: "shop.example.com"}, list.List[0])

	require.Len(t, be.calls, 1)
	assert.Equal(t, "abc", be.calls[0].token)
	assert.Equal(t, "/websites", be.calls[0].path)
	assert.Equal(t, "2", be.calls[0].query.Get("page"))
}

func TestResourceListFailsClosed(t *testing.T) {
	be := &fakeResourceBackend{response: []byte(`{"unexpected":true}`)}
	list, err := NewResourceService(Products, be, nil, nil, nil).List(context.Background(), resourceFlow(t), nil)
	require.NoError(t, err)
	assert.Empty(t, list.List)
	assert.Zero(t, list.Total)
}

func TestResourceGetRejectsUnknownPayload(t *testing.T) {
	be := &fakeResourceBackend{response: []byte(`[1,2]`)}
	_, err := NewResourceService(Sellers, be, nil, nil, nil).Get(context.Background(), resourceFlow(t), "s/1")
	de := apperrors.ToDomainError(err)
	assert.Equal(t, apperrors.CodeBadGateway, de.Code)
	assert.Equal(t, "/sellers/s%2F1", be.calls[0].path)
}

func TestResourceUnauthorizedExpiresSession(t *testing.T) {
	be := &fakeResourceBackend{err: &backend.Error{Status: http.StatusUnauthorized, Message: "jwt expired"}}
	spy := &expirerSpy{}
	_, err := NewResourceService(Users, be, spy, nil, nil).List(context.Background(), resourceFlow(t), nil)

	assert.Equal(t, 1, spy.expired)
	assert.Equal(t, apperrors.CodeUnauthorized, apperrors.ToDomainError(err).Code)
}

func TestResourceNetworkErrorIsBadGateway(t *testing.T) {
	be := &fakeResourceBackend{err: &backend.NetworkError{Method: "GET", Path: "/categories", Attempts: 4, Err: errors.New("connection refused")}}
	_, err := NewResourceService(Categories, be, nil, nil, nil).List(context.Background(), resourceFlow(t), nil)

	de := apperrors.ToDomainError(err)
	assert.Equal(t, apperrors.CodeBadGateway, de.Code)
	assert.Equal(t, NetworkErrorMessage, de.Message)
}

func TestResourceBackendAnswerKeepsStatus(t *testing.T) {
	be := &fakeResourceBackend{err: &backend.Error{Status: http.StatusNotFound, Message: "no such product"}}
	_, err := NewResourceService(Products, be, nil, nil, nil).Get(context.Background(), resourceFlow(t), "9")
	assert.Equal(t, http.StatusNotFound, apperrors.ToDomainError(err).HTTPStatus)
}

func TestResourceWrites(t *testing.T) {
	be := &fakeResourceBackend{response: []byte(`{"product":{"id":"p1","name":"Desk","price":"10.5"}}`)}
	svc := NewResourceService(Products, be, nil, nil, nil)
	flow := resourceFlow(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, flow, map[string]any{"name": "Desk"}, "key-1")
	require.NoError(t, err)
	assert.Equal(t, "p1", created.ID)
	assert.Equal(t, 10.5, created.Price)

	_, err = svc.Update(ctx, flow, "p1", map[string]any{"name": "Desk"}, "")
	require.NoError(t, err)

	be.response = nil
	require.NoError(t, svc.Delete(ctx, flow, "p1", ""))

	require.Len(t, be.calls, 3)
	assert.Equal(t, call{method: http.MethodPost, token: "abc", path: "/products", body: map[string]any{"name": "Desk"}, key: "key-1"}, be.calls[0])
	assert.Equal(t, http.MethodPut, be.calls[1].method)
	assert.Equal(t, "/products/p1", be.calls[1].path)
	assert.Equal(t, http.MethodDelete, be.calls[2].method)
}
