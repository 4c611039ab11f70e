package syncer

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/botica-pos/botica/internal/shared"
)

func newTestRouter(t *testing.T) (*chi.Mux, *memStore) {
	t.Helper()
	svc, store, _ := newTestService(t)
	r := chi.NewRouter()
	r.Route("/sync", func(sr chi.Router) {
		NewHandler(svc, nil).MountRoutes(sr)
	})
	return r, store
}

func asManager(r *http.Request) *http.Request {
	return r.WithContext(shared.ContextWithIdentity(r.Context(), manager()))
}

func TestHandlerPushRoundTrip(t *testing.T) {
	router, store := newTestRouter(t)

	body := `{
		"products": [{"id": "p1", "name": "Paracetamol", "price": 2.5, "stock": 10, "minStock": 2, "updatedAt": "2025-03-10T10:00:00Z"}]
	}`
	req := asManager(httptest.NewRequest(http.MethodPost, "/sync/push", strings.NewReader(body)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp PushResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Equal(t, []string{"p1"}, resp.Synced["products"])
	require.Contains(t, store.products, "p1")
}

func TestHandlerPushMalformedBody(t *testing.T) {
	router, _ := newTestRouter(t)

	req := asManager(httptest.NewRequest(http.MethodPost, "/sync/push", strings.NewReader(`{not json`)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerRequiresIdentity(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, tc := range []struct {
		method, path string
	}{
		{http.MethodPost, "/sync/push"},
		{http.MethodGet, "/sync/pull"},
		{http.MethodPost, "/sync/audit"},
	} {
		req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code, tc.path)
	}
}

func TestHandlerPullInvalidWatermark(t *testing.T) {
	router, _ := newTestRouter(t)

	req := asManager(httptest.NewRequest(http.MethodGet, "/sync/pull?lastSyncAt=yesterday", nil))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerPullReturnsServerTime(t *testing.T) {
	router, store := newTestRouter(t)

	req := asManager(httptest.NewRequest(http.MethodGet, "/sync/pull", nil))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp PullResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Equal(t, store.clock, resp.ServerTime.UTC())
}

func TestHandlerAudit(t *testing.T) {
	router, _ := newTestRouter(t)

	body := `{"sales": [{"id": "ghost", "total": 3}]}`
	req := asManager(httptest.NewRequest(http.MethodPost, "/sync/audit", strings.NewReader(body)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp AuditResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, AuditIssuesFound, resp.Status)
	require.Len(t, resp.Issues, 1)
}
