package outbox

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/botica-pos/botica/internal/syncer"
)

func TestClientPush(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/sync/push", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")

		var req syncer.PushRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Products, 1)

		_ = json.NewEncoder(w).Encode(syncer.PushResponse{
			Success: true,
			Synced:  map[string][]string{syncer.TypeProducts: {req.Products[0].ID}},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok-123", srv.Client())
	resp, err := c.Push(context.Background(), syncer.PushRequest{
		Products: []syncer.ProductDTO{{ID: "p1", Name: "Zinc", UpdatedAt: time.Now()}},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"p1"}, resp.Synced[syncer.TypeProducts])
	require.Equal(t, "Bearer tok-123", gotAuth)
}

func TestClientPullSendsWatermark(t *testing.T) {
	since := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/sync/pull", r.URL.Path)
		require.Equal(t, since.Format(time.RFC3339), r.URL.Query().Get("lastSyncAt"))
		_ = json.NewEncoder(w).Encode(syncer.PullResponse{Success: true, ServerTime: since.Add(time.Minute)})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok-123", srv.Client())
	resp, err := c.Pull(context.Background(), &since)
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.Equal(t, since.Add(time.Minute), resp.ServerTime.UTC())
}

func TestClientSurfacesHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok-123", srv.Client())
	_, err := c.Push(context.Background(), syncer.PushRequest{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "500")
}
