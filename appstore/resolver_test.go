package appstore

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willsigmon/LeavnOfficial/interfaces"
)

func TestResolverAppByBundleID(t *testing.T) {
	router := chi.NewRouter()
	router.Get("/apps", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "com.example.leavn", r.URL.Query().Get("filter[bundleId]"))
		w.Write([]byte(`{"data":[{"type":"apps","id":"app-1","attributes":{"bundleId":"com.example.leavn","name":"Leavn"}}]}`))
	})

	client, _ := newTestClient(t, router)
	resolver := NewResolver(client, testLogger())

	app, err := resolver.AppByBundleID(context.Background(), "com.example.leavn")
	require.NoError(t, err)

	assert.Equal(t, "app-1", app.ID)
	assert.Equal(t, interfaces.BundleID("com.example.leavn"), app.BundleID)
	assert.Equal(t, "Leavn", app.Name)
}

func TestResolverAppByBundleIDNotFound(t *testing.T) {
	router := chi.NewRouter()
	router.Get("/apps", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	})

	client, _ := newTestClient(t, router)
	resolver := NewResolver(client, testLogger())

	_, err := resolver.AppByBundleID(context.Background(), "com.example.missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "com.example.missing")
}

func TestResolverLatestBuild(t *testing.T) {
	router := chi.NewRouter()
	router.Get("/builds", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		assert.Equal(t, "app-1", query.Get("filter[app]"))
		assert.Equal(t, "-uploadedDate", query.Get("sort"))
		assert.Equal(t, "1", query.Get("limit"))
		w.Write([]byte(`{"data":[{"type":"builds","id":"build-9","attributes":{"version":"1.4.0","buildNumber":"142","processingState":"VALID","uploadedDate":"2026-05-01T10:00:00Z"}}]}`))
	})

	client, _ := newTestClient(t, router)
	resolver := NewResolver(client, testLogger())

	build, err := resolver.LatestBuild(context.Background(), "app-1")
	require.NoError(t, err)

	assert.Equal(t, "build-9", build.ID)
	assert.Equal(t, "1.4.0", build.Version)
	assert.Equal(t, "142", build.BuildNumber)
	assert.Equal(t, interfaces.ProcessingState("VALID"), build.ProcessingState)
	assert.Equal(t, time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC), build.UploadedDate)
}

func TestResolverLatestBuildNone(t *testing.T) {
	router := chi.NewRouter()
	router.Get("/builds", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	})

	client, _ := newTestClient(t, router)
	resolver := NewResolver(client, testLogger())

	_, err := resolver.LatestBuild(context.Background(), "app-1")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestResolverBuildByID(t *testing.T) {
	router := chi.NewRouter()
	router.Get("/builds/build-9", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"type":"builds","id":"build-9","attributes":{"version":"1.4.0","buildNumber":"142","processingState":"PROCESSING","uploadedDate":"2026-05-01T10:00:00Z"}}}`))
	})

	client, _ := newTestClient(t, router)
	resolver := NewResolver(client, testLogger())

	build, err := resolver.BuildByID(context.Background(), "build-9")
	require.NoError(t, err)
	assert.Equal(t, interfaces.BuildProcessing, build.ProcessingState)
	assert.False(t, build.ProcessingState.Ready())
}
