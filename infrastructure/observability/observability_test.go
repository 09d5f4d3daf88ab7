package observability

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AlotfyDev/ArchiNote/domain/core/aggregates"
	"github.com/AlotfyDev/ArchiNote/infrastructure/persistence/memory"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_GraphMetrics(t *testing.T) {
	c := NewCollector("archinote")

	c.RecordGraphOperation("AddNode", true, time.Millisecond)
	c.RecordGraphOperation("AddNode", true, time.Millisecond)
	c.RecordGraphOperation("AddNode", false, time.Millisecond)
	c.SetGraphEntities(3, 2, 1)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.GraphOperations.WithLabelValues("AddNode", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.GraphOperations.WithLabelValues("AddNode", "error")))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.GraphEntities.WithLabelValues("node")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.GraphEntities.WithLabelValues("path")))
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector("archinote")
	c.RecordHTTPRequest(http.MethodGet, "/api/v1/nodes", http.StatusOK, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `archinote_http_requests_total{method="GET",route="/api/v1/nodes",status="200"} 1`)
}

func TestCollector_IndependentRegistries(t *testing.T) {
	a := NewCollector("archinote")
	b := NewCollector("archinote")
	a.RecordStoreOperation("memory", "save", true)
	assert.Equal(t, 0.0, testutil.ToFloat64(b.StoreOperations.WithLabelValues("memory", "save", "success")))

	a.ResetForTesting()
	assert.Equal(t, 0, testutil.CollectAndCount(a.StoreOperations))
}

func TestInstrumentedStore(t *testing.T) {
	ctx := context.Background()
	c := NewCollector("archinote")
	store := NewInstrumentedStore(memory.NewSnapshotStore(), "memory", c)

	require.NoError(t, store.Save(ctx, "g1", aggregates.Snapshot{Version: aggregates.SnapshotVersion}))
	_, err := store.Load(ctx, "g1")
	require.NoError(t, err)
	_, err = store.Load(ctx, "missing")
	require.Error(t, err)
	require.NoError(t, store.Delete(ctx, "g1"))

	assert.Equal(t, 1.0, testutil.ToFloat64(c.StoreOperations.WithLabelValues("memory", "save", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.StoreOperations.WithLabelValues("memory", "load", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.StoreOperations.WithLabelValues("memory", "load", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.StoreOperations.WithLabelValues("memory", "delete", "success")))
}

func TestInitTracing_Disabled(t *testing.T) {
	tp, err := InitTracing(context.Background(), TracingConfig{ServiceName: "archinote"})
	require.NoError(t, err)

	_, span := tp.Tracer().Start(context.Background(), "noop")
	span.End()
	assert.False(t, span.SpanContext().IsValid())
	assert.NoError(t, tp.Shutdown(context.Background()))
}
