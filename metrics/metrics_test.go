package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/medichat/graph"
)

func TestObserveRequest(t *testing.T) {
	m := New()
	m.ObserveRequest("/get", http.MethodPost, 200, 120*time.Millisecond)
	m.ObserveRequest("/get", http.MethodPost, 200, 80*time.Millisecond)
	m.ObserveRequest("/get", http.MethodPost, 400, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("/get", "POST", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("/get", "POST", "400")))
}

func TestGraphHook(t *testing.T) {
	m := New()
	hook := m.GraphHook()

	hook.OnEvent(context.Background(), &graph.TraceSpan{Event: graph.TraceEventNodeEnd, NodeName: "retrieve", Duration: time.Second})
	hook.OnEvent(context.Background(), &graph.TraceSpan{Event: graph.TraceEventNodeError, NodeName: "generate", Error: errors.New("x")})
	hook.OnEvent(context.Background(), &graph.TraceSpan{Event: graph.TraceEventNodeStart, NodeName: "generate"})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.nodeErrors.WithLabelValues("generate")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.nodeErrors.WithLabelValues("retrieve")))
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveRetrieval(3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), "medichat_retrieved_documents_count 1")
	assert.Contains(t, string(body), "go_goroutines")
}
