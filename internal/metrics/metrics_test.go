package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"protanni/internal/optimistic"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMutationTotals(t *testing.T) {
	m := New(false)
	m.ObserveMutation("tasks", "toggle", optimistic.Committed, "", 10*time.Millisecond)
	m.ObserveMutation("tasks", "toggle", optimistic.Committed, "", 10*time.Millisecond)
	m.ObserveMutation("habits", "toggle", optimistic.RolledBack, optimistic.KindRejected, time.Millisecond)
	m.ObserveMutation("habits", "toggle", optimistic.Skipped, "", 0)

	totals := m.MutationTotals()
	assert.Equal(t, 2, totals[optimistic.Committed])
	assert.Equal(t, 1, totals[optimistic.RolledBack])
	assert.Equal(t, 1, totals[optimistic.Skipped])
	assert.Equal(t, 0, totals[optimistic.Stale])
}

func TestHandlerExposesCounters(t *testing.T) {
	m := New(false)
	m.ObserveHTTP("/api/tasks", "GET", 200, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(string(body), `protanni_http_requests_total{code="200",method="GET",route="/api/tasks"} 1`), string(body))
}

func TestImplementsObserver(t *testing.T) {
	var _ optimistic.Observer = New(false)
}
