package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wagedash/internal/engine"
	"wagedash/internal/views"
)

func TestRecorder_ObserveView(t *testing.T) {
	r := New()

	r.ObserveView(views.KindGeo, time.Millisecond, nil)
	r.ObserveView(views.KindGeo, time.Millisecond, &views.StageError{View: views.KindGeo, Stage: views.StageNormalize, Err: engine.ErrDegenerateRange})
	r.ObserveView(views.KindAge, time.Millisecond, errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(r.viewTotal.WithLabelValues("geo", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.viewTotal.WithLabelValues("geo", "normalize")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.viewTotal.WithLabelValues("age", "error")))
}

func TestRecorder_ObserveMergeAndDatasets(t *testing.T) {
	r := New()

	r.ObserveMerge(views.KindTrend, engine.MergeStats{Rows: 3, LeftUnmatched: 2, RightUnmatched: 1})
	assert.Equal(t, 2.0, testutil.ToFloat64(r.mergeDropped.WithLabelValues("trend", "left")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.mergeDropped.WithLabelValues("trend", "right")))

	data := views.NewDatasets(
		map[string]*engine.Table{"geo": engine.MustTable(engine.StringColumn("region", "Tokyo", "Osaka"))},
		map[string]error{"national": engine.ErrIO},
	)
	r.ObserveDatasets(data)
	assert.Equal(t, 2.0, testutil.ToFloat64(r.datasetRows.WithLabelValues("geo")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.datasetFailed.WithLabelValues("national")))
}

func TestRecorder_Handler(t *testing.T) {
	r := New()
	r.ObserveView(views.KindIndustry, time.Millisecond, nil)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `wagedash_view_computations_total{outcome="ok",view="industry"} 1`)
}
