package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/v1/careers", "200"))

	RecordAPIRequest("GET", "/v1/careers", 200, 15*time.Millisecond)

	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/v1/careers", "200"))
	assert.Equal(t, before+1, after)
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)

	TrackActiveRequest(true)
	assert.Equal(t, before+1, testutil.ToFloat64(APIActiveRequests))

	TrackActiveRequest(false)
	assert.Equal(t, before, testutil.ToFloat64(APIActiveRequests))
}

func TestRecordCacheLookup(t *testing.T) {
	hits := testutil.ToFloat64(CacheHits.WithLabelValues("memory"))
	misses := testutil.ToFloat64(CacheMisses.WithLabelValues("memory"))

	RecordCacheLookup("memory", true)
	RecordCacheLookup("memory", false)
	RecordCacheLookup("memory", false)

	assert.Equal(t, hits+1, testutil.ToFloat64(CacheHits.WithLabelValues("memory")))
	assert.Equal(t, misses+2, testutil.ToFloat64(CacheMisses.WithLabelValues("memory")))
}

func TestRecordDBQuery(t *testing.T) {
	errsBefore := testutil.ToFloat64(DBQueryErrors.WithLabelValues("list_careers"))

	RecordDBQuery("list_careers", time.Millisecond, nil)
	assert.Equal(t, errsBefore, testutil.ToFloat64(DBQueryErrors.WithLabelValues("list_careers")))

	RecordDBQuery("list_careers", time.Millisecond, errors.New("connection refused"))
	assert.Equal(t, errsBefore+1, testutil.ToFloat64(DBQueryErrors.WithLabelValues("list_careers")))
}

func TestRecordEngine(t *testing.T) {
	RecordEngine("recommend", 200*time.Microsecond)
	assert.GreaterOrEqual(t, testutil.CollectAndCount(EngineDuration, "career_engine_duration_seconds"), 1)
}
