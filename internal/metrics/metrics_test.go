package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordProviderAttempt(t *testing.T) {
	success := AIProviderAttemptsTotal.WithLabelValues("test-provider", "success")
	failure := AIProviderAttemptsTotal.WithLabelValues("test-provider", "error")
	beforeOK := testutil.ToFloat64(success)
	beforeErr := testutil.ToFloat64(failure)

	RecordProviderAttempt("test-provider", 0.2, nil)
	RecordProviderAttempt("test-provider", 1.5, errors.New("timeout"))
	RecordProviderAttempt("test-provider", 0.1, errors.New("bad key"))

	assert.Equal(t, beforeOK+1, testutil.ToFloat64(success))
	assert.Equal(t, beforeErr+2, testutil.ToFloat64(failure))
}

func TestBusinessCounters(t *testing.T) {
	before := testutil.ToFloat64(RedirectsTotal)
	RecordRedirect()
	RecordRedirect()
	assert.Equal(t, before+2, testutil.ToFloat64(RedirectsTotal))

	fallbacks := testutil.ToFloat64(AITemplateFallbacksTotal)
	RecordTemplateFallback()
	assert.Equal(t, fallbacks+1, testutil.ToFloat64(AITemplateFallbacksTotal))

	ar := ArticlesCreatedTotal.WithLabelValues("ar")
	arBefore := testutil.ToFloat64(ar)
	RecordArticleCreated("ar")
	assert.Equal(t, arBefore+1, testutil.ToFloat64(ar))
}
