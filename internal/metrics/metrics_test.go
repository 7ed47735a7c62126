package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestHandlerExposesCounters(t *testing.T) {
	before := testutil.ToFloat64(PaymentEvents.WithLabelValues("recorded"))
	PaymentEvents.WithLabelValues("recorded").Inc()
	require.Equal(t, before+1, testutil.ToFloat64(PaymentEvents.WithLabelValues("recorded")))

	Reconciliations.WithLabelValues("order", ResultOK).Inc()

	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(body), "paytrack_payment_events_total"))
	require.True(t, strings.Contains(string(body), `paytrack_reconciliations_total{result="ok",stage="order"}`))
}
