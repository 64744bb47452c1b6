package metrics_test

import (
	"testing"

	"github.com/jrsteele09/go-booking-auth/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.SessionTransition("authenticated")
	m.LoginAttempt("rejected")
	m.LinkGenerated()
	m.LinkGenerated()
	m.LinkResolved("malformed")

	count, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	require.Equal(t, 4, count)

	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == "booking_link_generated_total" {
			require.Equal(t, float64(2), f.GetMetric()[0].GetCounter().GetValue())
		}
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *metrics.Metrics
	require.NotPanics(t, func() {
		m.SessionTransition("authenticated")
		m.LoginAttempt("ok")
		m.LinkGenerated()
		m.LinkResolved("ok")
	})
}
