package choice

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestPrometheusObserverCountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := NewPrometheusObserver(reg)
	require.NoError(t, err)

	obs.FetchStarted("cities")
	obs.FetchStarted("cities")
	obs.FetchApplied("cities", 3)
	obs.FetchDiscarded("cities")
	obs.FetchFailed("cities", errors.New("boom"))

	require.Equal(t, 2.0, testutil.ToFloat64(obs.fetches.WithLabelValues("cities", outcomeStarted)))
	require.Equal(t, 1.0, testutil.ToFloat64(obs.fetches.WithLabelValues("cities", outcomeApplied)))
	require.Equal(t, 1.0, testutil.ToFloat64(obs.fetches.WithLabelValues("cities", outcomeDiscarded)))
	require.Equal(t, 1.0, testutil.ToFloat64(obs.fetches.WithLabelValues("cities", outcomeFailed)))
}

func TestPrometheusObserverReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPrometheusObserver(reg)
	require.NoError(t, err)
	second, err := NewPrometheusObserver(reg)
	require.NoError(t, err)

	first.FetchStarted("zones")
	second.FetchStarted("zones")
	require.Equal(t, 2.0, testutil.ToFloat64(second.fetches.WithLabelValues("zones", outcomeStarted)))
}
