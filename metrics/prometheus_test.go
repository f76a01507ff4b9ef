// Copyright (c) 2024 The VeChainThor developers
// Copyright (c) 2026 The ALI Staking developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// #nosec G404
package metrics

import (
	"io"
	"math/rand/v2"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	dto "github.com/prometheus/client_model/go"
)

func gather(t *testing.T) map[string]*dto.MetricFamily {
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	out := make(map[string]*dto.MetricFamily)
	for _, mf := range families {
		out[mf.GetName()] = mf
	}
	return out
}

func TestPromMetrics(t *testing.T) {
	InitializePrometheusMetrics()

	count := Counter("test_sent")
	countVec := CounterVec("test_txs", []string{"status"})
	hist := Histogram("test_gas", BucketGas)
	gauge := Gauge("test_height")

	n := rand.N(50) + 2
	histTotal, vecTotal := 0, 0
	for i := range n {
		// the same meter is returned on every lookup
		Counter("test_sent").Add(1)
		countVec.AddWithLabel(int64(i), map[string]string{"status": strconv.Itoa(i % 2)})
		hist.Observe(int64(21_000 + i))
		gauge.Set(int64(i))
		histTotal += 21_000 + i
		vecTotal += i
	}
	count.Add(1)

	families := gather(t)
	require.Equal(t, float64(n+1), families["stakedeploy_test_sent"].Metric[0].GetCounter().GetValue())
	require.Equal(t, float64(histTotal), families["stakedeploy_test_gas"].Metric[0].GetHistogram().GetSampleSum())
	require.Equal(t, float64(n-1), families["stakedeploy_test_height"].Metric[0].GetGauge().GetValue())
	vec := families["stakedeploy_test_txs"].Metric
	require.Len(t, vec, 2)
	require.Equal(t, float64(vecTotal), vec[0].GetCounter().GetValue()+vec[1].GetCounter().GetValue())

	server := httptest.NewServer(HTTPHandler())
	t.Cleanup(server.Close)
	resp, err := server.Client().Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "stakedeploy_test_sent")
}

func TestLazyLoading(t *testing.T) {
	metrics = defaultNoopMetrics()

	for _, a := range []any{
		Gauge("noopGauge"),
		Counter("noopCounter"),
		CounterVec("noopCounter", nil),
		Histogram("noopHist", nil),
	} {
		require.IsType(t, &noopMeters{}, a)
	}

	lazyGauge := LazyLoadGauge("lazy_gauge")
	lazyCounter := LazyLoadCounter("lazy_counter")
	lazyCounterVec := LazyLoadCounterVec("lazy_counter_vec", nil)
	lazyHistogram := LazyLoadHistogram("lazy_histogram", nil)

	// meters resolve to prometheus after initialization
	InitializePrometheusMetrics()

	require.IsType(t, &promGaugeMeter{}, lazyGauge())
	require.IsType(t, &promCountMeter{}, lazyCounter())
	require.IsType(t, &promCountVecMeter{}, lazyCounterVec())
	require.IsType(t, &promHistogramMeter{}, lazyHistogram())
}
