package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(hordeCallLatencyMs) }

var hordeCallLatencyMs = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "horde_api_call_latency_ms",
		Help:    "Horde API call latency distribution in milliseconds.",
		Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000, 10000},
	},
	[]string{"operation", "success"},
)

// ObserveHordeCall starts a latency observation for one API call. The returned
// func records the measurement with the final success flag.
func ObserveHordeCall(operation string) func(success bool) {
	start := time.Now()
	return func(success bool) {
		hordeCallLatencyMs.WithLabelValues(norm(operation), strconv.FormatBool(success)).
			Observe(float64(time.Since(start) / time.Millisecond))
	}
}
