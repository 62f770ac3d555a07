package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(jobsFinishedTotal, kudosSpentTotal) }

var jobsFinishedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "horde_jobs_finished_total",
		Help: "Generation jobs driven to a terminal state, labeled by outcome.",
	},
	[]string{"outcome"}, // 'completed', 'impossible', 'cancelled', 'fetch_exhausted'
)

var kudosSpentTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "horde_kudos_spent_total",
		Help: "Total kudos the service reported spent on completed jobs.",
	},
)

func IncJobFinished(outcome string) {
	jobsFinishedTotal.WithLabelValues(norm(outcome)).Inc()
}

func AddKudosSpent(kudos float64) {
	if kudos > 0 {
		kudosSpentTotal.Add(kudos)
	}
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
