package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FetchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gemdesk_fetch_errors_total",
		Help: "Message store fetch failures by conversation kind.",
	}, []string{"kind"})

	MergesApplied = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gemdesk_merges_applied_total",
		Help: "Conversation merges applied by the aggregator.",
	})

	PollTicks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gemdesk_poll_ticks_total",
		Help: "Freshness poller ticks executed.",
	})

	PollRefreshes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gemdesk_poll_refreshes_total",
		Help: "Poll ticks that found and merged new messages.",
	})

	SendFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gemdesk_send_failures_total",
		Help: "Message sends rejected or failed against a backend store.",
	})
)
