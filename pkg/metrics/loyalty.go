package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Latency of the product scan HTTP handler
	ScanRequestLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "loyalty_scan_latency_seconds",
		Help:    "Latency of the product scan handler",
		Buckets: prometheus.DefBuckets,
	})

	// Total number of reward codes claimed
	CodesClaimedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "loyalty_codes_claimed_total",
		Help: "Total number of reward codes claimed, by scan kind",
	}, []string{"kind"})

	// Total number of redemption orders created
	RedemptionOrdersTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "loyalty_redemption_orders_total",
		Help: "Total number of redemption orders created",
	})
)

func Init() {
	prometheus.MustRegister(
		ScanRequestLatency,
		CodesClaimedTotal,
		RedemptionOrdersTotal,
	)
}
