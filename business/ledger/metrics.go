package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	PointsGrantedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loyalty_points_granted_total",
			Help: "Sum of points granted, by grant description.",
		},
		[]string{"description"},
	)

	RedemptionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "loyalty_redemptions_total",
			Help: "Count of successful reward redemptions.",
		},
	)
)

func init() {
	prometheus.MustRegister(PointsGrantedTotal, RedemptionsTotal)
}
