package achievement

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	AchievementsUnlockedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loyalty_achievements_unlocked_total",
			Help: "Count of achievement unlocks, by achievement key.",
		},
		[]string{"achievement"},
	)
)

func init() {
	prometheus.MustRegister(AchievementsUnlockedTotal)
}
