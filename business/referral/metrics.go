package referral

import (
	"github.com/prometheus/client_golang/prometheus"
)

var ReferralConversionsTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "loyalty_referral_conversions_total",
		Help: "Count of referrals converted by a first product scan.",
	},
)

func init() {
	prometheus.MustRegister(ReferralConversionsTotal)
}
