package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	Actions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coinladder_actions_total",
		Help: "Handled actions by name and result.",
	}, []string{"action", "result"})

	CoinsDistributed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coinladder_coins_distributed_total",
		Help: "Coins credited by the payout engine, by receiver kind.",
	}, []string{"kind"})
)

func init() {
	prometheus.MustRegister(Actions, CoinsDistributed)
}
