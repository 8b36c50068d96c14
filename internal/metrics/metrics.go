// Package metrics registers the Prometheus counters exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UpdatesTotal counts every webhook update received.
	UpdatesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bot_updates_total",
		Help: "Webhook updates received.",
	})

	// CommandsTotal counts handled slash commands.
	CommandsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bot_commands_total",
		Help: "Slash commands handled.",
	})

	// CallbacksTotal counts handled callback queries.
	CallbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bot_callbacks_total",
		Help: "Callback queries handled.",
	})

	// SendFailures counts outbound deliveries that returned an error.
	SendFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bot_send_failures_total",
		Help: "Outbound Telegram sends that failed.",
	})

	// BroadcastDeliveries counts broadcast sends by outcome.
	BroadcastDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_broadcast_deliveries_total",
		Help: "Broadcast deliveries by outcome.",
	}, []string{"outcome"})
)
