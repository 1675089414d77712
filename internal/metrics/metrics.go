package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DecisionsExecuted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moderation_decisions_executed_total",
		Help: "Decisions executed, by action.",
	}, []string{"action"})

	DecisionsHeld = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moderation_decisions_held_total",
		Help: "Decisions held for second-level approval, by action.",
	}, []string{"action"})

	CinderCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moderation_cinder_calls_total",
		Help: "Case-service calls, by call and outcome.",
	}, []string{"call", "outcome"})

	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moderation_webhook_events_total",
		Help: "Inbound case-service webhook events, by type.",
	}, []string{"type"})

	ReportsAutoResolved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "moderation_reports_auto_resolved_total",
		Help: "Reports short-circuited to closed-no-action.",
	})

	NotificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moderation_notifications_sent_total",
		Help: "Notifications handed to the sender, by template.",
	}, []string{"template"})
)
