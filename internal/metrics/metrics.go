package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Auth metrics

	RegistrationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mbevents",
		Name:      "registrations_total",
		Help:      "Registration attempts, by outcome.",
	}, []string{"outcome"})

	LoginsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mbevents",
		Name:      "logins_total",
		Help:      "Login attempts, by outcome.",
	}, []string{"outcome"})

	PasswordResetsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mbevents",
		Name:      "password_resets_total",
		Help:      "Password reset flow steps, by stage and outcome.",
	}, []string{"stage", "outcome"})

	ResetTokensSweptTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mbevents",
		Name:      "reset_tokens_swept_total",
		Help:      "Expired reset tokens cleared by the sweeper.",
	})

	// Email metrics

	EmailsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mbevents",
		Name:      "emails_total",
		Help:      "Outbound emails, by outcome.",
	}, []string{"outcome"})

	// Event metrics

	EventsCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mbevents",
		Name:      "events_created_total",
		Help:      "Events created.",
	})

	PosterUploadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mbevents",
		Name:      "poster_uploads_total",
		Help:      "Poster uploads, by outcome.",
	}, []string{"outcome"})

	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mbevents",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mbevents",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})
)

func Register() {
	prometheus.MustRegister(
		RegistrationsTotal,
		LoginsTotal,
		PasswordResetsTotal,
		ResetTokensSweptTotal,
		EmailsTotal,
		EventsCreatedTotal,
		PosterUploadsTotal,
		HTTPRequestDuration,
		HTTPRequestsTotal,
	)
}
