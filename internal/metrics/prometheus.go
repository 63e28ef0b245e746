// Package metrics holds the process-wide prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "turbine_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "turbine_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Predictions counts inference calls by outcome (ok, not_ready).
	Predictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "turbine_predictions_total",
			Help: "Total number of RUL predictions",
		},
		[]string{"status"},
	)

	OTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "turbine_otp_requests_total",
			Help: "Total number of OTP requests",
		},
		[]string{"result"},
	)

	OTPVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "turbine_otp_verifications_total",
			Help: "Total number of OTP verification attempts",
		},
		[]string{"result"},
	)

	Deliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "turbine_delivery_total",
			Help: "Total number of outbound notification deliveries",
		},
		[]string{"channel", "result"},
	)

	DeliveryQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "turbine_delivery_queue_depth",
			Help: "Messages waiting in the delivery queue",
		},
	)

	ModelAccuracy = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "turbine_model_accuracy",
			Help: "Held-out R² of the loaded model",
		},
	)

	ActiveAlerts = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "turbine_active_alerts",
			Help: "Machines currently alerting, by severity",
		},
		[]string{"severity"},
	)

	StreamClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "turbine_stream_clients",
			Help: "Connected alert stream subscribers",
		},
	)
)
