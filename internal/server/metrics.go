package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dvcrn/ledspeed/internal/device"
	"github.com/dvcrn/ledspeed/internal/speed"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	appliesTotal    *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer, controller *device.Controller) *metrics {
	factory := promauto.With(reg)

	m := &metrics{
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledspeed_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "method", "code"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledspeed_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		appliesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledspeed_speed_applies_total",
				Help: "Total number of applied speed settings",
			},
			[]string{"clamped"},
		),
	}

	for i, name := range []string{"led1", "led2", "led3"} {
		factory.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name:        "ledspeed_led_speed_ms",
				Help:        "Current half period of each LED in milliseconds",
				ConstLabels: prometheus.Labels{"led": name},
			},
			func() float64 { return controller.Speeds().Channels()[i] },
		)
	}

	return m
}

func (m *metrics) recordApply(requested, applied speed.Settings) {
	m.appliesTotal.WithLabelValues(strconv.FormatBool(requested != applied)).Inc()
}

// instrument records request count and latency for route.
func (s *Server) instrument(route string, h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}

		h(rec, r)

		s.metrics.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		s.metrics.requestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(rec.Status())).Inc()
	})
}
