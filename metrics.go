package main

import (
	"net/http"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	"github.com/go-kit/kit/metrics/prometheus"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type MockMetrics struct {
	IMAP *IMAPMetrics
	SMTP *SMTPMetrics
}

type IMAPMetrics struct {
	Logins  metrics.Counter
	Logouts metrics.Counter
}

type SMTPMetrics struct {
	Accepted metrics.Counter
}

// NewMockMetrics creates the counters both endpoints report
// into. Without a Prometheus address everything is discarded.
func NewMockMetrics(prometheusAddr string) *MockMetrics {

	m := &MockMetrics{}

	if prometheusAddr == "" {
		m.IMAP = &IMAPMetrics{
			Logins:  discard.NewCounter(),
			Logouts: discard.NewCounter(),
		}
		m.SMTP = &SMTPMetrics{
			Accepted: discard.NewCounter(),
		}
	} else {
		m.IMAP = &IMAPMetrics{
			Logins: prometheus.NewCounterFrom(prom.CounterOpts{
				Namespace: "frame_mock",
				Subsystem: "imap",
				Name:      "logins_total",
				Help:      "Number of accepted LOGIN commands",
			}, nil),
			Logouts: prometheus.NewCounterFrom(prom.CounterOpts{
				Namespace: "frame_mock",
				Subsystem: "imap",
				Name:      "logouts_total",
				Help:      "Number of completed LOGOUT commands",
			}, nil),
		}
		m.SMTP = &SMTPMetrics{
			Accepted: prometheus.NewCounterFrom(prom.CounterOpts{
				Namespace: "frame_mock",
				Subsystem: "smtp",
				Name:      "messages_accepted_total",
				Help:      "Number of accepted mail transfers",
			}, nil),
		}
	}

	return m
}

func runPromHTTP(logger log.Logger, addr string) {

	if addr == "" {
		level.Debug(logger).Log("msg", "prometheus addr is empty, not exposing prometheus metrics")
		return
	}

	http.Handle("/metrics", promhttp.Handler())

	level.Info(logger).Log("msg", "prometheus handler listening", "addr", addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		level.Warn(logger).Log("msg", "failed to serve prometheus metrics", "err", err)
	}
}
