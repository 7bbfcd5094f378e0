package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch outcomes.
const (
	OutcomeOK        = "ok"
	OutcomeTransport = "transport"
	OutcomeStatus    = "status"
	OutcomeParse     = "parse"
)

// Scraper holds the collectors of the scrape-publish pipeline.
type Scraper struct {
	FetchRequestsTotal  *prometheus.CounterVec
	FetchDuration       *prometheus.HistogramVec
	CycleDuration       prometheus.Histogram
	CycleRates          prometheus.Gauge
	PublishTotal        *prometheus.CounterVec
	ArchiveTotal        *prometheus.CounterVec
	LastPublishedSecond prometheus.Gauge
}

// New registers the collectors on reg. Pass nil to get unregistered
// collectors, which is what most tests want.
func New(reg prometheus.Registerer) *Scraper {
	f := promauto.With(reg)
	return &Scraper{
		FetchRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fx_fetch_requests_total",
				Help: "Provider requests by outcome",
			},
			[]string{"provider", "outcome"},
		),
		FetchDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fx_fetch_duration_seconds",
				Help:    "Provider request latency",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
			},
			[]string{"provider"},
		),
		CycleDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "fx_cycle_duration_seconds",
				Help:    "Wall time of one scrape-publish cycle",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
		),
		CycleRates: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "fx_cycle_rates",
				Help: "Currencies in the last built snapshot, base included",
			},
		),
		PublishTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fx_publish_total",
				Help: "Snapshot writes by result",
			},
			[]string{"result"},
		),
		ArchiveTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fx_archive_total",
				Help: "Version-control operations by result",
			},
			[]string{"op", "result"},
		),
		LastPublishedSecond: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "fx_last_publish_timestamp_seconds",
				Help: "Timestamp of the last snapshot written to both locations",
			},
		),
	}
}

func (s *Scraper) ObserveFetch(provider, outcome string, took time.Duration) {
	if s == nil {
		return
	}
	s.FetchRequestsTotal.WithLabelValues(provider, outcome).Inc()
	s.FetchDuration.WithLabelValues(provider).Observe(took.Seconds())
}

func (s *Scraper) ObserveCycle(took time.Duration, rates int) {
	if s == nil {
		return
	}
	s.CycleDuration.Observe(took.Seconds())
	s.CycleRates.Set(float64(rates))
}

func (s *Scraper) ObservePublish(err error, ts int64) {
	if s == nil {
		return
	}
	if err != nil {
		s.PublishTotal.WithLabelValues("error").Inc()
		return
	}
	s.PublishTotal.WithLabelValues("ok").Inc()
	s.LastPublishedSecond.Set(float64(ts))
}

func (s *Scraper) ObserveArchive(op string, err error) {
	if s == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	s.ArchiveTotal.WithLabelValues(op, result).Inc()
}
