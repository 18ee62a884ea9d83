// Package metrics records batch run statistics and writes them in the
// Prometheus text format for the node_exporter textfile collector.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jack-barr3tt/gbr-punctuality/src/common/reconcile"
	"github.com/jack-barr3tt/gbr-punctuality/src/common/types"
)

// Metrics holds the collectors for one command run.
type Metrics struct {
	Registry *prometheus.Registry

	ServicesNormalized  prometheus.Counter
	RecordsStored       *prometheus.CounterVec
	RecordsReconciled   prometheus.Counter
	DerivedMissing      *prometheus.CounterVec
	NextDayDepartures   prometheus.Counter
	DepartureDifference prometheus.Histogram
	LastSuccess         prometheus.Gauge
}

// New creates and registers the collectors. job becomes a constant label so
// both commands can share one textfile directory.
func New(job string) *Metrics {
	registry := prometheus.NewRegistry()
	labels := prometheus.Labels{"job": job}

	m := &Metrics{
		Registry: registry,
		ServicesNormalized: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "traindata_services_normalized_total",
			Help:        "Services flattened from the input document",
			ConstLabels: labels,
		}),
		RecordsStored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "traindata_records_stored_total",
			Help:        "Records written to a sink",
			ConstLabels: labels,
		}, []string{"sink"}),
		RecordsReconciled: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "traindata_records_reconciled_total",
			Help:        "Rows passed through the temporal reconciler",
			ConstLabels: labels,
		}),
		DerivedMissing: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "traindata_derived_missing_total",
			Help:        "Rows where a derived column could not be computed",
			ConstLabels: labels,
		}, []string{"column"}),
		NextDayDepartures: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "traindata_next_day_departures_total",
			Help:        "Rows whose booked departure falls on the day after runDate",
			ConstLabels: labels,
		}),
		DepartureDifference: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "traindata_departure_difference_seconds",
			Help:        "Realtime minus booked departure",
			ConstLabels: labels,
			Buckets:     []float64{-600, -300, -60, 0, 60, 180, 300, 600, 900, 1800, 3600},
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "traindata_last_success_timestamp_seconds",
			Help:        "Unix time the run last finished without error",
			ConstLabels: labels,
		}),
	}

	registry.MustRegister(
		m.ServicesNormalized,
		m.RecordsStored,
		m.RecordsReconciled,
		m.DerivedMissing,
		m.NextDayDepartures,
		m.DepartureDifference,
		m.LastSuccess,
	)

	return m
}

func (m *Metrics) ObserveStored(sink string, n int) {
	m.RecordsStored.WithLabelValues(sink).Add(float64(n))
}

// ObserveReconciled records one reconciliation run and returns its summary.
func (m *Metrics) ObserveReconciled(records []types.ReconciledTrainData) reconcile.Summary {
	summary := reconcile.Summarize(records)

	m.RecordsReconciled.Add(float64(summary.Rows))
	m.NextDayDepartures.Add(float64(summary.NextDay))
	m.DerivedMissing.WithLabelValues(types.ColDateAsDate).Add(float64(summary.MissingDate))
	m.DerivedMissing.WithLabelValues(types.ColBookedTime).Add(float64(summary.MissingBooked))
	m.DerivedMissing.WithLabelValues(types.ColRealtimeDepartureTime).Add(float64(summary.MissingRealtime))

	for _, r := range records {
		if r.TimeDifference != nil {
			m.DepartureDifference.Observe(*r.TimeDifference)
		}
	}

	return summary
}

func (m *Metrics) MarkSuccess() {
	m.LastSuccess.SetToCurrentTime()
}

// WriteTextfile writes every registered metric to path. An empty path is a no-op.
func (m *Metrics) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.Registry)
}
