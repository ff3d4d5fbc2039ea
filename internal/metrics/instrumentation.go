// Package metrics publishes Prometheus metrics for the lookup endpoints and
// the dataset refresh cycle.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "geodb"

	OK    = "OK"
	ERROR = "ERROR"
)

// Instrumentation publishes Prometheus metrics.  All methods are safe to call
// on a nil *Instrumentation.
type Instrumentation struct {
	requestTotals     *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	refreshSignals    *prometheus.CounterVec
	refreshTotals     *prometheus.CounterVec
	refreshTime       *prometheus.GaugeVec
	refreshStatus     *prometheus.GaugeVec
	refreshDuration   prometheus.Histogram
	snapshotGen       prometheus.Gauge
	datasetReady      prometheus.Gauge
	authorizedKeys    prometheus.Gauge
	unauthorizedTotal prometheus.Counter
}

// NewInstrumentation registers all metric vectors.
func NewInstrumentation(reg prometheus.Registerer) *Instrumentation {
	inst := &Instrumentation{
		requestTotals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total lookup requests by endpoint and result",
		}, []string{"endpoint", "result"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Lookup request latency",
			Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05, .1},
		}, []string{"endpoint"}),
		refreshSignals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "refresh",
			Name:      "signals_total",
			Help:      "Refresh signals received by kind",
		}, []string{"signal"}),
		refreshTotals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "refresh",
			Name:      "resources_total",
			Help:      "Sub-resource rebuilds by resource and result",
		}, []string{"resource", "result"}),
		refreshTime: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "refresh",
			Name:      "last_success_timestamp_seconds",
			Help:      "Time of the last successful rebuild of a sub-resource",
		}, []string{"resource"}),
		refreshStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "refresh",
			Name:      "status",
			Help:      "1 if the last rebuild of a sub-resource succeeded, 0 otherwise",
		}, []string{"resource"}),
		refreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "refresh",
			Name:      "duration_seconds",
			Help:      "Duration of a full dataset rebuild",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		snapshotGen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_generation",
			Help:      "Generation of the published dataset snapshot",
		}),
		datasetReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_ready",
			Help:      "1 once the first dataset snapshot has been published",
		}),
		authorizedKeys: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "keys",
			Help:      "Number of authorized keys loaded at startup",
		}),
		unauthorizedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "rejected_total",
			Help:      "Requests rejected by the auth gate",
		}),
	}

	reg.MustRegister(
		inst.requestTotals,
		inst.requestDuration,
		inst.refreshSignals,
		inst.refreshTotals,
		inst.refreshTime,
		inst.refreshStatus,
		inst.refreshDuration,
		inst.snapshotGen,
		inst.datasetReady,
		inst.authorizedKeys,
		inst.unauthorizedTotal,
	)
	return inst
}

// ObserveRequest records a finished lookup request.
func (i *Instrumentation) ObserveRequest(endpoint, result string, duration time.Duration) {
	if i == nil {
		return
	}

	i.requestTotals.WithLabelValues(endpoint, result).Inc()
	i.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// ObserveUnauthorized counts a request rejected by the auth gate.
func (i *Instrumentation) ObserveUnauthorized() {
	if i == nil {
		return
	}
	i.unauthorizedTotal.Inc()
}

// SetAuthorizedKeys sets the number of loaded authorized keys.
func (i *Instrumentation) SetAuthorizedKeys(n int) {
	if i == nil {
		return
	}
	i.authorizedKeys.Set(float64(n))
}

// ObserveSignal counts a received refresh signal.
func (i *Instrumentation) ObserveSignal(signal string) {
	if i == nil {
		return
	}
	i.refreshSignals.WithLabelValues(signal).Inc()
}

// ObserveResourceRefresh records the outcome of one sub-resource rebuild.
func (i *Instrumentation) ObserveResourceRefresh(resource string, err error) {
	if i == nil {
		return
	}

	if err != nil {
		i.refreshTotals.WithLabelValues(resource, ERROR).Inc()
		i.refreshStatus.WithLabelValues(resource).Set(0)
		return
	}

	i.refreshTotals.WithLabelValues(resource, OK).Inc()
	i.refreshStatus.WithLabelValues(resource).Set(1)
	i.refreshTime.WithLabelValues(resource).SetToCurrentTime()
}

// ObserveRefresh records a full rebuild and the generation it published.
func (i *Instrumentation) ObserveRefresh(generation uint64, duration time.Duration) {
	if i == nil {
		return
	}
	i.snapshotGen.Set(float64(generation))
	i.refreshDuration.Observe(duration.Seconds())
}

// SetReady marks the dataset as ready.
func (i *Instrumentation) SetReady() {
	if i == nil {
		return
	}
	i.datasetReady.Set(1)
}
