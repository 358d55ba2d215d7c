// Package metrics exposes Prometheus instrumentation for randomization test runs.
package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"gorandtest/domain/randtest"
	"gorandtest/internal/errors"
)

// Recorder holds the run collectors of one registry
type Recorder struct {
	runsTotal         *prometheus.CounterVec
	permutationsTotal *prometheus.CounterVec
	runDuration       *prometheus.HistogramVec
	runsInFlight      prometheus.Gauge
}

// NewRecorder registers the collectors with reg
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		// runsTotal counts finished runs by method, alternative and result
		runsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "randtest_runs_total",
			Help: "Total randomization test runs by method, alternative and result",
		}, []string{"method", "alternative", "result"}),

		permutationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "randtest_permutations_total",
			Help: "Total permutations evaluated by method",
		}, []string{"method"}),

		runDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "randtest_run_duration_seconds",
			Help:    "Randomization test run duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10), // 1ms to ~4min
		}, []string{"method"}),

		runsInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "randtest_runs_in_flight",
			Help: "Randomization test runs currently executing",
		}),
	}
}

// Default records into the global Prometheus registry
var Default = NewRecorder(prometheus.DefaultRegisterer)

// Start marks a run as in flight and returns the func that ends it
func (r *Recorder) Start() func() {
	r.runsInFlight.Inc()
	return r.runsInFlight.Dec
}

// ObserveOutcome records a successful run
func (r *Recorder) ObserveOutcome(outcome *randtest.Outcome) {
	method := methodLabel(outcome.Method())
	r.runsTotal.WithLabelValues(method, string(outcome.Alternative()), "ok").Inc()
	r.permutationsTotal.WithLabelValues(method).Add(float64(outcome.Permutations()))
	r.runDuration.WithLabelValues(method).Observe(outcome.Duration().Seconds())
}

// ObserveFailure records a run that returned err; the result label is the
// lower-cased error code
func (r *Recorder) ObserveFailure(alternative randtest.Alternative, err error) {
	alt := string(alternative)
	if alt == "" {
		alt = "unknown"
	}
	r.runsTotal.WithLabelValues("unknown", alt, strings.ToLower(errors.GetCode(err))).Inc()
}

func methodLabel(m randtest.Method) string {
	if m == randtest.MethodSystematic {
		return "systematic"
	}
	return "monte_carlo"
}
