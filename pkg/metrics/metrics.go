// Package metrics exposes the service's prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the narrow surface the use cases and the worker depend on.
type Recorder interface {
	ProgressRecorded(completed bool)
	ProgressCorrected()
	ResumeSynced(err error)
	MailSent(kind string, err error)
	ObserveHTTP(method, route string, status int, elapsed time.Duration)
}

type Collector struct {
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	progressRecorded  *prometheus.CounterVec
	progressCorrected prometheus.Counter
	resumeSync        *prometheus.CounterVec
	mailSent          *prometheus.CounterVec
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "careerfolio_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "careerfolio_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		progressRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "careerfolio_progress_recorded_total",
			Help: "Lecture progress writes, split by completion.",
		}, []string{"completed"}),
		progressCorrected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "careerfolio_progress_corrections_total",
			Help: "Stored enrollment percentages repaired on read.",
		}),
		resumeSync: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "careerfolio_resume_sync_total",
			Help: "Resume bulk updates by result.",
		}, []string{"result"}),
		mailSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "careerfolio_mail_sent_total",
			Help: "Outbound mails by kind and result.",
		}, []string{"kind", "result"}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpDuration,
		c.progressRecorded,
		c.progressCorrected,
		c.resumeSync,
		c.mailSent,
	)
	return c
}

func (c *Collector) ProgressRecorded(completed bool) {
	c.progressRecorded.WithLabelValues(strconv.FormatBool(completed)).Inc()
}

func (c *Collector) ProgressCorrected() {
	c.progressCorrected.Inc()
}

func (c *Collector) ResumeSynced(err error) {
	c.resumeSync.WithLabelValues(result(err)).Inc()
}

func (c *Collector) MailSent(kind string, err error) {
	c.mailSent.WithLabelValues(kind, result(err)).Inc()
}

func (c *Collector) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler serves the metrics of the given gatherer.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

type nopRecorder struct{}

// NewNopRecorder returns a Recorder that drops everything.
func NewNopRecorder() Recorder { return nopRecorder{} }

func (nopRecorder) ProgressRecorded(bool) {}
func (nopRecorder) ProgressCorrected() {}
func (nopRecorder) ResumeSynced(error) {}
func (nopRecorder) MailSent(string, error) {}
func (nopRecorder) ObserveHTTP(string, string, int, time.Duration) {}
