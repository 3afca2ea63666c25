package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	MutationsTotal      *prometheus.CounterVec
	registry            = prometheus.NewRegistry()
)

// Init registers the collectors under prefix; later calls are ignored.
func Init(prefix string) {
	once.Do(func() {
		HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"})
		HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"})
		MutationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_mutations_total",
			Help: "Audited mutations by action and outcome",
		}, []string{"action", "outcome"})

		registry.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDuration,
			MutationsTotal,
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	})
}

func Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()
		if HTTPRequestsTotal == nil {
			return
		}
		path := ctx.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(ctx.Writer.Status())
		HTTPRequestsTotal.WithLabelValues(ctx.Request.Method, path, status).Inc()
		HTTPRequestDuration.WithLabelValues(ctx.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}

// ObserveMutation counts one audited mutation; no-op before Init.
func ObserveMutation(action string, err error) {
	if MutationsTotal == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	MutationsTotal.WithLabelValues(action, outcome).Inc()
}

func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
}
