package progress

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Report levels
const (
	levelLessons   = "lessons"
	levelResources = "resources"
)

var (
	reportsProjected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coachreports",
		Name:      "reports_projected_total",
		Help:      "Number of reports projected, by level",
	}, []string{"level"})

	reportRows = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "coachreports",
		Name:      "report_rows",
		Help:      "Number of rows per projected report, by level",
		Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
	}, []string{"level"})

	reportDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "coachreports",
		Name:      "report_duration_seconds",
		Help:      "Time taken to load and project a report, by level",
		Buckets:   prometheus.DefBuckets,
	}, []string{"level"})
)

func observeReport(level string, rows int, start time.Time) {
	reportsProjected.WithLabelValues(level).Inc()
	reportRows.WithLabelValues(level).Observe(float64(rows))
	reportDuration.WithLabelValues(level).Observe(time.Since(start).Seconds())
}
