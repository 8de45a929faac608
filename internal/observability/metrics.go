package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "megamarket_http_requests_total",
		Help: "HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "megamarket_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
	}, []string{"method", "route"})

	importOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "megamarket_imports_total",
		Help: "Import batches by outcome",
	}, []string{"outcome"})

	importedItems = promauto.NewCounter(prometheus.CounterOpts{
		Name: "megamarket_imported_items_total",
		Help: "Items written by committed imports",
	})

	importBatchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "megamarket_import_batch_size",
		Help:    "Items per import batch",
		Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})

	snapshotsWritten = promauto.NewCounter(prometheus.CounterOpts{
		Name: "megamarket_statistic_snapshots_total",
		Help: "Offer snapshots appended to items_statistic",
	})

	deletedItems = promauto.NewCounter(prometheus.CounterOpts{
		Name: "megamarket_deleted_items_total",
		Help: "Items removed by cascading deletes, roots included",
	})

	treeNodes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "megamarket_tree_nodes",
		Help:    "Nodes returned per tree read",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})
)

const (
	OutcomeCommitted   = "committed"
	OutcomeRejected    = "rejected"
	OutcomeWriteFailed = "write_failed"
)

func ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func ObserveImport(outcome string, items, snapshots int) {
	importOutcomes.WithLabelValues(outcome).Inc()
	importBatchSize.Observe(float64(items))
	if outcome == OutcomeCommitted {
		importedItems.Add(float64(items))
		snapshotsWritten.Add(float64(snapshots))
	}
}

func ObserveDelete(removed int) {
	if removed > 0 {
		deletedItems.Add(float64(removed))
	}
}

func ObserveTree(nodes int) {
	treeNodes.Observe(float64(nodes))
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
