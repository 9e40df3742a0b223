package searchindex

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SegmentCount reports the current number of on-disk segments.
	SegmentCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "codesearch",
			Subsystem: "searchindex",
			Name:      "segment_count",
			Help:      "Current number of index segments awaiting merge",
		},
	)

	// CommitDuration tracks how long a commit (segment flush) takes.
	CommitDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "codesearch",
			Subsystem: "searchindex",
			Name:      "commit_duration_seconds",
			Help:      "Duration of index commit operations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// MergeOperations counts merge attempts.
	// Labels: result (merged, skipped_threshold, skipped_cooldown, error)
	MergeOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "codesearch",
			Subsystem: "searchindex",
			Name:      "merge_operations_total",
			Help:      "Total number of segment merge attempts by outcome",
		},
		[]string{"result"},
	)

	// DocumentsIndexed counts messages written to the index.
	DocumentsIndexed = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "codesearch",
			Subsystem: "searchindex",
			Name:      "documents_indexed_total",
			Help:      "Total number of message documents indexed",
		},
	)
)
