package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CyclesTotal tracks extraction cycles by outcome (advanced, empty, failed)
	CyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watermark_cycles_total",
			Help: "Total number of extraction cycles",
		},
		[]string{"checkpoint", "outcome"},
	)

	// RecordsExtracted tracks records returned past the watermark
	RecordsExtracted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watermark_records_extracted_total",
			Help: "Total number of records extracted since the last checkpoint",
		},
		[]string{"checkpoint"},
	)

	// CheckpointTimestamp exposes the current watermark as unix seconds
	CheckpointTimestamp = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "watermark_checkpoint_timestamp_seconds",
			Help: "Current checkpoint value as a unix timestamp",
		},
		[]string{"checkpoint"},
	)

	// CycleDuration tracks how long each cycle takes
	CycleDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "watermark_cycle_duration_seconds",
			Help:    "Extraction cycle duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"checkpoint"},
	)

	// ConnectAttempts tracks database connection attempts by result
	ConnectAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watermark_connect_attempts_total",
			Help: "Total number of database connection attempts",
		},
		[]string{"result"},
	)

	// RowsLoaded tracks rows inserted by the CSV loader
	RowsLoaded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watermark_rows_loaded_total",
			Help: "Total number of rows inserted by the loader",
		},
		[]string{"table"},
	)

	// RowsFailed tracks rows the loader could not insert
	RowsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watermark_rows_failed_total",
			Help: "Total number of rows the loader failed to insert",
		},
		[]string{"table"},
	)
)
