package usecase

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	orphanFilesDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snapgram_orphan_files_deleted_total",
		Help: "Number of unreferenced files removed by the orphan sweeper.",
	})
	orphanSweepFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snapgram_orphan_file_delete_failures_total",
		Help: "Number of orphaned files the sweeper failed to delete.",
	})
)
