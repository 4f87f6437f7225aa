package identifications

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	createdTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flora_identifications_created_total",
		Help: "Identification records created, by source (upload, register, create).",
	}, []string{"source"})

	scheduleFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flora_identifications_schedule_failures_total",
		Help: "Identifications marked failed because the recognition job could not be submitted.",
	})

	deletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flora_identifications_deleted_total",
		Help: "Identification records deleted.",
	})

	blobDeleteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flora_identifications_blob_delete_failures_total",
		Help: "Image blobs left behind after their identification record was deleted.",
	})

	urlFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flora_identifications_url_failures_total",
		Help: "Display URLs that could not be resolved and were returned as null.",
	})
)
