package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	storeQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storelocator_store_queries_total",
		Help: "Store ranking requests by kind",
	}, []string{"kind"})
	emptyResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storelocator_store_queries_empty_total",
		Help: "Store ranking requests without any store in range",
	}, []string{"kind"})
	noLocation = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storelocator_no_location_total",
		Help: "Requests where no origin could be resolved",
	})
	catalogUploads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storelocator_catalog_uploads_total",
		Help: "Accepted catalog uploads",
	})
)
