package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "roadmapserver"

	metricLabelRoute  = "route"
	metricLabelStatus = "status"
	metricLabelResult = "result"
	metricLabelCode   = "code"
)

// Metrics is the structure that holds all prometheus metrics
var (
	// InvalidNodeRequests counts node requests rejected before any upstream call
	InvalidNodeRequests = newCounterVec(
		"invalid_node_request_count",
		"Counts the number of node requests rejected by validation",
	)
	// UnknownRoadmapRequests counts requests for roadmaps that are not loaded
	UnknownRoadmapRequests = newCounterVec(
		"unknown_roadmap_request_count",
		"Counts the number of requests for roadmaps that are not loaded",
	)
	// ServiceRequestCounter count the number of requests for each route
	ServiceRequestCounter = newCounterVec(
		"service_request_count",
		"Count of requests for each route",
		metricLabelRoute, metricLabelStatus,
	)
	// ServiceRequestDuration observe the duration of requests for each route
	ServiceRequestDuration = newSummaryVec(
		"service_request_duration_seconds",
		"Seconds to handle a request and write its response",
		metricLabelRoute, metricLabelStatus,
	)
	// UpstreamRequestCounter count the outbound requests to the content service
	UpstreamRequestCounter = newCounterVec(
		"upstream_request_count",
		"Number of requests to the roadmap content service",
		metricLabelCode,
	)
	// UpstreamRequestDuration observe the duration of outbound requests
	UpstreamRequestDuration = newSummaryVec(
		"upstream_request_duration_seconds",
		"Duration in seconds of requests to the roadmap content service",
		metricLabelCode,
	)
	// ContentCacheCounter count cache lookups by result
	ContentCacheCounter = newCounterVec(
		"content_cache_count",
		"Number of node content cache lookups",
		metricLabelResult,
	)
	// UpdatesCompletedCounter count the number of completed updates
	UpdatesCompletedCounter = newCounterVec(
		"updates_completed_count",
		"Number of updates that were successfully completed",
	)
	// UpdatesFailedCounter count the number of updates that had an error
	UpdatesFailedCounter = newCounterVec(
		"updates_failed_count",
		"Number of updates that failed due to an error",
	)
	// UpdateDuration observe the duration of each repo.update() call
	UpdateDuration = newSummaryVec(
		"update_duration_seconds",
		"Duration in seconds for each repo.update() call",
	)
	// HistoryPersistFailedCounter count the number of failed attempts to persist the index history
	HistoryPersistFailedCounter = newCounterVec(
		"history_persist_failed_count",
		"Number of failures to store the index history",
	)
)

func newSummaryVec(name, help string, labels ...string) *prometheus.SummaryVec {
	vec := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, labels)
	prometheus.MustRegister(vec)
	return vec
}

func newCounterVec(name, help string, labels ...string) *prometheus.CounterVec {
	vec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, labels)
	prometheus.MustRegister(vec)
	return vec
}
