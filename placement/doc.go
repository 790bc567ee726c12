// Package placement implements a randomized, locally-greedy algorithm for
// assigning a number of "Devices" to capacity-limited "Nodes" of a connected
// graph. Each Device searches breadth-first outward from its origin Node for
// a Node having spare capacity, or holding an assigned Device of strictly
// lower Priority which it displaces. Displaced Devices search again from
// their own origins, producing cascades of re-assignment.
//
// The resulting assignment is not a globally stable matching, and varies
// with scheduling order and random choice. It is however guaranteed that
// every search terminates, that no Node ever exceeds its capacity, and that
// each Device is assigned to at most one Node.
package placement

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	placementSearchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stablematch_placement_searches_total",
		Help: "Cumulative number of device searches run, including those of evicted devices.",
	})
	placementPlacedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stablematch_placement_placed_total",
		Help: "Cumulative number of searches which assigned their device to a node.",
	})
	placementEvictionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stablematch_placement_evictions_total",
		Help: "Cumulative number of assigned devices displaced by a device of higher priority.",
	})
	placementRejectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stablematch_placement_rejections_total",
		Help: "Cumulative number of node visits which rejected the searching device.",
	})
	placementExhaustedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stablematch_placement_exhausted_total",
		Help: "Cumulative number of searches which exhausted reachable nodes without an assignment.",
	})
	placementAbandonedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stablematch_placement_abandoned_total",
		Help: "Cumulative number of evicted devices not searched for again due to the cascade depth limit.",
	})
	placementVisitedNodes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "stablematch_placement_visited_nodes",
		Help:    "Number of nodes visited by each search.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	})
	placementRunSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "stablematch_placement_run_seconds",
		Help: "Duration required to place all devices of a run.",
	})
)
