package placement

import (
	"context"
	"math/rand/v2"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxCascadeDepth is the cascade depth limit used when RunArgs
// doesn't specify one. A Device is only ever evicted by a Device of strictly
// greater Priority, so no cascade may be deeper than the number of
// Priorities, and this limit is never reached by a correct run.
var DefaultMaxCascadeDepth = len(Priorities)

// RunArgs are arguments of Run.
type RunArgs struct {
	Context context.Context
	// Devices to place. Each must be currently unassigned.
	Devices []*Device
	// MaxCascadeDepth bounds the length of an eviction cascade. A Device
	// evicted at a greater depth is left unassigned, and is counted as
	// abandoned. If zero, DefaultMaxCascadeDepth is used.
	MaxCascadeDepth int
	// Seed of random sources used by each search. If zero, a random Seed is used.
	Seed uint64
	// TestHook is an optional testing hook, invoked after each search completes.
	// It may be called concurrently.
	TestHook func(Event)
}

// Event describes a completed search of a single Device.
type Event struct {
	Device *Device
	Result Result
	// Depth is the number of evictions which preceded this search.
	Depth int
}

// Summary is the outcome of a Run.
type Summary struct {
	Devices    int // Total number of Devices.
	Placed     int // Devices having an assignment at the end of the Run.
	Unplaced   int // Devices having no assignment at the end of the Run.
	Abandoned  int // Evicted Devices not searched for, due to MaxCascadeDepth.
	Searches   int // Searches run, including searches of evicted Devices.
	Evictions  int // Assigned Devices displaced by another.
	Rejections int // Node visits which rejected the searching Device.
	Duration   time.Duration
}

// Run places all |Devices|, starting one concurrent search per Device. Each
// eviction starts a further search for the evicted Device from its origin.
// Run returns once all searches, including those of evicted Devices, have
// completed. A Device which cannot be placed is left unassigned, which is
// not an error. Run returns an error only if its Context is cancelled, in
// which case searches not yet begun are skipped.
func Run(args RunArgs) (Summary, error) {
	var r = &run{
		ctx:      args.Context,
		maxDepth: args.MaxCascadeDepth,
		seed:     args.Seed,
		hook:     args.TestHook,
	}
	if r.ctx == nil {
		r.ctx = context.Background()
	}
	if r.maxDepth == 0 {
		r.maxDepth = DefaultMaxCascadeDepth
	}
	if r.seed == 0 {
		r.seed = rand.Uint64()
	}

	var startTime = time.Now()
	for _, d := range args.Devices {
		r.spawn(d, 0)
	}
	var err = r.eg.Wait()
	var dur = time.Since(startTime)
	placementRunSeconds.Observe(dur.Seconds())

	var s = Summary{
		Devices:    len(args.Devices),
		Abandoned:  int(r.abandoned.Load()),
		Searches:   int(r.searches.Load()),
		Evictions:  int(r.evictions.Load()),
		Rejections: int(r.rejections.Load()),
		Duration:   dur,
	}
	for _, d := range args.Devices {
		if d.IsAssigned() {
			s.Placed++
		} else {
			s.Unplaced++
		}
	}

	log.WithFields(log.Fields{
		"devices":    s.Devices,
		"placed":     s.Placed,
		"unplaced":   s.Unplaced,
		"abandoned":  s.Abandoned,
		"searches":   s.Searches,
		"evictions":  s.Evictions,
		"rejections": s.Rejections,
		"seed":       r.seed,
		"dur":        dur,
	}).Info("placed devices")

	if s.Abandoned != 0 {
		log.WithField("abandoned", s.Abandoned).
			Warn("eviction cascades were truncated; some evicted devices were not re-placed")
	}
	return s, err
}

// run is the state of a single invocation of Run.
type run struct {
	ctx      context.Context
	eg       errgroup.Group
	maxDepth int
	seed     uint64
	hook     func(Event)

	taskSeq    atomic.Uint64 // Stream of each search's random source.
	searches   atomic.Int64
	evictions  atomic.Int64
	rejections atomic.Int64
	abandoned  atomic.Int64
}

// spawn a search of Device |d| at cascade |depth|. Searches of evicted Devices
// are spawned from within an outstanding search, and are thus always
// observed by the Wait of |eg|.
func (r *run) spawn(d *Device, depth int) {
	if depth > r.maxDepth {
		r.abandoned.Add(1)
		placementAbandonedTotal.Inc()

		log.WithFields(log.Fields{
			"device": d,
			"origin": d.origin,
			"depth":  depth,
		}).Warn("eviction cascade exceeds max depth; abandoning device")
		return
	}
	var stream = r.taskSeq.Add(1)
	r.eg.Go(func() error { return r.search(d, depth, stream) })
}

func (r *run) search(d *Device, depth int, stream uint64) error {
	if err := r.ctx.Err(); err != nil {
		return err
	}
	var probe = NewProbe(rand.New(rand.NewPCG(r.seed, stream)))
	var out = probe.FindNode(d)

	r.searches.Add(1)
	r.rejections.Add(int64(out.Rejections))
	placementSearchesTotal.Inc()
	placementRejectionsTotal.Add(float64(out.Rejections))
	placementVisitedNodes.Observe(float64(out.Visited))

	if out.Placed() {
		placementPlacedTotal.Inc()
	} else {
		placementExhaustedTotal.Inc()

		log.WithFields(log.Fields{
			"device":  d,
			"origin":  d.origin,
			"visited": out.Visited,
		}).Debug("no reachable node accepts device")
	}

	if r.hook != nil {
		r.hook(Event{Device: d, Result: out, Depth: depth})
	}

	if out.Evicted != nil {
		r.evictions.Add(1)
		placementEvictionsTotal.Inc()

		log.WithFields(log.Fields{
			"device":  d,
			"node":    out.Node,
			"evicted": out.Evicted,
			"depth":   depth,
		}).Debug("device evicted lower-priority device")

		r.spawn(out.Evicted, depth+1)
	}
	return nil
}
