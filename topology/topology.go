// Package topology builds the graphs of Nodes and Devices placed by package
// placement, either at random or from a YAML description.
package topology

import (
	"math/rand/v2"
	"slices"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.stablematch.dev/core/placement"
)

// ErrTooFewDevices is returned when capacity cannot be partitioned such that
// every Node has a capacity of at least one.
var ErrTooFewDevices = errors.New("the number of devices must be greater than or equal to the number of nodes")

// IDs issues identities of Nodes and Devices of a single Graph. Identities
// are issued in increasing order, starting from zero.
type IDs struct {
	nextNode   placement.NodeID
	nextDevice placement.DeviceID
}

// Node returns the next NodeID.
func (ids *IDs) Node() placement.NodeID {
	var id = ids.nextNode
	ids.nextNode++
	return id
}

// Device returns the next DeviceID.
func (ids *IDs) Device() placement.DeviceID {
	var id = ids.nextDevice
	ids.nextDevice++
	return id
}

// Graph is a connected graph of Nodes, and Devices which originate from them.
type Graph struct {
	Nodes   []*placement.Node
	Devices []*placement.Device
}

// Capacity returns the total capacity of all Nodes.
func (g *Graph) Capacity() int {
	var c int
	for _, n := range g.Nodes {
		c += n.Capacity()
	}
	return c
}

// Edges returns the number of undirected edges of the Graph.
func (g *Graph) Edges() int {
	var e int
	for _, n := range g.Nodes {
		e += len(n.Neighbors())
	}
	return e / 2
}

// Connected returns whether every Node is reachable from every other.
func (g *Graph) Connected() bool {
	if len(g.Nodes) == 0 {
		return true
	}
	var seen = map[*placement.Node]bool{g.Nodes[0]: true}
	var stack = []*placement.Node{g.Nodes[0]}

	for len(stack) != 0 {
		var n = stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, nn := range n.Neighbors() {
			if !seen[nn] {
				seen[nn] = true
				stack = append(stack, nn)
			}
		}
	}
	return len(seen) == len(g.Nodes)
}

// Config parameterizes a Random Graph.
type Config struct {
	Nodes   int // Number of Nodes.
	Devices int // Number of Devices. Also the total capacity of all Nodes.
	// Number of undirected edges. If zero, a random number of edges in
	// range [Nodes-1, 2*Nodes] is used (bounded by a complete graph).
	Edges int
}

// Validate returns an error if the Config is not well-formed.
func (cfg Config) Validate() error {
	if cfg.Nodes < 1 {
		return errors.Errorf("invalid Nodes (%d; expected >= 1)", cfg.Nodes)
	} else if cfg.Devices < cfg.Nodes {
		return errors.WithMessagef(ErrTooFewDevices, "%d devices, %d nodes", cfg.Devices, cfg.Nodes)
	} else if cfg.Edges == 0 {
		return nil
	} else if lo, hi := cfg.Nodes-1, maxEdges(cfg.Nodes); cfg.Edges < lo || cfg.Edges > hi {
		return errors.Errorf("invalid Edges (%d; expected %d <= value <= %d)", cfg.Edges, lo, hi)
	}
	return nil
}

// Random builds a connected Graph of |cfg.Nodes| Nodes having capacities
// which are a uniformly random partition of |cfg.Devices|, and |cfg.Devices|
// Devices of random Priority and origin Node.
//
// Edges begin with a random spanning tree, built by linking each Node in
// random order to a random Node already in the tree. Remaining edges are
// then added between random, distinct pairs of Nodes.
func Random(rng *rand.Rand, cfg Config) (*Graph, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Edges == 0 {
		cfg.Edges = min(cfg.Nodes-1+rng.IntN(cfg.Nodes+2), maxEdges(cfg.Nodes))
	}
	var capacities, err = PartitionCapacity(rng, cfg.Nodes, cfg.Devices)
	if err != nil {
		return nil, err
	}

	var ids IDs
	var g = new(Graph)

	for _, c := range capacities {
		g.Nodes = append(g.Nodes, placement.NewNode(ids.Node(), c))
	}

	var order = rng.Perm(cfg.Nodes)
	for i := 1; i < len(order); i++ {
		placement.Link(g.Nodes[order[i]], g.Nodes[order[rng.IntN(i)]])
	}
	for added := cfg.Nodes - 1; added != cfg.Edges; {
		var a, b = rng.IntN(cfg.Nodes), rng.IntN(cfg.Nodes)
		if a != b && placement.Link(g.Nodes[a], g.Nodes[b]) {
			added++
		}
	}

	for i := 0; i != cfg.Devices; i++ {
		g.Devices = append(g.Devices, placement.NewDevice(ids.Device(),
			placement.RandomPriority(rng), g.Nodes[rng.IntN(cfg.Nodes)]))
	}

	log.WithFields(log.Fields{
		"nodes":    len(g.Nodes),
		"edges":    cfg.Edges,
		"devices":  len(g.Devices),
		"capacity": g.Capacity(),
	}).Debug("built random topology")

	return g, nil
}

// PartitionCapacity returns a uniformly random composition of |total| into
// |parts| positive integers. It fails with ErrTooFewDevices if total < parts.
func PartitionCapacity(rng *rand.Rand, parts, total int) ([]int, error) {
	if parts < 1 {
		return nil, errors.Errorf("invalid parts (%d; expected >= 1)", parts)
	} else if total < parts {
		return nil, errors.WithMessagef(ErrTooFewDevices, "%d devices, %d nodes", total, parts)
	}
	// Draw |parts|-1 distinct dividers from [1, total), and take the
	// differences between consecutive dividers.
	var dividers = rng.Perm(total - 1)[:parts-1]
	for i := range dividers {
		dividers[i]++
	}
	slices.Sort(dividers)
	dividers = append(dividers, total)

	var out = make([]int, parts)
	var last int
	for i, d := range dividers {
		out[i], last = d-last, d
	}
	return out, nil
}

func maxEdges(nodes int) int { return nodes * (nodes - 1) / 2 }
