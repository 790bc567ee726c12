package placement

import (
	"math/rand/v2"
	"slices"
)

// Probe is a breadth-first exploration of the graph, rooted at a Device's
// origin Node, which seeks a Node to which the Device may be assigned.
// Nodes are discovered one distance "ring" at a time: a ring is extended
// only by the neighbors of Nodes actually visited from the ring before it.
// Within a ring, candidates are tried in uniformly random order.
//
// A Probe is not safe for concurrent use. Its exploration state is reset by
// each call to FindNode, and may be inspected after FindNode returns.
type Probe struct {
	rng *rand.Rand

	distance    int                        // Distance ring currently being explored.
	maxDistance int                        // Largest key of |frontier|.
	frontier    map[int]map[*Node]struct{} // Discovered Nodes, by distance.
	visited     map[*Node]int              // Visited Nodes, and the distance at which each was visited.
}

// Result is the outcome of a Probe.FindNode.
type Result struct {
	// Node to which the Device was assigned, or nil if the Device could not
	// be placed anywhere reachable by the Probe.
	Node *Node
	// Evicted is the Device displaced by the assignment, if any. It has no
	// current assignment and must be searched for again from its own origin.
	Evicted *Device
	// Visited is the number of Nodes the Probe attempted.
	Visited int
	// Rejections is the number of visited Nodes which rejected the Device.
	Rejections int
}

// Placed returns whether the Device was assigned.
func (r Result) Placed() bool { return r.Node != nil }

// NewProbe returns a Probe which draws candidates using |rng|.
func NewProbe(rng *rand.Rand) *Probe {
	return &Probe{rng: rng}
}

// FindNode searches outward from the origin of Device |d| for a Node which
// accepts it. Exploration proceeds while any discovered, unvisited Node
// remains. The first Node to accept |d| ends the search.
func (p *Probe) FindNode(d *Device) Result {
	p.reset(d.origin)

	var out Result
	for p.distance <= p.maxDistance {
		var candidates = p.candidates()
		if len(candidates) == 0 {
			p.distance++
			continue
		}
		var n = candidates[p.rng.IntN(len(candidates))]
		p.visit(n)
		out.Visited++

		switch evicted := n.TryAdd(d); evicted {
		case nil:
			out.Node = n
			return out
		case d:
			out.Rejections++ // Try another candidate of this ring.
		default:
			out.Node, out.Evicted = n, evicted
			return out
		}
	}
	return out
}

// Frontier returns the Nodes discovered at |distance| by the last FindNode,
// ordered on NodeID.
func (p *Probe) Frontier(distance int) []*Node {
	return sortedNodes(p.frontier[distance])
}

// Visited returns whether |n| was visited by the last FindNode, and if so,
// the distance ring from which it was visited.
func (p *Probe) Visited(n *Node) (distance int, ok bool) {
	distance, ok = p.visited[n]
	return
}

// MaxDistance returns the largest distance ring discovered by the last FindNode.
func (p *Probe) MaxDistance() int { return p.maxDistance }

func (p *Probe) reset(origin *Node) {
	p.distance, p.maxDistance = 0, 0
	p.frontier = map[int]map[*Node]struct{}{0: {origin: {}}}
	p.visited = make(map[*Node]int)
}

// candidates returns unvisited Nodes of the current distance ring.
func (p *Probe) candidates() []*Node {
	var out []*Node
	for n := range p.frontier[p.distance] {
		if _, ok := p.visited[n]; !ok {
			out = append(out, n)
		}
	}
	// Map iteration order is itself random, but is not driven by |rng|.
	// Order candidates so that a seeded |rng| alone determines the choice.
	slices.SortFunc(out, compareNodes)
	return out
}

// visit marks |n| as visited, and extends the next distance ring by its neighbors.
func (p *Probe) visit(n *Node) {
	p.visited[n] = p.distance

	var next = p.distance + 1
	var ring, ok = p.frontier[next]
	if !ok {
		ring = make(map[*Node]struct{}, len(n.neighbors))
		p.frontier[next] = ring
	}
	for _, nn := range n.neighbors {
		ring[nn] = struct{}{}
	}
	if next > p.maxDistance {
		p.maxDistance = next
	}
}

func compareNodes(a, b *Node) int { return int(a.id) - int(b.id) }

func sortedNodes(m map[*Node]struct{}) []*Node {
	var out = make([]*Node, 0, len(m))
	for n := range m {
		out = append(out, n)
	}
	slices.SortFunc(out, compareNodes)
	return out
}
