package placement

import (
	"math/rand/v2"

	gc "gopkg.in/check.v1"
)

type ProbeSuite struct{}

func (s *ProbeSuite) TestPlacesAtOriginWithSpareCapacity(c *gc.C) {
	var g = newTestGraph(1)
	var d = g.device(MIN, 0)
	var p = NewProbe(rand.New(rand.NewPCG(1, 1)))

	var out = p.FindNode(d)
	c.Check(out, gc.DeepEquals, Result{Node: g.nodes[0], Visited: 1})
	c.Check(out.Placed(), gc.Equals, true)
	c.Check(d.AssignedNode(), gc.Equals, g.nodes[0])

	c.Check(p.Frontier(0), gc.DeepEquals, []*Node{g.nodes[0]})
	c.Check(p.Frontier(1), gc.HasLen, 0)
}

func (s *ProbeSuite) TestRejectionAdvancesToNextRing(c *gc.C) {
	// A - B - C, where A and B are full with MAX Devices.
	var g = newTestGraph(1, 1, 1).link(0, 1).link(1, 2)
	g.fill(0, MAX)
	g.fill(1, MAX)

	var d = g.device(MIN, 0)
	var p = NewProbe(rand.New(rand.NewPCG(1, 1)))
	var out = p.FindNode(d)

	c.Check(out, gc.DeepEquals, Result{Node: g.nodes[2], Visited: 3, Rejections: 2})
	c.Check(p.Frontier(1), gc.DeepEquals, []*Node{g.nodes[1]})
	c.Check(p.Frontier(2), gc.DeepEquals, []*Node{g.nodes[0], g.nodes[2]})

	for i, expect := range []int{0, 1, 2} {
		var dist, ok = p.Visited(g.nodes[i])
		c.Check(ok, gc.Equals, true)
		c.Check(dist, gc.Equals, expect)
	}
	checkFrontierGrowth(c, p, g.nodes)
}

func (s *ProbeSuite) TestEvictionEndsSearch(c *gc.C) {
	var g = newTestGraph(1, 1).link(0, 1)
	var weak = g.fill(0, MIN)[0]

	var d = g.device(MAX, 0)
	var p = NewProbe(rand.New(rand.NewPCG(1, 1)))
	var out = p.FindNode(d)

	c.Check(out, gc.DeepEquals, Result{Node: g.nodes[0], Evicted: weak, Visited: 1})
	c.Check(weak.IsAssigned(), gc.Equals, false)
	c.Check(g.nodes[0].Devices(), gc.DeepEquals, []*Device{d})

	// The neighbor was discovered, but never visited.
	c.Check(p.Frontier(1), gc.DeepEquals, []*Node{g.nodes[1]})
	var _, ok = p.Visited(g.nodes[1])
	c.Check(ok, gc.Equals, false)
}

func (s *ProbeSuite) TestRetriesCandidatesWithinRing(c *gc.C) {
	// A star, with a full center and leaves. Only one leaf has spare capacity.
	for seed := uint64(0); seed != 20; seed++ {
		var g = newTestGraph(1, 1, 1, 2, 1).link(0, 1).link(0, 2).link(0, 3).link(0, 4)
		for _, i := range []int{0, 1, 2, 4} {
			g.fill(i, MED)
		}
		g.assign(3, MED)

		var d = g.device(MIN_MED, 0)
		var p = NewProbe(rand.New(rand.NewPCG(seed, 1)))
		var out = p.FindNode(d)

		c.Check(out.Node, gc.Equals, g.nodes[3])
		c.Check(out.Evicted, gc.IsNil)
		c.Check(out.Rejections >= 1 && out.Rejections <= 4, gc.Equals, true)
		c.Check(out.Visited, gc.Equals, out.Rejections+1)

		// Every visited leaf was tried from ring 1. The search never
		// advanced past it.
		for _, n := range g.nodes[1:] {
			if dist, ok := p.Visited(n); ok {
				c.Check(dist, gc.Equals, 1)
			}
		}
		checkFrontierGrowth(c, p, g.nodes)
	}
}

func (s *ProbeSuite) TestExhaustsReachableNodes(c *gc.C) {
	// A cycle of four Nodes with a pendant, all full with MAX Devices.
	var g = newTestGraph(1, 2, 1, 1, 3).
		link(0, 1).link(1, 2).link(2, 3).link(3, 0).link(2, 4)
	for i := range g.nodes {
		g.fill(i, MAX)
	}
	// A disconnected Node with spare capacity is never reached.
	var island = NewNode(99, 1)

	var d = g.device(MED, 1)
	var p = NewProbe(rand.New(rand.NewPCG(3, 1)))
	var out = p.FindNode(d)

	c.Check(out, gc.DeepEquals, Result{Visited: 5, Rejections: 5})
	c.Check(out.Placed(), gc.Equals, false)
	c.Check(d.IsAssigned(), gc.Equals, false)
	c.Check(island.Len(), gc.Equals, 0)

	for _, n := range g.nodes {
		var _, ok = p.Visited(n)
		c.Check(ok, gc.Equals, true)
	}
	c.Check(p.MaxDistance(), gc.Equals, 3)
	checkFrontierGrowth(c, p, g.nodes)
}

func (s *ProbeSuite) TestStateIsResetEachSearch(c *gc.C) {
	// A - B - C, where B and C are full and A has room for two.
	var g = newTestGraph(2, 1, 1).link(0, 1).link(1, 2)
	g.fill(1, MAX)
	g.fill(2, MAX)

	var p = NewProbe(rand.New(rand.NewPCG(1, 1)))
	c.Check(p.FindNode(g.device(MIN, 1)).Node, gc.Equals, g.nodes[0])

	var dist, ok = p.Visited(g.nodes[0])
	c.Check(ok, gc.Equals, true)
	c.Check(dist, gc.Equals, 1)

	// Search again from C. Nodes visited by the prior search are eligible
	// once more, and distances are relative to the new origin.
	var out = p.FindNode(g.device(MIN, 2))
	c.Check(out, gc.DeepEquals, Result{Node: g.nodes[0], Visited: 3, Rejections: 2})
	c.Check(p.Frontier(0), gc.DeepEquals, []*Node{g.nodes[2]})

	dist, ok = p.Visited(g.nodes[0])
	c.Check(ok, gc.Equals, true)
	c.Check(dist, gc.Equals, 2)
	checkFrontierGrowth(c, p, g.nodes)
}

func (s *ProbeSuite) TestSeededChoiceIsReproducible(c *gc.C) {
	var pick = func(seed uint64) NodeID {
		var g = newTestGraph(1, 1, 1, 1, 1, 1).link(0, 1).link(0, 2).link(0, 3).link(0, 4).link(0, 5)
		g.fill(0, MAX)
		return NewProbe(rand.New(rand.NewPCG(seed, 7))).FindNode(g.device(MIN, 0)).Node.ID()
	}
	var seen = make(map[NodeID]bool)
	for seed := uint64(1); seed != 40; seed++ {
		var id = pick(seed)
		c.Check(pick(seed), gc.Equals, id)
		seen[id] = true
	}
	// Different seeds spread choices across the ring.
	c.Check(len(seen) > 1, gc.Equals, true)
}

// checkFrontierGrowth verifies that each discovered ring is exactly the
// union of neighbors of Nodes visited from the ring before it.
func checkFrontierGrowth(c *gc.C, p *Probe, nodes []*Node) {
	for d := 0; d < p.MaxDistance(); d++ {
		var expect = make(map[*Node]struct{})
		for _, n := range nodes {
			if dist, ok := p.Visited(n); ok && dist == d {
				for _, nn := range n.Neighbors() {
					expect[nn] = struct{}{}
				}
			}
		}
		c.Check(p.Frontier(d+1), gc.DeepEquals, sortedNodes(expect), gc.Commentf("distance %d", d+1))
	}
}

var _ = gc.Suite(&ProbeSuite{})
