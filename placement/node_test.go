package placement

import (
	"math/rand/v2"
	"sync"

	gc "gopkg.in/check.v1"
)

type NodeSuite struct{}

func (s *NodeSuite) TestAddWithSpareCapacity(c *gc.C) {
	var n = NewNode(1, 2)
	var d1, d2 = NewDevice(1, MIN, n), NewDevice(2, MAX, n)

	c.Check(n.TryAdd(d1), gc.IsNil)
	c.Check(n.TryAdd(d2), gc.IsNil)

	c.Check(n.Len(), gc.Equals, 2)
	c.Check(n.Devices(), gc.DeepEquals, []*Device{d2, d1})
	c.Check(d1.AssignedNode(), gc.Equals, n)
	c.Check(d2.AssignedNode(), gc.Equals, n)
}

func (s *NodeSuite) TestHigherPriorityEvictsWeakest(c *gc.C) {
	// A Node of capacity 1 holds a MED Device. A MAX Device displaces it.
	var n = NewNode(1, 1)
	var med, top = NewDevice(1, MED, n), NewDevice(2, MAX, n)

	c.Check(n.TryAdd(med), gc.IsNil)
	c.Check(n.TryAdd(top), gc.Equals, med)

	c.Check(n.Devices(), gc.DeepEquals, []*Device{top})
	c.Check(top.AssignedNode(), gc.Equals, n)
	c.Check(med.IsAssigned(), gc.Equals, false)
}

func (s *NodeSuite) TestWeakestOfManyIsEvicted(c *gc.C) {
	var n = NewNode(1, 3)
	var fixtures = []*Device{
		NewDevice(1, MED, n),
		NewDevice(2, MIN_MED, n),
		NewDevice(3, MAX, n),
	}
	for _, d := range fixtures {
		c.Check(n.TryAdd(d), gc.IsNil)
	}
	var d = NewDevice(4, MED_MAX, n)
	c.Check(n.TryAdd(d), gc.Equals, fixtures[1])
	c.Check(n.Devices(), gc.DeepEquals, []*Device{fixtures[2], d, fixtures[0]})

	// The weakest is now MED. Another MED_MAX displaces it.
	var d2 = NewDevice(5, MED_MAX, n)
	c.Check(n.TryAdd(d2), gc.Equals, fixtures[0])
	c.Check(n.Devices(), gc.DeepEquals, []*Device{fixtures[2], d, d2})
}

func (s *NodeSuite) TestWeakerOrEqualPriorityIsRejected(c *gc.C) {
	// A Node of capacity 2 holds two MAX Devices. A MIN Device is rejected.
	var n = NewNode(1, 2)
	var a, b = NewDevice(1, MAX, n), NewDevice(2, MAX, n)
	c.Check(n.TryAdd(a), gc.IsNil)
	c.Check(n.TryAdd(b), gc.IsNil)

	var low = NewDevice(3, MIN, n)
	c.Check(n.TryAdd(low), gc.Equals, low)
	c.Check(n.Devices(), gc.DeepEquals, []*Device{a, b})
	c.Check(low.IsAssigned(), gc.Equals, false)

	// Ties favor the assigned Device.
	var tie = NewDevice(4, MAX, n)
	c.Check(n.TryAdd(tie), gc.Equals, tie)
	c.Check(n.Devices(), gc.DeepEquals, []*Device{a, b})
	c.Check(a.AssignedNode(), gc.Equals, n)
	c.Check(b.AssignedNode(), gc.Equals, n)
}

func (s *NodeSuite) TestAddOfAssignedDevicePanics(c *gc.C) {
	var n1, n2 = NewNode(1, 1), NewNode(2, 1)
	var d = NewDevice(1, MED, n1)

	c.Check(n1.TryAdd(d), gc.IsNil)
	c.Check(func() { n2.TryAdd(d) }, gc.PanicMatches, `D1\(MED\) is already assigned to N1\(1\)`)
	c.Check(n2.Len(), gc.Equals, 0)
}

func (s *NodeSuite) TestConstructionValidation(c *gc.C) {
	c.Check(func() { NewNode(1, 0) }, gc.PanicMatches, `invalid Node capacity \(0; expected > 0\)`)
	c.Check(func() { NewDevice(1, Priority(0), NewNode(1, 1)) }, gc.PanicMatches, `invalid Priority .*`)
	c.Check(func() { NewDevice(1, MIN, nil) }, gc.PanicMatches, `Device origin Node is nil`)
}

func (s *NodeSuite) TestLinkIsSymmetricAndIdempotent(c *gc.C) {
	var a, b, d = NewNode(1, 1), NewNode(2, 1), NewNode(3, 1)

	c.Check(Link(a, b), gc.Equals, true)
	c.Check(Link(b, a), gc.Equals, false)
	c.Check(Link(a, d), gc.Equals, true)

	c.Check(a.Neighbors(), gc.DeepEquals, []*Node{b, d})
	c.Check(b.Neighbors(), gc.DeepEquals, []*Node{a})
	c.Check(d.Neighbors(), gc.DeepEquals, []*Node{a})

	c.Check(func() { Link(a, a) }, gc.PanicMatches, "cannot Link a Node to itself")
}

func (s *NodeSuite) TestConcurrentAddsRespectCapacity(c *gc.C) {
	const capacity, workers, perWorker = 5, 16, 50

	var n = NewNode(1, capacity)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var all []*Device

	for w := 0; w != workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			var rng = rand.New(rand.NewPCG(uint64(w), 1))

			for i := 0; i != perWorker; i++ {
				var d = NewDevice(DeviceID(w*perWorker+i), RandomPriority(rng), n)
				var out = n.TryAdd(d)

				if out != nil && out != d && out.priority >= d.priority {
					c.Errorf("%s evicted %s of greater or equal priority", d, out)
				}
				if l := n.Len(); l > capacity {
					c.Errorf("node holds %d devices", l)
				}
				mu.Lock()
				all = append(all, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()

	var held = n.Devices()
	c.Check(held, gc.HasLen, capacity)

	var assigned int
	for _, d := range all {
		if d.IsAssigned() {
			c.Check(d.AssignedNode(), gc.Equals, n)
			assigned++
		}
	}
	c.Check(assigned, gc.Equals, capacity)

	// Held Devices are the strongest offered, up to ties.
	var weakestHeld = held[len(held)-1].priority
	for _, d := range all {
		if !d.IsAssigned() {
			c.Check(d.priority <= weakestHeld, gc.Equals, true)
		}
	}
}

var _ = gc.Suite(&NodeSuite{})
