package placement

import (
	"container/heap"
	"fmt"
	"slices"
	"sync"
)

// NodeID uniquely identifies a Node.
type NodeID int

// Node is a vertex of the graph having a fixed capacity of Devices it may
// hold. Its neighbor relation is symmetric and must be fully built (via Link)
// before Devices are placed; it's thereafter read without synchronization.
// Assigned Devices are held in a bounded min-heap on Priority which is only
// ever mutated by TryAdd, under the Node's lock.
type Node struct {
	id        NodeID
	capacity  int
	neighbors []*Node

	mu      sync.Mutex
	devices deviceHeap
}

// NewNode returns a Node with the given |capacity|, which must be positive.
func NewNode(id NodeID, capacity int) *Node {
	if capacity <= 0 {
		panic(fmt.Sprintf("invalid Node capacity (%d; expected > 0)", capacity))
	}
	return &Node{
		id:       id,
		capacity: capacity,
		devices:  make(deviceHeap, 0, capacity),
	}
}

// Link |a| and |b| as neighbors of one another. It returns false if they
// were already linked. Self-links are not permitted.
func Link(a, b *Node) bool {
	if a == b {
		panic("cannot Link a Node to itself")
	} else if slices.Contains(a.neighbors, b) {
		return false
	}
	a.neighbors = append(a.neighbors, b)
	b.neighbors = append(b.neighbors, a)
	return true
}

func (n *Node) ID() NodeID     { return n.id }
func (n *Node) Capacity() int  { return n.capacity }
func (n *Node) String() string { return fmt.Sprintf("N%d(%d)", n.id, n.capacity) }

// Neighbors of the Node. The returned slice must not be modified.
func (n *Node) Neighbors() []*Node { return n.neighbors }

// Len returns the current number of assigned Devices.
func (n *Node) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.devices)
}

// Devices returns a snapshot of assigned Devices, ordered on descending
// Priority and then ascending DeviceID.
func (n *Node) Devices() []*Device {
	n.mu.Lock()
	var out = slices.Clone([]*Device(n.devices))
	n.mu.Unlock()

	slices.SortFunc(out, func(a, b *Device) int {
		if a.priority != b.priority {
			return int(b.priority) - int(a.priority)
		}
		return int(a.id) - int(b.id)
	})
	return out
}

// TryAdd atomically attempts to assign Device |d| to the Node:
//
//   - If the Node has spare capacity, |d| is added and nil is returned.
//   - Otherwise, if |d| has strictly greater Priority than the weakest
//     assigned Device, that Device is evicted and returned, and |d| takes its place.
//   - Otherwise |d| is rejected and returned unchanged, and the Node is unmodified.
//
// Device assignments are updated to reflect the outcome before TryAdd returns.
func (n *Node) TryAdd(d *Device) *Device {
	n.mu.Lock()
	defer n.mu.Unlock()

	if cur := d.assigned.Load(); cur != nil {
		panic(fmt.Sprintf("%s is already assigned to %s", d, cur))
	}

	if len(n.devices) < n.capacity {
		heap.Push(&n.devices, d)
		d.assigned.Store(n)
		n.checkInvariants()
		return nil
	} else if n.devices[0].priority >= d.priority {
		return d // Ties favor the assigned Device.
	}

	var evicted = n.devices[0]
	n.devices[0] = d
	heap.Fix(&n.devices, 0)

	evicted.assigned.Store(nil)
	d.assigned.Store(n)
	n.checkInvariants()

	return evicted
}

// checkInvariants panics if the Node has exceeded its capacity.
// n.mu must be held.
func (n *Node) checkInvariants() {
	if len(n.devices) > n.capacity {
		panic(fmt.Sprintf("%s holds %d Devices, exceeding its capacity", n, len(n.devices)))
	}
}

// deviceHeap is a container/heap of Devices, weakest first.
type deviceHeap []*Device

func (h deviceHeap) Len() int           { return len(h) }
func (h deviceHeap) Less(i, j int) bool { return weaker(h[i], h[j]) }
func (h deviceHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *deviceHeap) Push(x any)        { *h = append(*h, x.(*Device)) }
func (h *deviceHeap) Pop() any {
	var old = *h
	var d = old[len(old)-1]
	old[len(old)-1] = nil
	*h = old[:len(old)-1]
	return d
}
