package placement

import (
	"fmt"
	"sync/atomic"
)

// DeviceID uniquely identifies a Device.
type DeviceID int

// Device seeks assignment to a Node of the graph. Its Priority and origin
// Node are fixed at construction. Its current assignment is updated only by
// the Node which holds it, under that Node's lock, and may be read
// concurrently at any time.
type Device struct {
	id       DeviceID
	priority Priority
	origin   *Node

	assigned atomic.Pointer[Node]
}

// NewDevice returns a Device of |priority| which searches from |origin|.
func NewDevice(id DeviceID, priority Priority, origin *Node) *Device {
	if err := priority.Validate(); err != nil {
		panic(err.Error())
	} else if origin == nil {
		panic("Device origin Node is nil")
	}
	return &Device{id: id, priority: priority, origin: origin}
}

func (d *Device) ID() DeviceID        { return d.id }
func (d *Device) Priority() Priority  { return d.priority }
func (d *Device) Origin() *Node       { return d.origin }
func (d *Device) String() string      { return fmt.Sprintf("D%d(%s)", d.id, d.priority) }
func (d *Device) IsAssigned() bool    { return d.assigned.Load() != nil }
func (d *Device) AssignedNode() *Node { return d.assigned.Load() }

// weaker orders Devices on ascending Priority. Devices of equal Priority are
// ordered on DeviceID, which only serves to make heap layouts reproducible.
func weaker(a, b *Device) bool {
	if a.priority != b.priority {
		return a.priority < b.priority
	}
	return a.id < b.id
}
