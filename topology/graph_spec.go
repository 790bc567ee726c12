package topology

import (
	"io"
	"os"
	"slices"

	"github.com/pkg/errors"
	"go.stablematch.dev/core/placement"
	"gopkg.in/yaml.v2"
)

// Spec is the YAML representation of a Graph.
type Spec struct {
	Nodes   []NodeSpec   `yaml:"nodes"`
	Devices []DeviceSpec `yaml:"devices"`
}

// NodeSpec is the YAML representation of a Node. Neighbors need be listed
// by only one of each pair of linked Nodes.
type NodeSpec struct {
	ID        placement.NodeID   `yaml:"id"`
	Capacity  int                `yaml:"capacity"`
	Neighbors []placement.NodeID `yaml:"neighbors,flow,omitempty"`
}

// DeviceSpec is the YAML representation of a Device.
type DeviceSpec struct {
	ID       placement.DeviceID `yaml:"id"`
	Priority placement.Priority `yaml:"priority"`
	Origin   placement.NodeID   `yaml:"origin"`
}

// LoadFile loads a Graph from the YAML Spec at |path|.
func LoadFile(path string) (*Graph, error) {
	var f, err = os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	g, err := Load(f)
	return g, errors.WithMessagef(err, "loading %s", path)
}

// Load decodes a YAML Spec from |r| and builds its Graph.
func Load(r io.Reader) (*Graph, error) {
	var b, err = io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var spec Spec
	if err = yaml.UnmarshalStrict(b, &spec); err != nil {
		return nil, errors.WithMessage(err, "decoding topology")
	}
	return spec.Build()
}

// Build validates the Spec and returns its Graph. The Graph must be connected.
func (s Spec) Build() (*Graph, error) {
	var g = new(Graph)
	var nodes = make(map[placement.NodeID]*placement.Node, len(s.Nodes))

	for _, ns := range s.Nodes {
		if _, ok := nodes[ns.ID]; ok {
			return nil, errors.Errorf("duplicate node ID %d", ns.ID)
		} else if ns.Capacity <= 0 {
			return nil, errors.Errorf("node %d: invalid capacity (%d; expected > 0)", ns.ID, ns.Capacity)
		}
		var n = placement.NewNode(ns.ID, ns.Capacity)
		nodes[ns.ID] = n
		g.Nodes = append(g.Nodes, n)
	}
	for _, ns := range s.Nodes {
		for _, id := range ns.Neighbors {
			if nn, ok := nodes[id]; !ok {
				return nil, errors.Errorf("node %d: unknown neighbor %d", ns.ID, id)
			} else if id == ns.ID {
				return nil, errors.Errorf("node %d: cannot neighbor itself", ns.ID)
			} else {
				placement.Link(nodes[ns.ID], nn)
			}
		}
	}
	if len(g.Nodes) == 0 {
		return nil, errors.New("topology has no nodes")
	} else if !g.Connected() {
		return nil, errors.New("topology is not connected")
	}

	var devices = make(map[placement.DeviceID]bool, len(s.Devices))
	for _, ds := range s.Devices {
		if devices[ds.ID] {
			return nil, errors.Errorf("duplicate device ID %d", ds.ID)
		} else if err := ds.Priority.Validate(); err != nil {
			return nil, errors.WithMessagef(err, "device %d", ds.ID)
		} else if _, ok := nodes[ds.Origin]; !ok {
			return nil, errors.Errorf("device %d: unknown origin node %d", ds.ID, ds.Origin)
		}
		devices[ds.ID] = true
		g.Devices = append(g.Devices, placement.NewDevice(ds.ID, ds.Priority, nodes[ds.Origin]))
	}
	return g, nil
}

// Spec returns the Spec of the Graph. Each edge is listed once, by the Node
// of lesser NodeID.
func (g *Graph) Spec() Spec {
	var s Spec
	for _, n := range g.Nodes {
		var ns = NodeSpec{ID: n.ID(), Capacity: n.Capacity()}
		for _, nn := range n.Neighbors() {
			if nn.ID() > n.ID() {
				ns.Neighbors = append(ns.Neighbors, nn.ID())
			}
		}
		slices.Sort(ns.Neighbors)
		s.Nodes = append(s.Nodes, ns)
	}
	for _, d := range g.Devices {
		s.Devices = append(s.Devices, DeviceSpec{
			ID:       d.ID(),
			Priority: d.Priority(),
			Origin:   d.Origin().ID(),
		})
	}
	return s
}
