// Package render writes the initial and final states of a placed Graph, as
// tables for operators or as YAML for further processing.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"go.stablematch.dev/core/placement"
	"go.stablematch.dev/core/topology"
	"gopkg.in/yaml.v2"
)

// Initial writes a table of each Device and the Node it originates from.
func Initial(w io.Writer, g *topology.Graph) error {
	var table = tablewriter.NewWriter(w)
	table.Header("Device", "Priority", "Origin")

	for _, d := range g.Devices {
		_ = table.Append([]string{
			fmt.Sprintf("D%d", d.ID()),
			d.Priority().String(),
			d.Origin().String(),
		})
	}
	return errors.WithMessage(table.Render(), "rendering initial table")
}

// Final writes a table of each Node and its assigned Devices, followed by
// any Devices which could not be placed.
func Final(w io.Writer, g *topology.Graph) error {
	var table = tablewriter.NewWriter(w)
	table.Header("Node", "Capacity", "Assigned", "Devices")

	for _, n := range g.Nodes {
		var devices = n.Devices()
		var names = make([]string, len(devices))
		for i, d := range devices {
			names[i] = d.String()
		}
		_ = table.Append([]string{
			fmt.Sprintf("N%d", n.ID()),
			fmt.Sprintf("%d", n.Capacity()),
			fmt.Sprintf("%d", len(devices)),
			strings.Join(names, ","),
		})
	}
	if err := table.Render(); err != nil {
		return errors.WithMessage(err, "rendering final table")
	}

	var unplaced = Unplaced(g)
	if len(unplaced) == 0 {
		return nil
	}
	var names = make([]string, len(unplaced))
	for i, d := range unplaced {
		names[i] = d.String()
	}
	var _, err = fmt.Fprintf(w, "Unplaced (%d): %s\n", len(unplaced), strings.Join(names, ","))
	return err
}

// Unplaced returns Devices of the Graph having no current assignment.
func Unplaced(g *topology.Graph) []*placement.Device {
	var out []*placement.Device
	for _, d := range g.Devices {
		if !d.IsAssigned() {
			out = append(out, d)
		}
	}
	return out
}

// Document is the YAML representation of a placed Graph.
type Document struct {
	Topology    topology.Spec        `yaml:"topology"`
	Assignments []Assignment         `yaml:"assignments"`
	Unplaced    []placement.DeviceID `yaml:"unplaced,flow,omitempty"`
	Summary     *placement.Summary   `yaml:"summary,omitempty"`
}

// Assignment is the set of Devices assigned to a Node.
type Assignment struct {
	Node     placement.NodeID     `yaml:"node"`
	Capacity int                  `yaml:"capacity"`
	Devices  []placement.DeviceID `yaml:"devices,flow"`
}

// NewDocument returns the Document of Graph |g|. |summary| may be nil.
func NewDocument(g *topology.Graph, summary *placement.Summary) Document {
	var doc = Document{Topology: g.Spec(), Summary: summary}

	for _, n := range g.Nodes {
		var a = Assignment{Node: n.ID(), Capacity: n.Capacity(), Devices: []placement.DeviceID{}}
		for _, d := range n.Devices() {
			a.Devices = append(a.Devices, d.ID())
		}
		doc.Assignments = append(doc.Assignments, a)
	}
	for _, d := range Unplaced(g) {
		doc.Unplaced = append(doc.Unplaced, d.ID())
	}
	return doc
}

// YAML writes the Document of Graph |g|.
func YAML(w io.Writer, g *topology.Graph, summary *placement.Summary) error {
	var b, err = yaml.Marshal(NewDocument(g, summary))
	if err != nil {
		return errors.WithMessage(err, "encoding document")
	}
	_, err = w.Write(b)
	return err
}

// SummaryLine returns a human-readable, single-line description of |s|.
func SummaryLine(s placement.Summary) string {
	var line = fmt.Sprintf("placed %s of %s devices (%s unplaced) with %s evictions across %s searches in %s",
		humanize.Comma(int64(s.Placed)),
		humanize.Comma(int64(s.Devices)),
		humanize.Comma(int64(s.Unplaced)),
		humanize.Comma(int64(s.Evictions)),
		humanize.Comma(int64(s.Searches)),
		s.Duration,
	)
	if s.Abandoned != 0 {
		line += fmt.Sprintf("; %s evicted devices abandoned", humanize.Comma(int64(s.Abandoned)))
	}
	return line
}
