package main

import (
	"github.com/jessevdk/go-flags"
	mbp "go.stablematch.dev/core/mainboilerplate"
)

const iniFilename = "stablematch.ini"

// GraphConfig configures the topology which devices are placed into.
type GraphConfig struct {
	Nodes   int    `long:"nodes" env:"NODES" description:"Number of nodes of a random graph. Random in [2, 20] if not set"`
	Devices int    `long:"devices" env:"DEVICES" description:"Number of devices of a random graph, which must be at least --graph.nodes. Random in [nodes, 100] if not set"`
	Edges   int    `long:"edges" env:"EDGES" description:"Number of edges of a random graph. Random in [nodes-1, 2*nodes] if not set"`
	File    string `long:"file" env:"FILE" description:"Path to a YAML topology to place, rather than a random graph"`
	Seed    uint64 `long:"seed" env:"SEED" description:"Seed of random graph generation and placement. Random if not set"`
}

// Config is the top-level configuration object of stablematch.
var Config = new(struct {
	Graph GraphConfig `group:"Graph" namespace:"graph" env-namespace:"GRAPH"`

	Placement struct {
		MaxCascadeDepth int `long:"max-cascade-depth" env:"MAX_CASCADE_DEPTH" description:"Maximum length of an eviction cascade. Evicted devices beyond it are left unplaced. Defaults to the number of priority levels"`
	} `group:"Placement" namespace:"placement" env-namespace:"PLACEMENT"`

	Output struct {
		Format string `long:"format" env:"FORMAT" default:"table" choice:"table" choice:"yaml" description:"Output format of initial and final graphs"`
		Name   string `long:"name" env:"NAME" description:"Name of this run, included in logs. Generated if not set"`
	} `group:"Output" namespace:"output" env-namespace:"OUTPUT"`

	Log         mbp.LogConfig         `group:"Logging" namespace:"log" env-namespace:"LOG"`
	Diagnostics mbp.DiagnosticsConfig `group:"Debug" namespace:"debug" env-namespace:"DEBUG"`
})

func main() {
	var parser = flags.NewParser(Config, flags.Default)

	_, _ = parser.AddCommand("run", "Place devices into a graph", `
Build a random graph (or load one from --graph.file), and place each of its
devices by searching outward from the device's origin node for a node with
spare capacity, or with an assigned device of lower priority which it may
displace. Displaced devices search again from their own origins.

Initial and final assignments are written to stdout.
`, &cmdRun{})

	_, _ = parser.AddCommand("generate", "Write a random graph as YAML", `
Build a random graph from --graph.nodes, --graph.devices, --graph.edges and
--graph.seed, and write it to stdout as a YAML topology suitable for use
with --graph.file.
`, &cmdGenerate{})

	mbp.AddPrintConfigCmd(parser, iniFilename)
	mbp.MustParseConfig(parser, iniFilename)
}
