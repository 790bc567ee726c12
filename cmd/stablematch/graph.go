package main

import (
	"math/rand/v2"

	"github.com/pkg/errors"
	"go.stablematch.dev/core/topology"
)

const (
	minRandomNodes   = 2
	maxRandomNodes   = 20
	maxRandomDevices = 100
)

// randomConfig resolves a topology.Config from |cfg|, drawing any unset
// node or device counts from |rng|.
func randomConfig(rng *rand.Rand, cfg GraphConfig) topology.Config {
	var out = topology.Config{Nodes: cfg.Nodes, Devices: cfg.Devices, Edges: cfg.Edges}

	if out.Nodes == 0 {
		out.Nodes = minRandomNodes + rng.IntN(maxRandomNodes-minRandomNodes+1)
	}
	if out.Devices == 0 {
		var hi = max(maxRandomDevices, out.Nodes)
		out.Devices = out.Nodes + rng.IntN(hi-out.Nodes+1)
	}
	return out
}

// buildGraph loads the Graph of |cfg.File| or, if not set, builds a random one.
func buildGraph(rng *rand.Rand, cfg GraphConfig) (*topology.Graph, error) {
	if cfg.File != "" {
		return topology.LoadFile(cfg.File)
	}
	var g, err = topology.Random(rng, randomConfig(rng, cfg))
	return g, errors.WithMessage(err, "building random graph")
}
