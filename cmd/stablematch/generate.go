package main

import (
	"math/rand/v2"
	"os"

	log "github.com/sirupsen/logrus"
	mbp "go.stablematch.dev/core/mainboilerplate"
	"go.stablematch.dev/core/topology"
	"gopkg.in/yaml.v2"
)

type cmdGenerate struct{}

func (cmdGenerate) Execute([]string) error {
	mbp.InitLog(Config.Log)

	if Config.Graph.Seed == 0 {
		Config.Graph.Seed = rand.Uint64()
	}
	var rng = rand.New(rand.NewPCG(Config.Graph.Seed, 0))

	var g, err = topology.Random(rng, randomConfig(rng, Config.Graph))
	if err != nil {
		log.WithField("err", err).Fatal("invalid topology")
	}
	log.WithField("seed", Config.Graph.Seed).Info("generated topology")

	b, err := yaml.Marshal(g.Spec())
	mbp.Must(err, "failed to encode topology")

	_, err = os.Stdout.Write(b)
	return err
}
