package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	petname "github.com/dustinkirkland/golang-petname"
	log "github.com/sirupsen/logrus"
	mbp "go.stablematch.dev/core/mainboilerplate"
	"go.stablematch.dev/core/placement"
	"go.stablematch.dev/core/render"
)

type cmdRun struct{}

func (cmdRun) Execute([]string) error {
	defer mbp.InitDiagnosticsAndRecover(Config.Diagnostics)()
	mbp.InitLog(Config.Log)

	if Config.Output.Name == "" {
		Config.Output.Name = petname.Generate(2, "-")
	}
	if Config.Graph.Seed == 0 {
		Config.Graph.Seed = rand.Uint64()
	}
	var logger = log.WithField("run", Config.Output.Name)
	logger.WithField("config", Config).Info("starting placement run")

	var g, err = buildGraph(rand.New(rand.NewPCG(Config.Graph.Seed, 0)), Config.Graph)
	if err != nil {
		logger.WithField("err", err).Fatal("invalid topology")
	}
	logger.WithFields(log.Fields{
		"nodes":    len(g.Nodes),
		"edges":    g.Edges(),
		"devices":  len(g.Devices),
		"capacity": g.Capacity(),
	}).Info("built topology")

	var ctx, cancel = signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	summary, err := placement.Run(placement.RunArgs{
		Context:         ctx,
		Devices:         g.Devices,
		MaxCascadeDepth: Config.Placement.MaxCascadeDepth,
		Seed:            Config.Graph.Seed,
	})
	mbp.Must(err, "placement failed")

	switch Config.Output.Format {
	case "table":
		fmt.Println("Initial graph:")
		mbp.Must(render.Initial(os.Stdout, g), "failed to write initial graph")
		fmt.Println("\nFinal graph:")
		mbp.Must(render.Final(os.Stdout, g), "failed to write final graph")
	case "yaml":
		mbp.Must(render.YAML(os.Stdout, g, &summary), "failed to write document")
	}

	logger.Info(render.SummaryLine(summary))
	return nil
}
