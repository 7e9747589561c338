package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"log"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/robotalks/canpong/pkg/can"
	"github.com/robotalks/canpong/pkg/input"
	"github.com/robotalks/canpong/pkg/node"
	"github.com/robotalks/canpong/pkg/render"
)

var (
	lossRate float64
	ticks    uint64
)

func init() {
	flag.Float64Var(&lossRate, "loss", lossRate, "Fraction of frames dropped on the simulated bus")
	flag.Uint64Var(&ticks, "ticks", ticks, "Stop after the number of ticks, 0 runs forever")
	node.SetupFlags()
	render.SetupFlags()
}

// newNode attaches a bot-driven node to hub. The renderer sees the court
// of the first node only.
func newNode(conf *node.Config, hub *can.Hub, name string, master bool, r render.Renderer) *node.Node {
	bot := input.NewTracker(conf.Game, master)
	n, err := conf.NewNamedNode(prometheus.DefaultRegisterer, name, hub.Attach(name), bot, render.Multi(bot, r))
	if err != nil {
		log.Fatalln(err)
	}
	return n
}

func main() {
	flag.Parse()

	conf := node.NewConfig()
	hub := can.NewHub()
	if lossRate > 0 {
		hub.Drop = can.RandomLoss(lossRate, nil)
	}
	renderer, err := render.NewConfig().NewRenderer(os.Stdout, conf.Game)
	if err != nil {
		log.Fatalln(err)
	}

	opponent := *conf
	opponent.Group, opponent.Opponent = conf.Opponent, conf.Group
	// one /metrics endpoint serves both nodes.
	opponent.MetricsAddr = ""

	loop := conf.NewLoop()
	loop.MaxTicks = ticks
	loop.Add(
		newNode(conf, hub, "player", true, renderer),
		newNode(&opponent, hub, "opponent", false, render.Discard),
	).RunOrFail()
}
