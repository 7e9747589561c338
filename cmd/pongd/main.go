package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"log"
	"os"

	fx "github.com/robotalks/canpong/pkg/framework"
	"github.com/robotalks/canpong/pkg/input"
	"github.com/robotalks/canpong/pkg/node"
	"github.com/robotalks/canpong/pkg/render"
)

var configFile string

func init() {
	flag.StringVar(&configFile, "config", configFile, "TOML config file, flags given explicitly win")
	node.SetupFlags()
	input.SetupFlags()
	render.SetupFlags()
}

func main() {
	flag.Parse()

	conf := node.NewConfig()
	if configFile != "" {
		if err := conf.LoadFile(configFile); err != nil {
			log.Fatalln(err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src, err := input.NewConfig().NewSource(conf.Game, cancel)
	if err != nil {
		log.Fatalln(err)
	}
	renderer, err := render.NewConfig().NewRenderer(os.Stdout, conf.Game)
	if err != nil {
		log.Fatalln(err)
	}
	if bot, ok := src.(render.Renderer); ok {
		renderer = render.Multi(bot, renderer)
	}
	bus, err := conf.OpenBus()
	if err != nil {
		log.Fatalln(err)
	}
	n, err := conf.NewNode(bus, src, renderer)
	if err != nil {
		log.Fatalln(err)
	}

	runner := fx.NewRunnerWith(ctx).HandleSignals()
	runner.Go(conf.NewLoop().Add(n))
	if err := runner.Wait(); err != nil {
		log.Fatalln(err)
	}
}
