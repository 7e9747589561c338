package main

import (
	"github.com/robotalks/canpong/pkg/cli/sh"
	"github.com/robotalks/canpong/pkg/node"

	_ "github.com/robotalks/canpong/pkg/cli/cmds/pong"
)

//go-build: CGO_ENABLED=0

func init() {
	node.SetupFlags()
	sh.SetupFlags()
}

func main() {
	sh.Main()
}
