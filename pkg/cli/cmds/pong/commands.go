// Package pong adds shell commands which inject game frames as the
// configured group.
package pong

import (
	"fmt"
	"strconv"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/canpong/pkg/can"
	"github.com/robotalks/canpong/pkg/cli/sh"
	"github.com/robotalks/canpong/pkg/protocol"
)

func parseInts(args []string, min, max int) ([]int, error) {
	if len(args) < min || len(args) > max {
		if min == max {
			return nil, fmt.Errorf("expect %d arguments", min)
		}
		return nil, fmt.Errorf("expect %d to %d arguments", min, max)
	}
	vals := make([]int, len(args))
	for n, arg := range args {
		v, err := strconv.ParseInt(arg, 0, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid coordinate %q: %w", arg, err)
		}
		vals[n] = int(v)
	}
	return vals, nil
}

// PaddleFrame builds a paddle frame from "Y" or a legacy step from "up"/"down".
func PaddleFrame(group int, args []string) (can.Frame, error) {
	if len(args) == 1 {
		switch args[0] {
		case "up":
			return protocol.EncodeLegacyPaddle(group, true), nil
		case "down":
			return protocol.EncodeLegacyPaddle(group, false), nil
		}
	}
	vals, err := parseInts(args, 1, 1)
	if err != nil {
		return can.Frame{}, err
	}
	return protocol.EncodePaddle(group, vals[0]), nil
}

// BallFrame builds a ball frame from "X Y [PADDLE]".
func BallFrame(group int, args []string) (can.Frame, error) {
	vals, err := parseInts(args, 2, 3)
	if err != nil {
		return can.Frame{}, err
	}
	if len(vals) == 3 {
		return protocol.EncodeBallWithPaddle(group, vals[0], vals[1], vals[2]), nil
	}
	return protocol.EncodeBall(group, vals[0], vals[1]), nil
}

// RoleFrame builds a role announcement from "master" or "slave".
func RoleFrame(args []string) (can.Frame, error) {
	if len(args) == 1 {
		switch args[0] {
		case "master":
			return protocol.EncodeRole(true), nil
		case "slave":
			return protocol.EncodeRole(false), nil
		}
	}
	return can.Frame{}, fmt.Errorf("expect master or slave")
}

func groupFrameCmd(build func(group int, args []string) (can.Frame, error)) func(c *ishell.Context) {
	return sh.MustBeConnected(func(c *ishell.Context) {
		f, err := build(sh.ShellFrom(c).Config.Group, c.Args)
		if err != nil {
			c.Err(err)
			return
		}
		sh.SendFrames(c, f)
	})
}

var (
	// PaddleCmd sends a paddle frame as the configured group.
	PaddleCmd = ishell.Cmd{
		Name:    "pong.paddle",
		Aliases: []string{"paddle", "p"},
		Help:    "Y|up|down",
		Func:    groupFrameCmd(PaddleFrame),
	}

	// BallCmd sends a ball frame as the configured group.
	BallCmd = ishell.Cmd{
		Name:    "pong.ball",
		Aliases: []string{"ball", "b"},
		Help:    "X Y [PADDLE]",
		Func:    groupFrameCmd(BallFrame),
	}

	// AnnounceCmd sends a role announcement.
	AnnounceCmd = ishell.Cmd{
		Name:    "pong.announce",
		Aliases: []string{"announce", "a"},
		Help:    "master|slave",
		Func: groupFrameCmd(func(_ int, args []string) (can.Frame, error) {
			return RoleFrame(args)
		}),
	}
)

func init() {
	sh.AddCmds(
		&PaddleCmd,
		&BallCmd,
		&AnnounceCmd,
	)
}
