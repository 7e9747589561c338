package node

// Transports registered to can.Open.
import (
	_ "github.com/robotalks/canpong/pkg/can/mqtt"
	_ "github.com/robotalks/canpong/pkg/can/socketcan"
	_ "github.com/robotalks/canpong/pkg/can/stream"
	_ "github.com/robotalks/canpong/pkg/can/udp"
	_ "github.com/robotalks/canpong/pkg/can/websocket"
)
