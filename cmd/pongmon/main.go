package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/robotalks/canpong/pkg/can"
	"github.com/robotalks/canpong/pkg/can/websocket"
	"github.com/robotalks/canpong/pkg/cli/sh"
	fx "github.com/robotalks/canpong/pkg/framework"
	"github.com/robotalks/canpong/pkg/node"
)

const relayPath = "/canpong"

var (
	relayAddr  string
	outputJSON bool
)

func init() {
	node.SetupFlags()
	flag.StringVar(&relayAddr, "relay", relayAddr, "Serve a websocket relay on this address, peers dial ws://ADDR"+relayPath)
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print frames in JSON.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	conf := node.NewConfig()
	runner := fx.NewRunner().HandleSignals()

	if relayAddr != "" {
		relay := websocket.NewRelay()
		mux := http.NewServeMux()
		mux.Handle(relayPath, relay.Handler())
		srv := &http.Server{Addr: relayAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		runner.Go(fx.NamedRun("relay", fx.RunFunc(func(ctx context.Context) error {
			go func() {
				<-ctx.Done()
				srv.Close()
			}()
			log.Printf("relay on %s", websocket.URL(relayAddr, relayPath))
			if err := srv.ListenAndServe(); err != http.ErrServerClosed {
				return err
			}
			return ctx.Err()
		})))
	}

	conn, err := sh.Dial(conf.BusURL)
	if err != nil {
		log.Fatalln(err)
	}
	defer conn.Close()
	log.Printf("watching %s", conf.BusURL)

	runner.Go(fx.NamedRun("monitor", fx.RunFunc(func(ctx context.Context) error {
		return conn.Watch(ctx, func(f can.Frame) {
			rec := sh.NewFrameRecord(f, time.Now())
			if !outputJSON {
				log.Print(rec.String())
				return
			}
			out, err := json.Marshal(rec)
			if err != nil {
				log.Printf("%s: %v", f, err)
				return
			}
			log.Print(string(out))
		})
	})))
	if err := runner.Wait(); err != nil {
		log.Fatalln(err)
	}
}
