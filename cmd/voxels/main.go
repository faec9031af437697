package main

import (
	"flag"
	"fmt"
	"log"
	"runtime"
	"time"

	"github.com/brightforge/voxclient/pkg/block"
	"github.com/brightforge/voxclient/pkg/chunk"
	"github.com/brightforge/voxclient/pkg/config"
	"github.com/brightforge/voxclient/pkg/coords"
	"github.com/brightforge/voxclient/pkg/input"
	"github.com/brightforge/voxclient/pkg/meshing"
	"github.com/brightforge/voxclient/pkg/netclient"
	"github.com/brightforge/voxclient/pkg/player"
	"github.com/brightforge/voxclient/pkg/render"
	"github.com/brightforge/voxclient/pkg/server"
)

func init() {
	// OpenGL calls must all originate from the same OS thread.
	runtime.LockOSThread()
}

func main() {
	fmt.Println("Starting voxclient...")

	serverAddr := flag.String("server", "", "remote server address (empty: run a local server on this process)")
	playerName := flag.String("name", "Player", "player name")
	renderDist := flag.Int("renderdist", 8, "render distance, in chunks")
	listenAddr := flag.String("listen", ":20000", "address the local server listens on, when -server is empty")
	flag.Parse()

	cfg, err := config.Load("cfg/cfg.toml")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *renderDist > 0 {
		cfg.RenderDistance = uint32(*renderDist)
	}

	connectAddr := *serverAddr
	if connectAddr == "" {
		srv, err := startLocalServer(*listenAddr)
		if err != nil {
			log.Fatalf("local server: %v", err)
		}
		defer srv.Close()
		connectAddr = *listenAddr
		if connectAddr[0] == ':' {
			connectAddr = "127.0.0.1" + connectAddr
		}
		// Give the listener a moment to start accepting before dialing.
		time.Sleep(50 * time.Millisecond)
	}

	blocks := block.NewDefaultRegistry()
	chunks := chunk.NewRegistry()

	net, err := netclient.Dial(connectAddr, cfg.RenderDistance)
	if err != nil {
		log.Fatalf("connect to %s: %v", connectAddr, err)
	}
	defer net.Close()

	mesher := meshing.NewWorker(blocks)
	defer mesher.Stop()

	renderer, err := render.NewRenderer(1280, 720, "voxclient - "+*playerName)
	if err != nil {
		log.Fatalf("renderer: %v", err)
	}
	renderer.SetupOpenGL()

	p := &player.Player{
		Pos:            coords.WorldPos{X: 0, Y: 20, Z: 0},
		RenderDistance: cfg.RenderDistance,
		Active:         true,
	}

	actor := input.NewActor(renderer, net, mesher, blocks, chunks, p, cfg)
	actor.Run()
}

func startLocalServer(addr string) (*server.Network, error) {
	world := server.NewWorld(server.NewWorldGen(1))
	tick := server.NewTick(world)
	net, err := server.NewNetwork(addr, tick)
	if err != nil {
		return nil, err
	}
	go net.Serve()

	stop := make(chan struct{})
	go net.FlushOutbox(time.Second/20, stop)
	go func() {
		ticker := time.NewTicker(time.Second / 20)
		defer ticker.Stop()
		for range ticker.C {
			tick.BroadcastStates()
		}
	}()

	return net, nil
}
