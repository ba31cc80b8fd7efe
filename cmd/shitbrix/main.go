package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"shitbrix/internal/config"
	"shitbrix/internal/control"
	"shitbrix/internal/coordinator"
	"shitbrix/internal/metrics"
	"shitbrix/internal/replay"
	"shitbrix/internal/state"
	"shitbrix/internal/transport"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables only")
	}

	cfg := config.SessionFromEnv()
	sim := config.SimConfigFromEnv()

	var (
		networkMode  = flag.String("network_mode", string(cfg.NetworkMode), "local, client, server, or with-server")
		playerNumber = flag.Int("player_number", -1, "player number this process controls (-1 = all local players)")
		replayPath   = flag.String("replay_path", cfg.ReplayPath, "path the game-over replay is written to when autorecord is on (replays are not played back)")
		logPath      = flag.String("log_path", cfg.LogPath, "path to the audit log")
		serverURL    = flag.String("server_url", cfg.ServerURL, "server websocket URL (client mode)")
		port         = flag.Int("port", cfg.Port, "listen port (server mode)")
		autorecord   = flag.Bool("autorecord", cfg.Autorecord, "write a replay file automatically")
		sessionFile  = flag.String("session_file", "", "optional YAML file overriding session settings")
	)
	flag.Parse()

	if *sessionFile != "" {
		overrides, err := config.LoadSessionFile(*sessionFile)
		if err != nil {
			log.Fatalf("shitbrix: %v", err)
		}
		cfg = config.ApplyFileOverrides(cfg, overrides)
	}

	cfg.NetworkMode = config.NetworkMode(*networkMode)
	cfg.ReplayPath = *replayPath
	cfg.LogPath = *logPath
	cfg.ServerURL = *serverURL
	cfg.Port = *port
	cfg.Autorecord = *autorecord
	if *playerNumber >= 0 {
		cfg.PlayerNumber = playerNumber
	}

	logger := log.New(os.Stdout, "shitbrix: ", log.LstdFlags)
	reg := prometheus.NewRegistry()
	mtr := metrics.New()
	mtr.Register(reg)

	switch cfg.NetworkMode {
	case config.ModeLocal:
		runLocal(cfg, sim, logger, mtr)
	case config.ModeClient:
		runClient(cfg, sim, logger, mtr)
	case config.ModeServer, config.ModeWithServer:
		runServer(cfg, sim, logger, mtr, reg)
	default:
		log.Fatalf("shitbrix: unknown network_mode %q", cfg.NetworkMode)
	}
}

func runLocal(cfg config.SessionConfig, sim config.SimConfig, logger *log.Logger, mtr *metrics.Metrics) {
	meta := state.Meta{Players: 2, Seed: time.Now().UnixNano()}
	c := coordinator.NewLocal(meta)
	c.GameStart()

	tick := time.Second / time.Duration(sim.TPS)
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	logger.Printf("running local session at %d TPS", sim.TPS)
	for range ticker.C {
		start := time.Now()
		over := c.Tick()
		mtr.ObserveTick(start)
		if over {
			logger.Printf("game over, winner=%d", c.Winner)
			if cfg.Autorecord && cfg.ReplayPath != "" {
				writeReplay(cfg.ReplayPath, meta, c.Journal.Inputs(), logger)
			}
			return
		}
	}
}

func writeReplay(path string, meta state.Meta, inputs []state.Input, logger *log.Logger) {
	f, err := os.Create(path)
	if err != nil {
		logger.Printf("autorecord: %v", err)
		return
	}
	defer f.Close()

	w := replay.NewWriter(f)
	w.OnStart(meta)
	for _, in := range inputs {
		w.OnInput(in)
	}
	w.OnEnd()
	logger.Printf("wrote replay to %s", path)
}

func runClient(cfg config.SessionConfig, sim config.SimConfig, logger *log.Logger, mtr *metrics.Metrics) {
	if cfg.ServerURL == "" {
		log.Fatal("shitbrix: client mode requires --server_url")
	}
	ctx, cancel := context.WithTimeout(context.Background(), transport.ConnectTimeout)
	defer cancel()

	ch, err := transport.Dial(ctx, cfg.ServerURL, logger)
	if err != nil {
		log.Fatalf("shitbrix: dial %s: %v", cfg.ServerURL, err)
	}
	defer ch.Close()

	playerNumber := 0
	if cfg.PlayerNumber != nil {
		playerNumber = *cfg.PlayerNumber
	}
	c := coordinator.NewClient(ch, playerNumber)

	tick := time.Second / time.Duration(sim.TPS)
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	logger.Printf("connected to %s as player %d", cfg.ServerURL, playerNumber)
	for {
		select {
		case <-ch.Closed():
			logger.Println("connection closed")
			return
		case <-ticker.C:
			start := time.Now()
			c.Poll()
			over := c.Tick()
			mtr.ObserveTick(start)
			if over {
				logger.Printf("game over, winner=%d", c.Winner)
				return
			}
		}
	}
}

func runServer(cfg config.SessionConfig, sim config.SimConfig, logger *log.Logger, mtr *metrics.Metrics, reg *prometheus.Registry) {
	meta := state.Meta{Players: 2, Seed: time.Now().UnixNano()}
	srv := coordinator.NewServer(meta)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.Handle("/", control.NewRouter(control.RouterConfig{Session: srv}))

	addr := ":" + strconv.Itoa(cfg.Port)
	go func() {
		logger.Printf("control plane on %s", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Printf("control plane stopped: %v", err)
		}
	}()

	tick := time.Second / time.Duration(sim.TPS)
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	logger.Printf("running authoritative session at %d TPS", sim.TPS)
	for range ticker.C {
		start := time.Now()
		srv.Poll()
		over := srv.Tick()
		mtr.ObserveTick(start)
		if over {
			logger.Printf("game over, winner=%d", srv.Winner)
			return
		}
	}
}
