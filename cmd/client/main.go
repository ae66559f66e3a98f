// Command client is the network state synchronization client: it dials the
// game server, feeds every incoming snapshot and delta into the netstate
// engine, samples local input at a fixed rate, and logs a compact render
// summary in place of an actual renderer.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hknc0/orbit/internal/config"
	"github.com/hknc0/orbit/internal/diagnostics"
	"github.com/hknc0/orbit/internal/input"
	"github.com/hknc0/orbit/internal/netstate"
	"github.com/hknc0/orbit/internal/transport"
	"github.com/hknc0/orbit/internal/vecmath"
)

func main() {
	serverURL := flag.String("server", "ws://127.0.0.1:8080/ws", "game server WebSocket URL")
	diagAddr := flag.String("diag-addr", "127.0.0.1:6060", "diagnostics HTTP listen address")
	flag.Parse()

	sessionID := input.NewSessionID()
	log := slog.New(slog.NewTextHandler(os.Stdout, nil)).With("session", sessionID)

	cfg := config.Load()
	engine := netstate.NewEngine(cfg, netstate.NewSystemClock())
	diagServer := diagnostics.NewServer(engine, nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("diagnostics listening", "addr", *diagAddr)
		if err := http.ListenAndServe(*diagAddr, diagServer); err != nil {
			log.Warn("diagnostics server stopped", "error", err)
		}
	}()

	header := http.Header{"X-Session-ID": []string{sessionID.String()}}
	client := transport.NewClient(*serverURL, header, log)
	if err := client.Dial(ctx); err != nil {
		log.Error("dial failed", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	guardedEngine := &lockingEngine{engine: engine, server: diagServer}

	readErrCh := make(chan error, 1)
	go func() {
		readErrCh <- client.Run(ctx, guardedEngine)
	}()

	recorder := input.NewRecorder(30, 5)
	renderTicker := time.NewTicker(time.Second / 60)
	defer renderTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("shutting down")
			return

		case err := <-readErrCh:
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Error("transport stopped", "error", err)
			}
			return

		case <-renderTicker.C:
			renderFrame(log, engine, diagServer)
			sendIdleInput(recorder, client, engine, diagServer, log)
		}
	}
}

// lockingEngine wraps netstate.Engine so transport writes take the same
// mutex diagnostics.Server uses for its reads and the render loop takes
// around its own Engine calls, per the concurrency contract documented on
// Engine: netstate itself is lock-free, so every goroutine that touches the
// Engine goes through this one mutex.
type lockingEngine struct {
	engine *netstate.Engine
	server *diagnostics.Server
}

func (l *lockingEngine) ApplySnapshot(s netstate.GameSnapshot) {
	l.server.Lock()
	defer l.server.Unlock()
	start := time.Now()
	l.engine.ApplySnapshot(s)
	diagnostics.RecordApplySnapshot(time.Since(start))
}

func (l *lockingEngine) ApplyDelta(d netstate.DeltaUpdate) {
	l.server.Lock()
	defer l.server.Unlock()
	start := time.Now()
	l.engine.ApplyDelta(d)
	diagnostics.RecordApplyDelta(time.Since(start))
}

func (l *lockingEngine) SetLocalPlayerID(id string) {
	l.server.Lock()
	defer l.server.Unlock()
	l.engine.SetLocalPlayerID(id)
}

func (l *lockingEngine) MarkWellDestroyed(id int) {
	l.server.Lock()
	defer l.server.Unlock()
	l.engine.MarkWellDestroyed(id)
}

func renderFrame(log *slog.Logger, engine *netstate.Engine, diagServer *diagnostics.Server) {
	diagServer.Lock()
	state, ok := engine.GetInterpolatedState()
	pose, _ := engine.GetPredictedLocalPlayer()
	bufferLen := engine.BufferLength()
	delayMs := engine.InterpolationDelayMs()
	pendingInputs := engine.PendingInputCount()
	diagServer.Unlock()

	diagnostics.UpdateBufferLength(bufferLen)
	diagnostics.UpdateInterpolationDelay(delayMs)
	diagnostics.UpdatePendingInputCount(pendingInputs)

	if !ok {
		return
	}

	log.Debug("frame",
		"tick", state.Tick,
		"players", len(state.Players),
		"projectiles", len(state.Projectiles),
		"predictedX", pose.Position.X,
		"predictedY", pose.Position.Y,
	)
}

// sendIdleInput is a placeholder input source until a real control surface
// (keyboard/gamepad polling) is wired in; it samples a zero-thrust input
// every tick purely to keep the sequence counter and reconciliation path
// exercised end to end.
func sendIdleInput(recorder *input.Recorder, client *transport.Client, engine *netstate.Engine, diagServer *diagnostics.Server, log *slog.Logger) {
	diagServer.Lock()
	sample := recorder.Sample(engine.GetCurrentTick(), time.Now().UnixMilli(), vecmath.Zero, vecmath.Zero, false, false, false)
	engine.RecordInput(sample)
	diagServer.Unlock()

	// Only the network send is paced; the predictor sees every sample.
	if !recorder.Allow() {
		return
	}
	if err := client.SendInput(sample); err != nil {
		log.Warn("send input failed", "error", err)
	}
}
