// ════════════════════════════════════════════════════════════════════════════════════════════════
// Actor Runtime Scheduling Core - Main Entry Point
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Actor Runtime Scheduling Core
// Component: Main Entry Point & System Orchestration
//
// Description:
//   System orchestration with phased initialization and clean separation of
//   concerns. Configuration → Workers & Telemetry → Workload → Drain & Exit.
//
// Architecture:
//   - Phase 0: Configuration load (with live-reload watcher for tunables)
//   - Phase 1: Worker pool and telemetry startup
//   - Phase 2: Demo message workload (external seeding + worker-local relays)
//   - Phase 3: Signal-driven graceful shutdown with full drain
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"actorruntime/config"
	"actorruntime/constants"
	"actorruntime/control"
	"actorruntime/debug"
	"actorruntime/utils"
)

const (
	demoMailboxes = 64
	demoHops      = 256
)

// relay is the demo behavior: forward the message to the next mailbox until
// its hop counter runs out. Forwards use the worker-local send path, so a
// chain of relays stays on one core until another thread steals it.
func relay(mailboxes []*Mailbox) Behavior {
	return func(w *Worker, mb *Mailbox, m Message) {
		if m.A == 0 {
			return
		}
		next := mailboxes[(mb.id+1)%len(mailboxes)]
		w.Send(next, Message{Kind: m.Kind, A: m.A - 1, B: m.B})
	}
}

func main() {
	// PHASE 0: Configuration
	path := constants.DefaultConfigPath
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	cfg, err := config.Load(path)
	switch {
	case err == nil:
		debug.DropMessage("CONFIG", "loaded "+path)
	case os.IsNotExist(err):
		cfg = config.Default()
		debug.DropMessage("CONFIG", "no "+path+", using defaults")
	default:
		debug.DropError("CONFIG", err)
		os.Exit(1)
	}
	debug.DropMessage("CONFIG", "strategy "+cfg.YieldStrategy().String())

	// Live reload applies the runtime-safe tunables only: cooldown today.
	// Worker count and strategy bind at initialization and need a restart.
	stopWatch, err := config.Watch(path, func(next config.Config) {
		control.SetCooldown(next.Cooldown())
	})
	if err != nil {
		debug.DropError("CONFIG_WATCH", err)
	} else {
		defer stopWatch()
	}

	// PHASE 1: Runtime construction and startup
	rt := NewRuntime(cfg)

	mailboxes := make([]*Mailbox, demoMailboxes)
	behavior := relay(mailboxes)
	for i := range mailboxes {
		mailboxes[i] = NewMailbox(i, behavior)
		rt.Register(mailboxes[i])
	}

	rt.StartTelemetry(cfg)
	rt.Start(cfg.CoreBase)
	debug.DropMessage("READY", "scheduler running")

	// PHASE 2: Demo workload — an external producer seeds relay chains into
	// the pool once a second, exercising the shared tier; the relays
	// themselves exercise the locality fast path.
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	seed := time.NewTicker(time.Second)
	defer seed.Stop()

	round := uint64(0)
loop:
	for {
		select {
		case <-seed.C:
			round++
			for i := 0; i < 4; i++ {
				rt.SendExternal(mailboxes[(int(round)+i*16)%demoMailboxes],
					Message{Kind: 1, A: demoHops, B: round})
			}
		case <-sigc:
			break loop
		}
	}

	// PHASE 3: Graceful shutdown — stop producing, drain both tiers plus
	// every mailbox, then release the workers. A failed drain is a loud
	// exit: losing scheduled work silently is the one unforgivable fault.
	debug.DropMessage("SHUTDOWN", "draining")
	if !rt.Drain(10 * time.Second) {
		debug.DropMessage("SHUTDOWN", "DRAIN TIMEOUT — work may be lost")
		rt.Stop()
		os.Exit(1)
	}
	rt.Stop()
	debug.DropMessage("DONE", utils.Utoa(rt.Processed())+" messages processed")
}
