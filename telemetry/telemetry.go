// ════════════════════════════════════════════════════════════════════════════════════════════════
// Scheduling Telemetry Recorder
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Actor Runtime Scheduling Core
// Component: SQLite-Backed Counter Sampling
//
// Description:
//   Periodically snapshots per-worker scheduling counters (pops, tier hits,
//   misses, shared-lock acquisitions) and batch-inserts them into a SQLite
//   database for offline backoff-strategy tuning. Strictly a cold-path
//   observer: it reads counters the hot path already maintains and never
//   touches the queue itself.
//
// Failure model:
//   Telemetry must never destabilize the scheduler. Every database failure
//   is logged and dropped; the recorder keeps sampling and the scheduler
//   never sees an error.
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package telemetry

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"actorruntime/debug"
	"actorruntime/utils"
)

// WorkerSample is one worker's counter snapshot at a sampling instant.
// LockAcqs is queue-global and repeated per row for query convenience.
type WorkerSample struct {
	Worker     int    // Worker index within the pool
	Pops       uint64 // Successful pops since startup
	LocalHits  uint64 // Pops satisfied locally
	SharedHits uint64 // Pops satisfied from the shared tier
	Misses     uint64 // Failed pops (backoff steps taken)
	LockAcqs   uint64 // Shared-lock acquisitions, queue-wide
}

// Collector produces the current snapshot for every worker. Supplied by the
// runtime; called from the recorder goroutine, so it must be safe to invoke
// concurrently with the workers (the sched counters are atomic for this).
type Collector func() []WorkerSample

// Recorder owns the database handle and the sampling goroutine.
type Recorder struct {
	db       *sql.DB
	run      uint64
	interval time.Duration
	collect  Collector
	stopc    chan struct{}
	done     chan struct{}
}

const schema = `
CREATE TABLE IF NOT EXISTS sched_samples (
	run         INTEGER NOT NULL,
	ts          INTEGER NOT NULL,
	worker      INTEGER NOT NULL,
	pops        INTEGER NOT NULL,
	local_hits  INTEGER NOT NULL,
	shared_hits INTEGER NOT NULL,
	misses      INTEGER NOT NULL,
	lock_acqs   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sched_samples_run ON sched_samples(run, ts);
`

// Open creates (or appends to) the telemetry database at path and prepares
// a recorder sampling collect every interval. Each process run gets a fresh
// run identifier derived from the startup clock, so runs interleave safely
// in one file.
func Open(path string, interval time.Duration, collect Collector) (*Recorder, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	// Write-ahead logging keeps insert latency flat; the sampler is the
	// only writer so relaxed durability is acceptable.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &Recorder{
		db:       db,
		run:      utils.Mix64(uint64(time.Now().UnixNano())),
		interval: interval,
		collect:  collect,
		stopc:    make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Run returns this process's run identifier for correlating queries.
func (r *Recorder) Run() uint64 {
	return r.run
}

// Start launches the sampling goroutine. Call at most once.
func (r *Recorder) Start() {
	go func() {
		defer close(r.done)
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.Flush()
			case <-r.stopc:
				return
			}
		}
	}()
}

// Flush samples every worker once and writes the batch inside a single
// transaction with one prepared statement. Failures are logged and dropped.
func (r *Recorder) Flush() {
	samples := r.collect()
	if len(samples) == 0 {
		return
	}

	tx, err := r.db.Begin()
	if err != nil {
		debug.DropError("TELEMETRY_TX", err)
		return
	}
	stmt, err := tx.Prepare(
		"INSERT INTO sched_samples(run, ts, worker, pops, local_hits, shared_hits, misses, lock_acqs) " +
			"VALUES(?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		debug.DropError("TELEMETRY_PREPARE", err)
		_ = tx.Rollback()
		return
	}

	ts := time.Now().UnixNano()
	for _, s := range samples {
		if _, err := stmt.Exec(
			int64(r.run), ts, s.Worker,
			int64(s.Pops), int64(s.LocalHits), int64(s.SharedHits),
			int64(s.Misses), int64(s.LockAcqs),
		); err != nil {
			debug.DropError("TELEMETRY_INSERT", err)
			_ = stmt.Close()
			_ = tx.Rollback()
			return
		}
	}

	_ = stmt.Close()
	if err := tx.Commit(); err != nil {
		debug.DropError("TELEMETRY_COMMIT", err)
	}
}

// Close stops the sampler, takes one final snapshot so shutdown state is
// never lost, and closes the database.
func (r *Recorder) Close() {
	close(r.stopc)
	<-r.done
	r.Flush()
	if err := r.db.Close(); err != nil {
		debug.DropError("TELEMETRY_CLOSE", err)
	}
}
