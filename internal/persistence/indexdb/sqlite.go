// Package indexdb maintains a SQLite read-model of generated terrain:
// one row per chunk and one per written snapshot. It is an index for
// tooling and dashboards, never an input to generation — dropping the
// file loses nothing the snapshot cannot rebuild.
package indexdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"aeroterra.dev/internal/sim/flight"
)

type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

type reqKind int

const (
	reqChunk reqKind = iota + 1
	reqSnapshot
)

type req struct {
	kind reqKind

	chunk    flight.ChunkRecord
	snapshot flight.SnapshotRecord
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		// Expansion is bursty when the observer crosses into fresh
		// territory; a deep buffer keeps the sim from stalling.
		ch: make(chan req, 65536),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS chunks (
			cx INTEGER NOT NULL,
			cy INTEGER NOT NULL,
			tick INTEGER NOT NULL,
			n INTEGER NOT NULL,
			edges TEXT NOT NULL,
			h_min REAL NOT NULL,
			h_max REAL NOT NULL,
			h_mean REAL NOT NULL,
			batch_ms REAL NOT NULL,
			created_at TEXT NOT NULL,
			PRIMARY KEY (cx, cy)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_tick ON chunks(tick);`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			tick INTEGER PRIMARY KEY,
			path TEXT NOT NULL,
			chunks INTEGER NOT NULL,
			created_at TEXT NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// InsertChunk queues a chunk row. Drops the row if the indexer falls
// behind; the JSONL event log remains the source of truth.
func (s *SQLiteIndex) InsertChunk(c flight.ChunkRecord) {
	if s == nil || s.closed.Load() {
		return
	}
	select {
	case s.ch <- req{kind: reqChunk, chunk: c}:
	default:
	}
}

func (s *SQLiteIndex) InsertSnapshot(r flight.SnapshotRecord) {
	if s == nil || s.closed.Load() {
		return
	}
	select {
	case s.ch <- req{kind: reqSnapshot, snapshot: r}:
	default:
	}
}

// Counts reports stored row totals. Meant for tests and admin tooling;
// rows queued but not yet committed are not counted.
func (s *SQLiteIndex) Counts() (chunks, snapshots int, err error) {
	if err = s.db.QueryRow(`SELECT COUNT(*) FROM chunks`).Scan(&chunks); err != nil {
		return 0, 0, err
	}
	if err = s.db.QueryRow(`SELECT COUNT(*) FROM snapshots`).Scan(&snapshots); err != nil {
		return 0, 0, err
	}
	return chunks, snapshots, nil
}

func (s *SQLiteIndex) loop() {
	insertChunk, _ := s.db.Prepare(`INSERT OR REPLACE INTO chunks(cx,cy,tick,n,edges,h_min,h_max,h_mean,batch_ms,created_at) VALUES(?,?,?,?,?,?,?,?,?,?)`)
	insertSnapshot, _ := s.db.Prepare(`INSERT OR REPLACE INTO snapshots(tick,path,chunks,created_at) VALUES(?,?,?,?)`)
	defer func() {
		if insertChunk != nil {
			_ = insertChunk.Close()
		}
		if insertSnapshot != nil {
			_ = insertSnapshot.Close()
		}
	}()

	var (
		tx          *sql.Tx
		opCount     int
		lastCommit  = time.Now()
		commitEvery = 500
		commitAfter = time.Second
	)

	begin := func() bool {
		if tx != nil {
			return true
		}
		txx, err := s.db.Begin()
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return false
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
		return true
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
	}
	defer commit()

	for r := range s.ch {
		if !begin() {
			continue
		}
		now := time.Now().UTC().Format(time.RFC3339Nano)
		switch r.kind {
		case reqChunk:
			c := r.chunk
			_, _ = tx.Stmt(insertChunk).Exec(c.CX, c.CY, c.Tick, c.N, c.Edges, c.HMin, c.HMax, c.HMean, c.BatchMs, now)
		case reqSnapshot:
			sn := r.snapshot
			_, _ = tx.Stmt(insertSnapshot).Exec(sn.Tick, sn.Path, sn.Chunks, now)
		}
		opCount++
		if opCount >= commitEvery || time.Since(lastCommit) >= commitAfter || len(s.ch) == 0 {
			commit()
		}
	}
}
