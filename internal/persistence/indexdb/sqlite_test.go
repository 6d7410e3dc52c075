package indexdb

import (
	"path/filepath"
	"testing"
	"time"

	"aeroterra.dev/internal/sim/flight"
)

func TestInsertAndCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")
	idx, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	for i := 0; i < 5; i++ {
		idx.InsertChunk(flight.ChunkRecord{
			Tick: uint64(i), CX: i, CY: -i, N: 33,
			Edges: "T--L", HMin: -2.5, HMax: 10, HMean: 1.25, BatchMs: 0.7,
		})
	}
	idx.InsertSnapshot(flight.SnapshotRecord{Tick: 4, Path: "snap", Chunks: 5})

	// The writer commits asynchronously; poll briefly.
	deadline := time.Now().Add(5 * time.Second)
	for {
		chunks, snaps, err := idx.Counts()
		if err != nil {
			t.Fatalf("counts: %v", err)
		}
		if chunks == 5 && snaps == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("rows not committed: chunks=%d snapshots=%d", chunks, snaps)
		}
		time.Sleep(20 * time.Millisecond)
	}

	if err := idx.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	// Writes after close are silently dropped, not a crash.
	idx.InsertChunk(flight.ChunkRecord{CX: 99, CY: 99})
}

func TestChunkRowUpsertsByCoordinate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")
	idx, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer idx.Close()

	idx.InsertChunk(flight.ChunkRecord{Tick: 1, CX: 0, CY: 0, N: 33})
	idx.InsertChunk(flight.ChunkRecord{Tick: 2, CX: 0, CY: 0, N: 33})

	deadline := time.Now().Add(5 * time.Second)
	for {
		chunks, _, err := idx.Counts()
		if err != nil {
			t.Fatalf("counts: %v", err)
		}
		if chunks == 1 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("chunks = %d, want 1 (upsert by cx,cy)", chunks)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	if _, err := OpenSQLite(""); err == nil {
		t.Fatal("empty path accepted")
	}
}
