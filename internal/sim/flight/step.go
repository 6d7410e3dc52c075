package flight

import (
	"encoding/json"
	"path/filepath"
	"time"

	"aeroterra.dev/internal/persistence/snapshot"
	"aeroterra.dev/internal/protocol"
	"aeroterra.dev/internal/terrain/store"
)

func (s *Sim) stepInternal(joins []JoinRequest, leaves []string, moves []PosUpdate) {
	tick := s.tick
	s.tick++

	for _, req := range joins {
		s.handleJoin(req)
	}
	for _, id := range leaves {
		delete(s.observers, id)
	}
	for _, upd := range moves {
		// Latest report wins; moves arrive in channel order.
		if sess, ok := s.observers[upd.ObserverID]; ok {
			sess.pos = upd.Pos
			sess.hasPos = true
		}
	}

	for _, id := range s.observerIDs() {
		sess := s.observers[id]
		if !sess.hasPos {
			continue
		}
		center := s.store.ChunkAt(sess.pos[0], sess.pos[1])

		started := time.Now()
		created := s.store.EnsureNeighborhood(center.CX, center.CY)
		batchMs := float64(time.Since(started).Microseconds()) / 1000

		for _, c := range created {
			s.recordChunk(tick, c, batchMs)
			s.broadcastChunk(tick, c)
		}
	}

	// Eviction tracks a single roaming observer. With several observers a
	// chunk far from one may be near another, so the conservative choice
	// is to keep everything.
	if len(s.observers) == 1 {
		for _, sess := range s.observers {
			if sess.hasPos {
				if evicted := s.store.EvictBeyond(s.store.ChunkAt(sess.pos[0], sess.pos[1])); len(evicted) > 0 {
					s.logger.Printf("tick %d: evicted %d chunks", tick, len(evicted))
				}
			}
		}
	}

	if s.cfg.SnapshotDir != "" && s.cfg.Tuning.SnapshotEveryTicks > 0 &&
		tick > 0 && tick%uint64(s.cfg.Tuning.SnapshotEveryTicks) == 0 {
		s.writeSnapshot(tick)
	}
}

// handleJoin registers the session and backfills every chunk generated so
// far, so a renderer connecting mid-flight sees the whole carpet.
func (s *Sim) handleJoin(req JoinRequest) {
	sess := &session{out: req.Out}
	s.observers[req.ObserverID] = sess
	for _, k := range s.store.Keys() {
		c, _ := s.store.GetChunk(k.CX, k.CY)
		s.sendChunk(sess, s.tick, c)
	}
}

func (s *Sim) recordChunk(tick uint64, c *store.Chunk, batchMs float64) {
	hmin, hmax, hmean := c.Field.Stats()
	if s.events != nil {
		ev := GenEvent{
			Tick: tick, CX: c.CX, CY: c.CY, N: c.Field.Side(),
			Edges: c.Edges, HMin: hmin, HMax: hmax, HMean: hmean, BatchMs: batchMs,
		}
		if err := s.events.Write(ev); err != nil {
			s.logger.Printf("event log: %v", err)
		}
	}
	if s.index != nil {
		s.index.InsertChunk(ChunkRecord{
			Tick: tick, CX: c.CX, CY: c.CY, N: c.Field.Side(),
			Edges: c.Edges, HMin: hmin, HMax: hmax, HMean: hmean, BatchMs: batchMs,
		})
	}
}

func (s *Sim) broadcastChunk(tick uint64, c *store.Chunk) {
	for _, id := range s.observerIDs() {
		s.sendChunk(s.observers[id], tick, c)
	}
}

func (s *Sim) sendChunk(sess *session, tick uint64, c *store.Chunk) {
	msg := protocol.ChunkMsg{
		Type:            protocol.TypeChunk,
		ProtocolVersion: protocol.Version,
		Tick:            tick,
		CX:              c.CX,
		CY:              c.CY,
		N:               c.Field.Side(),
		Heights:         c.Field.Cells(),
		Tint:            c.Tint,
	}
	b, err := json.Marshal(msg)
	if err != nil {
		s.logger.Printf("marshal chunk (%d,%d): %v", c.CX, c.CY, err)
		return
	}
	select {
	case sess.out <- b:
	default:
		// Slow consumer; the renderer can re-sync by reconnecting.
	}
}

func (s *Sim) writeSnapshot(tick uint64) {
	snap := snapshot.SnapshotV1{
		Header:     snapshot.Header{Version: 1, Tick: tick},
		Seed:       s.cfg.Seed,
		SquareSize: s.cfg.Tuning.SquareSize,
		Detail:     s.cfg.Tuning.Detail,
		Roughness:  s.cfg.Tuning.Roughness,
		Chunks:     s.store.Export(),
	}
	path := filepath.Join(s.cfg.SnapshotDir, snapshot.Filename(tick))
	if err := snapshot.Write(path, snap); err != nil {
		s.logger.Printf("snapshot tick %d: %v", tick, err)
		return
	}
	s.logger.Printf("snapshot tick %d: %d chunks -> %s", tick, len(snap.Chunks), path)
	if s.index != nil {
		s.index.InsertSnapshot(SnapshotRecord{Tick: tick, Path: path, Chunks: len(snap.Chunks)})
	}
}
