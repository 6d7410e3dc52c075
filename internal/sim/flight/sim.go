// Package flight runs the simulation loop that turns observer positions
// into terrain. Each tick the latest position of every connected observer
// is mapped to chunk coordinates and the surrounding 3x3 neighborhood is
// generated; fresh chunks are streamed to every session.
//
// The loop is the sole owner of the chunk store: all generation happens on
// this goroutine, which is what makes the lock-free store safe.
package flight

import (
	"context"
	"log"
	"sort"
	"time"

	"aeroterra.dev/internal/sim/tuning"
	"aeroterra.dev/internal/terrain/store"
)

// JoinRequest registers a rendering session. Out receives marshaled
// server->client frames; sends never block, a slow session drops frames.
type JoinRequest struct {
	ObserverID string
	Out        chan []byte
}

// PosUpdate is one observer position report. Terrain expansion uses the
// x and y components; z (altitude) is carried for logging only.
type PosUpdate struct {
	ObserverID string
	Pos        [3]float64
}

// EventSink records generation events (the JSONL+zstd log in production).
type EventSink interface {
	Write(v any) error
}

// Index is the optional read-model index of generated chunks.
type Index interface {
	InsertChunk(ChunkRecord)
	InsertSnapshot(SnapshotRecord)
}

// ChunkRecord is one generated chunk, as seen by the index.
type ChunkRecord struct {
	Tick    uint64
	CX, CY  int
	N       int
	Edges   string
	HMin    float64
	HMax    float64
	HMean   float64
	BatchMs float64 // duration of the neighborhood expansion that produced it
}

// SnapshotRecord is the metadata row for one written snapshot.
type SnapshotRecord struct {
	Tick   uint64
	Path   string
	Chunks int
}

// GenEvent is the event-log record for one generated chunk.
type GenEvent struct {
	Tick    uint64  `json:"tick"`
	CX      int     `json:"cx"`
	CY      int     `json:"cy"`
	N       int     `json:"n"`
	Edges   string  `json:"edges"`
	HMin    float64 `json:"h_min"`
	HMax    float64 `json:"h_max"`
	HMean   float64 `json:"h_mean"`
	BatchMs float64 `json:"batch_ms"`
}

// Config carries the resolved runtime parameters.
type Config struct {
	Tuning      tuning.Tuning
	Seed        int64  // effective seed after resolving tuning.Seed == 0
	SnapshotDir string // "" disables periodic snapshots
}

type session struct {
	out    chan []byte
	pos    [3]float64
	hasPos bool
}

type Sim struct {
	cfg    Config
	store  *store.ChunkStore
	logger *log.Logger
	events EventSink // may be nil
	index  Index     // may be nil

	tick      uint64
	observers map[string]*session

	join  chan JoinRequest
	leave chan string
	inbox chan PosUpdate
	stop  chan struct{}
}

func New(cfg Config, st *store.ChunkStore, logger *log.Logger, events EventSink, index Index) *Sim {
	return &Sim{
		cfg:       cfg,
		store:     st,
		logger:    logger,
		events:    events,
		index:     index,
		observers: map[string]*session{},
		join:      make(chan JoinRequest, 16),
		leave:     make(chan string, 16),
		inbox:     make(chan PosUpdate, 256),
		stop:      make(chan struct{}),
	}
}

func (s *Sim) Join() chan<- JoinRequest { return s.join }
func (s *Sim) Leave() chan<- string     { return s.leave }
func (s *Sim) Inbox() chan<- PosUpdate  { return s.inbox }

// Store exposes the chunk store for startup wiring (snapshot restore).
// Nothing may touch it once Run has started.
func (s *Sim) Store() *store.ChunkStore { return s.store }

// WorldParams returns the parameters echoed to clients in WELCOME.
func (s *Sim) WorldParams() (tickRateHz int, squareSize float64, detail int, roughness float64, seed int64) {
	t := s.cfg.Tuning
	return t.TickRateHz, t.SquareSize, t.Detail, t.Roughness, s.cfg.Seed
}

// Run drives the loop until ctx is canceled or Stop is called. Channel
// input is buffered between ticks and applied at the tick boundary, so
// generation order within a tick is deterministic.
func (s *Sim) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(s.cfg.Tuning.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var pendingJoins []JoinRequest
	var pendingLeaves []string
	var pendingMoves []PosUpdate

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stop:
			return nil
		case req := <-s.join:
			pendingJoins = append(pendingJoins, req)
		case id := <-s.leave:
			pendingLeaves = append(pendingLeaves, id)
		case upd := <-s.inbox:
			pendingMoves = append(pendingMoves, upd)
		case <-ticker.C:
			s.stepInternal(pendingJoins, pendingLeaves, pendingMoves)
			pendingJoins = pendingJoins[:0]
			pendingLeaves = pendingLeaves[:0]
			pendingMoves = pendingMoves[:0]
		}
	}
}

func (s *Sim) Stop() { close(s.stop) }

// StepOnce advances the sim by a single tick with the same ordering
// semantics as Run. Intended for deterministic tests and offline drivers.
func (s *Sim) StepOnce(joins []JoinRequest, leaves []string, moves []PosUpdate) uint64 {
	tick := s.tick
	s.stepInternal(joins, leaves, moves)
	return tick
}

// observerIDs returns connected observer IDs in stable order, so map
// iteration never changes which chunk edge becomes authoritative.
func (s *Sim) observerIDs() []string {
	ids := make([]string, 0, len(s.observers))
	for id := range s.observers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
