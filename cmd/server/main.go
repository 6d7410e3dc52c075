package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"aeroterra.dev/internal/persistence/indexdb"
	persistlog "aeroterra.dev/internal/persistence/log"
	"aeroterra.dev/internal/persistence/snapshot"
	"aeroterra.dev/internal/sim/flight"
	"aeroterra.dev/internal/sim/tuning"
	"aeroterra.dev/internal/terrain/shade"
	"aeroterra.dev/internal/terrain/store"
	"aeroterra.dev/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		seedFlag   = flag.Int64("seed", 0, "world seed override (0 = use tuning / time)")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite chunk index")

		snapPath   = flag.String("snapshot", "", "path to snapshot to load (optional)")
		loadLatest = flag.Bool("load_latest_snapshot", true, "load latest snapshot from data dir if present (when -snapshot is empty)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", tp)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}

	snapshotDir := filepath.Join(*dataDir, "snapshots")
	_ = os.MkdirAll(snapshotDir, 0o755)

	// Resolve the snapshot to resume from, if any, before seeding: a
	// resumed world keeps its recorded seed so the tint field lines up
	// with the stored chunks.
	snapshotToLoad := strings.TrimSpace(*snapPath)
	if snapshotToLoad == "" && *loadLatest {
		snapshotToLoad = snapshot.Latest(snapshotDir)
	}
	var resumed *snapshot.SnapshotV1
	if snapshotToLoad != "" {
		snap, err := snapshot.Read(snapshotToLoad)
		if err != nil {
			logger.Fatalf("read snapshot %s: %v", snapshotToLoad, err)
		}
		if snap.SquareSize != tune.SquareSize || snap.Detail != tune.Detail || snap.Roughness != tune.Roughness {
			logger.Fatalf("snapshot %s was generated with square_size=%v detail=%d roughness=%v; tuning disagrees",
				snapshotToLoad, snap.SquareSize, snap.Detail, snap.Roughness)
		}
		resumed = &snap
	}

	seed := tune.Seed
	if *seedFlag != 0 {
		seed = *seedFlag
	}
	if resumed != nil {
		seed = resumed.Seed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	rng := rand.New(rand.NewSource(seed))
	tints := shade.New(seed+1, tune.Shade.Octaves, tune.Shade.Persistence, tune.Shade.Frequency)
	st, err := store.NewChunkStore(store.Params{
		Detail:      tune.Detail,
		Roughness:   tune.Roughness,
		SquareSize:  tune.SquareSize,
		EvictRadius: tune.EvictRadius,
	}, rng, tints)
	if err != nil {
		logger.Fatalf("chunk store: %v", err)
	}
	if resumed != nil {
		if err := st.Restore(resumed.Chunks); err != nil {
			logger.Fatalf("restore snapshot: %v", err)
		}
		logger.Printf("resumed %d chunks from %s (tick %d)", st.Len(), snapshotToLoad, resumed.Header.Tick)
	}

	events := persistlog.NewJSONLZstdWriter(filepath.Join(*dataDir, "logs"), "gen")
	defer events.Close()

	var index flight.Index
	if !*disableDB {
		idx, err := indexdb.OpenSQLite(filepath.Join(*dataDir, "index.db"))
		if err != nil {
			logger.Fatalf("open index: %v", err)
		}
		defer idx.Close()
		index = idx
	}

	sim := flight.New(flight.Config{
		Tuning:      tune,
		Seed:        seed,
		SnapshotDir: snapshotDir,
	}, st, logger, events, index)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := sim.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Printf("sim: %v", err)
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ws", ws.NewServer(sim, logger).Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	srv := &http.Server{Addr: *addr, Handler: mux}
	go func() {
		logger.Printf("listening on %s (seed %d, detail %d, square %.1f)", *addr, seed, tune.Detail, tune.SquareSize)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("http: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	sim.Stop()
}
