package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	persistlog "realmtick.io/internal/persistence/log"
	"realmtick.io/internal/persistence/store"
	"realmtick.io/internal/platform/config"
	"realmtick.io/internal/platform/otel"
	"realmtick.io/internal/sim/catalogs"
	"realmtick.io/internal/sim/events"
	"realmtick.io/internal/sim/feature/actions"
	"realmtick.io/internal/sim/feature/economy"
	"realmtick.io/internal/sim/feature/governance"
	"realmtick.io/internal/sim/feature/structures"
	"realmtick.io/internal/sim/feature/sustenance"
	"realmtick.io/internal/sim/feature/travel"
	"realmtick.io/internal/sim/tick"
	"realmtick.io/internal/sim/tuning"
	"realmtick.io/internal/transport/ws"
)

func main() {
	var env config.Server
	if err := config.ParseEnv(&env); err != nil {
		log.Fatal(err)
	}

	var (
		addr        = flag.String("addr", env.Addr, "http listen address")
		dialect     = flag.String("db", env.DBDialect, "database dialect: sqlite or postgres")
		sqlitePath  = flag.String("sqlite", env.SQLitePath, "sqlite database path")
		postgresDSN = flag.String("postgres", env.PostgresDSN, "postgres DSN (when -db=postgres)")
		reportDir   = flag.String("reports", env.ReportDir, "tick report archive directory")
		tuningPath  = flag.String("tuning", env.TuningPath, "path to tuning.yaml")
		catalogPath = flag.String("catalog", env.CatalogPath, "path to catalog.yaml")
		noScheduler = flag.Bool("disable_scheduler", env.DisableScheduler, "only run ticks on manual trigger")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	ctx, cancel := signalContext()
	defer cancel()

	shutdownTracing, err := otel.Setup(ctx, "realmtick")
	if err != nil {
		logger.Fatalf("otel: %v", err)
	}
	defer func() {
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = shutdownTracing(ctx2)
	}()

	tune, err := tuning.Load(*tuningPath)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Printf("tuning not found (%s); using defaults", *tuningPath)
		tune = tuning.Defaults()
	}
	rawCatalog, err := os.ReadFile(*catalogPath)
	if err != nil {
		logger.Fatalf("read catalog: %v", err)
	}
	cats, err := catalogs.Parse(rawCatalog)
	if err != nil {
		logger.Fatalf("load catalog: %v", err)
	}

	if *dialect == string(store.DialectSQLite) {
		_ = os.MkdirAll(filepath.Dir(*sqlitePath), 0o755)
	}
	st, err := store.Open(ctx, store.Config{
		Dialect:     store.Dialect(*dialect),
		SQLitePath:  *sqlitePath,
		PostgresDSN: *postgresDSN,
	})
	if err != nil {
		logger.Fatalf("open store: %v", err)
	}
	defer st.Close()
	recordConfig(ctx, st, cats, rawCatalog, tune, logger)

	hub := ws.NewServer(log.New(os.Stdout, "[ws] ", log.LstdFlags|log.Lmicroseconds))
	emit := events.Multi(
		events.Safe(hub, logger),
		events.Logger(log.New(os.Stdout, "[event] ", log.LstdFlags|log.Lmicroseconds)),
	)

	tickLogger := log.New(os.Stdout, "[tick] ", log.LstdFlags|log.Lmicroseconds)
	travelSvc := &travel.Service{Store: st, Index: &travel.Index{Store: st}, Catalogs: cats, Tuning: tune, Events: emit, Logger: tickLogger}
	actionSvc := &actions.Service{Store: st, Events: emit, Logger: tickLogger}
	deps := tick.Deps{
		Actions:    actionSvc,
		Sustenance: &sustenance.Service{Store: st, Catalogs: cats, Tuning: tune, Events: emit, Logger: tickLogger},
		Travel:     travelSvc,
		Structures: &structures.Service{Store: st, Events: emit, Logger: tickLogger},
		Governance: &governance.Service{Store: st, Tuning: tune, Events: emit, Logger: tickLogger},
		Economy:    &economy.Service{Store: st, Tuning: tune, Events: emit, Logger: tickLogger},
		Logger:     tickLogger,
	}

	reports := persistlog.NewReportLogger(*reportDir)
	defer reports.Close()

	orch := &tick.Orchestrator{
		Store:      st,
		Steps:      tick.DefaultSteps(deps),
		Events:     emit,
		Reports:    reports,
		Logger:     tickLogger,
		StaleAfter: time.Duration(tune.StaleAfterHours) * time.Hour,
	}

	if *noScheduler {
		logger.Printf("scheduler disabled; ticks run only via POST /admin/tick")
	} else {
		sched := &tick.Scheduler{
			Orchestrator: orch,
			Every:        time.Duration(tune.SchedulerCheckMinutes) * time.Minute,
			Logger:       tickLogger,
		}
		go func() {
			if err := sched.Run(ctx); err != nil && err != context.Canceled {
				logger.Printf("scheduler stopped: %v", err)
			}
		}()
	}

	a := &app{
		store:      st,
		orch:       orch,
		actions:    actionSvc,
		travel:     travelSvc,
		hub:        hub,
		adminToken: env.AdminToken,
		logger:     logger,
	}
	srv := &http.Server{
		Addr:              *addr,
		Handler:           a.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s (db=%s)", *addr, st.Dialect())
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

// recordConfig stores the effective catalog and tuning so operators can see
// which rules a tick ran under.
func recordConfig(ctx context.Context, st *store.Store, cats *catalogs.Catalogs, rawCatalog []byte, tune tuning.Tuning, logger *log.Logger) {
	now := time.Now().UTC()
	if err := st.UpsertCatalog(ctx, "catalog", cats.Digest, rawCatalog, now); err != nil {
		logger.Printf("record catalog: %v", err)
	}
	b, err := json.Marshal(tune)
	if err != nil {
		return
	}
	sum := sha256.Sum256(b)
	if err := st.UpsertCatalog(ctx, "tuning", hex.EncodeToString(sum[:]), b, now); err != nil {
		logger.Printf("record tuning: %v", err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
