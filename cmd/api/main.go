package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"upnd.org/internal/auth"
	"upnd.org/internal/cards"
	"upnd.org/internal/comms"
	"upnd.org/internal/discipline"
	"upnd.org/internal/events"
	"upnd.org/internal/httpapi"
	"upnd.org/internal/member"
	"upnd.org/internal/obs"
	"upnd.org/internal/store/pg"
	"upnd.org/internal/stream"
)

var version = "0.3.1"

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	obs.Init()
	obs.InitBuildInfo(version, os.Getenv("UPND_BUILD_COMMIT"))

	var (
		db      *sql.DB
		stores  storeSet
		cleanup func()
	)
	if dsn := os.Getenv("UPND_PG_DSN"); dsn != "" {
		pgStore, err := pg.Open(dsn)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		db = pgStore.DB()
		stores = storeSet{
			members:    pgStore.Members(),
			discipline: pgStore.Discipline(),
			events:     pgStore.Events(),
			comms:      pgStore.Communications(),
			cards:      pgStore.Cards(),
			auth:       pgStore,
		}
		cleanup = func() { _ = pgStore.Close() }
	} else {
		log.Print("UPND_PG_DSN not set, using in-memory stores")
		stores = storeSet{
			members:    member.NewInMemory(),
			discipline: discipline.NewInMemory(),
			events:     events.NewInMemory(),
			comms:      comms.NewInMemory(),
			cards:      cards.NewInMemory(),
			auth:       auth.NewInMemory(),
		}
		cleanup = func() {}
	}

	members := member.NewService(stores.members)
	svc := httpapi.Services{
		Members:    members,
		Discipline: discipline.NewService(stores.discipline),
		Events:     events.NewService(stores.events),
		Comms:      comms.NewService(stores.comms, members),
		Cards:      cards.NewService(stores.cards, members),
		Auth:       auth.NewService(stores.auth),
	}

	st := stream.New()
	stopDemo := func() {}
	if os.Getenv("UPND_STREAM_DEMO") == "1" {
		stopDemo = st.StartDemo(2 * time.Second)
	}

	api := httpapi.New(httpapi.ReadyProbe{DB: db}, version, svc, st)

	addr := os.Getenv("UPND_HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting upnd-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stopDemo()
	_ = srv.Shutdown(ctx)
	cleanup()
	log.Println("Stopped")
}

type storeSet struct {
	members    member.Store
	discipline discipline.Store
	events     events.Store
	comms      comms.Store
	cards      cards.Store
	auth       auth.Store
}
