package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"upnd.org/internal/auth"
	"upnd.org/internal/jurisdiction"
	"upnd.org/internal/store/pg"
)

// seed-admin creates the first National Admin account so the party
// secretariat can log in to a fresh deployment and create everyone else
// through the API.
func main() {
	log.SetFlags(0)
	_ = godotenv.Load()

	var (
		dsn      = flag.String("dsn", os.Getenv("UPND_PG_DSN"), "PostgreSQL DSN")
		email    = flag.String("email", "", "Admin email address")
		name     = flag.String("name", "National Administrator", "Admin full name")
		password = flag.String("password", "", "Admin password (min 8 chars)")
	)
	flag.Parse()

	if *dsn == "" {
		log.Fatal("missing DSN: provide via -dsn or UPND_PG_DSN")
	}
	if *email == "" || *password == "" {
		log.Fatal("usage: seed-admin -email you@upnd.org -password <secret>")
	}

	store, err := pg.Open(*dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	svc := auth.NewService(store)
	user, err := svc.CreateUser(ctx, auth.NewUser{
		Email:        *email,
		Password:     *password,
		FullName:     *name,
		Role:         auth.RoleNationalAdmin,
		Level:        jurisdiction.LevelNational,
		Jurisdiction: jurisdiction.Jurisdiction{},
	})
	if err != nil {
		log.Fatalf("create admin: %v", err)
	}
	log.Printf("created %s (%s) as %s", user.Email, user.ID, user.Role)
}
