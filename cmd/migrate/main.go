// Command migrate applies the platform schema: the conversation_log table
// behind the scheduling chat and the bookings table behind confirmed
// appointments.
//
// Usage:
//
//	migrate              apply all pending migrations
//	migrate force <n>    mark the schema at version n after a manual repair
//
// The target database comes from DATABASE_URL.
package main

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"

	appmigrations "github.com/smartcleanhq/cleaning-ai-platform/migrations"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: migrate [force <version>]")
	fmt.Fprintln(os.Stderr, "  applies the conversation_log and bookings schema from the embedded migrations")
	os.Exit(2)
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("migrate: ")

	if len(os.Args) > 1 && os.Args[1] != "force" {
		usage()
	}

	databaseURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		log.Fatalf("ping db: %v", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		log.Fatalf("db driver: %v", err)
	}

	srcDriver, err := iofs.New(appmigrations.FS, ".")
	if err != nil {
		log.Fatalf("source driver: %v", err)
	}

	m, err := migrate.NewWithInstance("iofs", srcDriver, "postgres", dbDriver)
	if err != nil {
		log.Fatalf("create migrator: %v", err)
	}
	defer func() { _, _ = m.Close() }()

	// Recovery path for a dirty schema version.
	if len(os.Args) > 1 {
		if len(os.Args) < 3 {
			usage()
		}
		version, err := strconv.Atoi(os.Args[2])
		if err != nil {
			log.Fatalf("invalid version %q: %v", os.Args[2], err)
		}
		if err := m.Force(version); err != nil {
			log.Fatalf("force version: %v", err)
		}
		fmt.Printf("schema version forced to %d\n", version)
		return
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("migrate up: %v", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		log.Fatalf("read version: %v", err)
	}
	if dirty {
		log.Fatalf("schema is dirty at version %d; repair it with: migrate force %d", version, version)
	}
	fmt.Printf("schema up to date at version %d\n", version)
}
