package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/kevin07696/ach-processor/internal/config"
	"github.com/kevin07696/ach-processor/internal/db/migrations"
)

const dialect = "postgres"

var (
	flags   = flag.NewFlagSet("migrate", flag.ExitOnError)
	dir     = flags.String("dir", "", "read migrations from this directory instead of the embedded set")
	timeout = flags.Duration("timeout", 5*time.Minute, "overall timeout")
)

func main() {
	flags.Usage = usage
	if err := flags.Parse(os.Args[1:]); err != nil {
		log.Fatalf("parse flags: %v", err)
	}

	args := flags.Args()
	if len(args) < 1 {
		flags.Usage()
		os.Exit(2)
	}
	command := args[0]

	migrationsDir := "."
	if *dir != "" {
		goose.SetBaseFS(nil)
		migrationsDir = *dir
	} else {
		goose.SetBaseFS(migrations.FS)
	}

	if command == "create" {
		// create always writes to disk
		if *dir == "" {
			log.Fatal("create requires -dir, e.g. -dir internal/db/migrations")
		}
		if err := goose.Run(command, nil, migrationsDir, args[1:]...); err != nil {
			log.Fatalf("goose %v: %v", command, err)
		}
		return
	}

	dbCfg := config.LoadDatabaseFromEnv()
	db, err := sql.Open("pgx", dbCfg.ConnectionString())
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := goose.SetDialect(dialect); err != nil {
		log.Fatalf("failed to set dialect: %v", err)
	}

	if err := goose.RunContext(ctx, command, db, migrationsDir, args[1:]...); err != nil {
		log.Fatalf("goose %v: %v", command, err)
	}
}

func usage() {
	fmt.Print(`Usage: migrate [-dir DIR] COMMAND

Reads DATABASE_URL, or DB_HOST/DB_PORT/DB_USER/DB_PASSWORD/DB_NAME/DB_SSL_MODE.

Commands:
    up                   Migrate the DB to the most recent version available
    up-by-one            Migrate the DB up by 1
    up-to VERSION        Migrate the DB to a specific VERSION
    down                 Roll back the version by 1
    down-to VERSION      Roll back to a specific VERSION
    redo                 Re-run the latest migration
    reset                Roll back all migrations
    status               Dump the migration status for the current DB
    version              Print the current version of the database
    create NAME sql      Creates new migration file (requires -dir)

Examples:
    migrate up
    migrate status
    migrate -dir internal/db/migrations create add_return_codes sql
`)
}
