// Command cryptixctl is the operator CLI: schema setup, word seeding, admin
// accounts, reports and retention.
//
// Usage:
//
//	cryptixctl [-db path] <command> [flags]
//
// Commands:
//
//	init-db        create or migrate the database (-with-words also seeds)
//	seed-words     load the corpus into the words table (-force prunes unused words)
//	create-admin   create an admin account: create-admin USERNAME PASSWORD
//	list-players   list player accounts with lifetime results
//	report-daily   summary for one day (-date YYYY-MM-DD, default today)
//	report-user    per-day history and games of one player (-id or -username)
//	purge-sessions delete sessions started before -before YYYY-MM-DD
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	_ = godotenv.Load()
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
