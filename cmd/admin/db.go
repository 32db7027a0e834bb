package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"realmtick.io/internal/persistence/store"
	"realmtick.io/internal/platform/config"
)

// runsCmd reads tick history straight from the database, for when the server
// is down.
func runsCmd(args []string, env config.Server) {
	fs := flag.NewFlagSet("runs", flag.ExitOnError)
	dialect := fs.String("db", env.DBDialect, "database dialect: sqlite or postgres")
	sqlitePath := fs.String("sqlite", env.SQLitePath, "sqlite database path")
	postgresDSN := fs.String("postgres", env.PostgresDSN, "postgres DSN")
	limit := fs.Int("limit", 10, "number of runs")
	_ = fs.Parse(args)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	st, err := store.Open(ctx, store.Config{
		Dialect:     store.Dialect(*dialect),
		SQLitePath:  *sqlitePath,
		PostgresDSN: *postgresDSN,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "open store:", err)
		os.Exit(1)
	}
	defer st.Close()

	last, ok, err := st.LastTickSuccess(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read last success:", err)
		os.Exit(1)
	}
	if ok {
		fmt.Printf("last success: %s (%s ago)\n", last.Format(time.RFC3339), time.Since(last).Truncate(time.Second))
	} else {
		fmt.Println("last success: never")
	}
	if date, ok, err := st.GetMeta(ctx, store.MetaLastTickDate); err == nil && ok {
		fmt.Printf("last claimed date: %s\n", date)
	}

	rows, err := st.RecentTickRuns(ctx, *limit)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read runs:", err)
		os.Exit(1)
	}
	for _, r := range rows {
		fmt.Printf("%s  %s  steps=%d failed=%d took=%s\n",
			r.StartedAt.Format(time.RFC3339), r.ID, r.Steps, r.Failed, r.FinishedAt.Sub(r.StartedAt))
	}
}
