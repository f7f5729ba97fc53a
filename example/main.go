package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/hxlong/dpool"
	"github.com/hxlong/dpool/define"
)

func main() {
	opts := define.DefaultPoolOptions()
	opts.MaxConnections = 4
	opts.AcquireTimeout = 5 * time.Second
	opts.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

	// In-memory DuckDB; pass a file path for a persistent store.
	pool, err := dpool.New(":memory:", &opts)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	ctx := context.Background()
	err = pool.WithConn(ctx, func(conn *sql.Conn) error {
		var n int
		row := conn.QueryRowContext(ctx, "SELECT 21 * 2")
		if err := row.Scan(&n); err != nil {
			return err
		}
		fmt.Println("answer:", n)
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}

	stats := pool.Stats()
	fmt.Printf("acquisitions=%d releases=%d total=%d idle=%d\n",
		stats.TotalAcquisitions, stats.TotalReleases,
		stats.TotalConnections, stats.IdleConnections)
	fmt.Println("healthy:", pool.Healthy(ctx))
}
