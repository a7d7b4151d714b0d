package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aretw0/tessera"
	"github.com/aretw0/tessera/pkg/adapters/fs"
	"github.com/aretw0/tessera/pkg/core"
)

func main() {
	count := flag.Int("count", 1000, "Number of tickets to generate")
	keep := flag.Bool("keep", false, "Keep the benchmark store after running")
	index := flag.Bool("index", true, "Enable the metadata index")
	flag.Parse()

	benchDir, err := os.MkdirTemp("", "tessera_bench_")
	if err != nil {
		panic(err)
	}
	defer func() {
		if !*keep {
			os.RemoveAll(benchDir)
		} else {
			fmt.Printf("Keeping bench dir: %s\n", benchDir)
		}
	}()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
	ctx := context.TODO()

	// Seed through the store directly; QR rendering would dominate otherwise.
	seed := fs.NewRepository(fs.Config{Path: benchDir, Logger: logger})
	fmt.Printf("Writing %d tickets in %s...\n", *count, benchDir)
	startGen := time.Now()
	for i := 0; i < *count; i++ {
		ticket := core.NewTicket(core.Payload{"n": i, "eventName": "Benchmark"})
		if _, err := seed.Save(ctx, ticket, []byte("png")); err != nil {
			panic(err)
		}
	}
	fmt.Printf("Generation took: %v\n", time.Since(startGen))

	service, err := tessera.New(benchDir,
		tessera.WithLogger(logger),
		tessera.WithIndex(*index),
	)
	if err != nil {
		panic(err)
	}
	repo := service.Repository()

	for _, run := range []string{"Cold", "Warm"} {
		start := time.Now()
		list, err := repo.List(ctx)
		if err != nil {
			panic(err)
		}
		fmt.Printf("List (%s): %v (Items: %d)\n", run, time.Since(start), len(list))
	}

	start := time.Now()
	res := service.ListAllTickets(ctx)
	fmt.Printf("ListAllTickets with rendering: %v (Items: %d)\n", time.Since(start), len(res.Tickets))
}
