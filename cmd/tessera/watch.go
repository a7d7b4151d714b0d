package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/tessera/pkg/adapters/lifecycle"
	"github.com/aretw0/tessera/pkg/core"
)

var (
	watchPattern string
	watchTypes   []string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream ticket create and delete events",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		types, err := parseEventTypes(watchTypes)
		if err != nil {
			fatal("Invalid --type", err)
		}

		service := newService()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		events, err := service.Watch(ctx, watchPattern)
		if err != nil {
			fatal("Failed to start watcher", err)
		}

		source := lifecycle.NewSource(events, lifecycle.WithTypes(types...))
		if err := source.Start(ctx); err != nil {
			fatal("Failed to start event source", err)
		}

		fmt.Fprintln(os.Stderr, "Watching for tickets. Press Ctrl+C to stop.")
		for e := range source.Events() {
			fmt.Fprintln(cmd.OutOrStdout(), e.String())
		}
	},
}

// parseEventTypes maps "create" and "delete" to event types.
func parseEventTypes(names []string) ([]core.EventType, error) {
	types := make([]core.EventType, 0, len(names))
	for _, name := range names {
		switch t := core.EventType(strings.ToUpper(strings.TrimSpace(name))); t {
		case core.EventCreate, core.EventDelete:
			types = append(types, t)
		default:
			return nil, fmt.Errorf("unknown event type %q (want create or delete)", name)
		}
	}
	return types, nil
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&watchPattern, "pattern", "", "Glob matched against ticket ids")
	watchCmd.Flags().StringSliceVar(&watchTypes, "type", nil, "Only report these event types (create, delete)")
}
