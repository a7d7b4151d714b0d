package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/tessera/pkg/core"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored tickets, newest first",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		service := newService()

		res := service.ListAllTickets(context.Background())
		if !res.Success {
			fatal("Error listing tickets", fmt.Errorf("%s", res.Error))
		}
		sortNewestFirst(res.Tickets)

		out := cmd.OutOrStdout()
		if listJSON {
			encoder := json.NewEncoder(out)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(res); err != nil {
				fatal("Error encoding JSON", err)
			}
			return
		}

		for _, view := range res.Tickets {
			data, _ := json.Marshal(view.Ticket.Data)
			fmt.Fprintf(out, "%s  %s  %s\n", view.Ticket.ID, view.Ticket.Timestamp, data)
		}
	},
}

// sortNewestFirst orders tickets by creation time, descending.
// Unparsable timestamps sort last.
func sortNewestFirst(views []core.TicketView) {
	created := func(v core.TicketView) time.Time {
		t, _ := time.Parse(time.RFC3339Nano, v.Ticket.Timestamp)
		return t
	}
	sort.SliceStable(views, func(i, j int) bool {
		return created(views[i]).After(created(views[j]))
	})
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
}
