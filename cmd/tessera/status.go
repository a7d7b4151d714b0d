package main

import (
	"encoding/json"

	"github.com/aretw0/introspection"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the state of the service, store and encoder as JSON",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		service := newService()

		status := map[string]any{
			"service": service.State(),
		}
		if s, ok := service.Repository().(introspection.Introspectable); ok {
			status["repository"] = s.State()
		}
		if s, ok := service.Encoder().(introspection.Introspectable); ok {
			status["encoder"] = s.State()
		}

		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(status); err != nil {
			fatal("Error encoding JSON", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
