package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/tessera/pkg/adapters/qr"
	"github.com/aretw0/tessera/pkg/core"
)

var (
	generateData   string
	generatePNGOut string
)

var generateCmd = &cobra.Command{
	Use:   "generate [key=value ...]",
	Short: "Generate a ticket",
	Long: `Generate creates a ticket from the given payload and prints the result as JSON.
Values that parse as JSON (numbers, booleans, arrays) keep their type.`,
	Run: func(cmd *cobra.Command, args []string) {
		payload, err := parsePayload(generateData, args)
		if err != nil {
			fatal("Invalid payload", err)
		}

		service := newService()
		res := service.GenerateTicket(context.Background(), payload)

		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(res); err != nil {
			fatal("Error encoding JSON", err)
		}
		if !res.Success {
			os.Exit(1)
		}

		if generatePNGOut != "" {
			png, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(res.EmbeddableImage, qr.DataURIPrefix))
			if err != nil {
				fatal("Failed to decode image", err)
			}
			if err := os.WriteFile(generatePNGOut, png, 0644); err != nil {
				fatal("Failed to write image", err)
			}
		}
	},
}

// parsePayload merges a JSON object with key=value pairs, the pairs winning.
func parsePayload(data string, pairs []string) (core.Payload, error) {
	payload := core.Payload{}
	if data != "" {
		if err := decodeJSON(data, &payload); err != nil {
			return nil, fmt.Errorf("--data must be a JSON object: %w", err)
		}
	}

	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("expected key=value, got %q", pair)
		}
		var value any
		if err := decodeJSON(raw, &value); err != nil {
			value = raw
		}
		payload[key] = value
	}
	return payload, nil
}

// decodeJSON decodes exactly one JSON value, keeping numbers as json.Number.
func decodeJSON(s string, v any) error {
	decoder := json.NewDecoder(strings.NewReader(s))
	decoder.UseNumber()
	if err := decoder.Decode(v); err != nil {
		return err
	}
	if _, err := decoder.Token(); err != io.EOF {
		return fmt.Errorf("unexpected data after JSON value")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVar(&generateData, "data", "", "Payload as a JSON object")
	generateCmd.Flags().StringVar(&generatePNGOut, "png-out", "", "Also write the QR image to this file")
}
