package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var clearYes bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every stored ticket",
	Long:  `Clear removes every ticket directory under the root. Plain files are left alone.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if !clearYes && !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "Delete all tickets?") {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return
		}

		service := newService()
		res := service.ClearAllTickets(context.Background())
		if !res.Success {
			fmt.Fprintf(os.Stderr, "Error clearing tickets: %s\n", res.Error)
			os.Exit(1)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "All tickets cleared.")
	},
}

func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N] ", question)
	answer, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

func init() {
	rootCmd.AddCommand(clearCmd)
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "Skip confirmation")
}
