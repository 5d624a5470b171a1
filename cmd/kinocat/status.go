package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Server health and catalog size",
	Args:  cobra.NoArgs,
	RunE:  runStatusCmd,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatusCmd(_ *cobra.Command, _ []string) error {
	status, err := newClient().Status()
	if err != nil {
		return fmt.Errorf("status check failed: %w", err)
	}

	if jsonOutput {
		printJSON(status)
		return nil
	}
	printStatus(serverURL, status)
	return nil
}

func printStatus(server string, s *StatusResponse) {
	fmt.Printf("kinocat v%s | Server: %s\n\n", s.Version, server)
	fmt.Printf("  Status:    %s\n", s.Status)
	fmt.Printf("  Database:  %s\n", s.Database)
	fmt.Printf("  Films:     %d\n", s.Films)
}
