package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show recent populate and scrape events",
	Args:  cobra.NoArgs,
	RunE:  runEventsCmd,
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.Flags().String("type", "", "Filter by event type (e.g. populate.completed)")
	eventsCmd.Flags().Int("limit", 20, "Number of events")
}

func runEventsCmd(cmd *cobra.Command, _ []string) error {
	eventType, _ := cmd.Flags().GetString("type")
	limit, _ := cmd.Flags().GetInt("limit")

	data, err := newClient().Events(eventType, limit)
	if err != nil {
		return fmt.Errorf("list events failed: %w", err)
	}
	if jsonOutput {
		printJSON(data)
		return nil
	}

	if len(data.Items) == 0 {
		fmt.Println("No events.")
		return nil
	}
	for _, e := range data.Items {
		fmt.Printf("  %-25s %-22s %s\n", e.OccurredAt, e.EventType, truncate(string(e.Payload), 80))
	}
	return nil
}
