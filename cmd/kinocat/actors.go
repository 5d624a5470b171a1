package main

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var actorsCmd = &cobra.Command{
	Use:   "actors",
	Short: "Browse actors",
}

var actorsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List actors",
	Args:  cobra.NoArgs,
	RunE:  runActorsListCmd,
}

var actorsFilmsCmd = &cobra.Command{
	Use:   "films <uuid>",
	Short: "List the films of an actor",
	Args:  cobra.ExactArgs(1),
	RunE:  runActorsFilmsCmd,
}

func init() {
	rootCmd.AddCommand(actorsCmd)
	actorsCmd.AddCommand(actorsListCmd, actorsFilmsCmd)

	actorsListCmd.Flags().String("name", "", "Filter by name substring")
	actorsListCmd.Flags().Bool("active", false, "Only active actors")
	actorsListCmd.Flags().Int("limit", 50, "Page size")
	actorsListCmd.Flags().Int("offset", 0, "Page offset")
}

func runActorsListCmd(cmd *cobra.Command, _ []string) error {
	q := url.Values{}
	if v, _ := cmd.Flags().GetString("name"); v != "" {
		q.Set("name", v)
	}
	if active, _ := cmd.Flags().GetBool("active"); active {
		q.Set("is_active", "true")
	}
	limit, _ := cmd.Flags().GetInt("limit")
	offset, _ := cmd.Flags().GetInt("offset")
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))

	data, err := newClient().ListActors(q)
	if err != nil {
		return fmt.Errorf("list actors failed: %w", err)
	}
	if jsonOutput {
		printJSON(data)
		return nil
	}

	if len(data.Items) == 0 {
		fmt.Println("No actors found.")
		return nil
	}
	fmt.Printf("Actors (%d):\n\n", data.Total)
	fmt.Printf("  %-36s %-30s %-10s %s\n", "UUID", "NAME", "BIRTHDAY", "ACTIVE")
	fmt.Println("  " + strings.Repeat("-", 86))
	for _, a := range data.Items {
		birthday := "-"
		if a.Birthday != nil {
			birthday = *a.Birthday
		}
		fmt.Printf("  %-36s %-30s %-10s %t\n", a.UUID, truncate(a.Name, 30), birthday, a.IsActive)
	}
	return nil
}

func runActorsFilmsCmd(_ *cobra.Command, args []string) error {
	data, err := newClient().ActorFilms(args[0])
	if err != nil {
		return fmt.Errorf("list actor films failed: %w", err)
	}
	if jsonOutput {
		printJSON(data)
		return nil
	}
	printFilms(data)
	return nil
}
