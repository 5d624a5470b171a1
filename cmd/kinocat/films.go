package main

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var filmsCmd = &cobra.Command{
	Use:   "films",
	Short: "Browse the film catalog",
}

var filmsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List films",
	Long: `List films with optional filters.

Examples:
  kinocat films list --sort rating --desc
  kinocat films list --title Бэтмен --limit 10`,
	Args: cobra.NoArgs,
	RunE: runFilmsListCmd,
}

var filmsGetCmd = &cobra.Command{
	Use:   "get <uuid>",
	Short: "Show a film with its cast",
	Args:  cobra.ExactArgs(1),
	RunE:  runFilmsGetCmd,
}

var filmsSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Fuzzy search film titles",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFilmsSearchCmd,
}

var filmsDeleteCmd = &cobra.Command{
	Use:   "delete <uuid>",
	Short: "Delete a film (admin)",
	Args:  cobra.ExactArgs(1),
	RunE:  runFilmsDeleteCmd,
}

func init() {
	rootCmd.AddCommand(filmsCmd)
	filmsCmd.AddCommand(filmsListCmd, filmsGetCmd, filmsSearchCmd, filmsDeleteCmd)

	filmsListCmd.Flags().String("title", "", "Filter by title substring")
	filmsListCmd.Flags().String("distributor", "", "Filter by distributor")
	filmsListCmd.Flags().String("sort", "", "Sort by title, release_date or rating")
	filmsListCmd.Flags().Bool("desc", false, "Sort descending")
	filmsListCmd.Flags().Int("limit", 50, "Page size")
	filmsListCmd.Flags().Int("offset", 0, "Page offset")

	filmsSearchCmd.Flags().Int("limit", 10, "Maximum matches")
}

func filmsQuery(cmd *cobra.Command) url.Values {
	q := url.Values{}
	if v, _ := cmd.Flags().GetString("title"); v != "" {
		q.Set("title", v)
	}
	if v, _ := cmd.Flags().GetString("distributor"); v != "" {
		q.Set("distributed_by", v)
	}
	if v, _ := cmd.Flags().GetString("sort"); v != "" {
		q.Set("sort", v)
	}
	if desc, _ := cmd.Flags().GetBool("desc"); desc {
		q.Set("order", "desc")
	}
	limit, _ := cmd.Flags().GetInt("limit")
	q.Set("limit", strconv.Itoa(limit))
	if offset, _ := cmd.Flags().GetInt("offset"); offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	return q
}

func runFilmsListCmd(cmd *cobra.Command, _ []string) error {
	data, err := newClient().ListFilms(filmsQuery(cmd))
	if err != nil {
		return fmt.Errorf("list films failed: %w", err)
	}
	if jsonOutput {
		printJSON(data)
		return nil
	}
	printFilms(data)
	return nil
}

func printFilms(data *ListFilmsResponse) {
	if len(data.Items) == 0 {
		fmt.Println("No films found.")
		return
	}

	fmt.Printf("Films (%d):\n\n", data.Total)
	fmt.Printf("  %-36s %-40s %-10s %-6s %s\n", "UUID", "TITLE", "RELEASED", "RATING", "DISTRIBUTOR")
	fmt.Println("  " + strings.Repeat("-", 110))
	for _, f := range data.Items {
		fmt.Printf("  %-36s %-40s %-10s %-6.1f %s\n",
			f.UUID, truncate(f.Title, 40), f.ReleaseDate, f.Rating, truncate(f.DistributedBy, 20))
	}
	if shown := data.Offset + len(data.Items); shown < data.Total {
		fmt.Printf("\n  Showing %d-%d of %d. Use --offset to see more.\n", data.Offset+1, shown, data.Total)
	}
}

func runFilmsGetCmd(_ *cobra.Command, args []string) error {
	f, err := newClient().GetFilm(args[0])
	if err != nil {
		return fmt.Errorf("get film failed: %w", err)
	}
	if jsonOutput {
		printJSON(f)
		return nil
	}

	fmt.Printf("%s (%s)\n\n", f.Title, f.ReleaseDate)
	fmt.Printf("  Rating:       %.1f\n", f.Rating)
	fmt.Printf("  Length:       %d min\n", f.Length)
	fmt.Printf("  Distributor:  %s\n", f.DistributedBy)
	if f.Description != "" {
		fmt.Printf("\n  %s\n", f.Description)
	}
	if len(f.Actors) > 0 {
		fmt.Println("\nCast")
		for _, a := range f.Actors {
			fmt.Printf("  %s\n", a.Name)
		}
	}
	return nil
}

func runFilmsSearchCmd(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	data, err := newClient().SearchFilms(strings.Join(args, " "), limit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if jsonOutput {
		printJSON(data)
		return nil
	}

	if len(data.Items) == 0 {
		fmt.Printf("No matches for %q.\n", data.Query)
		return nil
	}
	fmt.Printf("Matches for %q:\n\n", data.Query)
	for _, m := range data.Items {
		fmt.Printf("  %3.0f%%  %-40s %s\n", m.Score*100, truncate(m.Film.Title, 40), m.Film.UUID)
	}
	return nil
}

func runFilmsDeleteCmd(_ *cobra.Command, args []string) error {
	if err := newClient().DeleteFilm(args[0]); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	fmt.Printf("Deleted film %s\n", args[0])
	return nil
}
