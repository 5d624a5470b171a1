package main

import (
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/vmunix/kinocat/internal/scrape"
)

var populateCmd = &cobra.Command{
	Use:   "populate",
	Short: "Scrape kino.mail.ru into the catalog (admin)",
	Long: `Scrape the configured listing page and store every new film.

Strategies:
  sequential  one page at a time, stops at the first failure
  threaded    one goroutine per page, failed pages are reported
  executor    bounded worker pool, stops at the first failure

Examples:
  kinocat populate
  kinocat populate --strategy executor`,
	Args: cobra.NoArgs,
	RunE: runPopulateCmd,
}

func init() {
	rootCmd.AddCommand(populateCmd)
	populateCmd.Flags().StringP("strategy", "s", "sequential", "Scrape strategy")
	populateCmd.Flags().Duration("timeout", 10*time.Minute, "Request timeout")
}

func runPopulateCmd(cmd *cobra.Command, _ []string) error {
	name, _ := cmd.Flags().GetString("strategy")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	strategy, err := scrape.ParseStrategy(name)
	if err != nil {
		return err
	}

	var s *spinner.Spinner
	if !jsonOutput {
		s = spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
		s.Suffix = fmt.Sprintf(" populating (%s)...", strategy)
		s.Start()
	}

	resp, err := newClient().WithTimeout(timeout).Populate(strategy.String())
	if s != nil {
		s.Stop()
	}
	if err != nil {
		if IsUnauthorized(err) {
			return fmt.Errorf("populate requires an admin token (--token or $%s): %w", envToken, err)
		}
		return fmt.Errorf("populate failed: %w", err)
	}

	if jsonOutput {
		printJSON(resp)
		return nil
	}
	printPopulate(resp)
	return nil
}

func printPopulate(r *PopulateResponse) {
	fmt.Println(r.Message)
	fmt.Printf("  Strategy:  %s\n", r.Strategy)
	fmt.Printf("  Found:     %d\n", r.Found)
	fmt.Printf("  Created:   %d\n", r.Created)
	if len(r.Failed) > 0 {
		fmt.Printf("\nFailed pages (%d)\n", len(r.Failed))
		for _, f := range r.Failed {
			fmt.Printf("  %s: %s\n", f.URL, f.Error)
		}
	}
}
