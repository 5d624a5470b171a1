package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

// envToken supplies --token when the flag is not given.
const envToken = "KINOCAT_TOKEN"

var (
	serverURL  string
	jsonOutput bool
	apiToken   string
)

var rootCmd = &cobra.Command{
	Use:   "kinocat",
	Short: "CLI client for the kinocat film catalog",
	Long: `kinocat - CLI client for the kinocat film catalog

Browse films and actors, log in, and trigger catalog population
from kino.mail.ru.

Run 'kinocatd' to start the server daemon.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Args:  cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("kinocat %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8484", "Server URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().StringVar(&apiToken, "token", os.Getenv(envToken), "API token (default $"+envToken+")")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("kinocat {{.Version}}\n")
}

func newClient() *Client {
	return NewClient(serverURL).WithToken(apiToken)
}
